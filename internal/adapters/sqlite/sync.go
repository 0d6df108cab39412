package sqlite

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"plandeck/internal/domain"
	"plandeck/internal/ports"
)

// SyncFull performs a complete rebuild of the index
func (idx *Index) SyncFull() (*domain.SyncStats, error) {
	start := time.Now()
	stats := &domain.SyncStats{}

	tx, err := idx.begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.clear(); err != nil {
		return nil, fmt.Errorf("failed to clear index: %w", err)
	}

	err = idx.walkPlans(func(relPath string, info fs.FileInfo) error {
		stats.FilesScanned++
		added, err := idx.indexFile(tx, relPath, info.ModTime().Unix())
		if err != nil {
			return nil // Skip unreadable files
		}
		stats.NodesAdded++
		stats.EdgesAdded += added
		return nil
	})
	if err != nil {
		return stats, err
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("failed to commit sync: %w", err)
	}
	if err := idx.updateMeta(time.Now().Unix()); err != nil {
		return stats, fmt.Errorf("failed to update metadata: %w", err)
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// SyncIncremental updates only files that changed since last sync
func (idx *Index) SyncIncremental() (*domain.SyncStats, error) {
	start := time.Now()
	stats := &domain.SyncStats{}

	var lastSyncUnix int64
	idx.db.QueryRow(`SELECT value FROM meta WHERE key = 'last_sync_time'`).Scan(&lastSyncUnix)

	existing := make(map[string]string)
	rows, err := idx.db.Query(`SELECT path, hash FROM nodes`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			rows.Close()
			return nil, err
		}
		existing[path] = hash
	}
	rows.Close()

	tx, err := idx.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	seen := make(map[string]bool)
	err = idx.walkPlans(func(relPath string, info fs.FileInfo) error {
		seen[relPath] = true
		stats.FilesScanned++

		mtime := info.ModTime().Unix()
		oldHash, known := existing[relPath]
		if known && mtime <= lastSyncUnix {
			return nil
		}
		if known {
			// mtime moved but content may not have
			data, err := os.ReadFile(filepath.Join(idx.plansDir, relPath))
			if err == nil && hashContent(data) == oldHash {
				return nil
			}
			if err := tx.DeleteEdgesFromFile(relPath); err != nil {
				return err
			}
		}

		added, err := idx.indexFile(tx, relPath, mtime)
		if err != nil {
			return nil
		}
		if known {
			stats.NodesUpdated++
		} else {
			stats.NodesAdded++
		}
		stats.EdgesAdded += added
		return nil
	})
	if err != nil {
		return stats, err
	}

	for path := range existing {
		if seen[path] {
			continue
		}
		if err := tx.DeleteNode(path); err != nil {
			return stats, err
		}
		stats.NodesDeleted++
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("failed to commit sync: %w", err)
	}
	if err := idx.updateMeta(time.Now().Unix()); err != nil {
		return stats, fmt.Errorf("failed to update metadata: %w", err)
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// ApplyRewrites mirrors renamed and rewritten plan files into the index.
// Every change is applied in a single transaction.
func (idx *Index) ApplyRewrites(changes []domain.FileChange) error {
	tx, err := idx.BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Two passes so a swap never collides on the primary key
	for _, c := range changes {
		oldRel, err := idx.relPath(c.OriginalPath)
		if err != nil {
			return err
		}
		if err := tx.DeleteNode(oldRel); err != nil {
			return fmt.Errorf("failed to remove %s from index: %w", oldRel, err)
		}
	}
	for _, c := range changes {
		newRel, err := idx.relPath(c.TargetPath)
		if err != nil {
			return err
		}
		info, err := os.Stat(c.TargetPath)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", c.TargetPath, err)
		}
		if _, err := idx.indexFile(tx, newRel, info.ModTime().Unix()); err != nil {
			return fmt.Errorf("failed to index %s: %w", newRel, err)
		}
	}

	return tx.Commit()
}

// indexFile parses a plan file and writes its node and edges, returning the
// number of edges inserted.
func (idx *Index) indexFile(tx ports.IndexTx, relPath string, mtime int64) (int, error) {
	fullPath := filepath.Join(idx.plansDir, relPath)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return 0, err
	}
	plan, err := idx.store.ReadFile(fullPath)
	if err != nil {
		return 0, err
	}

	node := &domain.IndexNode{
		Path:     relPath,
		PlanID:   plan.ID,
		ParentID: plan.Parent,
		Title:    plan.Title,
		Status:   plan.Status,
		Priority: plan.Priority,
		Hash:     hashContent(data),
		Mtime:    mtime,
	}
	if err := tx.UpsertNode(node); err != nil {
		return 0, err
	}

	added := 0
	for _, edge := range domain.EdgesFor(relPath, plan) {
		if err := tx.InsertEdge(&edge); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// walkPlans calls fn for every plan file under the plans directory,
// skipping hidden directories.
func (idx *Index) walkPlans(fn func(relPath string, info fs.FileInfo) error) error {
	return filepath.WalkDir(idx.plansDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if d.IsDir() {
			if path != idx.plansDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !domain.IsPlanFile(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		relPath, err := filepath.Rel(idx.plansDir, path)
		if err != nil {
			return nil
		}
		return fn(relPath, info)
	})
}

func (idx *Index) relPath(path string) (string, error) {
	rel, err := filepath.Rel(idx.plansDir, path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s against %s: %w", path, idx.plansDir, err)
	}
	return rel, nil
}
