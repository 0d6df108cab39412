package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"plandeck/internal/domain"
	"plandeck/internal/ports"
)

// BackupDir is where Batch keeps copies of touched files while it runs
const BackupDir = StateDir + "/backups"

// WriteError reports a failed batch write. Every completed step has been
// unwound unless RollbackErr is set.
type WriteError struct {
	Path        string
	Err         error
	RollbackErr error
	BackupPath  string
}

func (e *WriteError) Error() string {
	msg := fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
	if e.RollbackErr != nil {
		msg += fmt.Sprintf(" (rollback incomplete, backups kept in %s: %v)", e.BackupPath, e.RollbackErr)
	}
	return msg
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Batch applies plan writes as a unit: every existing file it touches is
// backed up first, and any failure restores the previous state.
type Batch struct {
	repo   *Repository
	logger *slog.Logger
	now    func() time.Time
}

// Ensure Batch implements PlanWriter
var _ ports.PlanWriter = (*Batch)(nil)

// NewBatch creates a batch writer for repo
func NewBatch(repo *Repository) *Batch {
	return &Batch{repo: repo, logger: repo.logger, now: time.Now}
}

// step is one completed mutation and how to undo it
type step struct {
	path string
	undo func() error
}

type batchRun struct {
	root      string
	backupDir string
	backups   map[string]string // original path -> backup copy
	steps     []step
	dirs      []string // directories created, in creation order
	removed   []string
}

// Apply writes every op or, on failure, none of them
func (b *Batch) Apply(ops []ports.WriteOp) error {
	if len(ops) == 0 {
		return nil
	}

	// Encode everything up front so a bad record fails before any mutation
	payloads := make([][]byte, len(ops))
	for i, op := range ops {
		data, err := b.repo.Encode(op.Plan)
		if err != nil {
			return &WriteError{Path: op.TargetPath, Err: err}
		}
		payloads[i] = data
	}

	run := &batchRun{
		root:      b.repo.Root(),
		backupDir: filepath.Join(b.repo.Root(), BackupDir, b.now().UTC().Format("20060102T150405")+"-"+uuid.NewString()),
		backups:   make(map[string]string),
	}

	targets := make(map[string]bool, len(ops))
	for _, op := range ops {
		targets[filepath.Clean(op.TargetPath)] = true
	}
	if err := checkTargets(ops); err != nil {
		return err
	}

	// Back up every existing path before the first write, so swapped
	// renames still have their original content available
	for _, op := range ops {
		for _, p := range []string{op.TargetPath, op.OriginalPath} {
			if p == "" {
				continue
			}
			if err := run.backup(p); err != nil {
				return b.fail(run, p, err)
			}
		}
	}

	for i, op := range ops {
		if err := run.write(op.TargetPath, payloads[i]); err != nil {
			return b.fail(run, op.TargetPath, err)
		}
	}

	for _, op := range ops {
		orig := filepath.Clean(op.OriginalPath)
		if op.OriginalPath == "" || orig == filepath.Clean(op.TargetPath) || targets[orig] {
			continue
		}
		if err := run.remove(op.OriginalPath); err != nil {
			return b.fail(run, op.OriginalPath, err)
		}
	}

	if err := os.RemoveAll(run.backupDir); err != nil {
		b.logger.Warn("failed to remove backup directory", "path", run.backupDir, "error", err)
	}
	run.pruneStateDir()
	run.pruneEmptyDirs()
	b.logger.Debug("batch applied", "writes", len(ops), "removed", len(run.removed))
	return nil
}

// checkTargets refuses to overwrite a file that no op in the batch reads
// from. Such a file was never scanned as a plan, so nothing would carry its
// content forward.
func checkTargets(ops []ports.WriteOp) error {
	sources := make(map[string]bool, len(ops))
	for _, op := range ops {
		if op.OriginalPath != "" {
			sources[filepath.Clean(op.OriginalPath)] = true
		}
	}
	for _, op := range ops {
		target := filepath.Clean(op.TargetPath)
		if sources[target] {
			continue
		}
		// an Lstat error means there is nothing there to lose; the write
		// itself reports real problems
		if _, err := os.Lstat(target); err == nil {
			return &WriteError{Path: op.TargetPath, Err: &domain.TargetExistsError{Target: op.TargetPath, Source: op.OriginalPath}}
		}
	}
	return nil
}

func (b *Batch) fail(run *batchRun, path string, cause error) error {
	werr := &WriteError{Path: path, Err: cause, BackupPath: run.backupDir}
	if err := run.rollback(); err != nil {
		werr.RollbackErr = err
		b.logger.Error("rollback incomplete", "path", path, "backups", run.backupDir, "error", err)
		return werr
	}
	if err := os.RemoveAll(run.backupDir); err != nil {
		b.logger.Warn("failed to remove backup directory", "path", run.backupDir, "error", err)
	}
	run.pruneStateDir()
	return werr
}

// backup copies path into the backup directory if it exists and has not
// been copied yet
func (r *batchRun) backup(path string) error {
	path = filepath.Clean(path)
	if _, ok := r.backups[path]; ok {
		return nil
	}
	info, err := os.Lstat(path)
	if err != nil || !info.Mode().IsRegular() {
		// nothing to preserve; a later write will report real problems
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read for backup: %w", err)
	}

	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return fmt.Errorf("failed to resolve backup path: %w", err)
	}
	dst := filepath.Join(r.backupDir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	if err := os.WriteFile(dst, data, filePerms); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	r.backups[path] = dst
	return nil
}

func (r *batchRun) restore(path string) error {
	src, ok := r.backups[filepath.Clean(path)]
	if !ok {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

func (r *batchRun) write(path string, data []byte) error {
	if err := r.ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := writeAtomic(path, data); err != nil {
		return err
	}
	r.steps = append(r.steps, step{path: path, undo: func() error { return r.restore(path) }})
	return nil
}

func (r *batchRun) remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove original: %w", err)
	}
	r.removed = append(r.removed, path)
	r.steps = append(r.steps, step{path: path, undo: func() error { return r.restore(path) }})
	return nil
}

// ensureDir creates dir and records every directory it had to create
func (r *batchRun) ensureDir(dir string) error {
	var missing []string
	for d := filepath.Clean(dir); ; d = filepath.Dir(d) {
		if _, err := os.Stat(d); err == nil {
			break
		}
		missing = append(missing, d)
		if d == filepath.Dir(d) {
			break
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	slices.Reverse(missing)
	r.dirs = append(r.dirs, missing...)
	return nil
}

// rollback undoes completed steps in reverse order, then removes created
// directories deepest first
func (r *batchRun) rollback() error {
	var errs []error
	for i := len(r.steps) - 1; i >= 0; i-- {
		if err := r.steps[i].undo(); err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", r.steps[i].path, err))
		}
	}
	for i := len(r.dirs) - 1; i >= 0; i-- {
		if err := os.Remove(r.dirs[i]); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove directory %s: %w", r.dirs[i], err))
		}
	}
	return errors.Join(errs...)
}

// pruneStateDir removes empty backup parents so a clean run leaves no trace
func (r *batchRun) pruneStateDir() {
	backups := filepath.Join(r.root, BackupDir)
	_ = os.Remove(backups)
	_ = os.Remove(filepath.Dir(backups))
}

// pruneEmptyDirs removes directories left empty by renames, stopping at the root
func (r *batchRun) pruneEmptyDirs() {
	for _, p := range r.removed {
		for d := filepath.Dir(p); d != r.root && strings.HasPrefix(d, r.root); d = filepath.Dir(d) {
			if os.Remove(d) != nil {
				break
			}
		}
	}
}
