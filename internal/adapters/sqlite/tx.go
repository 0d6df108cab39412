package sqlite

import (
	"database/sql"

	"plandeck/internal/domain"
	"plandeck/internal/ports"
)

// indexTx implements ports.IndexTx
type indexTx struct {
	tx *sql.Tx
}

// Ensure indexTx implements IndexTx
var _ ports.IndexTx = (*indexTx)(nil)

// UpsertNode inserts or updates a node
func (t *indexTx) UpsertNode(node *domain.IndexNode) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO nodes (`+nodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, nodeArgs(node)...)
	return err
}

// DeleteNode removes a node and its outgoing edges
func (t *indexTx) DeleteNode(path string) error {
	if _, err := t.tx.Exec(`DELETE FROM edges WHERE source_path = ?`, path); err != nil {
		return err
	}
	_, err := t.tx.Exec(`DELETE FROM nodes WHERE path = ?`, path)
	return err
}

// RenameNode updates a node's path along with the edges it owns
func (t *indexTx) RenameNode(oldPath, newPath string) error {
	if _, err := t.tx.Exec(`UPDATE nodes SET path = ? WHERE path = ?`, newPath, oldPath); err != nil {
		return err
	}
	_, err := t.tx.Exec(`UPDATE edges SET source_path = ? WHERE source_path = ?`, newPath, oldPath)
	return err
}

// DeleteEdgesFromFile removes all edges from a source file
func (t *indexTx) DeleteEdgesFromFile(sourcePath string) error {
	_, err := t.tx.Exec(`DELETE FROM edges WHERE source_path = ?`, sourcePath)
	return err
}

// InsertEdge adds a new edge
func (t *indexTx) InsertEdge(edge *domain.Edge) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO edges (source_path, target_id, kind)
		VALUES (?, ?, ?)
	`, edge.SourcePath, edge.TargetID, string(edge.Kind))
	return err
}

// clear removes every node and edge
func (t *indexTx) clear() error {
	if _, err := t.tx.Exec(`DELETE FROM edges`); err != nil {
		return err
	}
	_, err := t.tx.Exec(`DELETE FROM nodes`)
	return err
}

// Commit commits the transaction
func (t *indexTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *indexTx) Rollback() error {
	return t.tx.Rollback()
}

func nodeArgs(node *domain.IndexNode) []any {
	return []any{
		node.Path, nullInt(node.PlanID), nullInt(node.ParentID), node.Title,
		string(node.Status), string(node.Priority), node.Hash, node.Mtime,
	}
}

// nullInt returns nil for zero ids (for nullable columns)
func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
