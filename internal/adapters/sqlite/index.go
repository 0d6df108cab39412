package sqlite

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/zeebo/blake3"

	"plandeck/internal/domain"
	"plandeck/internal/ports"
)

const schemaVersion = "1"

// Index implements ports.PlanIndex using SQLite
type Index struct {
	db       *sql.DB
	store    ports.PlanStore
	plansDir string
	dbPath   string
}

// Ensure Index implements PlanIndex
var _ ports.PlanIndex = (*Index)(nil)

// NewIndex creates a new SQLite index reading plans through store.
// An empty dbPath places the database under the XDG data directory.
func NewIndex(store ports.PlanStore, dbPath string) *Index {
	return &Index{store: store, dbPath: dbPath}
}

// Open initializes the index for the given plans directory
func (idx *Index) Open(plansDir string) error {
	abs, err := filepath.Abs(plansDir)
	if err != nil {
		return fmt.Errorf("failed to resolve plans directory: %w", err)
	}
	idx.plansDir = abs
	if idx.dbPath == "" {
		idx.dbPath = DefaultDatabasePath(abs)
	}

	if err := os.MkdirAll(filepath.Dir(idx.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", idx.dbPath+"?_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	idx.db = db

	// Performance pragmas + schema in single batch
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS nodes (
			path TEXT PRIMARY KEY,
			plan_id INTEGER,
			parent_id INTEGER,
			title TEXT,
			status TEXT,
			priority TEXT,
			hash TEXT NOT NULL,
			mtime INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS edges (
			source_path TEXT NOT NULL,
			target_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			PRIMARY KEY (source_path, target_id, kind)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_nodes_plan_id ON nodes(plan_id);
		CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);
		CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_path);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	return nil
}

// Close closes the database connection
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// Path returns the database file location
func (idx *Index) Path() string {
	return idx.dbPath
}

// NeedsFullRebuild returns true if the index should be fully rebuilt
func (idx *Index) NeedsFullRebuild() bool {
	var version, dirHash string

	idx.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	idx.db.QueryRow("SELECT value FROM meta WHERE key = 'plans_dir_hash'").Scan(&dirHash)

	return version != schemaVersion || dirHash != hashString(idx.plansDir)
}

// DefaultDatabasePath returns where the index for plansDir lives when no
// path is configured
func DefaultDatabasePath(plansDir string) string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "plandeck", hashString(plansDir)+".db")
}

// hashString returns a short blake3 hash of s
func hashString(s string) string {
	h := blake3.Sum256([]byte(s))
	return hex.EncodeToString(h[:8])
}

// hashContent returns the full blake3 hash of file content
func hashContent(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// updateMeta records the schema version, plans directory and sync time
func (idx *Index) updateMeta(syncTime int64) error {
	_, err := idx.db.Exec(`
		INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?);
		INSERT OR REPLACE INTO meta (key, value) VALUES ('plans_dir_hash', ?);
		INSERT OR REPLACE INTO meta (key, value) VALUES ('last_sync_time', ?);
	`, schemaVersion, hashString(idx.plansDir), syncTime)
	return err
}

const nodeColumns = `path, plan_id, parent_id, title, status, priority, hash, mtime`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*domain.IndexNode, error) {
	var node domain.IndexNode
	var planID, parentID sql.NullInt64
	var title, status, priority sql.NullString

	if err := row.Scan(&node.Path, &planID, &parentID, &title, &status, &priority, &node.Hash, &node.Mtime); err != nil {
		return nil, err
	}
	node.PlanID = int(planID.Int64)
	node.ParentID = int(parentID.Int64)
	node.Title = title.String
	node.Status = domain.Status(status.String)
	node.Priority = domain.Priority(priority.String)
	return &node, nil
}

// GetNode retrieves a node by relative path
func (idx *Index) GetNode(path string) (*domain.IndexNode, error) {
	node, err := scanNode(idx.db.QueryRow(`SELECT `+nodeColumns+` FROM nodes WHERE path = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return node, err
}

// GetNodeByID retrieves a node by plan id. With duplicate ids the
// lexically first path is returned.
func (idx *Index) GetNodeByID(planID int) (*domain.IndexNode, error) {
	node, err := scanNode(idx.db.QueryRow(`
		SELECT `+nodeColumns+` FROM nodes
		WHERE plan_id = ? ORDER BY path LIMIT 1
	`, planID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return node, err
}

// ListNodes returns every indexed plan ordered by id
func (idx *Index) ListNodes() ([]domain.IndexNode, error) {
	rows, err := idx.db.Query(`SELECT ` + nodeColumns + ` FROM nodes ORDER BY plan_id, path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []domain.IndexNode
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *node)
	}
	return nodes, rows.Err()
}

// FindReferencesTo returns all edges pointing at a plan id
func (idx *Index) FindReferencesTo(planID int) ([]domain.Edge, error) {
	return idx.queryEdges(`
		SELECT source_path, target_id, kind
		FROM edges WHERE target_id = ? ORDER BY source_path, kind
	`, planID)
}

// FindReferencesFrom returns all edges from a source file
func (idx *Index) FindReferencesFrom(sourcePath string) ([]domain.Edge, error) {
	return idx.queryEdges(`
		SELECT source_path, target_id, kind
		FROM edges WHERE source_path = ? ORDER BY kind DESC, target_id
	`, sourcePath)
}

func (idx *Index) queryEdges(query string, arg any) ([]domain.Edge, error) {
	rows, err := idx.db.Query(query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []domain.Edge
	for rows.Next() {
		var e domain.Edge
		var kind string
		if err := rows.Scan(&e.SourcePath, &e.TargetID, &kind); err != nil {
			return nil, err
		}
		e.Kind = domain.EdgeKind(kind)
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// BeginTx starts a new transaction
func (idx *Index) BeginTx() (ports.IndexTx, error) {
	return idx.begin()
}

func (idx *Index) begin() (*indexTx, error) {
	tx, err := idx.db.Begin()
	if err != nil {
		return nil, err
	}
	return &indexTx{tx: tx}, nil
}
