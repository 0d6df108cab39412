package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"plandeck/internal/domain"
	"plandeck/internal/ports"
)

const (
	// StateDir holds tool state inside the plans directory; it is never scanned
	StateDir = ".plandeck"

	schemaPrefix = "# yaml-language-server: $schema="
	filePerms    = 0644
)

// Repository implements ports.PlanStore using YAML files on disk
type Repository struct {
	root   string
	schema string
	logger *slog.Logger
}

// Ensure Repository implements PlanStore
var _ ports.PlanStore = (*Repository)(nil)

// Option configures a Repository
type Option func(*Repository)

// WithSchema makes every written file start with a yaml-language-server
// schema comment pointing at url
func WithSchema(url string) Option {
	return func(r *Repository) { r.schema = url }
}

// WithLogger sets the logger used to report skipped files
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// NewRepository creates a new filesystem repository rooted at plansDir
func NewRepository(plansDir string, opts ...Option) *Repository {
	if strings.HasPrefix(plansDir, "~") {
		home, _ := os.UserHomeDir()
		plansDir = filepath.Join(home, plansDir[1:])
	}
	if abs, err := filepath.Abs(plansDir); err == nil {
		plansDir = abs
	}
	r := &Repository{root: plansDir, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root returns the absolute plans directory
func (r *Repository) Root() string {
	return r.root
}

// Scan reads every plan file under the root in lexical path order.
// Files that fail to parse are logged and skipped. An unreadable root is an error.
func (r *Repository) Scan() ([]domain.PlanFile, error) {
	info, err := os.Stat(r.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read plans directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("failed to read plans directory: %s is not a directory", r.root)
	}

	var files []domain.PlanFile
	err = filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == r.root {
				return err
			}
			r.logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != r.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !domain.IsPlanFile(d.Name()) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			r.logger.Warn("skipping unreadable plan file", "path", path, "error", err)
			return nil
		}
		plan, rawID, err := decode(data)
		if err != nil {
			r.logger.Warn("skipping malformed plan file", "path", path, "error", err)
			return nil
		}
		plan.Filename = path
		plan.Source = data
		files = append(files, domain.PlanFile{Path: path, RawID: rawID, Plan: plan})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan plans directory: %w", err)
	}
	return files, nil
}

// ReadAll scans the root and collapses it into a PlanSet
func (r *Repository) ReadAll() (*domain.PlanSet, error) {
	files, err := r.Scan()
	if err != nil {
		return nil, err
	}
	return domain.NewPlanSet(files), nil
}

// ReadFile parses a single plan file
func (r *Repository) ReadFile(path string) (*domain.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	plan, _, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	plan.Filename = path
	plan.Source = data
	return plan, nil
}

// WriteFile atomically writes plan to path, creating parent directories
func (r *Repository) WriteFile(path string, plan *domain.Plan) error {
	data, err := r.Encode(plan)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// Encode serializes a plan. A plan read from disk is patched into its
// source document; a new plan is written with a stable key order.
func (r *Repository) Encode(plan *domain.Plan) ([]byte, error) {
	if len(plan.Source) > 0 {
		return r.patchSource(plan)
	}
	doc := toDocument(plan)

	var buf bytes.Buffer
	if r.schema != "" {
		buf.WriteString(schemaPrefix + r.schema + "\n")
	}
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode plan %d: %w", plan.ID, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode plan %d: %w", plan.ID, err)
	}
	return buf.Bytes(), nil
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	_, statErr := os.Stat(path)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	// atomic.WriteFile doesn't set permissions for new files
	if errors.Is(statErr, fs.ErrNotExist) {
		if err := os.Chmod(path, filePerms); err != nil {
			return fmt.Errorf("failed to set file permissions: %w", err)
		}
	}
	return nil
}

// planID keeps the id token as written so absent or malformed ids survive decoding
type planID struct {
	Raw   string
	Value int
}

func (p *planID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: id must be a scalar", node.Line)
	}
	p.Raw = strings.TrimSpace(node.Value)
	if n, err := strconv.Atoi(p.Raw); err == nil && n > 0 {
		p.Value = n
	}
	return nil
}

func (p planID) MarshalYAML() (any, error) {
	return p.Value, nil
}

func (p planID) IsZero() bool {
	return p.Value == 0
}

type taskDocument struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Done        bool   `yaml:"done"`
}

// document mirrors the on-disk layout; field order is the key order
type document struct {
	ID           planID         `yaml:"id,omitempty"`
	Title        string         `yaml:"title,omitempty"`
	Goal         string         `yaml:"goal,omitempty"`
	Details      string         `yaml:"details,omitempty"`
	Parent       int            `yaml:"parent,omitempty"`
	Dependencies []int          `yaml:"dependencies,omitempty"`
	Status       string         `yaml:"status,omitempty"`
	Priority     string         `yaml:"priority,omitempty"`
	CreatedAt    string         `yaml:"createdAt,omitempty"`
	UpdatedAt    string         `yaml:"updatedAt,omitempty"`
	Tasks        []taskDocument `yaml:"tasks,omitempty"`
}

func decode(data []byte) (*domain.Plan, string, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, "", err
	}

	status, err := domain.ParseStatus(doc.Status)
	if err != nil {
		return nil, "", err
	}
	priority, err := domain.ParsePriority(doc.Priority)
	if err != nil {
		return nil, "", err
	}
	created, err := parseTime(doc.CreatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("createdAt: %w", err)
	}
	updated, err := parseTime(doc.UpdatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("updatedAt: %w", err)
	}

	plan := &domain.Plan{
		ID:           doc.ID.Value,
		Title:        doc.Title,
		Goal:         doc.Goal,
		Details:      doc.Details,
		Parent:       doc.Parent,
		Dependencies: doc.Dependencies,
		Status:       status,
		Priority:     priority,
		CreatedAt:    created,
		UpdatedAt:    updated,
	}
	for _, t := range doc.Tasks {
		plan.Tasks = append(plan.Tasks, domain.Task{Title: t.Title, Description: t.Description, Done: t.Done})
	}
	return plan, doc.ID.Raw, nil
}

func toDocument(p *domain.Plan) document {
	doc := document{
		ID:           planID{Value: p.ID},
		Title:        p.Title,
		Goal:         p.Goal,
		Details:      p.Details,
		Parent:       p.Parent,
		Dependencies: p.Dependencies,
		Status:       string(p.Status),
		Priority:     string(p.Priority),
		CreatedAt:    formatTime(p.CreatedAt),
		UpdatedAt:    formatTime(p.UpdatedAt),
		Tasks:        toTaskDocuments(p.Tasks),
	}
	return doc
}

func toTaskDocuments(tasks []domain.Task) []taskDocument {
	var docs []taskDocument
	for _, t := range tasks {
		docs = append(docs, taskDocument{Title: t.Title, Description: t.Description, Done: t.Done})
	}
	return docs
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
