package filesystem

import (
	"bytes"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"plandeck/internal/domain"
)

// Keys added to an existing document go right after the last present key
// that precedes them here
var (
	planKeyOrder = []string{"id", "title", "goal", "details", "parent", "dependencies", "status", "priority", "createdAt", "updatedAt", "tasks"}
	taskKeyOrder = []string{"title", "description", "done"}
)

// splitLeadingComments separates the comment block at the top of a file
// from the YAML body that follows it
func splitLeadingComments(data []byte) (head, body []byte) {
	rest := data
	for len(rest) > 0 {
		line := rest
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line = rest[:i+1]
		}
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) > 0 && trimmed[0] != '#' {
			break
		}
		rest = rest[len(line):]
	}
	return data[:len(data)-len(rest)], rest
}

// patchSource rewrites only the fields of plan that differ from what its
// source decodes to. Unknown keys, comments and key order are kept.
func (r *Repository) patchSource(plan *domain.Plan) ([]byte, error) {
	orig, _, err := decode(plan.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to decode source of plan %d: %w", plan.ID, err)
	}
	head, body := splitLeadingComments(plan.Source)

	var doc yaml.Node
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse source of plan %d: %w", plan.ID, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("plan %d: source is not a mapping", plan.ID)
	}

	p := &docPatch{m: doc.Content[0], order: planKeyOrder}
	if plan.ID != orig.ID {
		p.setInt("id", plan.ID)
	}
	if plan.Title != orig.Title {
		p.setString("title", plan.Title)
	}
	if plan.Goal != orig.Goal {
		p.setString("goal", plan.Goal)
	}
	if plan.Details != orig.Details {
		p.setString("details", plan.Details)
	}
	if plan.Parent != orig.Parent {
		p.setInt("parent", plan.Parent)
	}
	if !slices.Equal(plan.Dependencies, orig.Dependencies) {
		if len(plan.Dependencies) == 0 {
			p.remove("dependencies")
		} else {
			p.set("dependencies", p.node(plan.Dependencies))
		}
	}
	if plan.Status != orig.Status {
		p.setString("status", string(plan.Status))
	}
	if plan.Priority != orig.Priority {
		p.setString("priority", string(plan.Priority))
	}
	if !plan.CreatedAt.Equal(orig.CreatedAt) {
		p.setString("createdAt", formatTime(plan.CreatedAt))
	}
	if !plan.UpdatedAt.Equal(orig.UpdatedAt) {
		p.setString("updatedAt", formatTime(plan.UpdatedAt))
	}
	if !slices.Equal(plan.Tasks, orig.Tasks) {
		p.patchTasks(plan.Tasks, orig.Tasks)
	}
	if p.err != nil {
		return nil, fmt.Errorf("failed to patch plan %d: %w", plan.ID, p.err)
	}

	var buf bytes.Buffer
	if r.schema != "" && !bytes.Contains(head, []byte(schemaPrefix)) {
		buf.WriteString(schemaPrefix + r.schema + "\n")
	}
	buf.Write(head)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to encode plan %d: %w", plan.ID, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode plan %d: %w", plan.ID, err)
	}
	return buf.Bytes(), nil
}

// docPatch edits one mapping node in place and keeps the first encoding error
type docPatch struct {
	m     *yaml.Node
	order []string
	err   error
}

func (p *docPatch) node(v any) *yaml.Node {
	var n yaml.Node
	if err := n.Encode(v); err != nil && p.err == nil {
		p.err = err
	}
	return &n
}

func (p *docPatch) lookup(key string) int {
	for i := 0; i+1 < len(p.m.Content); i += 2 {
		if p.m.Content[i].Value == key {
			return i
		}
	}
	return -1
}

func (p *docPatch) set(key string, val *yaml.Node) {
	if i := p.lookup(key); i >= 0 {
		old := p.m.Content[i+1]
		val.LineComment = old.LineComment
		if val.Kind == yaml.SequenceNode && old.Kind == yaml.SequenceNode {
			val.Style = old.Style
		}
		p.m.Content[i+1] = val
		return
	}

	pos := max(slices.Index(p.order, key), 0)
	at := -1
	for _, prev := range p.order[:pos] {
		if i := p.lookup(prev); i >= 0 && i+2 > at {
			at = i + 2
		}
	}
	if at < 0 {
		at = len(p.m.Content)
		for _, next := range p.order[pos+1:] {
			if i := p.lookup(next); i >= 0 {
				at = i
				break
			}
		}
	}
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	p.m.Content = slices.Insert(p.m.Content, at, keyNode, val)
}

func (p *docPatch) remove(key string) {
	if i := p.lookup(key); i >= 0 {
		p.m.Content = slices.Delete(p.m.Content, i, i+2)
	}
}

func (p *docPatch) setInt(key string, v int) {
	if v == 0 {
		p.remove(key)
		return
	}
	p.set(key, p.node(v))
}

func (p *docPatch) setString(key, v string) {
	if v == "" {
		p.remove(key)
		return
	}
	p.set(key, p.node(v))
}

// patchTasks updates task entries by position so per-task keys the model
// does not carry stay attached to their task
func (p *docPatch) patchTasks(tasks, orig []domain.Task) {
	if len(tasks) == 0 {
		p.remove("tasks")
		return
	}
	i := p.lookup("tasks")
	if i < 0 || p.m.Content[i+1].Kind != yaml.SequenceNode {
		p.set("tasks", p.node(toTaskDocuments(tasks)))
		return
	}

	seq := p.m.Content[i+1]
	for j, t := range tasks {
		if j >= len(seq.Content) || j >= len(orig) || seq.Content[j].Kind != yaml.MappingNode {
			n := p.node(taskDocument{Title: t.Title, Description: t.Description, Done: t.Done})
			if j < len(seq.Content) {
				seq.Content[j] = n
			} else {
				seq.Content = append(seq.Content, n)
			}
			continue
		}
		item := &docPatch{m: seq.Content[j], order: taskKeyOrder}
		if t.Title != orig[j].Title {
			item.setString("title", t.Title)
		}
		if t.Description != orig[j].Description {
			item.setString("description", t.Description)
		}
		if t.Done != orig[j].Done {
			item.set("done", item.node(t.Done))
		}
		if item.err != nil && p.err == nil {
			p.err = item.err
		}
	}
	seq.Content = seq.Content[:len(tasks)]
}
