package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// PlanExtensions lists the file extensions recognised as plan files
var PlanExtensions = []string{".yml", ".yaml"}

var (
	idPrefixRegex = regexp.MustCompile(`^([0-9]+)-`)
	slugRegex     = regexp.MustCompile(`[^a-z0-9]+`)
)

// IsPlanFile reports whether a filename has a plan extension
func IsPlanFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range PlanExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ExtractID extracts the numeric id prefix from a file or directory name
// e.g., "12-add-login.yml" -> 12, true
func ExtractID(name string) (int, bool) {
	m := idPrefixRegex.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ReplaceIDPrefix swaps a leading "{oldID}-" for "{newID}-".
// Names that do not start with oldID are returned unchanged.
func ReplaceIDPrefix(name string, oldID, newID int) (string, bool) {
	id, ok := ExtractID(name)
	if !ok || id != oldID {
		return name, false
	}
	prefix := strconv.Itoa(oldID) + "-"
	return strconv.Itoa(newID) + "-" + strings.TrimPrefix(name, prefix), true
}

// Slugify turns a title into a lowercase, dash separated slug
func Slugify(title string) string {
	s := slugRegex.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-")
	}
	if s == "" {
		return "plan"
	}
	return s
}

// FormatFilename creates a plan filename from id and title
func FormatFilename(id int, title string) string {
	return fmt.Sprintf("%d-%s.yml", id, Slugify(title))
}

// RenamePath computes the new relative path of a plan whose id and/or parent changed.
// The base name is rewritten when it starts with the original id, and any directory
// segment starting with the original parent id is rewritten when the parent changed.
func RenamePath(relPath string, oldID, newID, oldParent, newParent int) string {
	dir, base := filepath.Split(filepath.Clean(relPath))

	if oldID > 0 && oldID != newID {
		base, _ = ReplaceIDPrefix(base, oldID, newID)
	}

	if oldParent > 0 && newParent > 0 && oldParent != newParent && dir != "" {
		segments := strings.Split(filepath.Clean(dir), string(filepath.Separator))
		for i, seg := range segments {
			if renamed, ok := ReplaceIDPrefix(seg, oldParent, newParent); ok {
				segments[i] = renamed
			}
		}
		dir = filepath.Join(segments...)
		if strings.HasPrefix(relPath, string(filepath.Separator)) {
			dir = string(filepath.Separator) + dir
		}
	}

	return filepath.Join(dir, base)
}

// WithinRoot reports whether target resolves inside root
func WithinRoot(root, target string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absTarget)
	if err != nil {
		return false
	}
	if rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
