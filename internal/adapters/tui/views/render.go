package views

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"plandeck/internal/adapters/tui/styles"
	"plandeck/internal/domain"
)

// RenderKeyHelp formats a key binding as help text (key + description)
func RenderKeyHelp(b key.Binding) string {
	help := b.Help()
	return fmt.Sprintf("%s %s",
		styles.HelpKey.Render(help.Key),
		styles.HelpDesc.Render(help.Desc),
	)
}

// RenderHelpLine renders multiple key bindings as a help line separated by bullets
func RenderHelpLine(bindings ...key.Binding) string {
	var parts []string
	for _, b := range bindings {
		parts = append(parts, RenderKeyHelp(b))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// RenderMessage renders a message with appropriate styling based on isError
func RenderMessage(message string, isError bool) string {
	if message == "" {
		return ""
	}
	if isError {
		return styles.ErrorMsg.Render(message)
	}
	return styles.Success.Render(message)
}

// RenderChange renders one rewritten file: the id move, the path move if
// any, and the references that changed.
func RenderChange(root string, c domain.FileChange) string {
	var b strings.Builder

	if c.IDChanged() {
		fmt.Fprintf(&b, "%s%s%s  ",
			styles.PlanID.Render(idLabel(c.Original.ID)),
			styles.Arrow.String(),
			styles.PlanID.Render(idLabel(c.Updated.ID)))
	} else {
		fmt.Fprintf(&b, "%s  ", styles.PlanID.Render(idLabel(c.Updated.ID)))
	}
	b.WriteString(c.Updated.Title)
	if c.Original.Status != c.Updated.Status {
		fmt.Fprintf(&b, "  [%s]", styles.Status(c.Updated.Status))
	}
	b.WriteString("\n")

	oldRel := relPath(root, c.OriginalPath)
	if c.IsRename() {
		fmt.Fprintf(&b, "  %s%s%s\n",
			styles.PathOld.Render(oldRel),
			styles.Arrow.String(),
			styles.PathNew.Render(relPath(root, c.TargetPath)))
	} else {
		fmt.Fprintf(&b, "  %s\n", styles.MutedText.Render(oldRel))
	}

	if c.Original.Parent != c.Updated.Parent {
		fmt.Fprintf(&b, "  %s\n", styles.MutedText.Render(
			fmt.Sprintf("parent %d → %d", c.Original.Parent, c.Updated.Parent)))
	}
	if deps := depsDiff(c.Original.Dependencies, c.Updated.Dependencies); deps != "" {
		fmt.Fprintf(&b, "  %s\n", styles.MutedText.Render(deps))
	}
	return b.String()
}

func idLabel(id int) string {
	if id == 0 {
		return "?"
	}
	return fmt.Sprintf("%d", id)
}

func depsDiff(before, after []int) string {
	if len(before) != len(after) {
		return ""
	}
	var moved []string
	for i := range before {
		if before[i] != after[i] {
			moved = append(moved, fmt.Sprintf("%d → %d", before[i], after[i]))
		}
	}
	if len(moved) == 0 {
		return ""
	}
	return "dependencies " + strings.Join(moved, ", ")
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
