package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"

	"plandeck/internal/ports"
)

// System implements ports.Clipboard with the OS clipboard
type System struct{}

// Ensure System implements Clipboard
var _ ports.Clipboard = (*System)(nil)

// NewSystem creates a clipboard backed by the OS
func NewSystem() *System {
	return &System{}
}

// Copy places text on the clipboard
func (s *System) Copy(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not supported on this system")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
