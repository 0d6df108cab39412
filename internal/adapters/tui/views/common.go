package views

// ViewState holds the terminal size and the status line every view shows
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width, s.Height = width, height
}

// SetMessage replaces the status line; isErr renders it as an error
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message, s.MessageErr = msg, isErr
}

// StatusLine renders the status line, or "" when there is none
func (s *ViewState) StatusLine() string {
	return RenderMessage(s.Message, s.MessageErr)
}
