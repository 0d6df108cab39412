package editor

import (
	"errors"
	"slices"
	"testing"
)

func TestCommand_EditorSelection(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		onPath   []string
		wantArgs []string
		wantErr  bool
	}{
		{
			name:     "plandeck editor wins",
			env:      map[string]string{"PLANDECK_EDITOR": "hx", "EDITOR": "vim"},
			wantArgs: []string{"hx", "/p/1-a.yml"},
		},
		{
			name:     "editor with arguments",
			env:      map[string]string{"EDITOR": "code --wait"},
			wantArgs: []string{"code", "--wait", "/p/1-a.yml"},
		},
		{
			name:     "visual before editor",
			env:      map[string]string{"VISUAL": "emacs", "EDITOR": "vim"},
			wantArgs: []string{"emacs", "/p/1-a.yml"},
		},
		{
			name:     "fallback to path lookup",
			onPath:   []string{"nano"},
			wantArgs: []string{"/usr/bin/nano", "/p/1-a.yml"},
		},
		{
			name:    "nothing available",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Opener{
				getenv: func(k string) string { return tt.env[k] },
				lookPath: func(name string) (string, error) {
					if slices.Contains(tt.onPath, name) {
						return "/usr/bin/" + name, nil
					}
					return "", errors.New("not found")
				},
			}

			cmd, err := o.Command("/p/1-a.yml")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(cmd.Args, tt.wantArgs) {
				t.Errorf("expected args %v, got %v", tt.wantArgs, cmd.Args)
			}
		})
	}
}
