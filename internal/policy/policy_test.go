package policy

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		dirs     []string
		patterns []string
		wantErr  bool
	}{
		{
			name:     "valid dirs and patterns",
			dirs:     []string{"/data"},
			patterns: []string{"*.zip"},
			wantErr:  false,
		},
		{
			name:     "no dirs",
			dirs:     []string{},
			patterns: []string{"*.zip"},
			wantErr:  true,
		},
		{
			name:     "invalid pattern",
			dirs:     []string{"/data"},
			patterns: []string{"[invalid"},
			wantErr:  true,
		},
		{
			name:     "multiple dirs",
			dirs:     []string{"/data", "/srv/files"},
			patterns: []string{"*.zip", "*.{tar,tar.gz}"},
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.dirs, tt.patterns)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveContainment(t *testing.T) {
	tests := []struct {
		name    string
		dirs    []string
		path    string
		wantErr error
	}{
		{
			name: "direct child",
			dirs: []string{"/data"},
			path: "/data/a.zip",
		},
		{
			name: "nested descendant",
			dirs: []string{"/data"},
			path: "/data/sub/deep/a.zip",
		},
		{
			name: "path equals allowed dir",
			dirs: []string{"/data"},
			path: "/data",
		},
		{
			name: "second allowed dir",
			dirs: []string{"/data", "/srv/files"},
			path: "/srv/files/a.zip",
		},
		{
			name:    "outside every dir",
			dirs:    []string{"/data"},
			path:    "/etc/passwd.zip",
			wantErr: ErrPathRejected,
		},
		{
			name:    "parent traversal escape",
			dirs:    []string{"/data"},
			path:    "/data/../etc/shadow.zip",
			wantErr: ErrPathRejected,
		},
		{
			name:    "parent of allowed dir",
			dirs:    []string{"/data/sub"},
			path:    "/data",
			wantErr: ErrPathRejected,
		},
		{
			name:    "sibling with shared prefix",
			dirs:    []string{"/data"},
			path:    "/database/a.zip",
			wantErr: ErrPathRejected,
		},
		{
			name: "traversal that stays inside",
			dirs: []string{"/data"},
			path: "/data/sub/../a.zip",
		},
		{
			name:    "empty path",
			dirs:    []string{"/data"},
			path:    "",
			wantErr: ErrMissingPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.dirs, []string{"*"})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			got, err := p.Resolve(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Resolve(%q) error = %v, want %v", tt.path, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("Resolve(%q) unexpected error: %v", tt.path, err)
				return
			}
			if got != tt.path {
				t.Errorf("Resolve(%q) = %q, want the original string back", tt.path, got)
			}
		})
	}
}

func TestResolveNameScreening(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		wantErr  error
	}{
		{
			name:     "matching extension",
			patterns: []string{"*.zip"},
			path:     "/data/a.zip",
		},
		{
			name:     "non-matching extension",
			patterns: []string{"*.zip"},
			path:     "/data/a.exe",
			wantErr:  ErrNameRejected,
		},
		{
			name:     "no dot bypasses patterns",
			patterns: []string{"*.zip"},
			path:     "/data/README",
		},
		{
			name:     "directory path without dot bypasses patterns",
			patterns: []string{"*.zip"},
			path:     "/data/sub",
		},
		{
			name:     "brace alternation",
			patterns: []string{"*.{zip,tar.gz}"},
			path:     "/data/a.tar.gz",
		},
		{
			name:     "dotfile must match patterns",
			patterns: []string{"*.zip"},
			path:     "/data/.env",
			wantErr:  ErrNameRejected,
		},
		{
			name:     "screening inspects basename only",
			patterns: []string{"*.zip"},
			path:     "/data/a.exe.dir/b.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New([]string{"/data"}, tt.patterns)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			_, err = p.Resolve(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Resolve(%q) error = %v, want %v", tt.path, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("Resolve(%q) unexpected error: %v", tt.path, err)
			}
		})
	}
}

func TestNameMatcher(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		probe    string
		want     bool
	}{
		{"simple wildcard", []string{"*.zip"}, "a.zip", true},
		{"wrong extension", []string{"*.zip"}, "a.rar", false},
		{"empty patterns match nothing", []string{}, "a.zip", false},
		{"brace alternation hit", []string{"*.{zip,rar}"}, "b.rar", true},
		{"brace alternation miss", []string{"*.{zip,rar}"}, "b.7z", false},
		{"question mark", []string{"save?.dat"}, "save1.dat", true},
		{"multiple patterns", []string{"*.zip", "*.log"}, "x.log", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewNameMatcher(tt.patterns)
			if err != nil {
				t.Fatalf("NewNameMatcher: %v", err)
			}
			if got := m.Match(tt.probe); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.probe, got, tt.want)
			}
		})
	}
}
