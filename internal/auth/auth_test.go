package auth

import (
	"strings"
	"testing"
)

func TestAuthorityIsAuthorized(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		probe  string
		want   bool
	}{
		{
			name:   "known token",
			tokens: []string{"alpha", "bravo"},
			probe:  "alpha",
			want:   true,
		},
		{
			name:   "second token",
			tokens: []string{"alpha", "bravo"},
			probe:  "bravo",
			want:   true,
		},
		{
			name:   "unknown token",
			tokens: []string{"alpha", "bravo"},
			probe:  "charlie",
			want:   false,
		},
		{
			name:   "empty probe",
			tokens: []string{"alpha"},
			probe:  "",
			want:   false,
		},
		{
			name:   "case sensitive",
			tokens: []string{"alpha"},
			probe:  "Alpha",
			want:   false,
		},
		{
			name:   "no partial match",
			tokens: []string{"alphabet"},
			probe:  "alpha",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAuthority(tt.tokens)
			if got := a.IsAuthorized(tt.probe); got != tt.want {
				t.Errorf("IsAuthorized(%q) = %v, want %v", tt.probe, got, tt.want)
			}
		})
	}
}

func TestAuthorityCount(t *testing.T) {
	a := NewAuthority([]string{"a", "b", "b", ""})
	if got := a.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2 (duplicates and empties dropped)", got)
	}
}

func TestGenerateToken(t *testing.T) {
	tok, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if len(tok) < 32 {
		t.Errorf("token too short: %d chars", len(tok))
	}
	if strings.ContainsAny(tok, "+/=") {
		t.Errorf("token %q is not URL-safe", tok)
	}

	other, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if tok == other {
		t.Error("two generated tokens are identical")
	}
}

func TestGenerateTokenRejectsLowEntropy(t *testing.T) {
	if _, err := GenerateToken(8); err == nil {
		t.Error("expected error for 8 bytes of entropy")
	}
}
