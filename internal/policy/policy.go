// Package policy decides whether a caller-supplied path may be touched by
// an agent operation. It performs no I/O: containment is computed on
// lexically canonicalized paths, filename screening on the basename only,
// so both checks stay unit-testable as pure predicates.
package policy

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrMissingPath is returned when no path was supplied.
	ErrMissingPath = errors.New("path required")

	// ErrNameRejected is returned when the filename has an extension-like
	// suffix that matches no allowed file pattern.
	ErrNameRejected = errors.New("file name not allowed")

	// ErrPathRejected is returned when the path escapes every allowed
	// directory.
	ErrPathRejected = errors.New("path not allowed")
)

// Policy validates caller paths against an allowed-directory list and a
// filename pattern allow-list. Built once at startup, read-only afterwards.
type Policy struct {
	allowedDirs []string // canonicalized
	names       *NameMatcher
}

// New builds a Policy. Directories are canonicalized up front; patterns are
// compiled up front so a bad pattern fails startup, not a request.
func New(allowedDirs, filePatterns []string) (*Policy, error) {
	if len(allowedDirs) == 0 {
		return nil, errors.New("no allowed directories configured")
	}

	canonical := make([]string, 0, len(allowedDirs))
	for _, d := range allowedDirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed directory %q: %w", d, err)
		}
		canonical = append(canonical, abs)
	}

	names, err := NewNameMatcher(filePatterns)
	if err != nil {
		return nil, err
	}

	return &Policy{allowedDirs: canonical, names: names}, nil
}

// Resolve validates rawPath and returns it unchanged on success.
//
// The containment check runs on the canonicalized form to defeat ".."
// escapes, but the ORIGINAL caller string is what the operations hand to
// the filesystem afterwards. Where canonicalization and the OS call's own
// resolution diverge (symlinks, relative segments) the two can disagree;
// callers that want the hardened behavior should operate on
// filepath.Abs(path) themselves.
func (p *Policy) Resolve(rawPath string) (string, error) {
	if rawPath == "" {
		return "", ErrMissingPath
	}

	// Filename screening only applies to names carrying an extension-like
	// suffix. Bare names bypass the pattern list entirely.
	base := filepath.Base(rawPath)
	if strings.Contains(base, ".") && !p.names.Match(base) {
		return "", ErrNameRejected
	}

	canon, err := filepath.Abs(rawPath)
	if err != nil {
		return "", ErrPathRejected
	}

	for _, dir := range p.allowedDirs {
		if contains(dir, canon) {
			return rawPath, nil
		}
	}
	return "", ErrPathRejected
}

// AllowedDirs returns the canonicalized allowed directory list.
func (p *Policy) AllowedDirs() []string {
	return append([]string{}, p.allowedDirs...)
}

// contains reports whether path equals dir or is a strict descendant of it.
// The relative form must not start with a parent-traversal segment, must
// not be absolute, and must not carry a drive-letter-style colon segment
// (cross-drive escape on Windows paths).
func contains(dir, path string) bool {
	if path == dir {
		return true
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	if filepath.IsAbs(rel) {
		return false
	}
	if strings.Contains(rel, ":") {
		return false
	}
	return true
}
