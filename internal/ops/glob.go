package ops

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

// Expand returns the absolute paths under root whose root-relative,
// slash-separated form matches pattern. Patterns use gobwas/glob syntax
// with "/" as separator, so "*.zip" matches only direct children while
// "**/*.zip" descends. A missing root yields no matches, not an error.
func Expand(root, pattern string) ([]string, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var matches []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if g.Match(filepath.ToSlash(rel)) {
			matches = append(matches, path)
			if d.IsDir() {
				// The whole subtree goes with the directory.
				return filepath.SkipDir
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}
