package fs

import (
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob expands pattern into the regular files it matches, sorted. Patterns
// support ** for recursive matching. A pattern without glob metacharacters is
// returned as is when it names an existing file.
func Glob(pattern string) ([]string, error) {
	slashed := filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(slashed) {
		return nil, fmt.Errorf("fs: invalid glob pattern: %s", pattern)
	}

	if !hasMeta(slashed) {
		info, err := os.Stat(pattern)
		if err != nil {
			return nil, fmt.Errorf("fs: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("fs: %s is a directory", pattern)
		}
		return []string{pattern}, nil
	}

	base, rel := doublestar.SplitPattern(slashed)
	var matches []string
	err := doublestar.GlobWalk(os.DirFS(base), rel, func(path string, d iofs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		matches = append(matches, filepath.Join(filepath.FromSlash(base), filepath.FromSlash(path)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fs: %w", err)
	}
	slices.Sort(matches)
	return matches, nil
}

func hasMeta(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '*', '?', '[', '{', '\\':
			return true
		}
	}
	return false
}
