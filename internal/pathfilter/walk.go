package pathfilter

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
)

// WalkFunc is called for every included regular file. rel is slash-separated
// and relative to the walk root.
type WalkFunc func(rel string, entry fs.DirEntry) error

// Walk visits the included regular files under root in a deterministic
// order. Symlinks and other non-regular files are skipped. Excluded
// directories are not read unless a negated rule names a path below them.
func Walk(root string, rules *RuleSet, fn WalkFunc) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to stat bundle root %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", kerrors.ErrNotADirectory, root)
	}

	// Directories still to read, relative to root. "" is root itself.
	stack := []string{""}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(dir)))
		if err != nil {
			return fmt.Errorf("failed to read directory %s: %w", filepath.Join(root, filepath.FromSlash(dir)), err)
		}

		var subdirs []string
		for _, entry := range entries {
			rel := entry.Name()
			if dir != "" {
				rel = path.Join(dir, entry.Name())
			}

			switch {
			case entry.IsDir():
				if rules.Included(rel, true) || rules.negatedBelow(rel) {
					subdirs = append(subdirs, rel)
				}
			case entry.Type().IsRegular():
				if rules.Included(rel, false) {
					if err := fn(rel, entry); err != nil {
						return err
					}
				}
			}
		}

		// os.ReadDir sorts by name; push in reverse so subdirectories
		// are read in name order.
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}

	return nil
}
