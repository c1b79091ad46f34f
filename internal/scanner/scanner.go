package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"path/filepath"

	"go.uber.org/zap"
)

var errStopWalk = errors.New("scanner: walk stopped")

// Scanner lists the files of a host project directory.
type Scanner struct {
	root string
	opts FilterOptions
	log  *zap.Logger
}

// New creates a Scanner rooted at root. Directories named in opts.ExcludeDirs
// are not descended into; opts.Patterns restricts the yielded files.
func New(root string, opts FilterOptions, log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{root: root, opts: opts, log: log}
}

// Root returns the directory the scanner walks.
func (s *Scanner) Root() string { return s.root }

// Walk lazily yields the root-relative, forward-slash path of every regular
// file under the root, in directory order. An unreadable directory yields its
// error and ends the sequence: a partial listing would silently drop files.
func (s *Scanner) Walk() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if d.IsDir() {
				if path != s.root && isExcludedDir(d.Name(), s.opts.ExcludeDirs) {
					s.log.Debug("scanner: skipping directory", zap.String("path", path))
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			rel, err := filepath.Rel(s.root, path)
			if err != nil {
				return fmt.Errorf("relativizing %s: %w", path, err)
			}
			rel = filepath.ToSlash(rel)
			if !matchesPattern(rel, s.opts.Patterns) {
				return nil
			}
			if !yield(rel, nil) {
				return errStopWalk
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopWalk) {
			yield("", err)
		}
	}
}

// Files collects Walk into a slice sorted byte-wise.
func (s *Scanner) Files() ([]string, error) {
	var out []string
	for path, err := range s.Walk() {
		if err != nil {
			return nil, err
		}
		out = append(out, path)
	}
	return FilterFiles(out, FilterOptions{}), nil
}

// ScenarioFiles returns the sorted root-relative paths of all scenario
// descriptors under root.
func ScenarioFiles(root string, log *zap.Logger) ([]string, error) {
	return New(root, ScenarioFilter(), log).Files()
}
