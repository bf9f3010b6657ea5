package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrIncludeNotFound is returned when no search root holds an included file.
var ErrIncludeNotFound = errors.New("include file not found")

// Loader resolves include paths against an ordered list of directories and
// returns the file contents. It satisfies interpreter.Includer.
type Loader struct {
	roots []string
}

// NewLoader keeps the existing directories among roots, made absolute, in
// order and without duplicates.
func NewLoader(roots ...string) *Loader {
	seen := make(map[string]struct{})
	l := &Loader{}
	for _, root := range roots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		l.roots = append(l.roots, abs)
	}
	return l
}

// Roots returns the search directories in lookup order.
func (l *Loader) Roots() []string {
	return append([]string(nil), l.roots...)
}

// Include returns the contents of path. Absolute paths are read directly;
// relative ones are tried against each root in turn.
func (l *Loader) Include(path string) (string, error) {
	resolved, err := l.Resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", resolved, err)
	}
	return string(data), nil
}

// Resolve returns the file Include reads for path.
func (l *Loader) Resolve(path string) (string, error) {
	path = filepath.FromSlash(strings.TrimSpace(path))
	if path == "" {
		return "", fmt.Errorf("empty include path")
	}
	if filepath.IsAbs(path) {
		if isFile(path) {
			return filepath.Clean(path), nil
		}
		return "", fmt.Errorf("%s: %w", path, ErrIncludeNotFound)
	}
	for _, root := range l.roots {
		candidate := filepath.Join(root, path)
		if isFile(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s (searched %s): %w", path, strings.Join(l.roots, string(os.PathListSeparator)), ErrIncludeNotFound)
}

// ReadSource reads a program file.
func ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
