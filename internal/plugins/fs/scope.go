package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mitchellh/go-homedir"
)

// ErrForbidden is returned for paths outside the configured scope.
var ErrForbidden = errors.New("path not allowed by fs scope")

// Scope decides which absolute paths the web UI may touch.
type Scope struct {
	allow []glob.Glob
	deny  []glob.Glob
}

// NewScope compiles allow and deny patterns. Patterns are absolute paths,
// "~/..." paths, or start with a base directory variable such as "$APPDATA".
// "*" matches within one path segment and "**" across segments.
func NewScope(allow, deny []string, dirs BaseDirs) (*Scope, error) {
	s := &Scope{}
	for _, p := range allow {
		globs, err := compilePattern(p, dirs)
		if err != nil {
			return nil, err
		}
		s.allow = append(s.allow, globs...)
	}
	for _, p := range deny {
		globs, err := compilePattern(p, dirs)
		if err != nil {
			return nil, err
		}
		s.deny = append(s.deny, globs...)
	}
	return s, nil
}

// compilePattern returns the glob for pattern and, when the literal prefix
// of the pattern lives behind a symlink, a second glob for its resolved location.
func compilePattern(pattern string, dirs BaseDirs) ([]glob.Glob, error) {
	var prefix, rest string
	switch {
	case strings.HasPrefix(pattern, "$"):
		name, tail, _ := strings.Cut(pattern, "/")
		dir, ok := dirs[name]
		if !ok {
			return nil, fmt.Errorf("scope pattern %q: unknown base directory %s", pattern, name)
		}
		prefix, rest = dir, tail
	case strings.HasPrefix(pattern, "~"):
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("scope pattern %q: %w", pattern, err)
		}
		prefix, rest = home, strings.TrimLeft(strings.TrimPrefix(pattern, "~"), `/\`)
	case filepath.IsAbs(pattern):
		prefix, rest = splitStatic(pattern)
	default:
		return nil, fmt.Errorf("scope pattern %q is not absolute", pattern)
	}

	prefixes := []string{filepath.Clean(prefix)}
	if resolved, err := canonical(prefixes[0]); err == nil && resolved != prefixes[0] {
		prefixes = append(prefixes, resolved)
	}

	globs := make([]glob.Glob, 0, len(prefixes))
	for _, prefix := range prefixes {
		g, err := glob.Compile(globExpr(prefix, rest), '/')
		if err != nil {
			return nil, fmt.Errorf("scope pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// splitStatic splits an absolute pattern before its first segment holding
// glob syntax.
func splitStatic(pattern string) (string, string) {
	parts := strings.Split(filepath.ToSlash(pattern), "/")
	i := 1
	for i < len(parts) && !strings.ContainsAny(parts[i], `*?[]{}!\`) {
		i++
	}
	prefix := strings.Join(parts[:i], "/")
	if prefix == "" || strings.HasSuffix(prefix, ":") {
		prefix += "/"
	}
	return filepath.FromSlash(prefix), strings.Join(parts[i:], "/")
}

func globExpr(prefix, rest string) string {
	expr := glob.QuoteMeta(strings.TrimSuffix(filepath.ToSlash(prefix), "/"))
	if rest != "" {
		return expr + "/" + filepath.ToSlash(rest)
	}
	if expr == "" {
		return "/"
	}
	return expr
}

// canonical resolves the symlinks of abs. For paths that do not exist yet
// the nearest existing parent is resolved and the missing tail re-joined.
func canonical(abs string) (string, error) {
	dir, tail := abs, ""
	for {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(resolved, tail), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		if _, err := os.Lstat(dir); err == nil {
			return "", fmt.Errorf("%w: %s is a dangling symlink", ErrForbidden, dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		tail = filepath.Join(filepath.Base(dir), tail)
		dir = parent
	}
}

// Resolve cleans p into an absolute path and checks it against the scope.
// Paths that reach outside the scope through a symlink are rejected.
func (s *Scope) Resolve(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrForbidden)
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)
	if !s.Allowed(abs) {
		return "", fmt.Errorf("%w: %s", ErrForbidden, abs)
	}
	resolved, err := canonical(abs)
	if err != nil {
		return "", err
	}
	if resolved != abs && !s.Allowed(resolved) {
		return "", fmt.Errorf("%w: %s resolves to %s", ErrForbidden, abs, resolved)
	}
	return abs, nil
}

// Allowed reports whether the absolute path abs matches an allow pattern
// and no deny pattern.
func (s *Scope) Allowed(abs string) bool {
	if matchAny(s.deny, abs) {
		return false
	}
	return matchAny(s.allow, abs)
}

func matchAny(globs []glob.Glob, abs string) bool {
	p := filepath.ToSlash(abs)
	for _, g := range globs {
		if g.Match(p) || g.Match(p+"/") {
			return true
		}
	}
	return false
}
