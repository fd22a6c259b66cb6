package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope(t *testing.T) {
	root := filepath.FromSlash("/srv/hvac")
	dirs := BaseDirs{
		"$APPDATA": filepath.Join(root, "data", "com.hvacsim.app"),
		"$TEMP":    filepath.Join(root, "tmp+[x]"),
	}

	s, err := NewScope(
		[]string{"$APPDATA/**", "$TEMP/*.csv", filepath.Join(root, "shared", "**")},
		[]string{"$APPDATA/secrets/**"},
		dirs,
	)
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{path: dirs["$APPDATA"], want: true},
		{path: filepath.Join(dirs["$APPDATA"], "plans", "a.json"), want: true},
		{path: filepath.Join(dirs["$APPDATA"], "secrets"), want: false},
		{path: filepath.Join(dirs["$APPDATA"], "secrets", "key"), want: false},
		{path: filepath.Join(dirs["$TEMP"], "run.csv"), want: true},
		{path: filepath.Join(dirs["$TEMP"], "nested", "run.csv"), want: false},
		{path: filepath.Join(root, "tmpx", "run.csv"), want: false},
		{path: filepath.Join(root, "shared", "report.pdf"), want: true},
		{path: filepath.Join(root, "data", "other.app", "a"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Allowed(tt.path))
		})
	}
}

func TestScopeResolveCleansPath(t *testing.T) {
	root := t.TempDir()
	s, err := NewScope([]string{filepath.Join(root, "**")}, nil, BaseDirs{})
	require.NoError(t, err)

	got, err := s.Resolve(filepath.Join(root, "a", "..", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "b.txt"), got)

	_, err = s.Resolve(filepath.Join(root, ".."))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestNewScopeErrors(t *testing.T) {
	_, err := NewScope([]string{"relative/**"}, nil, BaseDirs{})
	assert.ErrorContains(t, err, "is not absolute")

	_, err = NewScope([]string{"$MISSING/**"}, nil, BaseDirs{})
	assert.ErrorContains(t, err, "unknown base directory")
}

func TestResolveBaseDirs(t *testing.T) {
	dirs := ResolveBaseDirs("com.hvacsim.test")
	assert.NotEmpty(t, dirs["$TEMP"])
	if data, ok := dirs["$APPDATA"]; ok {
		assert.Equal(t, "com.hvacsim.test", filepath.Base(data))
	}
	if cfg, ok := dirs["$APPCONFIG"]; ok {
		assert.Equal(t, "com.hvacsim.test", filepath.Base(cfg))
	}
}

func TestScopeResolveFollowsSymlinks(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "inside")
	outside := filepath.Join(root, "outside")
	require.NoError(t, os.MkdirAll(filepath.Join(inside, "plans"), 0o755))
	require.NoError(t, os.MkdirAll(outside, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("x"), 0o600))

	links := map[string]string{
		"escape":   outside,
		"shortcut": filepath.Join(inside, "plans"),
		"dangling": filepath.Join(outside, "gone"),
	}
	for name, target := range links {
		if err := os.Symlink(target, filepath.Join(inside, name)); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
	}

	s, err := NewScope([]string{filepath.Join(inside, "**")}, nil, BaseDirs{})
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		ok   bool
	}{
		{name: "plain file", path: filepath.Join(inside, "plans", "a.json"), ok: true},
		{name: "link inside scope", path: filepath.Join(inside, "shortcut", "a.json"), ok: true},
		{name: "new file", path: filepath.Join(inside, "new", "deep", "a.json"), ok: true},
		{name: "existing file behind link", path: filepath.Join(inside, "escape", "secret.txt")},
		{name: "new file behind link", path: filepath.Join(inside, "escape", "planted.txt")},
		{name: "new dir behind link", path: filepath.Join(inside, "escape", "a", "b.txt")},
		{name: "link itself", path: filepath.Join(inside, "escape")},
		{name: "dangling link", path: filepath.Join(inside, "dangling")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Resolve(tt.path)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.path, got)
				return
			}
			assert.ErrorIs(t, err, ErrForbidden)
		})
	}
}

func TestScopeMatchesRealLocationOfBaseDir(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "real")
	require.NoError(t, os.MkdirAll(target, 0o755))
	alias := filepath.Join(root, "alias")
	if err := os.Symlink(target, alias); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	s, err := NewScope([]string{"$APPDATA/**"}, nil, BaseDirs{"$APPDATA": alias})
	require.NoError(t, err)

	got, err := s.Resolve(filepath.Join(alias, "plan.json"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(alias, "plan.json"), got)
	assert.True(t, s.Allowed(filepath.Join(target, "plan.json")))
}
