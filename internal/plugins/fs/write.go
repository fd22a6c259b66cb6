package fs

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
)

// WriteTextArgs is the argument of write_text_file.
type WriteTextArgs struct {
	Path     string `json:"path"`
	Contents string `json:"contents"`
	Append   bool   `json:"append,omitempty"`
}

// WriteArgs is the argument of write_file. Data is base64 in JSON.
type WriteArgs struct {
	Path   string `json:"path"`
	Data   []byte `json:"data"`
	Append bool   `json:"append,omitempty"`
}

func (p *Plugin) writeTextFile(_ context.Context, a WriteTextArgs) (any, error) {
	return nil, p.write(a.Path, []byte(a.Contents), a.Append)
}

func (p *Plugin) writeFile(_ context.Context, a WriteArgs) (any, error) {
	return nil, p.write(a.Path, a.Data, a.Append)
}

// write replaces or appends to path while holding an exclusive lock keyed
// by the path. Replacement goes through a temp file and rename.
func (p *Plugin) write(path string, data []byte, appendMode bool) error {
	abs, err := p.scope.Resolve(path)
	if err != nil {
		return err
	}

	lock := flock.New(p.lockPath(abs))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire write lock: %w", err)
	}
	defer lock.Unlock()

	if appendMode {
		f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return fmt.Errorf("failed to append: %w", err)
		}
		return f.Close()
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(abs); err == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(abs), "."+filepath.Base(abs)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tmpPath, abs); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (p *Plugin) lockPath(abs string) string {
	h := fnv.New64a()
	h.Write([]byte(abs))
	return filepath.Join(p.lockDir, strconv.FormatUint(h.Sum64(), 16)+".lock")
}
