package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// PathArgs is the argument of single-path commands.
type PathArgs struct {
	Path      string `json:"path"`
	Recursive bool   `json:"recursive,omitempty"`
}

// MoveArgs is the argument of rename and copy_file.
type MoveArgs struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DirEntry is one read_dir result.
type DirEntry struct {
	Name        string `json:"name"`
	IsDirectory bool   `json:"isDirectory"`
	IsFile      bool   `json:"isFile"`
	IsSymlink   bool   `json:"isSymlink"`
}

// FileInfo is the stat result.
type FileInfo struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	IsDirectory bool      `json:"isDirectory"`
	IsFile      bool      `json:"isFile"`
	IsSymlink   bool      `json:"isSymlink"`
	Mode        uint32    `json:"mode"`
	ModifiedAt  time.Time `json:"modifiedAt"`
}

func (p *Plugin) readTextFile(_ context.Context, a PathArgs) (string, error) {
	data, err := p.read(a.Path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readFile returns raw bytes, which the IPC layer encodes as base64.
func (p *Plugin) readFile(_ context.Context, a PathArgs) ([]byte, error) {
	return p.read(a.Path)
}

func (p *Plugin) read(path string) ([]byte, error) {
	abs, err := p.scope.Resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (p *Plugin) readDir(_ context.Context, a PathArgs) ([]DirEntry, error) {
	abs, err := p.scope.Resolve(a.Path)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, DirEntry{
			Name:        e.Name(),
			IsDirectory: e.IsDir(),
			IsFile:      e.Type().IsRegular(),
			IsSymlink:   e.Type()&fs.ModeSymlink != 0,
		})
	}
	return out, nil
}

func (p *Plugin) mkdir(_ context.Context, a PathArgs) (any, error) {
	abs, err := p.scope.Resolve(a.Path)
	if err != nil {
		return nil, err
	}
	if a.Recursive {
		err = os.MkdirAll(abs, 0o755)
	} else {
		err = os.Mkdir(abs, 0o755)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return nil, nil
}

func (p *Plugin) remove(_ context.Context, a PathArgs) (any, error) {
	abs, err := p.scope.Resolve(a.Path)
	if err != nil {
		return nil, err
	}
	if a.Recursive {
		if _, err := os.Lstat(abs); err != nil {
			return nil, fmt.Errorf("failed to remove: %w", err)
		}
		err = os.RemoveAll(abs)
	} else {
		err = os.Remove(abs)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove: %w", err)
	}
	return nil, nil
}

func (p *Plugin) rename(_ context.Context, a MoveArgs) (any, error) {
	from, to, err := p.resolvePair(a)
	if err != nil {
		return nil, err
	}
	if err := os.Rename(from, to); err != nil {
		return nil, fmt.Errorf("failed to rename: %w", err)
	}
	return nil, nil
}

func (p *Plugin) copyFile(_ context.Context, a MoveArgs) (any, error) {
	from, to, err := p.resolvePair(a)
	if err != nil {
		return nil, err
	}

	src, err := os.Open(from)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat source: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("failed to copy: %s is a directory", from)
	}

	dst, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return nil, fmt.Errorf("failed to create destination: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return nil, fmt.Errorf("failed to copy: %w", err)
	}
	if err := dst.Close(); err != nil {
		return nil, fmt.Errorf("failed to copy: %w", err)
	}
	return nil, nil
}

func (p *Plugin) resolvePair(a MoveArgs) (string, string, error) {
	from, err := p.scope.Resolve(a.From)
	if err != nil {
		return "", "", err
	}
	to, err := p.scope.Resolve(a.To)
	if err != nil {
		return "", "", err
	}
	return from, to, nil
}

func (p *Plugin) exists(_ context.Context, a PathArgs) (bool, error) {
	abs, err := p.scope.Resolve(a.Path)
	if err != nil {
		return false, err
	}
	_, err = os.Lstat(abs)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat: %w", err)
	}
}

func (p *Plugin) stat(_ context.Context, a PathArgs) (FileInfo, error) {
	abs, err := p.scope.Resolve(a.Path)
	if err != nil {
		return FileInfo{}, err
	}
	info, err := os.Lstat(abs)
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to stat: %w", err)
	}
	return FileInfo{
		Name:        filepath.Base(abs),
		Size:        info.Size(),
		IsDirectory: info.IsDir(),
		IsFile:      info.Mode().IsRegular(),
		IsSymlink:   info.Mode()&fs.ModeSymlink != 0,
		Mode:        uint32(info.Mode().Perm()),
		ModifiedAt:  info.ModTime(),
	}, nil
}
