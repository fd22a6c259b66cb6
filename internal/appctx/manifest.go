package appctx

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"sort"

	"github.com/h2non/filetype"
)

// IndexFile is the entry document every web UI bundle must contain.
const IndexFile = "index.html"

// ErrNoIndex is returned when the frontend directory lacks an index document.
var ErrNoIndex = errors.New("frontend has no " + IndexFile)

// Asset describes one file of the web UI.
type Asset struct {
	Path   string `json:"path" yaml:"path" toml:"path"`
	Size   int64  `json:"size" yaml:"size" toml:"size"`
	MIME   string `json:"mime" yaml:"mime" toml:"mime"`
	SHA256 string `json:"sha256" yaml:"sha256" toml:"sha256"`
}

// Manifest is the generated index of the web UI, sorted by path.
type Manifest struct {
	assets []Asset
	index  map[string]int
}

// BuildManifest walks assets and records size, content type and digest of every file.
func BuildManifest(assets fs.FS) (Manifest, error) {
	m := Manifest{index: make(map[string]int)}

	err := fs.WalkDir(assets, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		data, err := fs.ReadFile(assets, p)
		if err != nil {
			return fmt.Errorf("failed to read asset %s: %w", p, err)
		}

		sum := sha256.Sum256(data)
		m.assets = append(m.assets, Asset{
			Path:   p,
			Size:   int64(len(data)),
			MIME:   DetectMIME(p, data),
			SHA256: hex.EncodeToString(sum[:]),
		})
		return nil
	})
	if err != nil {
		return Manifest{}, err
	}

	sort.Slice(m.assets, func(i, j int) bool { return m.assets[i].Path < m.assets[j].Path })
	for i, a := range m.assets {
		m.index[a.Path] = i
	}

	if _, ok := m.index[IndexFile]; !ok {
		return Manifest{}, ErrNoIndex
	}
	return m, nil
}

// DetectMIME returns the content type of an asset, preferring its extension,
// then magic-number sniffing, then net/http's sniffer.
func DetectMIME(name string, data []byte) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	return http.DetectContentType(data)
}

// Lookup returns the asset recorded for p.
func (m Manifest) Lookup(p string) (Asset, bool) {
	i, ok := m.index[p]
	if !ok {
		return Asset{}, false
	}
	return m.assets[i], true
}

// Assets returns a copy of all recorded assets.
func (m Manifest) Assets() []Asset {
	out := make([]Asset, len(m.assets))
	copy(out, m.assets)
	return out
}

// Len returns the number of assets.
func (m Manifest) Len() int {
	return len(m.assets)
}
