package appctx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"sort"

	"github.com/h2non/filetype"
)

// Icon is a packaged PNG application icon.
type Icon struct {
	Path   string
	Width  int
	Height int
	data   []byte
}

// Data returns a copy of the encoded PNG bytes.
func (i Icon) Data() []byte {
	return bytes.Clone(i.data)
}

func loadIcons(bundle fs.FS, paths []string) ([]Icon, error) {
	icons := make([]Icon, 0, len(paths))
	for _, p := range paths {
		data, err := fs.ReadFile(bundle, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read icon %s: %w", p, err)
		}
		if !filetype.Is(data, "png") {
			return nil, fmt.Errorf("icon %s is not a PNG image", p)
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode icon %s: %w", p, err)
		}
		icons = append(icons, Icon{Path: p, Width: cfg.Width, Height: cfg.Height, data: data})
	}
	sort.SliceStable(icons, func(i, j int) bool {
		return icons[i].Width*icons[i].Height > icons[j].Width*icons[j].Height
	})
	return icons, nil
}

// LargestIcon returns the largest icon, or false when none are packaged.
func (c *Context) LargestIcon() (Icon, bool) {
	if len(c.icons) == 0 {
		return Icon{}, false
	}
	return c.icons[0], true
}
