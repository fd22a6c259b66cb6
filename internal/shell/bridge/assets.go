package bridge

import (
	"bytes"
	"io/fs"
	"net/http"
	"path"
	"time"

	"github.com/hvacsim/hvacsim-desktop/internal/appctx"
)

// assetHandler serves the frontend from the manifest. Unknown paths without
// an extension fall back to index.html for client-side routing.
func assetHandler(assets fs.FS, manifest appctx.Manifest) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)[1:]
		if name == "" {
			name = appctx.IndexFile
		}

		asset, ok := manifest.Lookup(name)
		if !ok {
			if path.Ext(name) != "" {
				http.NotFound(w, r)
				return
			}
			asset, _ = manifest.Lookup(appctx.IndexFile)
		}

		data, err := fs.ReadFile(assets, asset.Path)
		if err != nil {
			http.Error(w, "asset unavailable", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", asset.MIME)
		w.Header().Set("ETag", `"`+asset.SHA256+`"`)
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeContent(w, r, asset.Path, time.Time{}, bytes.NewReader(data))
	})
}

func cspMiddleware(csp string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if csp != "" {
				w.Header().Set("Content-Security-Policy", csp)
			}
			next.ServeHTTP(w, r)
		})
	}
}
