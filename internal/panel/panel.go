package panel

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNoIndex is returned when the directory has no index.html.
var ErrNoIndex = errors.New("panel: index.html not found")

const indexFile = "index.html"

// Handler returns an http.Handler serving the front end in dir.
//
// Parameters:
//   - dir: Directory holding the built front end (index.html and assets)
//
// Returns:
//   - http.Handler: Serves files with index.html fallback for client routes
//   - error: If dir is not a directory or lacks index.html
func Handler(dir string) (http.Handler, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("panel: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("panel: %s is not a directory", dir)
	}
	if _, err := os.Stat(filepath.Join(dir, indexFile)); err != nil {
		return nil, fmt.Errorf("%w in %s", ErrNoIndex, dir)
	}

	fileSystem := http.Dir(dir)
	fileServer := http.FileServer(fileSystem)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upath := path.Clean("/" + r.URL.Path)

		if upath == "/" || upath == "/"+indexFile {
			serveIndex(w, r, fileServer)
			return
		}

		if f, err := fileSystem.Open(upath); err == nil {
			info, statErr := f.Stat()
			f.Close() //nolint:errcheck // probe only
			// Directories get the app shell, never a listing.
			if statErr == nil && !info.IsDir() {
				fileServer.ServeHTTP(w, r)
				return
			}
			serveIndex(w, r, fileServer)
			return
		}

		// Unknown asset: a real 404, not the app shell.
		if path.Ext(upath) != "" || strings.HasPrefix(upath, "/.") {
			http.NotFound(w, r)
			return
		}
		serveIndex(w, r, fileServer)
	}), nil
}

func serveIndex(w http.ResponseWriter, r *http.Request, fileServer http.Handler) {
	w.Header().Set("Cache-Control", "no-cache, must-revalidate")
	r2 := r.Clone(r.Context())
	r2.URL.Path = "/"
	fileServer.ServeHTTP(w, r2)
}
