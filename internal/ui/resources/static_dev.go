//go:build dev

package resources

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
)

// staticDir is the static directory next to this source file, so dev
// builds pick up stylesheet edits without a rebuild.
func staticDir() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return StaticDirectoryPath
	}
	return filepath.Join(filepath.Dir(filename), "static")
}

// Handler serves the assets from the source tree.
func Handler() http.Handler {
	dir := staticDir()
	slog.Info("static assets served from filesystem", "path", dir)
	return http.StripPrefix("/static/", http.FileServer(http.FS(os.DirFS(dir))))
}
