package server

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
	"syscall"
)

const indexFile = "index.html"

// serveStatic resolves the request path under the static root. Files are
// read on every request.
func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/")
	if name == "" || strings.HasSuffix(name, "/") {
		name += indexFile
	}
	if !fs.ValidPath(name) {
		s.notFound(w, r)
		return
	}

	f, info, err := s.openAsset(name)
	if err == nil && info.IsDir() {
		f.Close()
		f, info, err = s.openAsset(path.Join(name, indexFile))
	}
	if err != nil {
		if isNotFound(err) {
			s.notFound(w, r)
			return
		}
		s.logger.ErrorContext(r.Context(), "static: open asset", "path", name, "error", err)
		s.count(r, "error")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer f.Close()

	if !info.Mode().IsRegular() {
		s.notFound(w, r)
		return
	}

	s.count(r, "static")
	// ServeContent infers Content-Type from the extension, sniffing as a fallback.
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (s *Server) openAsset(name string) (*os.File, fs.FileInfo, error) {
	f, err := s.assets.Open(name)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.count(r, "not_found")
	http.NotFound(w, r)
}

// isNotFound reports errors that mean the asset is not there or not
// servable: a missing file, a file used as a directory, or a path os.Root
// refuses on its own, such as a symlink out of the root or an absolute
// link. Errors from the kernel (permissions, loops, I/O) are not included.
func isNotFound(err error) bool {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return true
	}
	var pathErr *fs.PathError
	var errno syscall.Errno
	return errors.As(err, &pathErr) && !errors.As(pathErr.Err, &errno)
}
