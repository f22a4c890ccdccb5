package httpapi

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
)

const (
	cacheImmutable = "public, max-age=31536000, immutable"
	cacheNoCache   = "no-cache"
	cacheDefault   = "public, max-age=3600"
)

// StaticHandler serves the built single-page app. Extensionless misses fall
// back to the root index.html so client-side routes resolve.
type StaticHandler struct {
	root   string
	logger *logging.Logger
}

func NewStaticHandler(dir string, logger *logging.Logger) *StaticHandler {
	if logger == nil {
		logger = logging.Default()
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		root = filepath.Clean(dir)
	}
	return &StaticHandler{root: root, logger: logger}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	urlPath := r.URL.Path
	if !strings.HasPrefix(urlPath, "/") {
		urlPath = "/" + urlPath
	}
	if containsDotDot(urlPath) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	cleaned := path.Clean(urlPath)

	if file, ok := h.resolve(cleaned); ok {
		h.serveFile(w, r, file, cacheControlFor(cleaned, file))
		return
	}
	if path.Ext(cleaned) != "" {
		http.NotFound(w, r)
		return
	}

	index := filepath.Join(h.root, "index.html")
	if !isRegularFile(index) {
		h.logger.WarnContext(r.Context(), "static index is missing", "path", index)
		http.NotFound(w, r)
		return
	}
	h.serveFile(w, r, index, cacheNoCache)
}

// resolve maps a cleaned URL path to a file under root: the file itself, a
// directory index, or the same path with an .html extension.
func (h *StaticHandler) resolve(urlPath string) (string, bool) {
	target := filepath.Join(h.root, filepath.FromSlash(urlPath))
	if !h.within(target) {
		return "", false
	}

	info, err := os.Stat(target)
	switch {
	case err == nil && info.Mode().IsRegular():
		return target, true
	case err == nil && info.IsDir():
		index := filepath.Join(target, "index.html")
		if isRegularFile(index) {
			return index, true
		}
		return "", false
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return "", false
	}

	if path.Ext(urlPath) == "" && urlPath != "/" {
		withExt := target + ".html"
		if isRegularFile(withExt) {
			return withExt, true
		}
	}
	return "", false
}

func (h *StaticHandler) within(target string) bool {
	rel, err := filepath.Rel(h.root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (h *StaticHandler) serveFile(w http.ResponseWriter, r *http.Request, file, cacheControl string) {
	f, err := os.Open(file)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.logger.WarnContext(r.Context(), "stat static file failed", "path", file, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", cacheControl)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func cacheControlFor(urlPath, file string) string {
	switch {
	case strings.HasPrefix(urlPath, "/_next/static/"):
		return cacheImmutable
	case filepath.Base(file) == "index.html":
		return cacheNoCache
	default:
		return cacheDefault
	}
}

func containsDotDot(v string) bool {
	if !strings.Contains(v, "..") {
		return false
	}
	for _, part := range strings.FieldsFunc(v, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return true
		}
	}
	return false
}

func isRegularFile(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.Mode().IsRegular()
}
