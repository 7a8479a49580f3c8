package handlers

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/charlesng35/usercache/pkg/errors"
	"github.com/charlesng35/usercache/pkg/response"
)

// StaticHandler serves files below a public directory for requests no route matched.
type StaticHandler struct {
	files fs.FS
}

func NewStaticHandler(publicDir string) *StaticHandler {
	return &StaticHandler{files: os.DirFS(publicDir)}
}

// NewStaticHandlerFS serves files from an arbitrary filesystem.
func NewStaticHandlerFS(files fs.FS) *StaticHandler {
	return &StaticHandler{files: files}
}

// Serve answers GET and HEAD with the matching file, or the index.html of a
// matching directory. Everything else is a JSON 404.
func (h *StaticHandler) Serve(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		response.Error(c, apperrors.ErrNotFound)
		return
	}

	name, file, info, err := h.open(c.Request.URL.Path)
	if err != nil {
		response.Error(c, apperrors.ErrNotFound)
		return
	}
	defer file.Close()

	content, ok := file.(io.ReadSeeker)
	if !ok {
		response.Error(c, apperrors.ErrInternalServer)
		return
	}
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), content)
}

func (h *StaticHandler) open(urlPath string) (string, fs.File, fs.FileInfo, error) {
	if h == nil || h.files == nil {
		return "", nil, nil, fs.ErrNotExist
	}

	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		name = "."
	}
	if !fs.ValidPath(name) {
		return "", nil, nil, fs.ErrInvalid
	}

	file, info, err := openRegular(h.files, name)
	if errors.Is(err, errIsDir) {
		name = path.Join(name, "index.html")
		file, info, err = openRegular(h.files, name)
	}
	if err != nil {
		return "", nil, nil, err
	}
	return name, file, info, nil
}

var errIsDir = errors.New("is a directory")

func openRegular(files fs.FS, name string) (fs.File, fs.FileInfo, error) {
	file, err := files.Open(name)
	if err != nil {
		return nil, nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, nil, errIsDir
	}
	if !info.Mode().IsRegular() {
		file.Close()
		return nil, nil, fs.ErrNotExist
	}
	return file, info, nil
}
