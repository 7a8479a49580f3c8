package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/usercache/pkg/logger"
	"github.com/charlesng35/usercache/pkg/response"
)

const landingTemplate = "index.html"

// LandingHandler serves the landing page template.
type LandingHandler struct {
	path string
}

func NewLandingHandler(templatesDir string) *LandingHandler {
	return &LandingHandler{path: filepath.Join(templatesDir, landingTemplate)}
}

// GET /
// The template is read on every request so edits show up without a restart.
func (h *LandingHandler) Index(c *gin.Context) {
	body, err := os.ReadFile(h.path)
	if err != nil {
		logger.WithModule("handlers").Error("read landing template failed",
			zap.String("path", h.path),
			zap.Error(err),
		)
		response.Text(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}
