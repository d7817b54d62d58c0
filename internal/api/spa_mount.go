package api

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/jroosing/bindzone/internal/api/models"
)

// MountUI serves a prebuilt single-page web UI from dir at /. Unknown paths
// outside /api fall back to index.html so client-side routes resolve; unknown
// /api paths answer with a JSON 404.
func MountUI(r *gin.Engine, dir string, logger *slog.Logger) {
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		logger.Warn("ui directory has no index.html, not serving ui", "dir", dir, "err", err)
		return
	}

	r.Use(static.Serve("/", static.LocalFile(dir, false)))

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found"})
			return
		}
		c.File(index)
	})
}
