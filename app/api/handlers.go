package api

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

const (
	digestNotFoundMessage = "News digest not found. Run the pipeline first to generate summaries."
	refreshMessage        = "Refresh triggered. Check the logs for updates."
	notFoundMessage       = "Not found"
)

// NewHandler serves the digest page at artifactPath. An empty feedPath
// disables the feed route.
func NewHandler(artifactPath, feedPath string, refresher Refresher) *Handler {
	return &Handler{
		artifactPath: artifactPath,
		feedPath:     feedPath,
		refresher:    refresher,
	}
}

// GetDigest serves the artifact as it is on disk at request time.
func (h *Handler) GetDigest(c *gin.Context) {
	serveFile(c, h.artifactPath, "text/html; charset=utf-8")
}

func (h *Handler) GetFeed(c *gin.Context) {
	serveFile(c, h.feedPath, "application/rss+xml; charset=utf-8")
}

func serveFile(c *gin.Context, path, contentType string) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		c.String(http.StatusNotFound, digestNotFoundMessage)
		return
	}
	if err != nil {
		slog.Error("Failed to read digest", "path", path, "error", err)
		c.String(http.StatusNotFound, digestNotFoundMessage)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, contentType, data)
}

func (h *Handler) Refresh(c *gin.Context) {
	if h.refresher.Trigger() {
		slog.Info("Refresh requested", "client", c.ClientIP())
	} else {
		slog.Debug("Refresh already pending", "client", c.ClientIP())
	}

	c.String(http.StatusOK, refreshMessage)
}

func (h *Handler) NotFound(c *gin.Context) {
	c.String(http.StatusNotFound, notFoundMessage)
}
