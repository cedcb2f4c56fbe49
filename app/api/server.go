package api

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP engine with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	r := gin.New()

	// Exact paths only: "/refresh/" is not "/refresh"
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/", handler.GetDigest)

	page := routeName(handler.artifactPath)
	if page != "" {
		r.GET("/"+page, handler.GetDigest)
	}

	if name := routeName(handler.feedPath); name != "" && name != page {
		r.GET("/"+name, handler.GetFeed)
	}

	r.GET("/refresh", handler.Refresh)

	r.NoRoute(handler.NotFound)
}

// routeName returns the file name an artifact is served under, or "" when
// it cannot have its own route.
func routeName(path string) string {
	if path == "" {
		return ""
	}

	name := filepath.Base(path)
	switch name {
	case ".", "/", "refresh":
		return ""
	}
	return name
}
