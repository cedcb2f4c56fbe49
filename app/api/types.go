package api

import (
	"github.com/lysyi3m/news-digest/app/tasks"
)

// Refresher starts a pipeline run without waiting for it.
type Refresher interface {
	Trigger() bool
}

var _ Refresher = (*tasks.Scheduler)(nil)

type Handler struct {
	artifactPath string
	feedPath     string
	refresher    Refresher
}
