package scheduler

import (
	"fmt"
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/Madhu097/foodremainder-sub000/internal/api/respond"
)

// controller is the slice of the scheduler the handler drives.
type controller interface {
	Start() error
	Stop()
	Running() bool
	Spec() string
}

// Handler exposes the sweep scheduler state over HTTP.
type Handler struct {
	scheduler controller
}

func NewHandler(s controller) *Handler {
	return &Handler{scheduler: s}
}

// Status reports whether the scheduler is running and on what spec.
func (h *Handler) Status(c *ginext.Context) {
	respond.OK(c.Writer, map[string]interface{}{
		"running": h.scheduler.Running(),
		"spec":    h.scheduler.Spec(),
	})
}

// Start registers the recurring sweep. Starting an already running
// scheduler succeeds without side effects.
func (h *Handler) Start(c *ginext.Context) {
	if err := h.scheduler.Start(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to start scheduler")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("failed to start scheduler"))
		return
	}

	respond.OK(c.Writer, "scheduler started")
}

// Stop cancels future sweeps. An in-flight sweep runs to completion.
func (h *Handler) Stop(c *ginext.Context) {
	h.scheduler.Stop()
	respond.OK(c.Writer, "scheduler stopped")
}
