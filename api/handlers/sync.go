package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/pinpoint/logger"
	"github.com/meghashyamc/pinpoint/services/gallery"
)

type SyncStatusResponse struct {
	State          gallery.State `json:"state"`
	HasResumable   bool          `json:"has_resumable"`
	LastSyncTimeMs int64         `json:"last_sync_time_ms"`
}

func SetupSync(router *gin.Engine, logger logger.Logger, engine *gallery.Engine) {
	router.POST("/sync/quick", handleSyncStart(engine.StartQuickSync, logger))
	router.POST("/sync/deep", handleSyncStart(engine.StartDeepSync, logger))
	router.POST("/sync/resume", handleSyncStart(engine.StartDeepSync, logger))
	router.POST("/sync/pause", handleSyncPause(engine))
	router.GET("/sync/status", handleSyncStatus(engine))

}

func handleSyncStart(start func(context.Context, gallery.ProgressFunc) error, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// The sync outlives the request; it is paused via /sync/pause or
		// at server shutdown, not by the client disconnecting
		if err := start(context.Background(), nil); err != nil {
			if errors.Is(err, gallery.ErrSyncInProgress) {
				c.Abort()
				writeResponse(c, nil, http.StatusConflict, []string{err.Error()})
				return
			}
			logger.Error("could not start sync", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, nil, http.StatusAccepted, nil)
	}
}

func handleSyncPause(engine *gallery.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		engine.Pause()
		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}

func handleSyncStatus(engine *gallery.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := SyncStatusResponse{
			State:          engine.State(),
			HasResumable:   engine.HasResumableSync(),
			LastSyncTimeMs: engine.LastSyncTime(),
		}
		writeResponse(c, status, http.StatusOK, nil)
	}
}
