package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/pinpoint/logger"
	"github.com/meghashyamc/pinpoint/services/search"
	"github.com/meghashyamc/pinpoint/validation"
)

type RecordViewRequest struct {
	URI string `json:"uri" validate:"required,valid_uri"`
}

func SetupHistory(router *gin.Engine, logger logger.Logger, service *search.Service, validator *validation.Validator) {
	router.GET("/history", handleGetHistory(service, logger))
	router.DELETE("/history", handleDeleteHistory(service, logger))
	router.GET("/recent", handleGetRecent(service, logger))
	router.POST("/recent", handleRecordView(service, logger, validator))
	router.DELETE("/recent", handleClearRecent(service, logger))

}

func handleGetHistory(service *search.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := service.History()
		if err != nil {
			logger.Error("could not read search history", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}
		if entries == nil {
			entries = []search.HistoryEntry{}
		}

		writeResponse(c, entries, http.StatusOK, nil)
	}
}

// handleDeleteHistory removes one entry when a query parameter is
// given, otherwise clears the whole history.
func handleDeleteHistory(service *search.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var err error
		if query := c.Query("query"); query != "" {
			err = service.DeleteSearch(query)
		} else {
			err = service.ClearHistory()
		}
		if err != nil {
			logger.Error("could not delete search history", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}

func handleGetRecent(service *search.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := service.Recent()
		if err != nil {
			logger.Error("could not read recently viewed items", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}
		if entries == nil {
			entries = []search.RecentEntry{}
		}

		writeResponse(c, entries, http.StatusOK, nil)
	}
}

func handleRecordView(service *search.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := RecordViewRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from view request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate view request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		if err := service.RecordView(request.URI); err != nil {
			logger.Error("could not record view", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}

func handleClearRecent(service *search.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.ClearRecent(); err != nil {
			logger.Error("could not clear recently viewed items", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}
