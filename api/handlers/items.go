package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/pinpoint/db/documentdb"
	"github.com/meghashyamc/pinpoint/logger"
	"github.com/meghashyamc/pinpoint/services/docscan"
	"github.com/meghashyamc/pinpoint/validation"
)

type ScanRequest struct {
	Path string `json:"path" validate:"required,valid_uri"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

func SetupItems(router *gin.Engine, logger logger.Logger, scanner *docscan.Service, documentDB documentdb.DB, validator *validation.Validator) {
	router.POST("/index", handleScan(scanner, logger, validator))
	router.GET("/count", handleCount(documentDB, logger))
	router.DELETE("/index", handleClear(documentDB, logger))

}

func handleScan(scanner *docscan.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := ScanRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from scan request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate scan request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		result, err := scanner.Scan(request.Path)
		if err != nil {
			logger.Error("document scan failed", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, result, http.StatusOK, nil)
	}
}

func handleCount(documentDB documentdb.DB, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := documentDB.Count()
		if err != nil {
			logger.Error("could not count indexed items", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, CountResponse{Count: count}, http.StatusOK, nil)
	}
}

func handleClear(documentDB documentdb.DB, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := documentDB.Clear(); err != nil {
			logger.Error("could not clear the index", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}
