package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/pinpoint/db/documentdb"
	"github.com/meghashyamc/pinpoint/logger"
	"github.com/meghashyamc/pinpoint/services/search"
	"github.com/meghashyamc/pinpoint/validation"
)

type SearchRequest struct {
	Query string `form:"query" json:"query" validate:"required,valid_query,min=1,max=1000"`
}

type SearchResponse struct {
	Results []documentdb.IndexedItem `json:"results"`
	Total   int                      `json:"total"`
}

func SetupSearch(router *gin.Engine, logger logger.Logger, service *search.Service, validator *validation.Validator) {
	router.GET("/search", handleSearch(service, logger, validator))

}

func handleSearch(service *search.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SearchRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		results := service.Search(request.Query)
		if results == nil {
			results = []documentdb.IndexedItem{}
		}

		searchResponse := SearchResponse{
			Results: results,
			Total:   len(results),
		}

		writeResponse(c, searchResponse, http.StatusOK, nil)
	}
}
