package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/pinpoint/api/handlers"
	"github.com/meghashyamc/pinpoint/db/documentdb"
	"github.com/meghashyamc/pinpoint/logger"
	"github.com/meghashyamc/pinpoint/services/docscan"
	"github.com/meghashyamc/pinpoint/services/gallery"
	"github.com/meghashyamc/pinpoint/services/search"
	"github.com/meghashyamc/pinpoint/validation"
)

func setupRoutes(router *gin.Engine, logger logger.Logger, engine *gallery.Engine, searcher *search.Service, scanner *docscan.Service, documentDB documentdb.DB, validator *validation.Validator) {
	router.GET("/health", health())

	handlers.SetupSearch(router, logger, searcher, validator)
	handlers.SetupSync(router, logger, engine)
	handlers.SetupItems(router, logger, scanner, documentDB, validator)
	handlers.SetupHistory(router, logger, searcher, validator)

}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	router := gin.Default()
	router.UseRawPath = true
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
