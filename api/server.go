package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/pinpoint/config"
	"github.com/meghashyamc/pinpoint/db/documentdb"
	"github.com/meghashyamc/pinpoint/db/kvdb"
	"github.com/meghashyamc/pinpoint/logger"
	"github.com/meghashyamc/pinpoint/services/docscan"
	"github.com/meghashyamc/pinpoint/services/gallery"
	"github.com/meghashyamc/pinpoint/services/search"
	"github.com/meghashyamc/pinpoint/validation"
)

// Dependencies are the device-side integrations the server is wired
// with. Nil fields fall back to built-in stand-ins: a folder-backed
// gallery source and an analyzer that detects nothing.
type Dependencies struct {
	Source   gallery.Source
	Analyzer gallery.Analyzer
}

type server struct {
	router     *gin.Engine
	httpServer *http.Server
	cfg        *config.Config
	kvdb       kvdb.DB
	documentdb documentdb.DB
	engine     *gallery.Engine
	searcher   *search.Service
	scanner    *docscan.Service
	validator  *validation.Validator
	logger     logger.Logger
}

func Run(ctx context.Context, cfg *config.Config, deps Dependencies) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)

	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger.New(),
	}
	if err := s.setupDependencies(deps); err != nil {
		return err
	}
	s.setupRouter()
	s.setupHTTPServer()
	s.setupGracefulShutdown(ctx)

	return nil
}

func (s *server) setupDependencies(deps Dependencies) error {
	var err error
	s.kvdb, err = kvdb.New(s.logger, s.cfg)
	if err != nil {
		s.logger.Error("error creating kvDB", "err", err.Error())
		return err
	}
	s.documentdb, err = documentdb.New(s.logger, s.cfg)
	if err != nil {
		s.logger.Error("error creating document DB", "err", err.Error())
		return err
	}
	if err := s.documentdb.Setup(); err != nil {
		s.logger.Error("error setting up document DB", "err", err.Error())
		return err
	}
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		return err
	}

	source := deps.Source
	if source == nil {
		source = gallery.NewFolderSource(s.cfg.GetGalleryPath())
	}
	analyzer := deps.Analyzer
	if analyzer == nil {
		analyzer = newNoopAnalyzer(s.logger)
	}

	s.engine = gallery.New(s.logger, s.cfg, source, analyzer, s.documentdb, s.kvdb)
	s.searcher = search.New(s.logger, s.documentdb, s.kvdb)
	s.scanner = docscan.New(s.logger, s.documentdb)

	return nil

}

func (s *server) setupRouter() {
	router := newRouter()

	router.Use(loggingMiddleware(s.logger))

	setupRoutes(router, s.logger, s.engine, s.searcher, s.scanner, s.documentdb, s.validator)

	s.router = router
}

func (s *server) setupHTTPServer() {

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler: s.router.Handler(),
	}
	s.httpServer = httpServer
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()
}

func (s *server) setupGracefulShutdown(ctx context.Context) {

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		s.logger.Info("starting to shut down http server")
		// Let an in-flight sync persist its cursor before the stores close
		s.engine.Pause()
		if !s.engine.AwaitStopped(5 * time.Second) {
			s.logger.Warn("sync did not stop in time, closing stores anyway")
		}
		shutdownCtx := context.Background()
		shutdownCtx, cancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		defer cancel()
		s.kvdb.Close()
		s.documentdb.Close()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error shutting down http server", "err", err)
			return
		}
		s.logger.Info("shut down http server successfully")
	}()

	wg.Wait()
}
