package gallery

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/meghashyamc/pinpoint/config"
	"github.com/meghashyamc/pinpoint/db/documentdb"
	"github.com/meghashyamc/pinpoint/db/kvdb"
	"github.com/meghashyamc/pinpoint/logger"
	"github.com/meghashyamc/pinpoint/services/enrich"
	"golang.org/x/time/rate"
)

const (
	cursorKey   = "gallery_sync_cursor"
	lastSyncKey = "gallery_last_sync_time"

	// Written when a single item fails, so one bad image never blocks
	// the rest of the sync
	placeholderContent = "image"
)

var ErrSyncInProgress = errors.New("sync already in progress")

// Engine drives incremental bulk indexing of the photo source. Quick
// syncs visit a bounded window of the most recent items at full speed;
// deep syncs walk the entire source in small paced pages and persist
// their cursor after every completed page, so they survive interruption
// and resume where they left off.
type Engine struct {
	logger   logger.Logger
	source   Source
	analyzer Analyzer
	store    documentdb.DB
	metadata MetadataStore

	quickLimit    int
	quickPageSize int
	deepPageSize  int
	pacer         *rate.Limiter

	mu    sync.Mutex
	state State
	token *CancelToken
}

func New(logger logger.Logger, cfg *config.Config, source Source, analyzer Analyzer, store documentdb.DB, metadata MetadataStore) *Engine {
	engine := &Engine{
		logger:        logger,
		source:        source,
		analyzer:      analyzer,
		store:         store,
		metadata:      metadata,
		quickLimit:    cfg.GetQuickSyncLimit(),
		quickPageSize: cfg.GetQuickSyncPageSize(),
		deepPageSize:  cfg.GetDeepSyncPageSize(),
		pacer:         rate.NewLimiter(rate.Every(cfg.GetDeepSyncDelay()), 1),
		state:         StateIdle,
	}
	return engine
}

// begin claims the single sync slot. Only one session may run against
// the store at a time; a second start request is rejected.
func (e *Engine) begin() (*CancelToken, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateRunning {
		e.logger.Warn("request to sync while a sync is already in progress")
		return nil, ErrSyncInProgress
	}

	token := NewCancelToken()
	e.token = token
	e.state = StateRunning
	return token, nil
}

func (e *Engine) setState(state State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = state
}

// State reports the current session state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Pause requests cooperative cancellation of the running sync. In-flight
// per-item work completes before the request is observed.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateRunning && e.token != nil {
		e.token.Cancel()
	}
}

// AwaitStopped blocks until no sync is running or the timeout elapses,
// reporting whether the engine stopped. Callers shutting the stores
// down use it so an in-flight sync can persist its cursor first.
func (e *Engine) AwaitStopped(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for e.State() == StateRunning {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(10 * time.Millisecond)
	}
	return true
}

// QuickSync indexes the most recent window of the source, bounded by the
// configured limit, with larger pages and no pacing. It never persists a
// cursor: an interrupted quick sync simply restarts from the newest
// items next time.
func (e *Engine) QuickSync(ctx context.Context, onProgress ProgressFunc) (Result, error) {
	token, err := e.begin()
	if err != nil {
		return Result{}, err
	}
	return e.runQuickSync(ctx, token, onProgress)
}

// StartQuickSync claims the sync slot and runs the quick sync in the
// background. It fails fast when another sync already holds the slot.
func (e *Engine) StartQuickSync(ctx context.Context, onProgress ProgressFunc) error {
	token, err := e.begin()
	if err != nil {
		return err
	}
	go e.runQuickSync(ctx, token, onProgress)
	return nil
}

func (e *Engine) runQuickSync(ctx context.Context, token *CancelToken, onProgress ProgressFunc) (Result, error) {
	e.logger.Info("starting quick sync", "limit", e.quickLimit)

	processed := 0
	after := ""
	hasNextPage := true

	for hasNextPage && processed < e.quickLimit {
		if token.Cancelled() {
			e.setState(StatePaused)
			return Result{Processed: processed, Cancelled: true}, nil
		}

		page, err := e.source.GetPage(ctx, e.quickPageSize, after)
		if err != nil {
			e.setState(StateFailed)
			e.logger.Error("quick sync page fetch failed", "err", err.Error())
			return Result{Processed: processed}, fmt.Errorf("page fetch failed: %w", err)
		}
		if len(page.Items) == 0 {
			break
		}

		for _, item := range page.Items {
			if processed >= e.quickLimit {
				break
			}
			if token.Cancelled() {
				e.setState(StatePaused)
				return Result{Processed: processed, Cancelled: true}, nil
			}

			e.processItem(ctx, item.URI)
			processed++
			if onProgress != nil {
				onProgress(processed, item.URI)
			}
		}

		hasNextPage = page.HasNextPage
		after = page.EndCursor
	}

	e.recordLastSyncTime()
	e.setState(StateCompleted)
	e.logger.Info("quick sync completed", "processed", processed)
	return Result{Processed: processed}, nil
}

// DeepSync walks the whole source. It resumes from any persisted cursor,
// saves the cursor after each fully committed page, and paces itself
// between pages to bound memory and CPU. Pausing or a page-level failure
// leaves a resumable cursor behind; only completion clears it.
func (e *Engine) DeepSync(ctx context.Context, onProgress ProgressFunc) (Result, error) {
	token, err := e.begin()
	if err != nil {
		return Result{}, err
	}
	return e.runDeepSync(ctx, token, onProgress)
}

// StartDeepSync claims the sync slot and runs the deep sync in the
// background.
func (e *Engine) StartDeepSync(ctx context.Context, onProgress ProgressFunc) error {
	token, err := e.begin()
	if err != nil {
		return err
	}
	go e.runDeepSync(ctx, token, onProgress)
	return nil
}

func (e *Engine) runDeepSync(ctx context.Context, token *CancelToken, onProgress ProgressFunc) (Result, error) {
	after := e.loadCursor()
	if after != "" {
		e.logger.Info("resuming deep sync from saved cursor")
	} else {
		e.logger.Info("starting deep sync from the beginning")
	}

	processed := 0
	hasNextPage := true

	for hasNextPage {
		if token.Cancelled() {
			return e.pauseDeepSync(after, processed), nil
		}

		page, err := e.source.GetPage(ctx, e.deepPageSize, after)
		if err != nil {
			// Transient source errors (throttling, memory pressure) stay
			// recoverable: keep the last committed cursor and surface a
			// resumable failure instead of losing progress
			e.saveCursor(after)
			e.setState(StateFailed)
			e.logger.Error("deep sync page fetch failed, cursor preserved", "err", err.Error())
			return Result{Processed: processed}, fmt.Errorf("page fetch failed: %w", err)
		}
		if len(page.Items) == 0 {
			break
		}

		for _, item := range page.Items {
			if token.Cancelled() {
				return e.pauseDeepSync(after, processed), nil
			}

			e.processItem(ctx, item.URI)
			processed++
			if onProgress != nil {
				onProgress(processed, item.URI)
			}
		}

		hasNextPage = page.HasNextPage
		after = page.EndCursor
		e.saveCursor(after)

		if hasNextPage {
			if err := e.pacer.Wait(ctx); err != nil {
				return e.pauseDeepSync(after, processed), nil
			}
		}
	}

	e.clearCursor()
	e.recordLastSyncTime()
	e.setState(StateCompleted)
	e.logger.Info("deep sync completed", "processed", processed)
	return Result{Processed: processed}, nil
}

// Resume continues a paused or failed deep sync from the persisted
// cursor. Without one it behaves like a fresh deep sync.
func (e *Engine) Resume(ctx context.Context, onProgress ProgressFunc) (Result, error) {
	return e.DeepSync(ctx, onProgress)
}

func (e *Engine) pauseDeepSync(after string, processed int) Result {
	e.saveCursor(after)
	e.setState(StatePaused)
	e.logger.Info("deep sync paused", "processed", processed)
	return Result{Processed: processed, Cancelled: true}
}

// processItem runs the full per-item pipeline: skip when already
// indexed, otherwise analyze, enrich and store. Item-level failures
// degrade to a placeholder entry so the surrounding loop never aborts.
func (e *Engine) processItem(ctx context.Context, uri string) {
	indexed, err := e.store.IsIndexed(uri)
	if err != nil {
		// Treat an unreadable index entry as absent and re-index
		e.logger.Warn("indexed check failed, re-indexing item", "uri", uri, "err", err.Error())
	}
	if indexed {
		return
	}

	result := e.analyzer.Analyze(ctx, uri)

	content := enrich.BuildIndexableContent(result.Content)
	if content == "" {
		content = placeholderContent
	}

	if err := e.store.Upsert("", content, uri, documentdb.TypeImage, result.DetectionType); err != nil {
		e.logger.Warn("item write failed, storing placeholder", "uri", uri, "err", err.Error())
		if err := e.store.Upsert("", placeholderContent, uri, documentdb.TypeImage, documentdb.DetectionEmpty); err != nil {
			e.logger.Error("placeholder write failed", "uri", uri, "err", err.Error())
		}
	}
}

// HasResumableSync reports whether a persisted cursor from an
// interrupted deep sync exists.
func (e *Engine) HasResumableSync() bool {
	return e.loadCursor() != ""
}

// LastSyncTime returns the wall clock of the last completed sync in ms
// since epoch, or zero when none completed yet.
func (e *Engine) LastSyncTime() int64 {
	value, err := e.metadata.Get(kvdb.SyncBucket, lastSyncKey)
	if err != nil {
		return 0
	}
	ts, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

func (e *Engine) loadCursor() string {
	value, err := e.metadata.Get(kvdb.SyncBucket, cursorKey)
	if err != nil {
		if !errors.Is(err, kvdb.ErrNotFound) {
			e.logger.Warn("failed to load sync cursor", "err", err.Error())
		}
		return ""
	}
	return value
}

func (e *Engine) saveCursor(cursor string) {
	if cursor == "" {
		e.clearCursor()
		return
	}
	if err := e.metadata.Set(kvdb.SyncBucket, cursorKey, cursor); err != nil {
		e.logger.Error("failed to save sync cursor", "err", err.Error())
	}
}

func (e *Engine) clearCursor() {
	if err := e.metadata.Delete(kvdb.SyncBucket, cursorKey); err != nil && !errors.Is(err, kvdb.ErrNotFound) {
		e.logger.Warn("failed to clear sync cursor", "err", err.Error())
	}
}

func (e *Engine) recordLastSyncTime() {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := e.metadata.Set(kvdb.SyncBucket, lastSyncKey, now); err != nil {
		e.logger.Warn("failed to record sync time", "err", err.Error())
	}
}
