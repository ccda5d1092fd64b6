package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/meghashyamc/pinpoint/config"
	"github.com/meghashyamc/pinpoint/db/documentdb"
	"github.com/meghashyamc/pinpoint/db/kvdb"
	"github.com/meghashyamc/pinpoint/logger"
	"github.com/meghashyamc/pinpoint/services/vision"
	"github.com/stretchr/testify/require"
)

// fakeSource pages through a fixed URI slice using the item offset as
// the cursor. Setting failAtCursor makes the fetch of that page fail
// once, simulating a transient source error.
type fakeSource struct {
	mu           sync.Mutex
	uris         []string
	failAtCursor string
	blockC       chan struct{}
	pageCalls    int
}

func (s *fakeSource) GetPage(_ context.Context, pageSize int, after string) (Page, error) {
	s.mu.Lock()
	s.pageCalls++
	blockC := s.blockC
	s.mu.Unlock()

	if blockC != nil {
		<-blockC
	}

	if s.failAtCursor != "" && after == s.failAtCursor {
		s.mu.Lock()
		s.failAtCursor = ""
		s.mu.Unlock()
		return Page{}, errors.New("source unavailable")
	}

	start := 0
	if after != "" {
		var err error
		start, err = strconv.Atoi(after)
		if err != nil {
			return Page{}, fmt.Errorf("bad cursor: %w", err)
		}
	}
	if start >= len(s.uris) {
		return Page{}, nil
	}

	end := start + pageSize
	if end > len(s.uris) {
		end = len(s.uris)
	}

	items := make([]Item, 0, end-start)
	for _, uri := range s.uris[start:end] {
		items = append(items, Item{URI: uri})
	}

	return Page{
		Items:       items,
		HasNextPage: end < len(s.uris),
		EndCursor:   strconv.Itoa(end),
	}, nil
}

type fakeAnalyzer struct {
	results map[string]vision.Result
}

func (a *fakeAnalyzer) Analyze(_ context.Context, uri string) vision.Result {
	if result, ok := a.results[uri]; ok {
		return result
	}
	return vision.Result{DetectionType: documentdb.DetectionEmpty}
}

type memMetadata struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemMetadata() *memMetadata {
	return &memMetadata{data: make(map[string]string)}
}

func (m *memMetadata) Set(bucket, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[bucket+"/"+key] = value
	return nil
}

func (m *memMetadata) Get(bucket, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[bucket+"/"+key]
	if !ok {
		return "", &kvdb.NotFoundError{Key: key}
	}
	return value, nil
}

func (m *memMetadata) Delete(bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, bucket+"/"+key)
	return nil
}

func newTestLogger() logger.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestStore(t *testing.T) documentdb.DB {
	t.Helper()
	assert := require.New(t)

	t.Setenv("DOCUMENT_DB_PATH", filepath.Join(t.TempDir(), "pinpoint.db"))

	cfg, err := config.Load()
	assert.NoError(err, "could not load config")

	store, err := documentdb.New(newTestLogger(), cfg)
	assert.NoError(err, "could not create document database")
	assert.NoError(store.Setup(), "could not set up document database")

	t.Cleanup(func() { store.Close() })
	return store
}

func newTestEngine(t *testing.T, source Source, analyzer Analyzer, store documentdb.DB, metadata MetadataStore) *Engine {
	t.Helper()
	assert := require.New(t)

	t.Setenv("DEEP_SYNC_DELAY", "1ms")

	cfg, err := config.Load()
	assert.NoError(err, "could not load config")

	return New(newTestLogger(), cfg, source, analyzer, store, metadata)
}

func galleryURIs(n int) []string {
	uris := make([]string, 0, n)
	for i := 0; i < n; i++ {
		uris = append(uris, fmt.Sprintf("photo://%03d", i))
	}
	return uris
}

func indexedPaths(t *testing.T, store documentdb.DB, query string) map[string]bool {
	t.Helper()
	assert := require.New(t)

	items, err := store.Search(query)
	assert.NoError(err)

	paths := make(map[string]bool, len(items))
	for _, item := range items {
		paths[item.FilePath] = true
	}
	return paths
}

func TestQuickSyncHonorsLimit(t *testing.T) {
	assert := require.New(t)

	t.Setenv("QUICK_SYNC_LIMIT", "6")
	t.Setenv("QUICK_SYNC_PAGE_SIZE", "4")

	source := &fakeSource{uris: galleryURIs(20)}
	store := newTestStore(t)
	engine := newTestEngine(t, source, &fakeAnalyzer{}, store, newMemMetadata())

	result, err := engine.QuickSync(context.Background(), nil)
	assert.NoError(err)
	assert.Equal(6, result.Processed)
	assert.False(result.Cancelled)
	assert.Equal(StateCompleted, engine.State())

	count, err := store.Count()
	assert.NoError(err)
	assert.EqualValues(6, count)

	// A quick sync never leaves a resumable cursor behind
	assert.False(engine.HasResumableSync())
}

func TestDeepSyncPauseAndResume(t *testing.T) {
	assert := require.New(t)

	t.Setenv("DEEP_SYNC_PAGE_SIZE", "3")

	source := &fakeSource{uris: galleryURIs(10)}
	store := newTestStore(t)
	metadata := newMemMetadata()
	engine := newTestEngine(t, source, &fakeAnalyzer{}, store, metadata)

	result, err := engine.DeepSync(context.Background(), func(processed int, _ string) {
		if processed == 4 {
			engine.Pause()
		}
	})
	assert.NoError(err)
	assert.True(result.Cancelled)
	assert.Equal(StatePaused, engine.State())
	assert.True(engine.HasResumableSync())

	resumed, err := engine.Resume(context.Background(), nil)
	assert.NoError(err)
	assert.False(resumed.Cancelled)
	assert.Equal(StateCompleted, engine.State())
	assert.False(engine.HasResumableSync())

	// The interrupted run plus the resume must cover every item exactly
	// once, with no rows duplicated for re-visited pages
	count, err := store.Count()
	assert.NoError(err)
	assert.EqualValues(10, count)
}

func TestDeepSyncPageErrorPreservesCursor(t *testing.T) {
	assert := require.New(t)

	t.Setenv("DEEP_SYNC_PAGE_SIZE", "3")

	source := &fakeSource{uris: galleryURIs(8), failAtCursor: "3"}
	store := newTestStore(t)
	metadata := newMemMetadata()
	engine := newTestEngine(t, source, &fakeAnalyzer{}, store, metadata)

	_, err := engine.DeepSync(context.Background(), nil)
	assert.Error(err)
	assert.Equal(StateFailed, engine.State())

	cursor, err := metadata.Get(kvdb.SyncBucket, "gallery_sync_cursor")
	assert.NoError(err)
	assert.Equal("3", cursor, "last committed cursor must survive a page failure")

	// The failure is recoverable: the source error was transient
	resumed, err := engine.Resume(context.Background(), nil)
	assert.NoError(err)
	assert.False(resumed.Cancelled)

	count, err := store.Count()
	assert.NoError(err)
	assert.EqualValues(8, count)
}

func TestSyncSingleFlight(t *testing.T) {
	assert := require.New(t)

	blockC := make(chan struct{})
	source := &fakeSource{uris: galleryURIs(5), blockC: blockC}
	store := newTestStore(t)
	engine := newTestEngine(t, source, &fakeAnalyzer{}, store, newMemMetadata())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		engine.DeepSync(context.Background(), nil)
	}()

	// Wait for the first sync to claim the slot
	for engine.State() != StateRunning {
		time.Sleep(time.Millisecond)
	}

	_, err := engine.QuickSync(context.Background(), nil)
	assert.ErrorIs(err, ErrSyncInProgress)

	close(blockC)
	wg.Wait()
	assert.Equal(StateCompleted, engine.State())
}

func TestAwaitStoppedAfterPause(t *testing.T) {
	assert := require.New(t)

	t.Setenv("DEEP_SYNC_PAGE_SIZE", "3")

	source := &fakeSource{uris: galleryURIs(30)}
	store := newTestStore(t)
	metadata := newMemMetadata()
	engine := newTestEngine(t, source, &fakeAnalyzer{}, store, metadata)

	assert.NoError(engine.StartDeepSync(context.Background(), func(processed int, _ string) {
		if processed == 4 {
			engine.Pause()
		}
	}))

	// The background sync must have observed the pause and saved its
	// cursor before this returns
	assert.True(engine.AwaitStopped(5*time.Second), "engine should stop after a pause request")
	assert.Equal(StatePaused, engine.State())
	assert.True(engine.HasResumableSync())

	// With nothing running it returns immediately
	assert.True(engine.AwaitStopped(0))
}

func TestAlreadyIndexedItemsAreSkipped(t *testing.T) {
	assert := require.New(t)

	source := &fakeSource{uris: galleryURIs(4)}
	store := newTestStore(t)
	analyzer := &fakeAnalyzer{results: map[string]vision.Result{
		"photo://001": {DetectionType: documentdb.DetectionText, Content: "original pass"},
	}}
	engine := newTestEngine(t, source, analyzer, store, newMemMetadata())

	_, err := engine.QuickSync(context.Background(), nil)
	assert.NoError(err)

	// Re-running must not rewrite entries that are already indexed
	analyzer.results["photo://001"] = vision.Result{DetectionType: documentdb.DetectionText, Content: "second pass"}
	_, err = engine.QuickSync(context.Background(), nil)
	assert.NoError(err)

	items, err := store.Search("original")
	assert.NoError(err)
	assert.Len(items, 1)

	items, err = store.Search("second")
	assert.NoError(err)
	assert.Empty(items)
}

func TestFailedAnalysisStoresPlaceholder(t *testing.T) {
	assert := require.New(t)

	// The analyzer yields nothing for this item; a placeholder entry
	// keeps the item visible and prevents endless re-analysis
	source := &fakeSource{uris: []string{"photo://broken"}}
	store := newTestStore(t)
	engine := newTestEngine(t, source, &fakeAnalyzer{}, store, newMemMetadata())

	_, err := engine.QuickSync(context.Background(), nil)
	assert.NoError(err)

	indexed, err := store.IsIndexed("photo://broken")
	assert.NoError(err)
	assert.True(indexed)

	items, err := store.Search(placeholderContent)
	assert.NoError(err)
	assert.Len(items, 1)
	assert.Equal("photo://broken", items[0].FilePath)
}

func TestLastSyncTimeRecordedOnCompletion(t *testing.T) {
	assert := require.New(t)

	source := &fakeSource{uris: galleryURIs(2)}
	store := newTestStore(t)
	engine := newTestEngine(t, source, &fakeAnalyzer{}, store, newMemMetadata())

	assert.Zero(engine.LastSyncTime())

	_, err := engine.QuickSync(context.Background(), nil)
	assert.NoError(err)
	assert.Positive(engine.LastSyncTime())
}

func TestSyncThenSearchEndToEnd(t *testing.T) {
	assert := require.New(t)

	source := &fakeSource{uris: []string{"photo://lotus", "photo://invoice", "photo://cat"}}
	analyzer := &fakeAnalyzer{results: map[string]vision.Result{
		"photo://lotus":   {DetectionType: documentdb.DetectionText, Content: "कमल"},
		"photo://invoice": {DetectionType: documentdb.DetectionText, Content: "Invoice 12345"},
		"photo://cat":     {DetectionType: documentdb.DetectionObject, Content: "cat pet C300 P300"},
	}}
	store := newTestStore(t)
	engine := newTestEngine(t, source, analyzer, store, newMemMetadata())

	result, err := engine.QuickSync(context.Background(), nil)
	assert.NoError(err)
	assert.Equal(3, result.Processed)

	count, err := store.Count()
	assert.NoError(err)
	assert.EqualValues(3, count)

	// Hindi text is findable by transliteration and by English meaning
	assert.True(indexedPaths(t, store, "kamal")["photo://lotus"])
	assert.True(indexedPaths(t, store, "lotus")["photo://lotus"])
	assert.True(indexedPaths(t, store, "invoice")["photo://invoice"])
	assert.True(indexedPaths(t, store, "cat")["photo://cat"])
}
