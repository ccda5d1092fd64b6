// Common test helpers
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/pinpoint/config"
	"github.com/meghashyamc/pinpoint/db/documentdb"
	"github.com/meghashyamc/pinpoint/db/kvdb"
	"github.com/meghashyamc/pinpoint/logger"
	"github.com/meghashyamc/pinpoint/services/docscan"
	"github.com/meghashyamc/pinpoint/services/gallery"
	"github.com/meghashyamc/pinpoint/services/search"
	"github.com/meghashyamc/pinpoint/services/vision"
	"github.com/meghashyamc/pinpoint/validation"
	"github.com/stretchr/testify/require"
)

var defaultTestRequestHeaders = map[string]string{"Content-Type": "application/json"}

type testCase struct {
	name           string
	requestHeaders map[string]string
	requestBody    map[string]any
	queryParams    map[string]string
	expectedStatus int
}

// stubSource pages over a fixed URI list, offset as cursor. An open
// blockC makes every page fetch wait until it is closed.
type stubSource struct {
	uris   []string
	blockC chan struct{}
}

func (s *stubSource) GetPage(_ context.Context, pageSize int, after string) (gallery.Page, error) {
	if s.blockC != nil {
		<-s.blockC
	}

	start := 0
	if after != "" {
		var err error
		if start, err = strconv.Atoi(after); err != nil {
			return gallery.Page{}, err
		}
	}
	if start >= len(s.uris) {
		return gallery.Page{}, nil
	}

	end := start + pageSize
	if end > len(s.uris) {
		end = len(s.uris)
	}

	items := make([]gallery.Item, 0, end-start)
	for _, uri := range s.uris[start:end] {
		items = append(items, gallery.Item{URI: uri})
	}

	return gallery.Page{Items: items, HasNextPage: end < len(s.uris), EndCursor: strconv.Itoa(end)}, nil
}

type stubAnalyzer struct {
	results map[string]vision.Result
}

func (a *stubAnalyzer) Analyze(_ context.Context, uri string) vision.Result {
	if result, ok := a.results[uri]; ok {
		return result
	}
	return vision.Result{DetectionType: documentdb.DetectionEmpty}
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level: slog.LevelError,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

type testServer struct {
	router     *gin.Engine
	documentDB documentdb.DB
	searcher   *search.Service
}

func setupTestServer(t *testing.T, assert *require.Assertions, source gallery.Source, analyzer gallery.Analyzer) *testServer {

	tempDir := t.TempDir()
	t.Setenv("DOCUMENT_DB_PATH", filepath.Join(tempDir, "pinpoint.db"))
	t.Setenv("KVDB_PATH", filepath.Join(tempDir, "kv.db"))
	t.Setenv("DEEP_SYNC_DELAY", "1ms")

	cfg, err := config.Load()
	assert.NoError(err, "could not load config")

	testLogger := newTestLogger()

	documentDB, err := documentdb.New(testLogger, cfg)
	assert.NoError(err, "could not create document database")
	assert.NoError(documentDB.Setup(), "could not set up document database")

	kvDB, err := kvdb.New(testLogger, cfg)
	assert.NoError(err, "could not create kv database")

	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")

	if source == nil {
		source = &stubSource{}
	}
	if analyzer == nil {
		analyzer = &stubAnalyzer{}
	}

	engine := gallery.New(testLogger, cfg, source, analyzer, documentDB, kvDB)
	searcher := search.New(testLogger, documentDB, kvDB)
	scanner := docscan.New(testLogger, documentDB)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupSearch(router, testLogger, searcher, validator)
	SetupSync(router, testLogger, engine)
	SetupItems(router, testLogger, scanner, documentDB, validator)
	SetupHistory(router, testLogger, searcher, validator)

	t.Cleanup(func() {
		assert.NoError(documentDB.Close(), "could not close document database")
		assert.NoError(kvDB.Close(), "could not close kv database")
	})

	return &testServer{router: router, documentDB: documentDB, searcher: searcher}
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, headers map[string]string, requestBodyMap map[string]interface{}, queryParams map[string]string) *httptest.ResponseRecorder {

	var err error
	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		endpoint = endpoint + "?"
		for key, value := range queryParams {
			if endpoint[len(endpoint)-1] != '?' {
				endpoint = endpoint + "&"
			}
			endpoint = endpoint + key + "=" + value
		}
	}
	var jsonBody []byte
	var req *http.Request
	if requestBodyMap != nil {
		jsonBody, err = json.Marshal(requestBodyMap)
		assert.NoError(err)
	}

	if len(jsonBody) > 0 {
		req, err = http.NewRequest(method, endpoint, bytes.NewBuffer(jsonBody))
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
	}
	assert.NoError(err)

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(w, req)

	return w
}

func decodeData(assert *require.Assertions, w *httptest.ResponseRecorder) map[string]any {
	var responseMap map[string]any
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &responseMap))
	data, _ := responseMap["data"].(map[string]any)
	return data
}
