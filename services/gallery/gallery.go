package gallery

import (
	"context"
	"sync/atomic"

	"github.com/meghashyamc/pinpoint/services/vision"
)

type Item struct {
	URI string `json:"uri"`
}

type Page struct {
	Items       []Item
	HasNextPage bool
	EndCursor   string
}

// Source is a cursor-paginated listing of the device photo library.
type Source interface {
	GetPage(ctx context.Context, pageSize int, after string) (Page, error)
}

// Analyzer produces the per-image detection result. Satisfied by
// vision.Pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, uri string) vision.Result
}

// MetadataStore persists the sync cursor and bookkeeping between runs.
type MetadataStore interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	Delete(bucket string, key string) error
}

// ProgressFunc is invoked after every visited item.
type ProgressFunc func(processed int, uri string)

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

type Result struct {
	Processed int  `json:"processed"`
	Cancelled bool `json:"cancelled"`
}

// CancelToken is polled cooperatively at page and item boundaries.
// Cancelling never interrupts in-flight per-item work.
type CancelToken struct {
	cancelled atomic.Bool
}

func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

func (t *CancelToken) Cancel() {
	t.cancelled.Store(true)
}

func (t *CancelToken) Cancelled() bool {
	return t.cancelled.Load()
}
