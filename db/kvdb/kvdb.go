package kvdb

// Bucket names for the key-value store. Each concern gets its own bucket
// so clearing one does not disturb the others.
const (
	SyncBucket    = "sync"
	HistoryBucket = "history"
	RecentBucket  = "recent"
)

type DB interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	Delete(bucket string, key string) error
	Close() error
}
