package documentdb

type DB interface {
	Setup() error
	IsIndexed(filePath string) (bool, error)
	Upsert(title string, content string, filePath string, itemType ItemType, detectionType DetectionType) error
	Search(query string) ([]IndexedItem, error)
	Count() (int64, error)
	Clear() error
	Close() error
}
