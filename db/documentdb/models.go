package documentdb

type ItemType string

const (
	TypeImage    ItemType = "IMAGE"
	TypeDocument ItemType = "DOCUMENT"
)

// DetectionType records which vision step produced an item's content:
// recognized text, an object label fallback, or nothing at all.
type DetectionType string

const (
	DetectionText   DetectionType = "TEXT"
	DetectionObject DetectionType = "OBJECT"
	DetectionEmpty  DetectionType = "EMPTY"
)

type IndexedItem struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title,omitempty"`
	Content       string        `json:"content"`
	FilePath      string        `json:"file_path"`
	Type          ItemType      `json:"type"`
	DetectionType DetectionType `json:"detection_type"`
	Timestamp     int64         `json:"timestamp"`
}
