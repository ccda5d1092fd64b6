package vision

import (
	"context"

	"github.com/meghashyamc/pinpoint/db/documentdb"
)

// Script selects which text recognition model family to run.
type Script string

const (
	ScriptLatin      Script = "latin"
	ScriptDevanagari Script = "devanagari"
)

// OCRProvider recognizes text in an image for one script family. Calls
// may fail independently per script.
type OCRProvider interface {
	RecognizeText(ctx context.Context, uri string, script Script) (string, error)
}

type Label struct {
	Text       string
	Confidence float64
}

// LabelProvider runs object/scene labeling, the more expensive fallback
// used only when recognition finds no text.
type LabelProvider interface {
	LabelImage(ctx context.Context, uri string) ([]Label, error)
}

// Resizer downsamples an image before analysis. Best effort: callers
// continue with the original on failure.
type Resizer interface {
	Resize(ctx context.Context, uri string, maxDimension int) (string, error)
}

// Result is the normalized outcome of analyzing one image.
type Result struct {
	DetectionType documentdb.DetectionType
	// RawText is the text as recognized, before any enrichment
	RawText string
	// Content is the flat space-joined blob ready for indexing
	Content string
	// SearchIndex holds the structured keys: tokens or labels plus phonetic codes
	SearchIndex []string
	// LabelingBypassed records whether the label fallback was skipped
	LabelingBypassed bool
}
