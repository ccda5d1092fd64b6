package vision

import "context"

// Stand-in providers used when no device recognizer is attached, such
// as when the server runs without a vision bridge. They report nothing,
// so every image degrades to a placeholder index entry.

type noopOCR struct{}

func (noopOCR) RecognizeText(context.Context, string, Script) (string, error) {
	return "", nil
}

type noopLabeler struct{}

func (noopLabeler) LabelImage(context.Context, string) ([]Label, error) {
	return nil, nil
}

type noopResizer struct{}

func (noopResizer) Resize(_ context.Context, uri string, _ int) (string, error) {
	return uri, nil
}

// NewNoopProviders returns provider implementations that detect
// nothing.
func NewNoopProviders() (OCRProvider, LabelProvider, Resizer) {
	return noopOCR{}, noopLabeler{}, noopResizer{}
}
