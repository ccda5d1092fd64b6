package api

import (
	"github.com/meghashyamc/pinpoint/logger"
	"github.com/meghashyamc/pinpoint/services/gallery"
	"github.com/meghashyamc/pinpoint/services/vision"
)

func newNoopAnalyzer(logger logger.Logger) gallery.Analyzer {
	ocr, labeler, resizer := vision.NewNoopProviders()
	return vision.NewPipeline(logger, ocr, labeler, resizer)
}
