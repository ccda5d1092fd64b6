package vision

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/meghashyamc/pinpoint/db/documentdb"
	"github.com/meghashyamc/pinpoint/logger"
	"github.com/meghashyamc/pinpoint/services/enrich"
)

const (
	// Combined recognized text shorter than this is treated as noise
	minTextLength = 3

	minLabelConfidence = 0.50
	maxLabels          = 7

	resizeMaxDimension = 1024
)

// Pipeline sequences the per-image vision work: downscale, recognize
// text for both script families, and only when no usable text comes back
// fall through to object labeling. Recognition is cheap and usually
// decisive, so the ordering keeps the average per-image cost low.
type Pipeline struct {
	logger  logger.Logger
	ocr     OCRProvider
	labeler LabelProvider
	resizer Resizer
}

func NewPipeline(logger logger.Logger, ocr OCRProvider, labeler LabelProvider, resizer Resizer) *Pipeline {
	return &Pipeline{
		logger:  logger,
		ocr:     ocr,
		labeler: labeler,
		resizer: resizer,
	}
}

// Analyze never fails: every sub-step degrades to an empty result, and an
// image where nothing is found comes back as an EMPTY detection.
func (p *Pipeline) Analyze(ctx context.Context, uri string) Result {
	processURI := uri
	if resized, err := p.resizer.Resize(ctx, uri, resizeMaxDimension); err != nil {
		p.logger.Warn("resize failed, analyzing full resolution", "uri", uri, "err", err.Error())
	} else {
		processURI = resized
	}

	combinedText := p.recognizeText(ctx, processURI)

	if len([]rune(combinedText)) >= minTextLength {
		words := strings.Fields(combinedText)
		codes := enrich.SoundexAll(strings.Join(latinWords(words), " "))
		keys := append(words, codes...)

		return Result{
			DetectionType:    documentdb.DetectionText,
			RawText:          combinedText,
			Content:          strings.Join(keys, " "),
			SearchIndex:      keys,
			LabelingBypassed: true,
		}
	}

	labels := p.labelImage(ctx, processURI)
	if len(labels) > 0 {
		codes := enrich.SoundexAll(strings.Join(labels, " "))
		keys := append(labels, codes...)

		return Result{
			DetectionType: documentdb.DetectionObject,
			RawText:       strings.Join(labels, ", "),
			Content:       strings.Join(keys, " "),
			SearchIndex:   keys,
		}
	}

	return Result{DetectionType: documentdb.DetectionEmpty}
}

// recognizeText runs both script families concurrently. The calls are
// independent and read-only; a failure of either contributes an empty
// string rather than failing the image.
func (p *Pipeline) recognizeText(ctx context.Context, uri string) string {
	scripts := []Script{ScriptLatin, ScriptDevanagari}
	results := make([]string, len(scripts))

	var wg sync.WaitGroup
	for i, script := range scripts {
		wg.Add(1)
		go func(i int, script Script) {
			defer wg.Done()
			text, err := p.ocr.RecognizeText(ctx, uri, script)
			if err != nil {
				p.logger.Warn("text recognition failed", "script", string(script), "err", err.Error())
				return
			}
			results[i] = strings.TrimSpace(text)
		}(i, script)
	}
	wg.Wait()

	var nonEmpty []string
	for _, text := range results {
		if text != "" {
			nonEmpty = append(nonEmpty, text)
		}
	}
	return strings.Join(nonEmpty, " ")
}

func (p *Pipeline) labelImage(ctx context.Context, uri string) []string {
	labels, err := p.labeler.LabelImage(ctx, uri)
	if err != nil {
		p.logger.Warn("image labeling failed", "uri", uri, "err", err.Error())
		return nil
	}

	var kept []Label
	for _, label := range labels {
		if label.Confidence >= minLabelConfidence {
			kept = append(kept, label)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Confidence > kept[j].Confidence
	})
	if len(kept) > maxLabels {
		kept = kept[:maxLabels]
	}

	var texts []string
	for _, label := range kept {
		texts = append(texts, label.Text)
	}
	return texts
}

// latinWords keeps only pure-alphabetic Latin tokens; phonetic codes make
// no sense for Devanagari or mixed tokens.
func latinWords(words []string) []string {
	var kept []string
	for _, word := range words {
		if isLatinWord(word) {
			kept = append(kept, word)
		}
	}
	return kept
}

func isLatinWord(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
