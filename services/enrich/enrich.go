package enrich

import (
	"strings"
)

// BuildIndexableContent turns raw detected text into the blob that gets
// stored for search. Devanagari input is expanded with its transliteration,
// dictionary glosses and phonetic codes of the Latin portion, so a stored
// Hindi item is retrievable by original script, Romanized form, English
// keyword, and fuzzy phonetic variants. Latin input is stored as-is.
func BuildIndexableContent(rawText string) string {
	if strings.TrimSpace(rawText) == "" {
		return ""
	}

	if !ContainsDevanagari(rawText) {
		return strings.TrimSpace(rawText)
	}

	enriched := EnrichHindi(rawText)

	latinPart := strings.TrimSpace(stripDevanagari(enriched))
	codes := strings.Join(SoundexAll(latinPart), " ")

	parts := make([]string, 0, 2)
	for _, part := range []string{enriched, codes} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func stripDevanagari(text string) string {
	var out strings.Builder
	for _, r := range text {
		if !isDevanagariRune(r) {
			out.WriteRune(r)
		}
	}
	return out.String()
}
