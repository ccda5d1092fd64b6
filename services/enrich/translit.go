package enrich

import (
	"strings"
)

// Devanagari is a phonetic script, so a fixed character table converts it
// to a Latin approximation deterministically. Conjuncts are matched before
// single consonants, and consonants carry an implicit inherent "a" unless
// followed by a vowel sign, the halant, or a word boundary.

const (
	devanagariBlockStart = 0x0900
	devanagariBlockEnd   = 0x097F

	halant = '्'
)

var vowels = map[rune]string{
	'अ': "a", 'आ': "aa", 'इ': "i", 'ई': "ee", 'उ': "u", 'ऊ': "oo",
	'ए': "e", 'ऐ': "ai", 'ओ': "o", 'औ': "au", 'ऋ': "ri",
}

var matras = map[rune]string{
	'ा': "aa", 'ि': "i", 'ी': "ee", 'ु': "u", 'ू': "oo",
	'े': "e", 'ै': "ai", 'ो': "o", 'ौ': "au", 'ृ': "ri",
	'ं': "n", 'ः': "h", halant: "", 'ँ': "n",
}

var consonants = map[rune]string{
	'क': "k", 'ख': "kh", 'ग': "g", 'घ': "gh", 'ङ': "ng",
	'च': "ch", 'छ': "chh", 'ज': "j", 'झ': "jh", 'ञ': "n",
	'ट': "t", 'ठ': "th", 'ड': "d", 'ढ': "dh", 'ण': "n",
	'त': "t", 'थ': "th", 'द': "d", 'ध': "dh", 'न': "n",
	'प': "p", 'फ': "ph", 'ब': "b", 'भ': "bh", 'म': "m",
	'य': "y", 'र': "r", 'ल': "l", 'व': "v", 'श': "sh",
	'ष': "sh", 'स': "s", 'ह': "h", 'ळ': "l",
}

// Conjunct clusters written consonant+halant+consonant, matched greedily
// before single characters.
var conjuncts = map[string]string{
	"क्ष": "ksh",
	"त्र": "tr",
	"ज्ञ": "gya",
}

// Two-rune sequences: the anusvara vowel and the nukta consonant
// variants, which are written base consonant + combining nukta.
var compounds = map[string]string{
	"अं": "an",
	"क़": "q", "ख़": "kh", "ग़": "gh", "ज़": "z", "फ़": "f",
	"ड़": "r", "ढ़": "rh", "य़": "y",
}

func isDevanagariRune(r rune) bool {
	return r >= devanagariBlockStart && r <= devanagariBlockEnd
}

// ContainsDevanagari reports whether any code point of text lies in the
// Devanagari Unicode block.
func ContainsDevanagari(text string) bool {
	for _, r := range text {
		if isDevanagariRune(r) {
			return true
		}
	}
	return false
}

// Transliterate converts Devanagari text to its Romanized equivalent,
// e.g. "कमल" -> "kamal", "घर" -> "ghar". Non-Devanagari characters pass
// through unchanged; unmapped Devanagari characters are dropped. The
// conversion is lossy and not meant to round-trip.
func Transliterate(text string) string {
	runes := []rune(text)
	var out strings.Builder

	i := 0
	for i < len(runes) {
		// Conjunct clusters first (क्ष, त्र, ज्ञ)
		if i+3 <= len(runes) {
			if latin, ok := conjuncts[string(runes[i:i+3])]; ok {
				out.WriteString(latin)
				i += 3
				continue
			}
		}
		if i+2 <= len(runes) {
			if latin, ok := compounds[string(runes[i:i+2])]; ok {
				out.WriteString(latin)
				i += 2
				continue
			}
		}

		r := runes[i]
		if latin, ok := consonants[r]; ok {
			out.WriteString(latin)
			var next rune
			hasNext := i+1 < len(runes)
			if hasNext {
				next = runes[i+1]
			}
			if hasNext {
				if sound, ok := matras[next]; ok {
					out.WriteString(sound)
					i += 2
					continue
				}
			}
			// Inherent vowel, except word-finally (schwa deletion) or
			// when the halant suppresses it
			if hasNext && next != halant && isDevanagariRune(next) {
				out.WriteString("a")
			}
			i++
			continue
		}

		if latin, ok := vowels[r]; ok {
			out.WriteString(latin)
			i++
			continue
		}
		if sound, ok := matras[r]; ok {
			out.WriteString(sound)
			i++
			continue
		}
		if isDevanagariRune(r) {
			// Unknown Devanagari character, skip
			i++
			continue
		}

		out.WriteRune(r)
		i++
	}

	return strings.Join(strings.Fields(out.String()), " ")
}

// LookupEnglish gathers English glosses for every dictionary word in a
// Hindi string, space-joined in order of occurrence. Unknown words
// contribute nothing. e.g. "कमल घर" -> "lotus flower home house".
func LookupEnglish(text string) string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '।' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	var glosses []string
	for _, word := range words {
		if gloss, ok := hindiDict[strings.TrimSpace(word)]; ok {
			glosses = append(glosses, gloss)
		}
	}
	return strings.Join(glosses, " ")
}

// EnrichHindi produces the searchable expansion of Devanagari text:
// the original, its transliteration, and any dictionary glosses.
// e.g. "कमल" -> "कमल kamal lotus flower".
func EnrichHindi(text string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{strings.TrimSpace(text), Transliterate(text), LookupEnglish(text)} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
