package enrich

import (
	"strings"
)

var soundexCodes = map[rune]byte{
	'B': '1', 'F': '1', 'P': '1', 'V': '1',
	'C': '2', 'G': '2', 'J': '2', 'K': '2', 'Q': '2', 'S': '2', 'X': '2', 'Z': '2',
	'D': '3', 'T': '3',
	'L': '4',
	'M': '5', 'N': '5',
	'R': '6',
}

// Soundex maps a word to its 4-character phonetic code, so that words
// that sound alike ("ram", "raam") share a code ("R500"). Non-letters
// are stripped and the empty string maps to itself.
func Soundex(word string) string {
	var letters []rune
	for _, r := range strings.ToUpper(word) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 {
		return ""
	}

	result := []byte{byte(letters[0])}
	prev, ok := soundexCodes[letters[0]]
	if !ok {
		prev = '0'
	}

	for _, r := range letters[1:] {
		if len(result) == 4 {
			break
		}
		code, ok := soundexCodes[r]
		if !ok {
			code = '0'
		}
		if code != '0' && code != prev {
			result = append(result, code)
		}
		// Vowels are separators only; they reset adjacency without updating prev
		if code != '0' {
			prev = code
		} else {
			prev = '0'
		}
	}

	for len(result) < 4 {
		result = append(result, '0')
	}

	return string(result)
}

// SoundexAll encodes every whitespace-separated token of text.
// Every non-empty token yields exactly one 4-character code.
func SoundexAll(text string) []string {
	var codes []string
	for _, word := range strings.Fields(text) {
		code := Soundex(word)
		if len(code) == 4 {
			codes = append(codes, code)
		}
	}
	return codes
}
