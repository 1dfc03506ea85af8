// Package verify drives a verification run: for every locale and item,
// crop the calibrated region out of the screenshot, enhance it, run
// OCR, and compare the result against the expected text.
package verify

import (
	"strings"

	"locshot/internal/diff"
	"locshot/internal/segment"
)

// Normalize strips carriage returns and newlines. Expected text wraps
// at the device's display width while OCR output wraps wherever
// Tesseract breaks lines, so line structure carries no signal.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, s)
}

// Equal decides the automated verdict: newline-normalized,
// case-insensitive string equality.
func Equal(expected, recognized string) bool {
	return strings.EqualFold(Normalize(expected), Normalize(recognized))
}

// Highlight tokenizes both texts with the locale's segmentation policy
// and returns the expected and recognized strings with unmatched
// tokens wrapped in [ ]. This is review output only; it never decides
// the verdict.
func Highlight(expected, recognized, localeCode string) (string, string) {
	expTokens := segment.Segment(Normalize(expected), localeCode)
	ocrTokens := segment.Segment(Normalize(recognized), localeCode)
	res := diff.Diff(expTokens, ocrTokens)

	sep := segment.Separator(Normalize(expected))
	return diff.Render(res.Expected, sep, "[", "]"),
		diff.Render(res.OCR, sep, "[", "]")
}
