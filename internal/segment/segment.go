// Package segment tokenizes expected and recognized text into
// comparable word units.
//
// Most locales separate words with whitespace and tokenize trivially.
// Thai does not, so it runs through a dictionary segmenter instead;
// further locale policies can be added to the policy table without
// touching any caller.
package segment

import (
	_ "embed"
	"log"
	"strings"
	"sync"
	"unicode"

	"github.com/go-ego/gse"
)

//go:embed dict/th.txt
var thaiDict string

// policy produces word tokens from raw text.
type policy func(text string) []string

// policies maps locale codes to specialized tokenizers. Absent locales
// use whitespace splitting.
var policies = map[string]policy{
	"th": segmentThai,
}

// Segment splits text into word tokens using the policy registered for
// the locale. Empty input yields no tokens.
func Segment(text, locale string) []string {
	if p, ok := policies[locale]; ok {
		return p(text)
	}
	return strings.Fields(text)
}

// Separator returns the join separator matching how text would be
// tokenized: a space when the text contains whitespace, otherwise the
// empty string (character- or dictionary-segmented scripts).
func Separator(text string) string {
	if strings.IndexFunc(text, unicode.IsSpace) >= 0 {
		return " "
	}
	return ""
}

var (
	thaiOnce sync.Once
	thaiSeg  gse.Segmenter
)

// segmentThai splits Thai text into dictionary words. Whitespace still
// acts as a hard boundary, so text that has already been segmented and
// space-joined tokenizes back to the same word sequence. Runs the
// dictionary does not cover fall back to single-rune tokens.
func segmentThai(text string) []string {
	thaiOnce.Do(func() {
		if err := thaiSeg.LoadDictStr(thaiDict); err != nil {
			log.Printf("segment: loading thai dictionary: %v", err)
		}
	})

	var tokens []string
	for _, chunk := range strings.Fields(text) {
		for _, w := range thaiSeg.Cut(chunk) {
			w = strings.TrimSpace(w)
			if w != "" {
				tokens = append(tokens, w)
			}
		}
	}
	return tokens
}
