// Package diff aligns expected and OCR-recovered token sequences so
// reviewers can see exactly which words the engine got wrong.
package diff

import (
	"strings"
)

// Token is a word with its alignment flag.
type Token struct {
	Text    string
	Matched bool
}

// Result partitions both input sequences into matched and unmatched
// tokens. Matched tokens form a common subsequence of the two inputs,
// appearing in the same order on both sides.
type Result struct {
	Expected []Token
	OCR      []Token
}

// AllMatched reports whether every token on both sides is matched.
func (r Result) AllMatched() bool {
	for _, t := range r.Expected {
		if !t.Matched {
			return false
		}
	}
	for _, t := range r.OCR {
		if !t.Matched {
			return false
		}
	}
	return true
}

// Diff computes a longest common subsequence over the two token
// sequences with case-insensitive equality and marks LCS members as
// matched on both sides.
//
// The backtrack steps toward the expected side (i--) whenever
// dp[i-1][j] >= dp[i][j-1]. This tie-break is part of the contract:
// changing it silently moves which of several equal-length alignments
// gets highlighted, which reviewers notice across tool versions.
func Diff(expected, ocr []string) Result {
	m, n := len(expected), len(ocr)

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if strings.EqualFold(expected[i-1], ocr[j-1]) {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	matchedExp := make([]bool, m)
	matchedOCR := make([]bool, n)
	for i, j := m, n; i > 0 && j > 0; {
		switch {
		case strings.EqualFold(expected[i-1], ocr[j-1]):
			matchedExp[i-1] = true
			matchedOCR[j-1] = true
			i--
			j--
		case dp[i-1][j] >= dp[i][j-1]:
			i--
		default:
			j--
		}
	}

	res := Result{
		Expected: make([]Token, m),
		OCR:      make([]Token, n),
	}
	for i, w := range expected {
		res.Expected[i] = Token{Text: w, Matched: matchedExp[i]}
	}
	for j, w := range ocr {
		res.OCR[j] = Token{Text: w, Matched: matchedOCR[j]}
	}
	return res
}

// Render joins tokens with sep, wrapping every unmatched token in the
// pre/post markers. Callers pass the same separator the text was
// tokenized with (a space, or "" for character-segmented text).
func Render(tokens []Token, sep, pre, post string) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		if t.Matched {
			parts[i] = t.Text
		} else {
			parts[i] = pre + t.Text + post
		}
	}
	return strings.Join(parts, sep)
}
