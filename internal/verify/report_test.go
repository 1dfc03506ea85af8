package verify

import (
	"math"
	"testing"

	"locshot/internal/store"

	"github.com/stretchr/testify/assert"
)

func TestLocaleSummaryCount(t *testing.T) {
	var s LocaleSummary
	s.count(store.VerdictCorrect)
	s.count(store.VerdictCorrect)
	s.count(store.VerdictIncorrect)
	s.count(store.VerdictSkipped)
	s.count(store.VerdictInvalidCoords)
	s.count(store.VerdictImageNotFound)
	s.count(store.VerdictOCRError)

	assert.Equal(t, 2, s.Correct)
	assert.Equal(t, 1, s.Incorrect)
	assert.Equal(t, 2, s.Skipped)
	assert.Equal(t, 2, s.Errors)
	assert.Equal(t, 7, s.Total())
}

func TestPassRate(t *testing.T) {
	s := LocaleSummary{Correct: 3, Incorrect: 1, Skipped: 10}
	assert.InDelta(t, 0.75, s.PassRate(), 1e-9)

	empty := LocaleSummary{Skipped: 5}
	assert.Zero(t, empty.PassRate())
}

func TestSummaryPassRateStats(t *testing.T) {
	s := &Summary{}
	s.add(LocaleSummary{Locale: "de", Correct: 4})                // 1.0
	s.add(LocaleSummary{Locale: "th", Correct: 1, Incorrect: 1})  // 0.5
	s.add(LocaleSummary{Locale: "sa", Skipped: 3})                // excluded

	mean, stddev := s.PassRateStats()
	assert.InDelta(t, 0.75, mean, 1e-9)
	assert.InDelta(t, math.Sqrt(0.125), stddev, 1e-9)
}

func TestSummaryPassRateStatsSingleLocale(t *testing.T) {
	s := &Summary{}
	s.add(LocaleSummary{Locale: "de", Correct: 3, Incorrect: 1})

	mean, stddev := s.PassRateStats()
	assert.InDelta(t, 0.75, mean, 1e-9)
	assert.Zero(t, stddev)
	assert.NotContains(t, s.String(), "NaN")
}

func TestSummaryTotals(t *testing.T) {
	s := &Summary{}
	s.add(LocaleSummary{Locale: "de", Correct: 2, Incorrect: 1})
	s.add(LocaleSummary{Locale: "th", Skipped: 3, Errors: 1})

	total := s.Totals()
	assert.Equal(t, 2, total.Correct)
	assert.Equal(t, 1, total.Incorrect)
	assert.Equal(t, 3, total.Skipped)
	assert.Equal(t, 1, total.Errors)
	assert.Equal(t, 7, total.Total())
}
