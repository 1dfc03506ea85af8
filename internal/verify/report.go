package verify

import (
	"fmt"
	"strings"

	"locshot/internal/store"

	"gonum.org/v1/gonum/stat"
)

// LocaleSummary holds the verdict counts of one locale.
type LocaleSummary struct {
	Locale    string
	Run       bool
	Correct   int
	Incorrect int
	Skipped   int
	Errors    int
}

func (s *LocaleSummary) count(v store.Verdict) {
	switch {
	case v == store.VerdictCorrect:
		s.Correct++
	case v == store.VerdictIncorrect:
		s.Incorrect++
	case v.Failed():
		s.Errors++
	default:
		s.Skipped++
	}
}

// Total returns the number of items counted.
func (s LocaleSummary) Total() int {
	return s.Correct + s.Incorrect + s.Skipped + s.Errors
}

// PassRate returns the fraction of judged items that were correct.
// Locales with nothing judged report 0.
func (s LocaleSummary) PassRate() float64 {
	judged := s.Correct + s.Incorrect
	if judged == 0 {
		return 0
	}
	return float64(s.Correct) / float64(judged)
}

func (s LocaleSummary) String() string {
	return fmt.Sprintf("%s: %d correct, %d incorrect, %d skipped, %d errors",
		s.Locale, s.Correct, s.Incorrect, s.Skipped, s.Errors)
}

// Summary aggregates a whole run.
type Summary struct {
	Locales []LocaleSummary
}

func (s *Summary) add(loc LocaleSummary) {
	s.Locales = append(s.Locales, loc)
}

// Totals sums the per-locale counts.
func (s *Summary) Totals() LocaleSummary {
	var t LocaleSummary
	t.Locale = "total"
	for _, loc := range s.Locales {
		t.Correct += loc.Correct
		t.Incorrect += loc.Incorrect
		t.Skipped += loc.Skipped
		t.Errors += loc.Errors
	}
	return t
}

// PassRateStats returns mean and standard deviation of the pass rate
// across locales that judged at least one item. Uneven rates point at
// locales whose screenshots or language data need attention.
func (s *Summary) PassRateStats() (mean, stddev float64) {
	var rates []float64
	for _, loc := range s.Locales {
		if loc.Correct+loc.Incorrect > 0 {
			rates = append(rates, loc.PassRate())
		}
	}
	if len(rates) == 0 {
		return 0, 0
	}
	mean = stat.Mean(rates, nil)
	if len(rates) < 2 {
		// Sample stddev needs two locales; one locale has no spread.
		return mean, 0
	}
	return mean, stat.StdDev(rates, nil)
}

func (s *Summary) String() string {
	var b strings.Builder
	for _, loc := range s.Locales {
		b.WriteString(loc.String())
		b.WriteByte('\n')
	}
	t := s.Totals()
	fmt.Fprintf(&b, "%s (%d items)", t.String(), t.Total())
	if mean, stddev := s.PassRateStats(); mean > 0 {
		fmt.Fprintf(&b, ", pass rate %.1f%% ± %.1f%%", mean*100, stddev*100)
	}
	return b.String()
}
