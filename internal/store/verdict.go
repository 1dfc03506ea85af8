package store

// Verdict is the per-item outcome written to the verdict column.
type Verdict string

const (
	VerdictUnset     Verdict = ""
	VerdictCorrect   Verdict = "CORRECT"
	VerdictIncorrect Verdict = "INCORRECT"
	VerdictSkipped   Verdict = "SKIPPED"

	// Skip reason preserved in place of a bare SKIPPED.
	VerdictInvalidCoords Verdict = "INVALID COORDS"

	// Error kinds, distinct so failures are auditable from the sheet
	// alone.
	VerdictImageNotFound  Verdict = "IMAGE NOT FOUND"
	VerdictImageReadError Verdict = "IMAGE READ ERROR"
	VerdictOCRError       Verdict = "OCR_ERROR"
)

// Terminal reports whether the verdict is a final outcome.
func (v Verdict) Terminal() bool {
	return v != VerdictUnset
}

// Skipped reports whether the item was skipped rather than judged.
func (v Verdict) Skipped() bool {
	return v == VerdictSkipped || v == VerdictInvalidCoords
}

// Failed reports whether the verdict records a per-item error.
func (v Verdict) Failed() bool {
	switch v {
	case VerdictImageNotFound, VerdictImageReadError, VerdictOCRError:
		return true
	}
	return false
}
