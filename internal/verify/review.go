package verify

import (
	"locshot/internal/store"
)

// Override records a human reviewer's verdict for one item and saves
// immediately. Interactive review commits per item, unlike the
// automated run's end-of-run bulk save.
func Override(rows RowStore, localeCode string, item store.Item, v store.Verdict) error {
	if err := rows.SetResult(localeCode, item.Row, item.RecognizedText, v); err != nil {
		return err
	}
	return rows.Save()
}
