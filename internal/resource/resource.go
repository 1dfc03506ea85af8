// Package resource reads the XML bundles that localization ships
// expected warning/menu text in.
package resource

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"
)

// Bundle is a parsed resource file: item ids in document order, each
// carrying per-locale text.
type Bundle struct {
	items []item
	index map[string]map[string]string // itemID -> locale -> text
}

type file struct {
	XMLName xml.Name `xml:"resources"`
	Items   []item   `xml:"item"`
}

type item struct {
	ID    string `xml:"id,attr"`
	Texts []text `xml:"text"`
}

type text struct {
	Locale string `xml:"locale,attr"`
	Value  string `xml:",chardata"`
}

// Load parses a resource bundle file.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resource file: %w", err)
	}
	return Parse(data)
}

// Parse parses resource bundle bytes.
func Parse(data []byte) (*Bundle, error) {
	var f file
	if err := xml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse resource file: %w", err)
	}

	b := &Bundle{
		items: f.Items,
		index: make(map[string]map[string]string, len(f.Items)),
	}
	for _, it := range f.Items {
		if it.ID == "" {
			return nil, fmt.Errorf("resource item without id attribute")
		}
		texts := make(map[string]string, len(it.Texts))
		for _, tx := range it.Texts {
			texts[tx.Locale] = tx.Value
		}
		b.index[it.ID] = texts
	}
	return b, nil
}

// ItemIDs returns item ids in document order.
func (b *Bundle) ItemIDs() []string {
	ids := make([]string, len(b.items))
	for i, it := range b.items {
		ids[i] = it.ID
	}
	return ids
}

// Locales returns every locale appearing in the bundle, sorted.
func (b *Bundle) Locales() []string {
	seen := make(map[string]bool)
	for _, texts := range b.index {
		for loc := range texts {
			seen[loc] = true
		}
	}
	locales := make([]string, 0, len(seen))
	for loc := range seen {
		locales = append(locales, loc)
	}
	sort.Strings(locales)
	return locales
}

// Text returns the expected text for an item in a locale.
func (b *Bundle) Text(itemID, localeCode string) (string, bool) {
	texts, ok := b.index[itemID]
	if !ok {
		return "", false
	}
	t, ok := texts[localeCode]
	return t, ok
}
