package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "HelloWorld", Normalize("Hello\nWorld"))
	assert.Equal(t, "HelloWorld", Normalize("Hello\r\nWorld"))
	assert.Equal(t, "Hello World", Normalize("Hello World"))
	assert.Equal(t, "", Normalize("\r\n\n"))
}

func TestEqual(t *testing.T) {
	cases := []struct {
		name       string
		expected   string
		recognized string
		want       bool
	}{
		{"exact", "STOP", "STOP", true},
		{"case differs", "Stop", "STOP", true},
		{"newline vs crlf", "Hello\nWorld", "Hello\r\nWorld", true},
		{"wrapped vs unwrapped", "Hello\nWorld", "HelloWorld", true},
		{"different text", "Hello", "World", false},
		{"ocr confusion", "STOP", "5T0P", false},
		{"space is significant", "HelloWorld", "Hello World", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Equal(tc.expected, tc.recognized))
		})
	}
}

func TestHighlight(t *testing.T) {
	exp, ocr := Highlight("CHECK ENGINE OIL", "CHECK ENG1NE OIL", "de")
	assert.Equal(t, "CHECK [ENGINE] OIL", exp)
	assert.Equal(t, "CHECK [ENG1NE] OIL", ocr)
}

func TestHighlightAllMatched(t *testing.T) {
	exp, ocr := Highlight("warning low oil", "WARNING LOW OIL", "en")
	assert.Equal(t, "warning low oil", exp)
	assert.Equal(t, "WARNING LOW OIL", ocr)
}

func TestHighlightThaiUsesEmptySeparator(t *testing.T) {
	// Expected Thai text has no whitespace, so the rendering re-joins
	// segmented words without separators.
	exp, _ := Highlight("คำเตือนอันตราย", "คำเตือนอันตราย", "th")
	assert.Equal(t, "คำเตือนอันตราย", exp)
}
