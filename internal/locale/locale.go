// Package locale maps short locale codes to Tesseract language profiles.
package locale

import (
	"log"
	"sort"
)

// DefaultProfile is used for locale codes with no trained language data.
const DefaultProfile = "eng"

// profiles maps the two-letter locale codes used in the row store to
// Tesseract traineddata identifiers. Codes come from the device's menu
// language selector, so a few are historical rather than ISO 639-1
// ("sa" is the Saudi/Arabic variant, "tw" is traditional Chinese).
var profiles = map[string]string{
	"bg": "bul",
	"cs": "ces",
	"da": "dan",
	"de": "deu",
	"el": "ell",
	"en": "eng",
	"es": "spa",
	"et": "est",
	"fi": "fin",
	"fr": "fra",
	"he": "heb",
	"hi": "hin",
	"hr": "hrv",
	"hu": "hun",
	"id": "ind",
	"it": "ita",
	"ja": "jpn",
	"ko": "kor",
	"lt": "lit",
	"lv": "lav",
	"ms": "msa",
	"nl": "nld",
	"no": "nor",
	"pl": "pol",
	"pt": "por",
	"ro": "ron",
	"ru": "rus",
	"sa": "ara",
	"sk": "slk",
	"sl": "slv",
	"sr": "srp",
	"sv": "swe",
	"th": "tha",
	"tr": "tur",
	"uk": "ukr",
	"vi": "vie",
	"zh": "chi_sim",
	"tw": "chi_tra",
}

// Profile returns the Tesseract language profile for a locale code.
// Unknown codes fall back to DefaultProfile with a logged warning so a
// misspelled sheet name degrades to best-effort OCR instead of failing
// the whole run.
func Profile(code string) string {
	if p, ok := profiles[code]; ok {
		return p
	}
	log.Printf("locale: no OCR language profile for %q, falling back to %s", code, DefaultProfile)
	return DefaultProfile
}

// Known reports whether the locale code has a dedicated language profile.
func Known(code string) bool {
	_, ok := profiles[code]
	return ok
}

// Codes returns all mapped locale codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(profiles))
	for c := range profiles {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
