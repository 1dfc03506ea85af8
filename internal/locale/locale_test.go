package locale

import (
	"testing"
)

func TestProfile(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"de", "deu"},
		{"th", "tha"},
		{"sa", "ara"},
		{"zh", "chi_sim"},
		{"tw", "chi_tra"},
		{"en", "eng"},
	}
	for _, tc := range cases {
		if got := Profile(tc.code); got != tc.want {
			t.Errorf("Profile(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestProfileUnknownFallsBack(t *testing.T) {
	if got := Profile("xx"); got != DefaultProfile {
		t.Errorf("Profile(\"xx\") = %q, want default %q", got, DefaultProfile)
	}
	if Known("xx") {
		t.Error("Known(\"xx\") = true, want false")
	}
}

func TestCodesSortedAndComplete(t *testing.T) {
	codes := Codes()
	if len(codes) < 36 {
		t.Errorf("expected at least 36 mapped locales, got %d", len(codes))
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Errorf("codes not sorted at %d: %q >= %q", i, codes[i-1], codes[i])
		}
	}
}
