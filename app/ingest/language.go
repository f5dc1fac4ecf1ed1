package ingest

import (
	"github.com/abadojack/whatlanggo"
)

// detectLanguage returns the ISO 639-1 code of the dominant language in the
// text, falling back to English when detection is not confident enough to
// trust. Short snippets routinely confuse the detector.
func detectLanguage(text string) string {
	if len(text) < 40 {
		return "en"
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return "en"
	}

	code := info.Lang.Iso6391()
	if code == "" {
		return "en"
	}
	return code
}
