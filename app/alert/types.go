package alert

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/riskwire/riskwire/app/keyword"
	"github.com/riskwire/riskwire/app/location"
)

// Alert is the terminal record of the ingestion pipeline. Created once per
// qualifying feed entry and never mutated afterwards; enrichment (scoring,
// translation) happens in collaborators outside this core.
type Alert struct {
	UUID      string
	Title     string
	Summary   string
	Snippet   string
	Link      string
	Source    string
	Published time.Time

	Tags []string

	Region             string
	Country            string
	City               string
	LocationMethod     location.Method
	LocationConfidence location.Confidence
	Latitude           *float64
	Longitude          *float64

	KwRule     keyword.Rule
	KwTier     keyword.Tier
	KwKeywords []string

	Language       string
	SourceKind     string
	SourcePriority int
	SourceTag      string
}

// UUIDFor derives the deterministic dedup identity from source, title and
// link: the same story re-fetched always hashes to the same UUID.
func UUIDFor(source, title, link string) string {
	content := source + "|" + title + "|" + link
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(content)).String()
}

// FirstSentence extracts the leading sentence for the alert snippet.
func FirstSentence(text string) string {
	text = strings.TrimSpace(text)
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			return strings.TrimSpace(text[:i+1])
		}
	}
	return text
}
