package location

import (
	"regexp"
	"strings"
)

var nonWordChars = regexp.MustCompile(`[^a-z0-9' -]+`)

// Dateline conventions. News wires prefix articles with their origin:
// "Paris, France — clashes erupted", "NAIROBI (Reuters) -", "(Lagos, Nigeria)".
var (
	datelineCityCountry = regexp.MustCompile(`^\s*([A-Z][A-Za-z.' -]{1,40}?),\s+([A-Za-z.' ]{2,40}?)\s*[—–-]`)
	datelineParen       = regexp.MustCompile(`\(([A-Z][A-Za-z.' -]{1,40}?),\s+([A-Za-z.' ]{2,40}?)\)`)
	datelineAllCaps     = regexp.MustCompile(`^\s*([A-Z][A-Z.' -]{2,40}?)\s*(?:\([A-Za-z ]+\))?\s*[—–-]`)
)

// causalClause recovers a location implied by a disruption clause:
// "flights cancelled due to the Nairobi protests".
var causalClause = regexp.MustCompile(`(?i)\b(?:due to|after|amid|following)\s+(?:the\s+)?([a-z.' -]{2,40}?)\s+(?:strikes?|protests?|unrest|riots?|clashes|violence|blockade|curfew)`)

// DefaultVaguenessMarkers flag text where only an LLM has a chance of
// pinning down the location. The list is a tuning knob, not a contract.
var DefaultVaguenessMarkers = []string{
	"near the border",
	"border region",
	"border area",
	"remote area",
	"remote region",
	"outskirts of",
	"several cities",
	"multiple locations",
	"multiple cities",
	"across the country",
	"across the region",
	"parts of the country",
	"region between",
	"somewhere in",
	"unidentified location",
}

// locationHint matches a preposition followed by a capitalized token, a weak
// sign that the text names a place the deterministic tiers do not know.
var locationHint = regexp.MustCompile(`\b(?:in|near|at|outside|around)\s+[A-Z][a-z]{2,}`)

// extractDateline tries the regex families in order of trust.
func extractDateline(text string) (Result, bool) {
	for _, re := range []*regexp.Regexp{datelineCityCountry, datelineParen} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		country := canonicalCountry(m[2])
		if country == "" {
			continue
		}
		city := titleCase(strings.ToLower(strings.TrimSpace(m[1])))
		return newResult(MethodPatternMatch, ConfidenceHigh, city, country, regionOf(country)), true
	}

	// All-caps dateline carries only a city; it must be one we know.
	if m := datelineAllCaps.FindStringSubmatch(text); m != nil {
		key := strings.ToLower(strings.TrimSpace(m[1]))
		if info, ok := knownCities[key]; ok {
			return newResult(MethodPatternMatch, ConfidenceHigh, info.City, info.Country, regionOf(info.Country)), true
		}
	}

	return Result{}, false
}

// extractCausalClause resolves "due to <place> protests" style phrasing. The
// captured place must be a city or country we know; anything else is noise.
func extractCausalClause(text string) (Result, bool) {
	m := causalClause.FindStringSubmatch(text)
	if m == nil {
		return Result{}, false
	}
	place := strings.ToLower(strings.TrimSpace(m[1]))

	if info, ok := knownCities[place]; ok {
		return newResult(MethodCausalClause, ConfidenceMedium, info.City, info.Country, regionOf(info.Country)), true
	}
	if country := canonicalCountry(place); country != "" {
		return newResult(MethodCausalClause, ConfidenceMedium, "", country, regionOf(country)), true
	}
	return Result{}, false
}

func hasVaguenessMarker(lowered string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
