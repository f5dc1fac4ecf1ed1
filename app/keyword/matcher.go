package keyword

import (
	"sort"
	"strings"
	"unicode"
)

type Rule string

const (
	RuleStrictCooccurrence Rule = "strict_cooccurrence"
	RuleKeywordMulti       Rule = "keyword_multi"
	RuleNone               Rule = "none"
)

type Tier string

const (
	TierStrict   Tier = "strict"
	TierFallback Tier = "fallback"
)

// MatchResult reports the relevance decision for one entry. It is embedded
// into the alert, never persisted on its own.
type MatchResult struct {
	Hit        bool
	Rule       Rule
	Tier       Tier
	RiskTerm   string
	ImpactTerm string
	Keywords   []string
}

const defaultWindowSize = 12

// Matcher is the multi-tier relevance filter: a strict co-occurrence pass
// over a sliding token window, falling back to distinct keyword counting.
type Matcher struct {
	windowSize  int
	minDistinct int
}

func NewMatcher() *Matcher {
	return &Matcher{windowSize: defaultWindowSize, minDistinct: 2}
}

// Decide checks title and body text against both tiers. The title is
// prepended so dateline-style headlines participate in the window.
func (m *Matcher) Decide(title, text string) MatchResult {
	tokens := Tokenize(title + " " + text)

	if risk, impact, ok := m.strictMatch(tokens); ok {
		return MatchResult{
			Hit:        true,
			Rule:       RuleStrictCooccurrence,
			Tier:       TierStrict,
			RiskTerm:   risk,
			ImpactTerm: impact,
		}
	}

	if keywords := m.distinctKeywords(tokens); len(keywords) >= m.minDistinct {
		return MatchResult{
			Hit:      true,
			Rule:     RuleKeywordMulti,
			Tier:     TierFallback,
			Keywords: keywords,
		}
	}

	return MatchResult{Hit: false, Rule: RuleNone}
}

// strictMatch requires a risk term and an impact term within the token
// window. Returns the first qualifying pair in token order.
func (m *Matcher) strictMatch(tokens []string) (string, string, bool) {
	for i, token := range tokens {
		if _, ok := riskTerms[token]; !ok {
			continue
		}
		lo := i - m.windowSize
		if lo < 0 {
			lo = 0
		}
		hi := i + m.windowSize
		if hi >= len(tokens) {
			hi = len(tokens) - 1
		}
		for j := lo; j <= hi; j++ {
			if _, ok := impactTerms[tokens[j]]; ok {
				return token, tokens[j], true
			}
		}
	}
	return "", "", false
}

func (m *Matcher) distinctKeywords(tokens []string) []string {
	seen := make(map[string]struct{})
	for _, token := range tokens {
		if _, ok := weightedKeywords[token]; ok {
			seen[token] = struct{}{}
		}
	}

	keywords := make([]string, 0, len(seen))
	for k := range seen {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	return keywords
}

// Weight returns the dictionary weight of a matched keyword, 0 if unknown.
func Weight(keyword string) int {
	return weightedKeywords[keyword]
}

// Tags derives alert tags from the category table over the full text blob.
func Tags(text string) []string {
	joined := " " + strings.Join(Tokenize(text), " ") + " "

	var tags []string
	for tag, terms := range categoryTags {
		for _, term := range terms {
			if strings.Contains(joined, " "+term+" ") {
				tags = append(tags, tag)
				break
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// Tokenize lowercases and splits on anything that is not a letter or digit,
// which makes every later comparison word-boundary safe.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
