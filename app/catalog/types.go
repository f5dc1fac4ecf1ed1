package catalog

// Kind records where a feed spec came from.
type Kind string

const (
	KindNative   Kind = "native"
	KindEnv      Kind = "env"
	KindFallback Kind = "fallback"
)

// FeedSpec describes one feed to fetch. Immutable after startup. Lower
// priority means more trusted.
type FeedSpec struct {
	URL      string
	Priority int
	Kind     Kind
	Tag      string
}

// Files is the on-disk catalog shape: per-city lists, per-country lists and
// a global list.
type Files struct {
	Local   map[string][]string `yaml:"local"`
	Country map[string][]string `yaml:"country"`
	Global  []string            `yaml:"global"`
}

// Source priorities. Env overrides outrank everything; wire-service
// fallbacks trail everything.
const (
	priorityEnv      = 5
	priorityLocal    = 10
	priorityCountry  = 20
	priorityGlobal   = 30
	priorityFallback = 90
)
