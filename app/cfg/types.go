package cfg

type Cfg struct {
	// Storage
	DBPath      string
	AllowDryRun bool
	RedisAddr   string

	// Feed catalog
	CatalogDir string

	// Ingestion
	Port              string
	SchedulerInterval int
	FetchConcurrency  int
	FetchTimeout      int
	FreshnessDays     int
	MinTextLen        int
	MaxEntriesPerRun  int
	FulltextEnabled   bool
	FulltextTimeout   int
	FulltextMaxBytes  int64

	// Host throttle
	ThrottleEnabled bool
	ThrottleRate    float64
	ThrottleBurst   int

	// LLM provider
	LLMEndpoint        string
	LLMModel           string
	LLMKey             string
	LLMTokensPerMinute float64
	BatchSize          int
	BatchFlushInterval int

	// Circuit breaker defaults, overridable per service
	BreakerFailureThreshold int
	BreakerFailureRate      float64
	BreakerVolumeThreshold  int
	BreakerRecoveryTimeout  int
	ServiceOverrides        string

	// Geocoding
	GeocodeEnabled  bool
	GeocodeEndpoint string

	// Ops surface
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
