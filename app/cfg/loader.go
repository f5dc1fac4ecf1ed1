package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath      string `long:"db-path" env:"DB_PATH" default:"./riskwire.db" description:"Path to the sqlite database file"`
	AllowDryRun bool   `long:"allow-dry-run" env:"ALLOW_DRY_RUN" description:"Permit running without persistence (alerts are discarded)"`
	RedisAddr   string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the geocode cache (optional)"`

	// Feed catalog
	CatalogDir string `long:"catalog-dir" env:"CATALOG_DIR" default:"./catalog" description:"Directory containing feed catalog files"`

	// Ingestion
	Port              string `long:"port" env:"PORT" default:"8080" description:"Ops HTTP server port"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"300" description:"Seconds between ingestion runs"`
	FetchConcurrency  int    `long:"fetch-concurrency" env:"FETCH_CONCURRENCY" default:"8" description:"Maximum feeds fetched in parallel"`
	FetchTimeout      int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Feed fetch timeout in seconds"`
	FreshnessDays     int    `long:"freshness-days" env:"FRESHNESS_DAYS" default:"3" description:"Ignore entries older than this many days"`
	MinTextLen        int    `long:"min-text-len" env:"MIN_TEXT_LEN" default:"40" description:"Minimum entry text length in runes"`
	MaxEntriesPerRun  int    `long:"max-entries-per-run" env:"MAX_ENTRIES_PER_RUN" default:"500" description:"Entry budget per ingestion run"`
	FulltextEnabled   bool   `long:"fulltext" env:"FULLTEXT_ENABLED" description:"Fetch article fulltext when the summary is too short"`
	FulltextTimeout   int    `long:"fulltext-timeout" env:"FULLTEXT_TIMEOUT" default:"15" description:"Per-article fulltext fetch timeout in seconds"`
	FulltextMaxBytes  int64  `long:"fulltext-max-bytes" env:"FULLTEXT_MAX_BYTES" default:"524288" description:"Byte cap on fetched article bodies"`

	// Host throttle
	ThrottleEnabled bool    `long:"throttle" env:"THROTTLE_ENABLED" description:"Enable per-host fetch throttling"`
	ThrottleRate    float64 `long:"throttle-rate" env:"THROTTLE_RATE" default:"1" description:"Fetches per second allowed per host"`
	ThrottleBurst   int     `long:"throttle-burst" env:"THROTTLE_BURST" default:"2" description:"Burst size per host"`

	// LLM provider
	LLMEndpoint        string  `long:"llm-endpoint" env:"LLM_ENDPOINT" default:"https://api.openai.com/v1/chat/completions" description:"OpenAI-compatible chat completions endpoint"`
	LLMModel           string  `long:"llm-model" env:"LLM_MODEL" default:"gpt-4o-mini" description:"Model name for location resolution"`
	LLMKey             string  `long:"llm-key" env:"LLM_KEY" description:"API key for the LLM provider (optional, disables LLM tier when empty)"`
	LLMTokensPerMinute float64 `long:"llm-tokens-per-minute" env:"LLM_TOKENS_PER_MINUTE" default:"60" description:"Rate limiter capacity for the LLM service"`
	BatchSize          int     `long:"batch-size" env:"BATCH_SIZE" default:"10" description:"Location batch size threshold"`
	BatchFlushInterval int     `long:"batch-flush-interval" env:"BATCH_FLUSH_INTERVAL" default:"15" description:"Location batch flush interval in seconds"`

	// Circuit breaker
	BreakerFailureThreshold int     `long:"breaker-failure-threshold" env:"BREAKER_FAILURE_THRESHOLD" default:"5" description:"Consecutive failures before a breaker opens"`
	BreakerFailureRate      float64 `long:"breaker-failure-rate" env:"BREAKER_FAILURE_RATE" default:"0.5" description:"Failure rate that opens a breaker once the volume threshold is met"`
	BreakerVolumeThreshold  int     `long:"breaker-volume-threshold" env:"BREAKER_VOLUME_THRESHOLD" default:"10" description:"Minimum calls before the failure rate is considered"`
	BreakerRecoveryTimeout  int     `long:"breaker-recovery-timeout" env:"BREAKER_RECOVERY_TIMEOUT" default:"60" description:"Seconds before an open breaker probes half-open"`
	ServiceOverrides        string  `long:"service-overrides" env:"SERVICE_OVERRIDES" description:"Per-service resilience overrides, e.g. llm=30:3:120,geocode=120"`

	// Geocoding
	GeocodeEnabled  bool   `long:"geocode" env:"GEOCODE_ENABLED" description:"Enable coordinate enrichment"`
	GeocodeEndpoint string `long:"geocode-endpoint" env:"GEOCODE_ENDPOINT" default:"https://nominatim.openstreetmap.org" description:"Geocoding service base URL"`

	// Ops surface
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"riskwire/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:             raw.DBPath,
		AllowDryRun:        raw.AllowDryRun,
		RedisAddr:          raw.RedisAddr,
		CatalogDir:         raw.CatalogDir,
		Port:               raw.Port,
		SchedulerInterval:  raw.SchedulerInterval,
		FetchConcurrency:   raw.FetchConcurrency,
		FetchTimeout:       raw.FetchTimeout,
		FreshnessDays:      raw.FreshnessDays,
		MinTextLen:         raw.MinTextLen,
		MaxEntriesPerRun:   raw.MaxEntriesPerRun,
		FulltextEnabled:    raw.FulltextEnabled,
		FulltextTimeout:    raw.FulltextTimeout,
		FulltextMaxBytes:   raw.FulltextMaxBytes,
		ThrottleEnabled:    raw.ThrottleEnabled,
		ThrottleRate:       raw.ThrottleRate,
		ThrottleBurst:      raw.ThrottleBurst,
		LLMEndpoint:        raw.LLMEndpoint,
		LLMModel:           raw.LLMModel,
		LLMKey:             raw.LLMKey,
		LLMTokensPerMinute: raw.LLMTokensPerMinute,
		BatchSize:          raw.BatchSize,
		BatchFlushInterval: raw.BatchFlushInterval,

		BreakerFailureThreshold: raw.BreakerFailureThreshold,
		BreakerFailureRate:      raw.BreakerFailureRate,
		BreakerVolumeThreshold:  raw.BreakerVolumeThreshold,
		BreakerRecoveryTimeout:  raw.BreakerRecoveryTimeout,
		ServiceOverrides:        raw.ServiceOverrides,

		GeocodeEnabled:  raw.GeocodeEnabled,
		GeocodeEndpoint: raw.GeocodeEndpoint,
		APIAccessKey:    raw.APIAccessKey,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
