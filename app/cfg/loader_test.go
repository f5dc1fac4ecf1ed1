package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DBPath:             "./riskwire.db",
		AllowDryRun:        true,
		CatalogDir:         "./catalog",
		Port:               "8080",
		SchedulerInterval:  300,
		FetchConcurrency:   8,
		FreshnessDays:      3,
		MinTextLen:         40,
		ThrottleEnabled:    true,
		ThrottleRate:       1,
		FulltextTimeout:    15,
		FulltextMaxBytes:   524288,
		LLMModel:           "gpt-4o-mini",
		LLMTokensPerMinute: 60,
		BatchSize:          10,
		APIAccessKey:       "test-key",

		BreakerFailureThreshold: 5,
		BreakerFailureRate:      0.5,
		BreakerVolumeThreshold:  10,
		BreakerRecoveryTimeout:  60,
		ServiceOverrides:        "llm=30:3:120",

		UserAgent: "Test Agent",
		Timezone:  "UTC",
		Debug:     true,
		Version:   "test-version",
	}

	if cfg.DBPath != "./riskwire.db" {
		t.Errorf("Expected db path './riskwire.db', got '%s'", cfg.DBPath)
	}
	if !cfg.AllowDryRun {
		t.Error("Expected dry run to be allowed")
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.SchedulerInterval != 300 {
		t.Errorf("Expected scheduler interval 300, got %d", cfg.SchedulerInterval)
	}
	if cfg.FetchConcurrency != 8 {
		t.Errorf("Expected fetch concurrency 8, got %d", cfg.FetchConcurrency)
	}
	if cfg.LLMTokensPerMinute != 60 {
		t.Errorf("Expected 60 tokens per minute, got %f", cfg.LLMTokensPerMinute)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
	if cfg.FulltextTimeout != 15 {
		t.Errorf("Expected fulltext timeout 15, got %d", cfg.FulltextTimeout)
	}
	if cfg.FulltextMaxBytes != 524288 {
		t.Errorf("Expected fulltext byte cap 524288, got %d", cfg.FulltextMaxBytes)
	}
	if cfg.BreakerFailureThreshold != 5 {
		t.Errorf("Expected breaker failure threshold 5, got %d", cfg.BreakerFailureThreshold)
	}
	if cfg.BreakerRecoveryTimeout != 60 {
		t.Errorf("Expected breaker recovery timeout 60, got %d", cfg.BreakerRecoveryTimeout)
	}
	if cfg.ServiceOverrides != "llm=30:3:120" {
		t.Errorf("Expected service overrides 'llm=30:3:120', got '%s'", cfg.ServiceOverrides)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}
