package api

import (
	"time"

	"github.com/riskwire/riskwire/app/metrics"
	"github.com/riskwire/riskwire/app/resilience"
	"github.com/riskwire/riskwire/app/store"
)

// Handler serves the ops endpoints: health, stats and read-only alert
// queries. It never mutates pipeline state.
type Handler struct {
	repo      *store.AlertRepository
	collector *metrics.Collector
	registry  *resilience.Registry
	version   string
	started   time.Time
}
