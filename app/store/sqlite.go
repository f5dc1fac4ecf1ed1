package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/riskwire/riskwire/app/alert"
	"github.com/riskwire/riskwire/app/keyword"
	"github.com/riskwire/riskwire/app/location"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// DB wraps the sqlite connection used by the alert repository.
type DB struct {
	*sql.DB
}

func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{DB: db}, nil
}

// RunMigrations applies all pending migrations and returns version info.
func RunMigrations(db *DB) (uint, bool, error) {
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return 0, false, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return 0, false, fmt.Errorf("failed to create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return 0, false, fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// AlertRepository is the sqlite-backed AlertStore.
type AlertRepository struct {
	db *DB
}

func NewAlertRepository(db *DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Exists(ctx context.Context, uuid string) (bool, error) {
	var found string
	err := r.db.QueryRowContext(ctx, `SELECT uuid FROM alerts WHERE uuid = ? LIMIT 1`, uuid).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check alert existence: %w", err)
	}
	return true, nil
}

// SaveBatch inserts alerts, skipping UUIDs already present, and returns the
// number actually saved.
func (r *AlertRepository) SaveBatch(ctx context.Context, alerts []*alert.Alert) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	saved := 0
	for _, a := range alerts {
		result, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO alerts (
				uuid, title, summary, snippet, link, source, published,
				tags, region, country, city, location_method, location_confidence,
				latitude, longitude, kw_rule, kw_tier, kw_keywords,
				language, source_kind, source_priority, source_tag
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, a.UUID, a.Title, a.Summary, a.Snippet, a.Link, a.Source, a.Published.UTC(),
			strings.Join(a.Tags, ","), a.Region, a.Country, a.City,
			string(a.LocationMethod), string(a.LocationConfidence),
			a.Latitude, a.Longitude, string(a.KwRule), string(a.KwTier),
			strings.Join(a.KwKeywords, ","), a.Language, a.SourceKind,
			a.SourcePriority, a.SourceTag)
		if err != nil {
			return saved, fmt.Errorf("failed to save alert %s: %w", a.UUID, err)
		}
		rows, err := result.RowsAffected()
		if err == nil && rows > 0 {
			saved++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit alerts: %w", err)
	}
	return saved, nil
}

// Count returns the total number of stored alerts.
func (r *AlertRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}

// GetRecent returns the newest alerts by publish time, optionally filtered by
// country.
func (r *AlertRepository) GetRecent(ctx context.Context, country string, limit int) ([]*alert.Alert, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT uuid, title, summary, snippet, link, source, published,
		       tags, region, country, city, location_method, location_confidence,
		       latitude, longitude, kw_rule, kw_tier, kw_keywords,
		       language, source_kind, source_priority, source_tag
		FROM alerts`
	args := []interface{}{}
	if country != "" {
		query += ` WHERE country = ?`
		args = append(args, country)
	}
	query += ` ORDER BY published DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*alert.Alert
	for rows.Next() {
		var a alert.Alert
		var tags, keywords, method, confidence, rule, tier string
		err := rows.Scan(&a.UUID, &a.Title, &a.Summary, &a.Snippet, &a.Link, &a.Source,
			&a.Published, &tags, &a.Region, &a.Country, &a.City, &method, &confidence,
			&a.Latitude, &a.Longitude, &rule, &tier, &keywords,
			&a.Language, &a.SourceKind, &a.SourcePriority, &a.SourceTag)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Tags = splitList(tags)
		a.KwKeywords = splitList(keywords)
		a.LocationMethod = location.Method(method)
		a.LocationConfidence = location.Confidence(confidence)
		a.KwRule = keyword.Rule(rule)
		a.KwTier = keyword.Tier(tier)
		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
