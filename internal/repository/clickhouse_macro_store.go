package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"MacroPulse/internal/domain/models"
	"MacroPulse/internal/domain/repository"
)

// ClickHouseMacroStore implements Storage for ClickHouse. Raw observations
// and daily labels live in separate MergeTree tables; both inserts are
// idempotent under ReplacingMergeTree semantics keyed by day.
type ClickHouseMacroStore struct {
	db       *sql.DB
	database string
}

// NewClickHouseMacroStore creates ClickHouse-backed macro storage.
func NewClickHouseMacroStore(db *sql.DB, database string) repository.Storage {
	return &ClickHouseMacroStore{db: db, database: database}
}

func (s *ClickHouseMacroStore) Init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", s.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.macro_observations (
			series LowCardinality(String),
			day Date,
			value Float64,
			inserted_at DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(inserted_at) ORDER BY (series, day)`, s.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.regime_labels (
			day Date,
			raw_label LowCardinality(String),
			smoothed_label LowCardinality(String),
			matched Array(String),
			inserted_at DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(inserted_at) ORDER BY day`, s.database),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseMacroStore) StoreObservations(ctx context.Context, obs []models.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	// Chunked multi-row VALUES insert to reduce round-trips.
	const chunkSize = 2000
	table := s.database + ".macro_observations"
	for start := 0; start < len(obs); start += chunkSize {
		end := start + chunkSize
		if end > len(obs) {
			end = len(obs)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*3)
		for _, o := range obs[start:end] {
			if o.Series == "" || o.Date.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?)")
			args = append(args, o.Series, o.Date, o.Value)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (series, day, value) VALUES %s", table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store observations: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseMacroStore) StoreLabels(ctx context.Context, raw []models.RawDecision, smoothed []models.SmoothedLabel) error {
	if len(raw) == 0 {
		return nil
	}
	if len(raw) != len(smoothed) {
		return fmt.Errorf("raw/smoothed length mismatch: %d vs %d", len(raw), len(smoothed))
	}

	const chunkSize = 2000
	table := s.database + ".regime_labels"
	for start := 0; start < len(raw); start += chunkSize {
		end := start + chunkSize
		if end > len(raw) {
			end = len(raw)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*4)
		for i := start; i < end; i++ {
			matched := make([]string, len(raw[i].Matched))
			for j, m := range raw[i].Matched {
				matched[j] = string(m)
			}
			values = append(values, "(?, ?, ?, ?)")
			args = append(args, raw[i].Date, string(raw[i].Label), string(smoothed[i].Label), matched)
		}
		q := fmt.Sprintf("INSERT INTO %s (day, raw_label, smoothed_label, matched) VALUES %s", table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store labels: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseMacroStore) QueryLabels(ctx context.Context, from, to time.Time) ([]models.SmoothedLabel, error) {
	q := fmt.Sprintf(`SELECT day, smoothed_label FROM %s.regime_labels FINAL
		WHERE day >= ? AND day <= ? ORDER BY day`, s.database)
	rows, err := s.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
	}
	defer rows.Close()

	var out []models.SmoothedLabel
	for rows.Next() {
		var day time.Time
		var label string
		if err := rows.Scan(&day, &label); err != nil {
			return nil, err
		}
		out = append(out, models.SmoothedLabel{Date: day, Label: models.RegimeLabel(label)})
	}
	return out, rows.Err()
}

func (s *ClickHouseMacroStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseMacroStore) Close() error {
	return nil // pool managed by pkg/clickhouse
}
