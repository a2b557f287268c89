package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

type PostgresClient struct {
	db *sql.DB
}

// DailyStats aggregates analyses for one UTC day, bucketed by severity.
type DailyStats struct {
	Date     time.Time `json:"date"`
	Total    int       `json:"total"`
	Low      int       `json:"low"`
	Medium   int       `json:"medium"`
	High     int       `json:"high"`
	AvgScore float64   `json:"avg_score"`
}

func NewPostgresClient(connStr string) (*PostgresClient, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	client := &PostgresClient{db: db}

	// Initialize schema
	if err := client.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return client, nil
}

func (p *PostgresClient) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS analysis_stats (
		date DATE PRIMARY KEY,
		total INT NOT NULL DEFAULT 0,
		low INT NOT NULL DEFAULT 0,
		medium INT NOT NULL DEFAULT 0,
		high INT NOT NULL DEFAULT 0,
		score_sum BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := p.db.ExecContext(ctx, schema)
	return err
}

func (p *PostgresClient) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *PostgresClient) Close() error {
	return p.db.Close()
}

// RecordAnalysis counts one analysis against the day of at. severity is one
// of low, medium or high; anything else only bumps the total.
func (p *PostgresClient) RecordAnalysis(ctx context.Context, at time.Time, severity string, score int) error {
	var low, medium, high int
	switch severity {
	case "low":
		low = 1
	case "medium":
		medium = 1
	case "high":
		high = 1
	}

	query := `
		INSERT INTO analysis_stats (date, total, low, medium, high, score_sum)
		VALUES ($1, 1, $2, $3, $4, $5)
		ON CONFLICT (date) DO UPDATE SET
			total = analysis_stats.total + 1,
			low = analysis_stats.low + EXCLUDED.low,
			medium = analysis_stats.medium + EXCLUDED.medium,
			high = analysis_stats.high + EXCLUDED.high,
			score_sum = analysis_stats.score_sum + EXCLUDED.score_sum,
			updated_at = CURRENT_TIMESTAMP
	`

	day := at.UTC().Truncate(24 * time.Hour)
	_, err := p.db.ExecContext(ctx, query, day, low, medium, high, score)
	return err
}

// GetDailyStats returns the days between start and end inclusive, newest first.
func (p *PostgresClient) GetDailyStats(ctx context.Context, startDate, endDate time.Time) ([]DailyStats, error) {
	query := `
		SELECT date, total, low, medium, high,
			CASE WHEN total > 0 THEN score_sum::float8 / total ELSE 0 END
		FROM analysis_stats
		WHERE date BETWEEN $1 AND $2
		ORDER BY date DESC
	`

	rows, err := p.db.QueryContext(ctx, query, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []DailyStats{}
	for rows.Next() {
		var record DailyStats
		if err := rows.Scan(
			&record.Date,
			&record.Total,
			&record.Low,
			&record.Medium,
			&record.High,
			&record.AvgScore,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// GetTotalStats sums every recorded day. Date is left zero.
func (p *PostgresClient) GetTotalStats(ctx context.Context) (*DailyStats, error) {
	query := `
		SELECT
			COALESCE(SUM(total), 0),
			COALESCE(SUM(low), 0),
			COALESCE(SUM(medium), 0),
			COALESCE(SUM(high), 0),
			CASE WHEN COALESCE(SUM(total), 0) > 0 THEN SUM(score_sum)::float8 / SUM(total) ELSE 0 END
		FROM analysis_stats
	`

	var record DailyStats
	err := p.db.QueryRowContext(ctx, query).Scan(
		&record.Total,
		&record.Low,
		&record.Medium,
		&record.High,
		&record.AvgScore,
	)
	if err != nil {
		return nil, err
	}

	return &record, nil
}
