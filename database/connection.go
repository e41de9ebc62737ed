package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
)

// DB wraps a raw database/sql connection. The bulk import path uses it
// directly: pq's COPY protocol needs the plain driver, not the ORM.
type DB struct {
	conn *sql.DB
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// NewConnection creates a new raw database connection
func NewConnection(cfg Config) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName,
	)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)
	conn.SetConnMaxIdleTime(2 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connection established")

	return &DB{conn: conn}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		log.Println("📡 Closing database connection...")
		return db.conn.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// BulkLoadDrawResults imports official draw results through the COPY
// protocol. Imports land in a staging table and merge with
// ON CONFLICT DO NOTHING, so re-importing an overlapping feed file is
// harmless.
func (db *DB) BulkLoadDrawResults(results []DrawResult) (int, error) {
	if len(results) == 0 {
		return 0, nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin bulk load: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		CREATE TEMP TABLE draw_results_staging
		(LIKE draw_results INCLUDING DEFAULTS)
		ON COMMIT DROP
	`); err != nil {
		return 0, fmt.Errorf("failed to create staging table: %w", err)
	}

	stmt, err := tx.Prepare(pq.CopyIn("draw_results_staging",
		"game", "draw_date", "draw_time", "number", "created_at"))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare copy: %w", err)
	}

	now := time.Now()
	for _, r := range results {
		if _, err := stmt.Exec(r.Game, r.DrawDate, r.DrawTime, r.Number, now); err != nil {
			stmt.Close()
			return 0, fmt.Errorf("copy failed for %s %s: %w", r.Game, r.DrawDate, err)
		}
	}
	// flush the COPY buffer
	if _, err := stmt.Exec(); err != nil {
		stmt.Close()
		return 0, fmt.Errorf("failed to flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return 0, fmt.Errorf("failed to close copy: %w", err)
	}

	res, err := tx.Exec(`
		INSERT INTO draw_results (game, draw_date, draw_time, number, created_at)
		SELECT game, draw_date, draw_time, number, created_at
		FROM draw_results_staging
		ON CONFLICT (game, draw_date, draw_time) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to merge staging rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit bulk load: %w", err)
	}

	inserted, _ := res.RowsAffected()
	log.Printf("📊 Bulk-loaded %d/%d draw results", inserted, len(results))
	return int(inserted), nil
}
