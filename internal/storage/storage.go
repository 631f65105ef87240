package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Alias1177/LevelBot/models"
)

// DB persists finalized scenarios and backs the analysis-hygiene counters:
// too many rejected scenarios in a day, or too many in a row, pause further
// evaluation to avoid spamming weak setups.
type DB struct {
	*sql.DB
}

// New opens a PostgreSQL connection and creates the schema if needed.
func New(dsn string) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS scenario_log (
			run_id TEXT PRIMARY KEY,
			day DATE NOT NULL,
			symbol TEXT NOT NULL,
			status TEXT NOT NULL,
			direction TEXT,
			confidence DOUBLE PRECISION NOT NULL,
			rr DOUBLE PRECISION,
			market_mode TEXT,
			reasons JSONB,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

// LogScenario records one finalized scenario.
func (db *DB) LogScenario(s *models.Scenario) error {
	reasons, err := json.Marshal(s.Reasons)
	if err != nil {
		return fmt.Errorf("marshaling reasons: %w", err)
	}
	_, err = db.Exec(`
		INSERT INTO scenario_log (
			run_id, day, symbol, status, direction, confidence, rr, market_mode, reasons, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id) DO NOTHING
	`,
		s.RunID, s.CreatedAt.Format("2006-01-02"), s.Symbol, string(s.Status), string(s.Direction),
		s.Confidence, s.RiskReward, string(s.MarketMode), reasons, s.CreatedAt,
	)
	return err
}

// DailyRejections counts rejected scenarios (INVALID or NO_SETUP) for the
// given UTC day.
func (db *DB) DailyRejections(day time.Time) (int, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM scenario_log
		WHERE day = $1 AND status IN ($2, $3)
	`, day.UTC().Format("2006-01-02"), string(models.StatusInvalid), string(models.StatusNoSetup)).Scan(&count)
	return count, err
}

// ConsecutiveRejections counts how many of the most recent scenarios for a
// symbol were rejections, stopping at the first valid one.
func (db *DB) ConsecutiveRejections(symbol string, limit int) (int, error) {
	rows, err := db.Query(`
		SELECT status FROM scenario_log
		WHERE symbol = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, symbol, limit)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return 0, err
		}
		if status != string(models.StatusInvalid) && status != string(models.StatusNoSetup) {
			break
		}
		count++
	}
	return count, rows.Err()
}

// Tracker keeps the hygiene counters in memory, seeded from the log at
// startup so a restart does not reset the daily limits.
type Tracker struct {
	DailyLimit       int
	ConsecutiveLimit int

	dailyRejections int
	consecutive     map[string]int
	day             time.Time
}

// NewTracker seeds counters for today from the database. db may be nil when
// persistence is disabled; the tracker then starts cold.
func NewTracker(db *DB, dailyLimit, consecutiveLimit int) (*Tracker, error) {
	t := &Tracker{
		DailyLimit:       dailyLimit,
		ConsecutiveLimit: consecutiveLimit,
		consecutive:      make(map[string]int),
		day:              time.Now().UTC().Truncate(24 * time.Hour),
	}
	if db == nil {
		return t, nil
	}
	daily, err := db.DailyRejections(t.day)
	if err != nil {
		return nil, fmt.Errorf("loading daily stats: %w", err)
	}
	t.dailyRejections = daily
	return t, nil
}

// Record updates counters from one finalized scenario.
func (t *Tracker) Record(s *models.Scenario) {
	t.rollover(s.CreatedAt)
	if s.Status == models.StatusInvalid || s.Status == models.StatusNoSetup {
		t.dailyRejections++
		t.consecutive[s.Symbol]++
		return
	}
	t.consecutive[s.Symbol] = 0
}

// ShouldSkip reports whether hygiene limits pause evaluation for a symbol.
func (t *Tracker) ShouldSkip(symbol string) bool {
	t.rollover(time.Now().UTC())
	if t.dailyRejections >= t.DailyLimit {
		return true
	}
	return t.consecutive[symbol] >= t.ConsecutiveLimit
}

func (t *Tracker) rollover(now time.Time) {
	day := now.UTC().Truncate(24 * time.Hour)
	if day.After(t.day) {
		t.day = day
		t.dailyRejections = 0
		t.consecutive = make(map[string]int)
	}
}
