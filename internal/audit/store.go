// Package audit persists a log of past scans in SQLite. The detection core
// never writes here; the server logs an event only after a ScanResult is
// finalized, so a failed audit write degrades to a warning and never fails
// the request that produced it.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/detect"
	appotel "github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/otel"
)

var tracer = appotel.Tracer("github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/audit")

// Event types recorded in the log.
const (
	EventScan   = "scan"
	EventRedact = "redact"
	EventUpload = "upload"
)

// DefaultListLimit caps GET /v1/logs responses when no limit is given.
const DefaultListLimit = 100

// Store persists scan events in SQLite.
type Store struct {
	db *sql.DB
}

// Record is one audit log entry.
type Record struct {
	ID        string           `json:"id"`
	EventType string           `json:"event_type"`
	Input     string           `json:"input"`
	Findings  []detect.Finding `json:"findings"`
	RiskScore float64          `json:"risk_score"`
	RiskTier  string           `json:"risk_tier"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewStore opens (and if needed creates) the audit database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS audit_logs (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		input TEXT NOT NULL,
		findings_json TEXT NOT NULL,
		risk_score REAL NOT NULL,
		risk_tier TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_logs(created_at);
	CREATE INDEX IF NOT EXISTS idx_audit_event ON audit_logs(event_type);
	`
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Log records one event. input is stored verbatim; findings are stored as
// JSON alongside the aggregate score and tier.
func (s *Store) Log(ctx context.Context, eventType, input string, res *detect.ScanResult) error {
	ctx, span := tracer.Start(ctx, "audit.log")
	defer span.End()

	findings := res.Findings
	if findings == nil {
		findings = []detect.Finding{}
	}
	findingsJSON, err := json.Marshal(findings)
	if err != nil {
		return fmt.Errorf("marshalling findings: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, event_type, input, findings_json, risk_score, risk_tier, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), eventType, input, string(findingsJSON), res.RiskScore, string(res.RiskTier), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting audit record: %w", err)
	}
	return nil
}

// List returns the most recent records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "audit.list")
	defer span.End()

	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_type, input, findings_json, risk_score, risk_tier, created_at
		 FROM audit_logs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var findingsJSON string
		if err := rows.Scan(&rec.ID, &rec.EventType, &rec.Input, &findingsJSON, &rec.RiskScore, &rec.RiskTier, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit record: %w", err)
		}
		if err := json.Unmarshal([]byte(findingsJSON), &rec.Findings); err != nil {
			return nil, fmt.Errorf("decoding findings for record %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PruneOlderThan deletes records older than the given age and returns the
// number removed. Driven by the retention cron in serve.
func (s *Store) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	ctx, span := tracer.Start(ctx, "audit.prune")
	defer span.End()

	cutoff := time.Now().UTC().Add(-age)
	res, err := s.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning audit records: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
