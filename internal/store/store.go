package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/mohammad-safakhou/bullbear/internal/debate"
)

// Store persists users and completed debate sessions. Persistence is external
// reporting: a failed write never invalidates an in-memory session.
type Store struct {
	DB *sql.DB
}

// NewWithDSN connects to Postgres and verifies the connection.
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error { return s.DB.Close() }

// CreateUser inserts a user with a bcrypt password hash.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, NOW())`,
		uuid.NewString(), email, passwordHash)
	return err
}

// GetUserByEmail returns the user id and password hash for a login check.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (string, string, error) {
	var id, hash string
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE email = $1`, email).Scan(&id, &hash)
	if err != nil {
		return "", "", err
	}
	return id, hash, nil
}

// DebateSummary is the list view of a stored session.
type DebateSummary struct {
	ID             string    `json:"id"`
	Ticker         string    `json:"ticker"`
	Question       string    `json:"question,omitempty"`
	Recommendation string    `json:"recommendation,omitempty"`
	Confidence     float64   `json:"confidence"`
	CreatedAt      time.Time `json:"created_at"`
}

// SaveDebate stores a finished session's export record for its owner.
func (s *Store) SaveDebate(ctx context.Context, userID string, rec debate.ExportRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal debate record: %w", err)
	}
	var recommendation string
	var confidence float64
	if rec.Verdict != nil {
		recommendation = string(rec.Verdict.Recommendation)
		confidence = rec.Verdict.Confidence
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO debate_sessions (id, user_id, ticker, question, recommendation, confidence, record, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, userID, rec.Ticker, rec.Question, recommendation, confidence, payload, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert debate session: %w", err)
	}
	return nil
}

// ListDebates returns the owner's sessions, newest first.
func (s *Store) ListDebates(ctx context.Context, userID string, limit int) ([]DebateSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, ticker, question, recommendation, confidence, created_at
		 FROM debate_sessions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list debate sessions: %w", err)
	}
	defer rows.Close()
	var out []DebateSummary
	for rows.Next() {
		var d DebateSummary
		if err := rows.Scan(&d.ID, &d.Ticker, &d.Question, &d.Recommendation, &d.Confidence, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetDebate loads one stored session record, scoped to its owner.
func (s *Store) GetDebate(ctx context.Context, id, userID string) (debate.ExportRecord, error) {
	var payload []byte
	err := s.DB.QueryRowContext(ctx,
		`SELECT record FROM debate_sessions WHERE id = $1 AND user_id = $2`, id, userID).Scan(&payload)
	if err != nil {
		return debate.ExportRecord{}, err
	}
	var rec debate.ExportRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return debate.ExportRecord{}, fmt.Errorf("decode debate record: %w", err)
	}
	return rec, nil
}
