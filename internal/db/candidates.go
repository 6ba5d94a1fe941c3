package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/interview-screener/internal/types"
)

// CreateCandidate persists a new candidate. Returns ErrConflict when a
// candidate with the same phone number already exists.
func (db *DB) CreateCandidate(ctx context.Context, c *types.Candidate) error {
	summary, err := json.Marshal(c.ResumeSummary)
	if err != nil {
		return fmt.Errorf("failed to marshal resume summary: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO candidates (id, name, e164_phone, resume_summary, jd_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		c.ID, c.Name, c.E164Phone, summary, c.JDID,
	).Scan(&c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("candidate with phone %s: %w", c.E164Phone, ErrConflict)
		}
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

// GetCandidate retrieves a candidate by ID. Returns nil when not found.
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	var c types.Candidate
	var summary []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, name, e164_phone, resume_summary, jd_id, created_at
		 FROM candidates WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.E164Phone, &summary, &c.JDID, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	if err := json.Unmarshal(summary, &c.ResumeSummary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resume summary: %w", err)
	}
	return &c, nil
}
