package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/interview-screener/internal/types"
)

// CreateResult persists a new interview result. Returns ErrConflict when the
// candidate already has a result or the call SID is already recorded.
func (db *DB) CreateResult(ctx context.Context, r *types.InterviewResult) error {
	data, err := json.Marshal(r.InterviewData)
	if err != nil {
		return fmt.Errorf("failed to marshal interview data: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO results (id, candidate_id, call_sid, interview_data)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		r.ID, r.CandidateID, r.CallSID, data,
	).Scan(&r.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("interview result for candidate %s: %w", r.CandidateID, ErrConflict)
		}
		return fmt.Errorf("failed to create interview result: %w", err)
	}
	return nil
}

// GetResultByCandidate retrieves the interview result owned by a candidate.
// Returns nil when not found.
func (db *DB) GetResultByCandidate(ctx context.Context, candidateID uuid.UUID) (*types.InterviewResult, error) {
	return db.scanResult(db.pool.QueryRow(ctx,
		`SELECT id, candidate_id, call_sid, interview_data, final_score, final_recommendation, created_at
		 FROM results WHERE candidate_id = $1`,
		candidateID,
	))
}

// UpsertResultEntry merges a question/answer entry into a result's entry
// sequence, keyed by question index. The row is locked for the duration of
// the read-modify-write so concurrent callbacks cannot lose entries.
func (db *DB) UpsertResultEntry(ctx context.Context, resultID uuid.UUID, entry types.QAEntry) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var raw []byte
	err = tx.QueryRow(ctx,
		`SELECT interview_data FROM results WHERE id = $1 FOR UPDATE`,
		resultID,
	).Scan(&raw)
	if err != nil {
		if err == pgx.ErrNoRows {
			return fmt.Errorf("result not found: %s", resultID)
		}
		return fmt.Errorf("failed to lock result: %w", err)
	}

	var entries []types.QAEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("failed to unmarshal interview data: %w", err)
	}

	entries = types.UpsertEntry(entries, entry)

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal interview data: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE results SET interview_data = $1 WHERE id = $2`,
		data, resultID,
	); err != nil {
		return fmt.Errorf("failed to update interview data: %w", err)
	}

	return tx.Commit(ctx)
}

// FinalizeResult stores the scored entry sequence and the final verdict.
func (db *DB) FinalizeResult(ctx context.Context, resultID uuid.UUID, entries []types.QAEntry, finalScore int, finalRecommendation string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal interview data: %w", err)
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE results
		 SET interview_data = $1, final_score = $2, final_recommendation = $3
		 WHERE id = $4`,
		data, finalScore, finalRecommendation, resultID,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("result not found: %s", resultID)
	}
	return nil
}

func (db *DB) scanResult(row pgx.Row) (*types.InterviewResult, error) {
	var r types.InterviewResult
	var data []byte

	err := row.Scan(&r.ID, &r.CandidateID, &r.CallSID, &data, &r.FinalScore, &r.FinalRecommendation, &r.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get interview result: %w", err)
	}

	if err := json.Unmarshal(data, &r.InterviewData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interview data: %w", err)
	}
	return &r, nil
}
