package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/interview-screener/internal/types"
)

// CreateJobDescription persists a job description with its generated questions.
func (db *DB) CreateJobDescription(ctx context.Context, jd *types.JobDescription) error {
	questions, err := json.Marshal(jd.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO job_descriptions (id, title, content, generated_questions)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		jd.ID, jd.Title, jd.Content, questions,
	).Scan(&jd.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job description: %w", err)
	}
	return nil
}

// GetJobDescription retrieves a job description by ID. Returns nil when not found.
func (db *DB) GetJobDescription(ctx context.Context, id uuid.UUID) (*types.JobDescription, error) {
	var jd types.JobDescription
	var questions []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, title, content, generated_questions, created_at
		 FROM job_descriptions WHERE id = $1`,
		id,
	).Scan(&jd.ID, &jd.Title, &jd.Content, &questions, &jd.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job description: %w", err)
	}

	if err := json.Unmarshal(questions, &jd.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	return &jd, nil
}
