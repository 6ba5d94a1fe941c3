package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/interview-screener/internal/types"
)

// handleGenerateQuestions creates a job description with LLM-generated
// interview questions.
func (s *Server) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req types.JobDescriptionCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Title and content are required")
		return
	}

	questions, err := s.generator.GenerateQuestions(r.Context(), req.Content)
	if err != nil {
		s.logger.Error("question generation failed", zap.Error(err))
		s.errorResponse(w, http.StatusServiceUnavailable, "AI question generation failed")
		return
	}

	jd := &types.JobDescription{
		ID:        uuid.New(),
		Title:     req.Title,
		Content:   req.Content,
		Questions: questions,
	}
	if err := s.store.CreateJobDescription(r.Context(), jd); err != nil {
		s.logger.Error("failed to store job description", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Database error creating job description")
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"jd_id":     jd.ID,
		"questions": jd.Questions,
	})
}
