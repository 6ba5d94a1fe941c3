package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/interview-screener/internal/db"
	"github.com/jonathan/interview-screener/internal/types"
)

// handleTriggerInterview places the outbound call and creates the interview
// result record. The record is only created once a call SID is in hand, so a
// failed call never leaves a dangling result.
func (s *Server) handleTriggerInterview(w http.ResponseWriter, r *http.Request) {
	candidateID, err := uuid.Parse(r.PathValue("candidate_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid candidate ID")
		return
	}

	candidate, err := s.store.GetCandidate(r.Context(), candidateID)
	if err != nil {
		s.logger.Error("failed to look up candidate", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Database error looking up candidate")
		return
	}
	if candidate == nil {
		s.errorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}

	existing, err := s.store.GetResultByCandidate(r.Context(), candidateID)
	if err != nil {
		s.logger.Error("failed to look up interview result", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Database error looking up interview result")
		return
	}
	if existing != nil {
		s.errorResponse(w, http.StatusConflict, "Interview already triggered for this candidate")
		return
	}

	callSID, err := s.calls.TriggerCall(r.Context(), candidate.E164Phone, candidateID)
	if err != nil {
		s.logger.Error("outbound call failed",
			zap.String("candidate_id", candidateID.String()), zap.Error(err))
		s.errorResponse(w, http.StatusBadGateway, "Failed to initiate outbound call")
		return
	}

	result := &types.InterviewResult{
		ID:            uuid.New(),
		CandidateID:   candidateID,
		CallSID:       callSID,
		InterviewData: []types.QAEntry{},
	}
	if err := s.store.CreateResult(r.Context(), result); err != nil {
		if errors.Is(err, db.ErrConflict) {
			s.errorResponse(w, http.StatusConflict, "Interview already triggered for this candidate")
			return
		}
		s.logger.Error("failed to store interview result", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Database error creating interview result")
		return
	}

	s.jsonResponse(w, http.StatusAccepted, map[string]string{
		"call_sid": callSID,
		"status":   "Call initiated",
	})
}
