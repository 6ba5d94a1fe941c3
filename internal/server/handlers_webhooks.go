package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/interview-screener/internal/interview"
	"github.com/jonathan/interview-screener/internal/telephony"
)

// The webhook handlers answer the telephony provider mid-call, so they must
// return a valid voice document on every path; malformed input degrades to a
// spoken error or a bare acknowledgment, never an HTTP failure.

func (s *Server) webhookCandidateID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("candidate_id"))
	if err != nil {
		s.logger.Warn("webhook with malformed candidate id",
			zap.String("path", r.URL.Path), zap.Error(err))
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) handleInterviewStart(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.webhookCandidateID(r)
	if !ok {
		s.twimlResponse(w, telephony.NewVoiceResponse().Say("Error: Candidate record not found. Goodbye."))
		return
	}
	s.twimlResponse(w, s.flow.Start(r.Context(), candidateID))
}

func (s *Server) handleInterviewQuestion(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.webhookCandidateID(r)
	index, err := strconv.Atoi(r.PathValue("question_index"))
	if !ok || err != nil || index < 0 {
		s.twimlResponse(w, telephony.NewVoiceResponse().Say("Error: Candidate record not found. Goodbye."))
		return
	}
	s.twimlResponse(w, s.flow.Question(r.Context(), candidateID, index))
}

func (s *Server) handleAdvanceCall(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.webhookCandidateID(r)
	next, err := strconv.Atoi(r.PathValue("next_question"))
	if !ok || err != nil || next < 0 {
		s.twimlResponse(w, telephony.NewVoiceResponse().Say("An error occurred during call advancement."))
		return
	}
	s.twimlResponse(w, s.flow.Advance(r.Context(), candidateID, next))
}

// handleRecordData stores one answer. It always acknowledges with a bare 200
// so the provider does not retry indefinitely.
func (s *Server) handleRecordData(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.webhookCandidateID(r)
	index, err := strconv.Atoi(r.PathValue("question_index"))
	if ok && err == nil {
		if err := r.ParseForm(); err != nil {
			s.logger.Warn("recording callback with malformed form", zap.Error(err))
		}
		s.flow.RecordData(r.Context(), candidateID, index, interview.Recording{
			URL:        r.PostFormValue("RecordingUrl"),
			Duration:   r.PostFormValue("RecordingDuration"),
			Transcript: r.PostFormValue("TranscriptionText"),
		})
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleInterviewFinish(w http.ResponseWriter, r *http.Request) {
	candidateID, ok := s.webhookCandidateID(r)
	if !ok {
		s.twimlResponse(w, telephony.NewVoiceResponse().Hangup())
		return
	}
	s.twimlResponse(w, s.flow.Finish(r.Context(), candidateID))
}
