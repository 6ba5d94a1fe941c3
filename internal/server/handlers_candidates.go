package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/interview-screener/internal/db"
	"github.com/jonathan/interview-screener/internal/resume"
	"github.com/jonathan/interview-screener/internal/types"
)

// maxResumeSize bounds the multipart form held in memory.
const maxResumeSize = 10 << 20

// handleCreateCandidate ingests a résumé upload and creates a candidate.
func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxResumeSize); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	req := types.CandidateCreate{
		Name:      strings.TrimSpace(r.FormValue("name")),
		E164Phone: strings.TrimSpace(r.FormValue("e164_phone")),
		JDID:      strings.Trim(strings.TrimSpace(r.FormValue("jd_id")), `"`),
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid candidate data: name, E.164 phone and jd_id are required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Resume file is required")
		return
	}
	defer file.Close() //nolint:errcheck
	contents, err := io.ReadAll(file)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to read resume file")
		return
	}

	rawText, err := s.extractor.ExtractText(header.Filename, contents)
	if err != nil {
		if errors.Is(err, resume.ErrUnsupportedFormat) {
			s.errorResponse(w, http.StatusBadRequest, "Failed to read file or file is unsupported. Only PDF/DOCX are supported")
			return
		}
		s.logger.Warn("resume extraction failed", zap.String("filename", header.Filename), zap.Error(err))
		s.errorResponse(w, http.StatusBadRequest, "Failed to extract text from resume")
		return
	}

	summary, err := s.generator.ParseResume(r.Context(), rawText)
	if err != nil {
		s.logger.Error("resume parsing failed", zap.Error(err))
		s.errorResponse(w, http.StatusServiceUnavailable, "AI resume parsing failed")
		return
	}

	jdID, err := uuid.Parse(req.JDID)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job description ID")
		return
	}
	jd, err := s.store.GetJobDescription(r.Context(), jdID)
	if err != nil {
		s.logger.Error("failed to look up job description", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Database error looking up job description")
		return
	}
	if jd == nil {
		s.errorResponse(w, http.StatusNotFound, "Job description "+req.JDID+" not found")
		return
	}

	candidate := &types.Candidate{
		ID:            uuid.New(),
		Name:          req.Name,
		E164Phone:     req.E164Phone,
		ResumeSummary: summary,
		JDID:          jd.ID,
	}
	if err := s.store.CreateCandidate(r.Context(), candidate); err != nil {
		if errors.Is(err, db.ErrConflict) {
			s.errorResponse(w, http.StatusConflict, "Candidate with this phone number already exists")
			return
		}
		s.logger.Error("failed to store candidate", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Database error creating candidate")
		return
	}

	s.jsonResponse(w, http.StatusCreated, candidate)
}
