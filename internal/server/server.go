// Package server provides the HTTP API and Twilio webhook surface for the
// interview screener.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/interview-screener/internal/interview"
	"github.com/jonathan/interview-screener/internal/telephony"
	"github.com/jonathan/interview-screener/internal/types"
)

// Store is the persistence surface the handlers need. *db.DB implements it.
type Store interface {
	interview.Store
	CreateJobDescription(ctx context.Context, jd *types.JobDescription) error
	CreateCandidate(ctx context.Context, c *types.Candidate) error
	CreateResult(ctx context.Context, r *types.InterviewResult) error
}

// Generator is the LLM surface: question generation, résumé structuring, scoring.
type Generator interface {
	interview.Scorer
	GenerateQuestions(ctx context.Context, jdText string) ([]string, error)
	ParseResume(ctx context.Context, resumeText string) (types.ResumeSummary, error)
}

// Extractor converts an uploaded résumé file to plain text.
type Extractor interface {
	ExtractText(filename string, data []byte) (string, error)
}

// CallTrigger places an outbound interview call and returns its call SID.
type CallTrigger interface {
	TriggerCall(ctx context.Context, toNumber string, candidateID uuid.UUID) (string, error)
}

// Config holds server configuration
type Config struct {
	Port   int
	APIKey string
}

// Deps are the external collaborators, injected so tests can substitute fakes.
type Deps struct {
	Store     Store
	Generator Generator
	Extractor Extractor
	Calls     CallTrigger
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	store      Store
	generator  Generator
	extractor  Extractor
	calls      CallTrigger
	flow       *interview.Flow
	apiKey     string
	logger     *zap.Logger
}

// New creates a new server instance
func New(cfg Config, deps Deps, logger *zap.Logger) *Server {
	s := &Server{
		store:     deps.Store,
		generator: deps.Generator,
		extractor: deps.Extractor,
		calls:     deps.Calls,
		flow:      interview.NewFlow(deps.Store, deps.Generator, logger),
		apiKey:    cfg.APIKey,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Management API, keyed by X-API-Key
	mux.Handle("POST /jd/generate-questions", s.requireAPIKey(s.handleGenerateQuestions))
	mux.Handle("POST /candidate/create", s.requireAPIKey(s.handleCreateCandidate))
	mux.Handle("POST /interview/trigger/{candidate_id}", s.requireAPIKey(s.handleTriggerInterview))

	// Twilio webhooks. Deliberately unauthenticated: the provider must be
	// able to reach them, and the paths carry no secrets.
	mux.HandleFunc("POST /twilio/interview/start/{candidate_id}", s.handleInterviewStart)
	mux.HandleFunc("POST /twilio/interview/question/{candidate_id}/{question_index}", s.handleInterviewQuestion)
	mux.HandleFunc("POST /twilio/interview/advance_call/{candidate_id}/{next_question}", s.handleAdvanceCall)
	mux.HandleFunc("POST /twilio/interview/record_data/{candidate_id}/{question_index}", s.handleRecordData)
	mux.HandleFunc("POST /twilio/interview/finish/{candidate_id}", s.handleInterviewFinish)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // LLM-backed handlers block on generation
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the configured handler chain.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// requireAPIKey guards a management handler with the static API key.
func (s *Server) requireAPIKey(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) != 1 {
			s.errorResponse(w, http.StatusUnauthorized, "Invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// handleRoot returns a liveness message.
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "AI Interview Screener backend is running."})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// twimlResponse writes a voice-control document. The webhook protocol
// requires a response on every path, so a render failure degrades to a bare
// hang-up document rather than an HTTP error.
func (s *Server) twimlResponse(w http.ResponseWriter, response *telephony.VoiceResponse) {
	body, err := response.Render()
	if err != nil {
		s.logger.Error("failed to render TwiML", zap.Error(err))
		body, _ = telephony.NewVoiceResponse().Hangup().Render()
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Error("failed to write TwiML response", zap.Error(err))
	}
}
