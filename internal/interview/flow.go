// Package interview implements the webhook-driven call-flow state machine
// that conducts a multi-question voice interview and finalizes its scoring.
package interview

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/interview-screener/internal/telephony"
	"github.com/jonathan/interview-screener/internal/types"
)

// Spoken lines for the scripted interview.
const (
	greetingLine     = "Hello. Welcome to your automated interview. Please answer the questions clearly after the beep."
	completedLine    = "Thank you for completing the interview. Goodbye!"
	closingLine      = "Thank you for your interview, have a good day."
	candidateErrLine = "Error: Candidate record not found. Goodbye."
	questionsErrLine = "Error: No questions found for this interview. Goodbye."
	advanceErrLine   = "An error occurred during call advancement."
)

// Store is the persistence surface the state machine needs. Every
// cross-entity fetch is an explicit call so a missing related record is
// handled where it is observed.
type Store interface {
	GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error)
	GetJobDescription(ctx context.Context, id uuid.UUID) (*types.JobDescription, error)
	GetResultByCandidate(ctx context.Context, candidateID uuid.UUID) (*types.InterviewResult, error)
	UpsertResultEntry(ctx context.Context, resultID uuid.UUID, entry types.QAEntry) error
	FinalizeResult(ctx context.Context, resultID uuid.UUID, entries []types.QAEntry, finalScore int, finalRecommendation string) error
}

// Scorer produces the final verdict for a completed interview.
type Scorer interface {
	ScoreInterview(ctx context.Context, jdText string, resume types.ResumeSummary, entries []types.QAEntry) (*types.ScoringResult, error)
}

// Recording carries the optional fields of a recording callback.
type Recording struct {
	URL        string
	Duration   string
	Transcript string
}

// Flow drives one candidate's interview. It is purely reactive: every state
// transition is a response to a provider webhook, and every path returns a
// valid voice document — an internal failure must never break the live call.
type Flow struct {
	store  Store
	scorer Scorer
	logger *zap.Logger
}

// NewFlow creates a Flow.
func NewFlow(store Store, scorer Scorer, logger *zap.Logger) *Flow {
	return &Flow{store: store, scorer: scorer, logger: logger}
}

func questionURL(candidateID uuid.UUID, index int) string {
	return fmt.Sprintf("/twilio/interview/question/%s/%d", candidateID, index)
}

func advanceURL(candidateID uuid.UUID, next int) string {
	return fmt.Sprintf("/twilio/interview/advance_call/%s/%d", candidateID, next)
}

func recordDataURL(candidateID uuid.UUID, index int) string {
	return fmt.Sprintf("/twilio/interview/record_data/%s/%d", candidateID, index)
}

func finishURL(candidateID uuid.UUID) string {
	return fmt.Sprintf("/twilio/interview/finish/%s", candidateID)
}

// questions resolves the candidate's job-description question list.
func (f *Flow) questions(ctx context.Context, candidate *types.Candidate) []string {
	jd, err := f.store.GetJobDescription(ctx, candidate.JDID)
	if err != nil {
		f.logger.Error("failed to load job description",
			zap.String("candidate_id", candidate.ID.String()), zap.Error(err))
		return nil
	}
	if jd == nil {
		return nil
	}
	return jd.Questions
}

// Start greets the candidate and redirects into the first question.
func (f *Flow) Start(ctx context.Context, candidateID uuid.UUID) *telephony.VoiceResponse {
	candidate, err := f.store.GetCandidate(ctx, candidateID)
	if err != nil || candidate == nil {
		if err != nil {
			f.logger.Error("failed to load candidate", zap.String("candidate_id", candidateID.String()), zap.Error(err))
		}
		return telephony.NewVoiceResponse().Say(candidateErrLine)
	}

	if len(f.questions(ctx, candidate)) == 0 {
		return telephony.NewVoiceResponse().Say(questionsErrLine)
	}

	return telephony.NewVoiceResponse().
		Say(greetingLine).
		Redirect(questionURL(candidateID, 0))
}

// Question speaks question index and records the answer. The record verb's
// action advances the call; its transcription callback lands at the
// per-question recording endpoint. If the record verb never fires (pure
// silence with no recording), the trailing redirect still moves the call on.
func (f *Flow) Question(ctx context.Context, candidateID uuid.UUID, index int) *telephony.VoiceResponse {
	candidate, err := f.store.GetCandidate(ctx, candidateID)
	if err != nil || candidate == nil {
		if err != nil {
			f.logger.Error("failed to load candidate", zap.String("candidate_id", candidateID.String()), zap.Error(err))
		}
		return telephony.NewVoiceResponse().Say(candidateErrLine)
	}

	questions := f.questions(ctx, candidate)
	if index >= len(questions) {
		return telephony.NewVoiceResponse().
			Say(completedLine).
			Redirect(finishURL(candidateID))
	}

	return telephony.NewVoiceResponse().
		Say(fmt.Sprintf("Question number %d: %s", index+1, questions[index])).
		Record(advanceURL(candidateID, index+1), recordDataURL(candidateID, index)).
		Redirect(questionURL(candidateID, index+1))
}

// Advance re-resolves the question count and either moves to the next
// question or says goodbye and redirects to finish.
func (f *Flow) Advance(ctx context.Context, candidateID uuid.UUID, next int) *telephony.VoiceResponse {
	candidate, err := f.store.GetCandidate(ctx, candidateID)
	if err != nil || candidate == nil {
		f.logger.Warn("candidate not found during call advancement",
			zap.String("candidate_id", candidateID.String()), zap.Error(err))
		return telephony.NewVoiceResponse().Say(advanceErrLine)
	}

	response := telephony.NewVoiceResponse()
	if next < len(f.questions(ctx, candidate)) {
		return response.Redirect(questionURL(candidateID, next))
	}
	return response.Say(closingLine).Redirect(finishURL(candidateID))
}

// RecordData stores the answer for one question. The callback is
// acknowledged unconditionally: a failure here must not make the provider
// retry into a broken call. Duplicate callbacks for an index upsert rather
// than append, and a duplicate without a transcript never overwrites one
// that has it.
func (f *Flow) RecordData(ctx context.Context, candidateID uuid.UUID, index int, rec Recording) {
	result, err := f.store.GetResultByCandidate(ctx, candidateID)
	if err != nil || result == nil {
		f.logger.Warn("recording callback without interview result",
			zap.String("candidate_id", candidateID.String()), zap.Error(err))
		return
	}

	candidate, err := f.store.GetCandidate(ctx, candidateID)
	if err != nil || candidate == nil {
		f.logger.Warn("recording callback without candidate",
			zap.String("candidate_id", candidateID.String()), zap.Error(err))
		return
	}

	questions := f.questions(ctx, candidate)
	if len(questions) == 0 || index < 0 || index >= len(questions) {
		f.logger.Warn("recording callback with no matching question",
			zap.String("candidate_id", candidateID.String()), zap.Int("question_index", index))
		return
	}

	transcript := rec.Transcript
	if transcript == "" {
		transcript = types.NoResponseMarker
	}

	entry := types.QAEntry{
		QuestionIndex: index,
		Question:      questions[index],
		Transcript:    transcript,
		AudioURL:      rec.URL,
		Duration:      rec.Duration,
	}
	if err := f.store.UpsertResultEntry(ctx, result.ID, entry); err != nil {
		f.logger.Error("failed to store answer entry",
			zap.String("candidate_id", candidateID.String()),
			zap.Int("question_index", index), zap.Error(err))
	}
}

// Finish runs scoring over the accumulated answers and hangs up. Scoring
// failures are logged and leave the result unscored; the hang-up document is
// returned regardless. A second finish callback for an already-scored result
// is a no-op.
func (f *Flow) Finish(ctx context.Context, candidateID uuid.UUID) *telephony.VoiceResponse {
	hangup := telephony.NewVoiceResponse().Hangup()

	result, err := f.store.GetResultByCandidate(ctx, candidateID)
	if err != nil || result == nil {
		if err != nil {
			f.logger.Error("failed to load interview result", zap.String("candidate_id", candidateID.String()), zap.Error(err))
		}
		return hangup
	}
	if result.Finalized() {
		f.logger.Info("finish callback for already-scored interview",
			zap.String("candidate_id", candidateID.String()))
		return hangup
	}

	candidate, err := f.store.GetCandidate(ctx, candidateID)
	if err != nil || candidate == nil {
		f.logger.Error("finish callback without candidate",
			zap.String("candidate_id", candidateID.String()), zap.Error(err))
		return hangup
	}
	jd, err := f.store.GetJobDescription(ctx, candidate.JDID)
	if err != nil || jd == nil {
		f.logger.Error("finish callback without job description",
			zap.String("candidate_id", candidateID.String()), zap.Error(err))
		return hangup
	}

	verdict, err := f.scorer.ScoreInterview(ctx, jd.Content, candidate.ResumeSummary, result.InterviewData)
	if err != nil {
		f.logger.Error("interview scoring failed",
			zap.String("candidate_id", candidateID.String()), zap.Error(err))
		return hangup
	}

	entries := mergeScores(result.InterviewData, verdict.IndividualScores)
	if err := f.store.FinalizeResult(ctx, result.ID, entries, verdict.FinalScore, verdict.FinalRecommendation); err != nil {
		f.logger.Error("failed to persist scoring verdict",
			zap.String("candidate_id", candidateID.String()), zap.Error(err))
		return hangup
	}

	f.logger.Info("scoring complete",
		zap.String("candidate_id", candidateID.String()),
		zap.Int("final_score", verdict.FinalScore),
	)
	return hangup
}

// mergeScores fills each entry's score and reasoning from the first verdict
// whose question text matches exactly. Entries with no match stay unscored.
func mergeScores(entries []types.QAEntry, scores []types.QuestionScore) []types.QAEntry {
	for i := range entries {
		for _, s := range scores {
			if s.Question != entries[i].Question {
				continue
			}
			score := s.Score
			reasoning := s.Reasoning
			entries[i].Score = &score
			entries[i].Reasoning = &reasoning
			break
		}
	}
	return entries
}
