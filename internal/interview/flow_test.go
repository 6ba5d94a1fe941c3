package interview

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/interview-screener/internal/telephony"
	"github.com/jonathan/interview-screener/internal/types"
)

type fakeStore struct {
	candidates  map[uuid.UUID]*types.Candidate
	jds         map[uuid.UUID]*types.JobDescription
	results     map[uuid.UUID]*types.InterviewResult // keyed by result ID
	finalizeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		candidates: make(map[uuid.UUID]*types.Candidate),
		jds:        make(map[uuid.UUID]*types.JobDescription),
		results:    make(map[uuid.UUID]*types.InterviewResult),
	}
}

func (s *fakeStore) GetCandidate(_ context.Context, id uuid.UUID) (*types.Candidate, error) {
	return s.candidates[id], nil
}

func (s *fakeStore) GetJobDescription(_ context.Context, id uuid.UUID) (*types.JobDescription, error) {
	return s.jds[id], nil
}

func (s *fakeStore) GetResultByCandidate(_ context.Context, candidateID uuid.UUID) (*types.InterviewResult, error) {
	for _, r := range s.results {
		if r.CandidateID == candidateID {
			return r, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) UpsertResultEntry(_ context.Context, resultID uuid.UUID, entry types.QAEntry) error {
	r, ok := s.results[resultID]
	if !ok {
		return fmt.Errorf("result not found: %s", resultID)
	}
	r.InterviewData = types.UpsertEntry(r.InterviewData, entry)
	return nil
}

func (s *fakeStore) FinalizeResult(_ context.Context, resultID uuid.UUID, entries []types.QAEntry, finalScore int, finalRecommendation string) error {
	if s.finalizeErr != nil {
		return s.finalizeErr
	}
	r, ok := s.results[resultID]
	if !ok {
		return fmt.Errorf("result not found: %s", resultID)
	}
	r.InterviewData = entries
	r.FinalScore = &finalScore
	r.FinalRecommendation = &finalRecommendation
	return nil
}

type fakeScorer struct {
	verdict *types.ScoringResult
	err     error
	calls   int
}

func (f *fakeScorer) ScoreInterview(_ context.Context, _ string, _ types.ResumeSummary, _ []types.QAEntry) (*types.ScoringResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.verdict, nil
}

// seedCandidate creates a candidate with a job description carrying questions.
func seedCandidate(store *fakeStore, questions []string) uuid.UUID {
	jdID := uuid.New()
	store.jds[jdID] = &types.JobDescription{ID: jdID, Title: "Backend", Content: "Backend role", Questions: questions}

	candidateID := uuid.New()
	store.candidates[candidateID] = &types.Candidate{
		ID:        candidateID,
		Name:      "Jane Doe",
		E164Phone: "+911234567890",
		JDID:      jdID,
	}
	return candidateID
}

func seedResult(store *fakeStore, candidateID uuid.UUID) *types.InterviewResult {
	result := &types.InterviewResult{
		ID:            uuid.New(),
		CandidateID:   candidateID,
		CallSID:       "CA1234",
		InterviewData: []types.QAEntry{},
	}
	store.results[result.ID] = result
	return result
}

func newTestFlow(store *fakeStore, scorer Scorer) *Flow {
	if scorer == nil {
		scorer = &fakeScorer{verdict: &types.ScoringResult{}}
	}
	return NewFlow(store, scorer, zap.NewNop())
}

func sayText(t *testing.T, verb any) string {
	t.Helper()
	say, ok := verb.(telephony.Say)
	require.True(t, ok, "expected Say verb, got %T", verb)
	return say.Text
}

func redirectURL(t *testing.T, verb any) string {
	t.Helper()
	redirect, ok := verb.(telephony.Redirect)
	require.True(t, ok, "expected Redirect verb, got %T", verb)
	return redirect.URL
}

func TestStart_UnknownCandidate(t *testing.T) {
	flow := newTestFlow(newFakeStore(), nil)

	resp := flow.Start(context.Background(), uuid.New())
	require.Len(t, resp.Verbs, 1)
	assert.Contains(t, sayText(t, resp.Verbs[0]), "Candidate record not found")
}

func TestStart_NoQuestions(t *testing.T) {
	store := newFakeStore()
	candidateID := seedCandidate(store, nil)
	flow := newTestFlow(store, nil)

	resp := flow.Start(context.Background(), candidateID)
	require.Len(t, resp.Verbs, 1)
	assert.Contains(t, sayText(t, resp.Verbs[0]), "No questions found")
}

func TestStart_GreetsAndRedirectsToFirstQuestion(t *testing.T) {
	store := newFakeStore()
	candidateID := seedCandidate(store, []string{"Q1", "Q2"})
	flow := newTestFlow(store, nil)

	resp := flow.Start(context.Background(), candidateID)
	require.Len(t, resp.Verbs, 2)
	assert.Contains(t, sayText(t, resp.Verbs[0]), "Welcome to your automated interview")
	assert.Equal(t, fmt.Sprintf("/twilio/interview/question/%s/0", candidateID), redirectURL(t, resp.Verbs[1]))
}

func TestQuestion_SpeaksAndRecords(t *testing.T) {
	store := newFakeStore()
	candidateID := seedCandidate(store, []string{"Q1", "Q2"})
	flow := newTestFlow(store, nil)

	resp := flow.Question(context.Background(), candidateID, 0)
	require.Len(t, resp.Verbs, 3)

	assert.Equal(t, "Question number 1: Q1", sayText(t, resp.Verbs[0]))

	record, ok := resp.Verbs[1].(telephony.Record)
	require.True(t, ok)
	assert.Equal(t, fmt.Sprintf("/twilio/interview/advance_call/%s/1", candidateID), record.Action)
	assert.Equal(t, fmt.Sprintf("/twilio/interview/record_data/%s/0", candidateID), record.TranscribeCallback)

	// Fallback redirect in case the record verb never fires.
	assert.Equal(t, fmt.Sprintf("/twilio/interview/question/%s/1", candidateID), redirectURL(t, resp.Verbs[2]))
}

func TestQuestion_IndexAtTotalFinishes(t *testing.T) {
	for _, total := range []int{0, 1, 2, 5} {
		store := newFakeStore()
		questions := make([]string, total)
		for i := range questions {
			questions[i] = fmt.Sprintf("Q%d", i+1)
		}
		candidateID := seedCandidate(store, questions)
		flow := newTestFlow(store, nil)

		resp := flow.Question(context.Background(), candidateID, total)
		require.Len(t, resp.Verbs, 2, "total=%d", total)
		assert.Contains(t, sayText(t, resp.Verbs[0]), "completing the interview")
		assert.Equal(t, fmt.Sprintf("/twilio/interview/finish/%s", candidateID), redirectURL(t, resp.Verbs[1]))
	}
}

func TestAdvance_NextQuestionOrFinish(t *testing.T) {
	store := newFakeStore()
	candidateID := seedCandidate(store, []string{"Q1", "Q2"})
	flow := newTestFlow(store, nil)

	resp := flow.Advance(context.Background(), candidateID, 1)
	require.Len(t, resp.Verbs, 1)
	assert.Equal(t, fmt.Sprintf("/twilio/interview/question/%s/1", candidateID), redirectURL(t, resp.Verbs[0]))

	resp = flow.Advance(context.Background(), candidateID, 2)
	require.Len(t, resp.Verbs, 2)
	assert.Contains(t, sayText(t, resp.Verbs[0]), "have a good day")
	assert.Equal(t, fmt.Sprintf("/twilio/interview/finish/%s", candidateID), redirectURL(t, resp.Verbs[1]))
}

func TestRecordData_NoTranscriptUsesMarker(t *testing.T) {
	store := newFakeStore()
	candidateID := seedCandidate(store, []string{"Q1", "Q2"})
	result := seedResult(store, candidateID)
	flow := newTestFlow(store, nil)

	flow.RecordData(context.Background(), candidateID, 0, Recording{URL: "http://rec/1", Duration: "12"})

	require.Len(t, result.InterviewData, 1)
	entry := result.InterviewData[0]
	assert.Equal(t, 0, entry.QuestionIndex)
	assert.Equal(t, "Q1", entry.Question)
	assert.Equal(t, types.NoResponseMarker, entry.Transcript)
	assert.Equal(t, "http://rec/1", entry.AudioURL)
	assert.Nil(t, entry.Score)
}

func TestRecordData_DuplicateCallbackDoesNotDuplicate(t *testing.T) {
	store := newFakeStore()
	candidateID := seedCandidate(store, []string{"Q1"})
	result := seedResult(store, candidateID)
	flow := newTestFlow(store, nil)

	// Action callback first (no transcript yet), then the async transcription.
	flow.RecordData(context.Background(), candidateID, 0, Recording{URL: "http://rec/1"})
	flow.RecordData(context.Background(), candidateID, 0, Recording{URL: "http://rec/1", Transcript: "Answer A"})
	// A replayed marker-only callback must not clobber the transcript.
	flow.RecordData(context.Background(), candidateID, 0, Recording{URL: "http://rec/1"})

	require.Len(t, result.InterviewData, 1)
	assert.Equal(t, "Answer A", result.InterviewData[0].Transcript)
}

func TestRecordData_MissingResultIsNoOp(t *testing.T) {
	store := newFakeStore()
	candidateID := seedCandidate(store, []string{"Q1"})
	flow := newTestFlow(store, nil)

	// No result seeded; must not panic or create anything.
	flow.RecordData(context.Background(), candidateID, 0, Recording{Transcript: "Answer A"})
	assert.Empty(t, store.results)
}

func TestRecordData_OutOfRangeIndexIsNoOp(t *testing.T) {
	store := newFakeStore()
	candidateID := seedCandidate(store, []string{"Q1"})
	result := seedResult(store, candidateID)
	flow := newTestFlow(store, nil)

	flow.RecordData(context.Background(), candidateID, 5, Recording{Transcript: "Answer A"})
	assert.Empty(t, result.InterviewData)
}

func TestFinish_MissingResultStillHangsUp(t *testing.T) {
	flow := newTestFlow(newFakeStore(), nil)

	resp := flow.Finish(context.Background(), uuid.New())
	require.Len(t, resp.Verbs, 1)
	_, ok := resp.Verbs[0].(telephony.Hangup)
	assert.True(t, ok)
}

func TestFinish_ScoringFailureLeavesResultUnscored(t *testing.T) {
	store := newFakeStore()
	candidateID := seedCandidate(store, []string{"Q1"})
	result := seedResult(store, candidateID)
	result.InterviewData = []types.QAEntry{{QuestionIndex: 0, Question: "Q1", Transcript: "Answer A"}}

	scorer := &fakeScorer{err: fmt.Errorf("model unavailable")}
	flow := newTestFlow(store, scorer)

	resp := flow.Finish(context.Background(), candidateID)
	require.Len(t, resp.Verbs, 1)
	_, ok := resp.Verbs[0].(telephony.Hangup)
	assert.True(t, ok, "hang-up must be returned even when scoring fails")

	assert.Nil(t, result.FinalScore)
	assert.Nil(t, result.FinalRecommendation)
}

func TestFinish_MergesScoresByExactQuestionText(t *testing.T) {
	store := newFakeStore()
	candidateID := seedCandidate(store, []string{"Q1", "Q2"})
	result := seedResult(store, candidateID)
	result.InterviewData = []types.QAEntry{
		{QuestionIndex: 0, Question: "Q1", Transcript: "Answer A"},
		{QuestionIndex: 1, Question: "Q2", Transcript: types.NoResponseMarker},
	}

	scorer := &fakeScorer{verdict: &types.ScoringResult{
		FinalScore:          8,
		FinalRecommendation: "Hire",
		IndividualScores: []types.QuestionScore{
			{Question: "Q1", Score: 9, Reasoning: "Good"},
			{Question: "Q99", Score: 1, Reasoning: "Unmatched"},
		},
	}}
	flow := newTestFlow(store, scorer)

	resp := flow.Finish(context.Background(), candidateID)
	require.Len(t, resp.Verbs, 1)
	_, ok := resp.Verbs[0].(telephony.Hangup)
	assert.True(t, ok)

	require.NotNil(t, result.FinalScore)
	assert.Equal(t, 8, *result.FinalScore)
	require.NotNil(t, result.FinalRecommendation)
	assert.Equal(t, "Hire", *result.FinalRecommendation)

	require.NotNil(t, result.InterviewData[0].Score)
	assert.Equal(t, 9, *result.InterviewData[0].Score)
	assert.Equal(t, "Good", *result.InterviewData[0].Reasoning)

	// Q2 had no matching score entry and stays unscored.
	assert.Nil(t, result.InterviewData[1].Score)
	assert.Nil(t, result.InterviewData[1].Reasoning)
}

func TestFinish_AlreadyScoredIsIdempotent(t *testing.T) {
	store := newFakeStore()
	candidateID := seedCandidate(store, []string{"Q1"})
	result := seedResult(store, candidateID)
	result.InterviewData = []types.QAEntry{{QuestionIndex: 0, Question: "Q1", Transcript: "Answer A"}}

	scorer := &fakeScorer{verdict: &types.ScoringResult{FinalScore: 7, FinalRecommendation: "Hire"}}
	flow := newTestFlow(store, scorer)

	flow.Finish(context.Background(), candidateID)
	resp := flow.Finish(context.Background(), candidateID)

	require.Len(t, resp.Verbs, 1)
	_, ok := resp.Verbs[0].(telephony.Hangup)
	assert.True(t, ok)
	assert.Equal(t, 1, scorer.calls, "a finalized result must not be re-scored")
	assert.Equal(t, 7, *result.FinalScore)
}
