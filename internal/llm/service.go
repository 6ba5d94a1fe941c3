package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/jonathan/interview-screener/internal/types"
)

const questionsSystemPrompt = `You are an expert technical interviewer. Your task is to analyze the provided
Job Description (JD) and generate exactly 7 concise, challenging, and relevant
interview questions. The output MUST be a JSON object with a single key 'questions'
containing a list of the 7 generated questions.`

const resumeSystemPrompt = `You are a specialized HR data parser. Analyze the raw text of a resume
and extract the candidate's core information. The output MUST be a JSON object
with the following keys: 'name', 'email', 'phone', 'years_experience', 'top_skills',
and 'education_summary'. 'top_skills' is a list of strings. Infer the best possible
value for each key. If a piece of data is missing, use 'N/A'.`

const scoringSystemPrompt = `You are a senior hiring panel member. You are given a job description, a
structured resume summary, and the transcript of an automated phone interview
as a list of question/answer pairs. Score each answer from 0 to 10 and give a
one-sentence reasoning. Then give a final score from 0 to 10 and a hiring
recommendation. The output MUST be a JSON object with keys 'final_score'
(integer), 'final_recommendation' (string), and 'individual_scores' (a list of
objects with keys 'question', 'score', and 'reasoning'). Each 'question' value
MUST repeat the interview question text verbatim.`

const questionsSchema = `{
	"type": "object",
	"required": ["questions"],
	"properties": {
		"questions": {"type": "array", "items": {"type": "string"}}
	}
}`

const resumeSchema = `{
	"type": "object",
	"required": ["name", "email", "phone", "years_experience", "top_skills", "education_summary"]
}`

const scoringSchema = `{
	"type": "object",
	"required": ["final_score", "final_recommendation"],
	"properties": {
		"final_score": {"type": "integer"},
		"final_recommendation": {"type": "string"},
		"individual_scores": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["question", "score"],
				"properties": {
					"question": {"type": "string"},
					"score": {"type": "integer"},
					"reasoning": {"type": "string"}
				}
			}
		}
	}
}`

// Service exposes the three LLM-backed generators the screener needs.
type Service struct {
	client Client
	logger *zap.Logger
}

// NewService creates a Service on top of an LLM client.
func NewService(client Client, logger *zap.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// GenerateQuestions produces the interview question list for a job description.
// Question counts outside the expected 5-7 range are logged but accepted.
func (s *Service) GenerateQuestions(ctx context.Context, jdText string) ([]string, error) {
	prompt := fmt.Sprintf("Job Description to analyze:\n---\n%s", jdText)
	raw, err := s.client.GenerateJSON(ctx, questionsSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("question generation failed: %w", err)
	}

	questions, err := parseQuestionsResponse(raw)
	if err != nil {
		return nil, err
	}

	if len(questions) < 5 || len(questions) > 7 {
		s.logger.Warn("LLM returned unexpected question count",
			zap.Int("count", len(questions)),
			zap.String("expected", "5-7"),
		)
	}
	return questions, nil
}

// ParseResume structures raw résumé text into the fixed-key summary.
func (s *Service) ParseResume(ctx context.Context, resumeText string) (types.ResumeSummary, error) {
	prompt := fmt.Sprintf("Raw Resume Text:\n---\n%s", resumeText)
	raw, err := s.client.GenerateJSON(ctx, resumeSystemPrompt, prompt)
	if err != nil {
		return types.ResumeSummary{}, fmt.Errorf("resume parsing failed: %w", err)
	}
	return parseResumeResponse(raw)
}

// ScoreInterview produces the final verdict for a completed interview.
func (s *Service) ScoreInterview(ctx context.Context, jdText string, resume types.ResumeSummary, entries []types.QAEntry) (*types.ScoringResult, error) {
	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resume summary: %w", err)
	}
	transcriptJSON, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal interview transcript: %w", err)
	}

	var prompt strings.Builder
	prompt.WriteString("Job Description:\n---\n")
	prompt.WriteString(jdText)
	prompt.WriteString("\n---\n\nResume Summary:\n")
	prompt.Write(resumeJSON)
	prompt.WriteString("\n\nInterview Transcript:\n")
	prompt.Write(transcriptJSON)

	raw, err := s.client.GenerateJSON(ctx, scoringSystemPrompt, prompt.String())
	if err != nil {
		return nil, fmt.Errorf("interview scoring failed: %w", err)
	}
	return parseScoringResponse(raw)
}

// validateAgainstSchema checks an LLM JSON document before it is trusted.
func validateAgainstSchema(schema, document string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		return fmt.Errorf("LLM response is not valid JSON: %w", err)
	}
	if !result.Valid() {
		var reasons []string
		for _, desc := range result.Errors() {
			reasons = append(reasons, desc.String())
		}
		return fmt.Errorf("LLM response failed schema validation: %s", strings.Join(reasons, "; "))
	}
	return nil
}

func parseQuestionsResponse(raw string) ([]string, error) {
	if err := validateAgainstSchema(questionsSchema, raw); err != nil {
		return nil, err
	}
	var payload struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode questions response: %w", err)
	}
	questions := make([]string, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		questions = append(questions, strings.TrimSpace(q))
	}
	return questions, nil
}

func parseResumeResponse(raw string) (types.ResumeSummary, error) {
	if err := validateAgainstSchema(resumeSchema, raw); err != nil {
		return types.ResumeSummary{}, err
	}
	var summary types.ResumeSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return types.ResumeSummary{}, fmt.Errorf("failed to decode resume response: %w", err)
	}
	summary.Normalize()
	return summary, nil
}

func parseScoringResponse(raw string) (*types.ScoringResult, error) {
	if err := validateAgainstSchema(scoringSchema, raw); err != nil {
		return nil, err
	}
	var verdict types.ScoringResult
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return nil, fmt.Errorf("failed to decode scoring response: %w", err)
	}
	return &verdict, nil
}
