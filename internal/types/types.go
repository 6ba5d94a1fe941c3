// Package types defines the domain model shared across the screener:
// job descriptions, candidates, interview results, and scoring verdicts.
package types

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	// NotAvailable marks a résumé field the parser could not infer.
	NotAvailable = "N/A"

	// NoResponseMarker is stored as the transcript when a recording produced
	// no usable transcription.
	NoResponseMarker = "[No response or transcription available]"
)

// e164Pattern accepts a leading plus followed by 7 to 15 digits.
var e164Pattern = regexp.MustCompile(`^\+[0-9]{7,15}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// The built-in e164 tag is stricter about leading digits than the
	// numbers we accept, so register our own.
	_ = v.RegisterValidation("e164phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	return v
}

// ValidPhone reports whether phone is an acceptable E.164 number.
func ValidPhone(phone string) bool {
	return e164Pattern.MatchString(phone)
}

// JobDescription is a stored job posting with its generated interview questions.
type JobDescription struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Questions []string  `json:"generated_questions"`
	CreatedAt time.Time `json:"created_at"`
}

// ResumeSummary is the fixed-key structured view of a candidate's résumé.
type ResumeSummary struct {
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	YearsExperience  string   `json:"years_experience"`
	TopSkills        []string `json:"top_skills"`
	EducationSummary string   `json:"education_summary"`
}

// Normalize fills any missing field with the not-available marker so
// downstream prompts always see every key populated.
func (s *ResumeSummary) Normalize() {
	if s.Name == "" {
		s.Name = NotAvailable
	}
	if s.Email == "" {
		s.Email = NotAvailable
	}
	if s.Phone == "" {
		s.Phone = NotAvailable
	}
	if s.YearsExperience == "" {
		s.YearsExperience = NotAvailable
	}
	if len(s.TopSkills) == 0 {
		s.TopSkills = []string{NotAvailable}
	}
	if s.EducationSummary == "" {
		s.EducationSummary = NotAvailable
	}
}

// Candidate is a person scheduled for an automated interview.
type Candidate struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	E164Phone     string        `json:"e164_phone"`
	ResumeSummary ResumeSummary `json:"resume_summary"`
	JDID          uuid.UUID     `json:"jd_id"`
	CreatedAt     time.Time     `json:"created_at"`
}

// QAEntry is one question/answer pair collected during the call. Score and
// Reasoning stay nil until scoring runs and a verdict matches the question.
type QAEntry struct {
	QuestionIndex int     `json:"question_index"`
	Question      string  `json:"question"`
	Transcript    string  `json:"transcript"`
	AudioURL      string  `json:"audio_url,omitempty"`
	Duration      string  `json:"duration,omitempty"`
	Score         *int    `json:"score,omitempty"`
	Reasoning     *string `json:"reasoning,omitempty"`
}

// InterviewResult tracks one candidate's interview from call placement
// through final scoring.
type InterviewResult struct {
	ID                  uuid.UUID `json:"id"`
	CandidateID         uuid.UUID `json:"candidate_id"`
	CallSID             string    `json:"call_sid"`
	InterviewData       []QAEntry `json:"interview_data"`
	FinalScore          *int      `json:"final_score"`
	FinalRecommendation *string   `json:"final_recommendation"`
	CreatedAt           time.Time `json:"created_at"`
}

// Finalized reports whether scoring has already been persisted.
func (r *InterviewResult) Finalized() bool {
	return r.FinalScore != nil
}

// QuestionScore is the verdict for a single answered question.
type QuestionScore struct {
	Question  string `json:"question"`
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

// ScoringResult is the full verdict for a completed interview.
type ScoringResult struct {
	FinalScore          int             `json:"final_score"`
	FinalRecommendation string          `json:"final_recommendation"`
	IndividualScores    []QuestionScore `json:"individual_scores"`
}

// UpsertEntry merges entry into entries keyed by question index, keeping the
// slice ordered by index. When an entry for the index already exists it is
// replaced, except that an incoming marker-only transcript never overwrites
// a real one.
func UpsertEntry(entries []QAEntry, entry QAEntry) []QAEntry {
	for i := range entries {
		if entries[i].QuestionIndex == entry.QuestionIndex {
			if entry.Transcript == NoResponseMarker && entries[i].Transcript != NoResponseMarker && entries[i].Transcript != "" {
				return entries
			}
			entries[i] = entry
			return entries
		}
		if entries[i].QuestionIndex > entry.QuestionIndex {
			entries = append(entries, QAEntry{})
			copy(entries[i+1:], entries[i:])
			entries[i] = entry
			return entries
		}
	}
	return append(entries, entry)
}

// JobDescriptionCreate is the request body for creating a job description.
type JobDescriptionCreate struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// Validate checks required fields.
func (r *JobDescriptionCreate) Validate() error {
	return validate.Struct(r)
}

// CandidateCreate is the form payload for creating a candidate. The résumé
// file travels alongside it in the multipart body.
type CandidateCreate struct {
	Name      string `json:"name" validate:"required"`
	E164Phone string `json:"e164_phone" validate:"required,e164phone"`
	JDID      string `json:"jd_id" validate:"required,uuid4"`
}

// Validate checks required fields and the phone format.
func (r *CandidateCreate) Validate() error {
	return validate.Struct(r)
}
