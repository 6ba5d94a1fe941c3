package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{"seven digits", "+1234567", true},
		{"fifteen digits", "+123456789012345", true},
		{"twelve digits", "+911234567890", true},
		{"six digits", "+123456", false},
		{"sixteen digits", "+1234567890123456", false},
		{"missing plus", "911234567890", false},
		{"letters", "+12345abc", false},
		{"empty", "", false},
		{"plus only", "+", false},
		{"internal spaces", "+91 123456789", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPhone(tt.phone))
		})
	}
}

func TestCandidateCreate_Validate(t *testing.T) {
	valid := CandidateCreate{
		Name:      "Jane Doe",
		E164Phone: "+911234567890",
		JDID:      "b9f2d5a0-3f6e-4e1a-9c7b-2d8f0a1b3c4d",
	}
	assert.NoError(t, valid.Validate())

	badPhone := valid
	badPhone.E164Phone = "911234567890"
	assert.Error(t, badPhone.Validate())

	missingName := valid
	missingName.Name = ""
	assert.Error(t, missingName.Validate())

	badJD := valid
	badJD.JDID = "not-a-uuid"
	assert.Error(t, badJD.Validate())
}

func TestResumeSummary_Normalize(t *testing.T) {
	var summary ResumeSummary
	summary.Name = "Jane Doe"
	summary.Normalize()

	assert.Equal(t, "Jane Doe", summary.Name)
	assert.Equal(t, NotAvailable, summary.Email)
	assert.Equal(t, NotAvailable, summary.Phone)
	assert.Equal(t, NotAvailable, summary.YearsExperience)
	assert.Equal(t, []string{NotAvailable}, summary.TopSkills)
	assert.Equal(t, NotAvailable, summary.EducationSummary)
}

func TestUpsertEntry_AppendsInIndexOrder(t *testing.T) {
	var entries []QAEntry
	entries = UpsertEntry(entries, QAEntry{QuestionIndex: 1, Question: "Q2", Transcript: "b"})
	entries = UpsertEntry(entries, QAEntry{QuestionIndex: 0, Question: "Q1", Transcript: "a"})
	entries = UpsertEntry(entries, QAEntry{QuestionIndex: 2, Question: "Q3", Transcript: "c"})

	assert.Len(t, entries, 3)
	for i, entry := range entries {
		assert.Equal(t, i, entry.QuestionIndex)
	}
}

func TestUpsertEntry_ReplacesDuplicateIndex(t *testing.T) {
	entries := []QAEntry{{QuestionIndex: 0, Question: "Q1", Transcript: NoResponseMarker}}
	entries = UpsertEntry(entries, QAEntry{QuestionIndex: 0, Question: "Q1", Transcript: "late transcription"})

	assert.Len(t, entries, 1)
	assert.Equal(t, "late transcription", entries[0].Transcript)
}

func TestUpsertEntry_KeepsTranscriptOverMarker(t *testing.T) {
	// The record action callback can fire after the transcription callback;
	// the marker-only duplicate must not clobber the real answer.
	entries := []QAEntry{{QuestionIndex: 0, Question: "Q1", Transcript: "Answer A", AudioURL: "http://rec/1"}}
	entries = UpsertEntry(entries, QAEntry{QuestionIndex: 0, Question: "Q1", Transcript: NoResponseMarker})

	assert.Len(t, entries, 1)
	assert.Equal(t, "Answer A", entries[0].Transcript)
}
