package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_PlainText(t *testing.T) {
	e := NewExtractor()
	text, err := e.ExtractText("resume.txt", []byte("  Jane Doe\nBackend engineer.\n"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nBackend engineer.", text)
}

func TestExtractText_UnsupportedFormat(t *testing.T) {
	e := NewExtractor()
	_, err := e.ExtractText("resume.png", []byte{0x89, 0x50})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractText_EmptyDocument(t *testing.T) {
	e := NewExtractor()
	_, err := e.ExtractText("resume.txt", []byte("   \n  "))
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestExtractText_CorruptPDF(t *testing.T) {
	e := NewExtractor()
	_, err := e.ExtractText("resume.pdf", []byte("not really a pdf"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
}
