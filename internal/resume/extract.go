// Package resume extracts plain text from uploaded résumé documents.
package resume

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// ErrUnsupportedFormat is returned for file types the extractor cannot read.
var ErrUnsupportedFormat = errors.New("unsupported resume format")

// ErrEmptyDocument is returned when extraction succeeds but yields no text.
var ErrEmptyDocument = errors.New("resume contains no extractable text")

// Extractor converts uploaded résumé files to plain text.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText returns the plain text of an uploaded résumé. The format is
// chosen by file extension; PDF, DOCX, DOC, RTF and ODT go through docconv,
// plain text is passed through.
func (e *Extractor) ExtractText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var text string
	switch ext {
	case ".pdf", ".docx", ".doc", ".rtf", ".odt":
		res, err := docconv.Convert(bytes.NewReader(data), docconv.MimeTypeByExtension(filename), true)
		if err != nil {
			return "", fmt.Errorf("failed to parse %s document: %w", ext, err)
		}
		text = res.Body
	case ".txt":
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}
