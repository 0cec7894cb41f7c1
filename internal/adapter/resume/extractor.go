package resume

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"interview-coach/internal/domain"

	"code.sajari.com/docconv"
)

// MaxTextLength caps the text kept from a resume so prompts stay small.
const MaxTextLength = 12000

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".doc":  "application/msword",
	".rtf":  "application/rtf",
	".odt":  "application/vnd.oasis.opendocument.text",
}

// Extractor converts uploaded resumes to plain text.
type Extractor struct {
	convert func(r io.Reader, mimeType string) (string, error)
}

var _ domain.ResumeExtractor = (*Extractor)(nil)

func NewExtractor() *Extractor {
	return &Extractor{convert: convertWithDocconv}
}

func convertWithDocconv(r io.Reader, mimeType string) (string, error) {
	res, err := docconv.Convert(r, mimeType, true)
	if err != nil {
		return "", err
	}
	return res.Body, nil
}

// Extract returns the normalised text of the document. Plain text files are
// read as-is; office formats and PDF go through docconv.
func (e *Extractor) Extract(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))

	var text string
	switch ext {
	case ".txt", ".md":
		raw, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(raw)
	default:
		mimeType, ok := mimeTypes[ext]
		if !ok {
			return "", domain.NewError(domain.ErrUnsupportedFile, fmt.Sprintf("unsupported file type: %s", ext), nil)
		}
		body, err := e.convert(r, mimeType)
		if err != nil {
			return "", fmt.Errorf("failed to parse document: %w", err)
		}
		text = body
	}

	text = Normalize(text)
	if text == "" {
		return "", domain.NewInvalidInputError("The uploaded resume contains no readable text.")
	}
	return text, nil
}

var blankRuns = regexp.MustCompile(`\n{3,}`)
var spaceRuns = regexp.MustCompile(`[ \t\f\v]+`)

// Normalize collapses whitespace and truncates to MaxTextLength runes.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
	}
	text = blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > MaxTextLength {
		text = string(runes[:MaxTextLength])
	}
	return text
}
