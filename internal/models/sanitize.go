package models

import (
	"encoding/base64"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/basher83/zammad-mcp/internal/output"
)

// strictPolicy strips all markup from HTML article bodies.
var strictPolicy = bluemonday.StrictPolicy()

// EscapeText escapes markup-sensitive characters in a free-text field.
// Already-escaped input is normalized first so repeated validation of
// the same entity is a no-op.
func EscapeText(s string) string {
	return html.EscapeString(html.UnescapeString(s))
}

// SanitizeBody neutralizes markup in an article body. HTML bodies are
// stripped of tags entirely; plain-text bodies are entity-escaped.
func SanitizeBody(body, contentType string) string {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return strings.TrimSpace(strictPolicy.Sanitize(body))
	}
	return EscapeText(body)
}

// SanitizeFilename reduces a client-supplied filename to a safe base
// name: path separators and traversal sequences are stripped, NUL
// bytes removed, and the result capped at 255 characters.
func SanitizeFilename(name string) (string, error) {
	cleaned := strings.ReplaceAll(name, "\x00", "")
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if i := strings.LastIndex(cleaned, "/"); i >= 0 {
		cleaned = cleaned[i+1:]
	}
	cleaned = strings.ReplaceAll(cleaned, "..", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || cleaned == "." {
		return "", output.ErrValidation("filename", "filename is empty after sanitization")
	}
	if len(cleaned) > 255 {
		return "", output.ErrValidation("filename", "filename exceeds 255 characters")
	}
	return cleaned, nil
}

// MaxAttachmentsPerArticle caps how many uploads a single article
// accepts.
const MaxAttachmentsPerArticle = 10

// AttachmentUpload is a base64-encoded file supplied with a new
// article.
type AttachmentUpload struct {
	Filename string `json:"filename"`
	Data     string `json:"data"`
	MimeType string `json:"mime-type,omitempty"`
}

// Validate checks the upload in place: the filename is sanitized to
// its safe form and the payload must be decodable base64.
func (a *AttachmentUpload) Validate() error {
	name, err := SanitizeFilename(a.Filename)
	if err != nil {
		return err
	}
	a.Filename = name
	if a.Data == "" {
		return output.ErrValidation("data", "attachment data is required")
	}
	if _, err := base64.StdEncoding.DecodeString(a.Data); err != nil {
		return output.ErrValidation("data", "invalid base64 encoding")
	}
	return nil
}

// ValidateAttachments validates every upload and enforces the
// per-article cap.
func ValidateAttachments(uploads []AttachmentUpload) error {
	if len(uploads) > MaxAttachmentsPerArticle {
		return output.ErrValidationf("attachments",
			"too many attachments: %d exceeds the limit of %d",
			len(uploads), MaxAttachmentsPerArticle)
	}
	for i := range uploads {
		if err := uploads[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
