package models

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/basher83/zammad-mcp/internal/output"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain", "report.pdf", "report.pdf", false},
		{"traversal", "../../etc/passwd", "passwd", false},
		{"windows path", `C:\temp\notes.txt`, "notes.txt", false},
		{"embedded nul", "a\x00b.txt", "ab.txt", false},
		{"dotdot in name", "we..ird.txt", "weird.txt", false},
		{"only traversal", "../..", "", true},
		{"empty", "", "", true},
		{"too long", strings.Repeat("x", 256), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFilename(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("SanitizeFilename(%q) = %q, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("SanitizeFilename(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscapeTextIdempotent(t *testing.T) {
	in := `Fish & <chips>`
	once := EscapeText(in)
	if once != "Fish &amp; &lt;chips&gt;" {
		t.Fatalf("EscapeText = %q", once)
	}
	if twice := EscapeText(once); twice != once {
		t.Errorf("second escape changed the value: %q", twice)
	}
}

func TestAttachmentUploadValidate(t *testing.T) {
	good := AttachmentUpload{
		Filename: "../../etc/passwd",
		Data:     base64.StdEncoding.EncodeToString([]byte("hello")),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if good.Filename != "passwd" {
		t.Errorf("filename not sanitized: %q", good.Filename)
	}

	bad := AttachmentUpload{Filename: "a.txt", Data: "not!!valid@@b64"}
	err := bad.Validate()
	if err == nil {
		t.Fatal("want error for invalid base64")
	}
	var oe *output.Error
	if !errors.As(err, &oe) || oe.Field != "data" {
		t.Errorf("error not scoped to data field: %v", err)
	}
	if !strings.Contains(oe.Message, "invalid base64 encoding") {
		t.Errorf("message = %q", oe.Message)
	}
}

func TestValidateAttachmentsCap(t *testing.T) {
	data := base64.StdEncoding.EncodeToString([]byte("x"))
	uploads := make([]AttachmentUpload, MaxAttachmentsPerArticle+1)
	for i := range uploads {
		uploads[i] = AttachmentUpload{Filename: "f.txt", Data: data}
	}
	err := ValidateAttachments(uploads)
	if err == nil {
		t.Fatal("want error above the cap")
	}
	if !strings.Contains(err.Error(), "too many attachments") {
		t.Errorf("error = %v", err)
	}
	if err := ValidateAttachments(uploads[:MaxAttachmentsPerArticle]); err != nil {
		t.Errorf("at the cap: %v", err)
	}
}
