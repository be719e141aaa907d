package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/pdftest"
)

func TestValidator_ValidateFile(t *testing.T) {
	validator := NewValidator(1024 * 1024) // 1MB limit

	tempDir := t.TempDir()
	formPath, err := pdftest.WriteFile(tempDir, "form.pdf", pdftest.InjuryQuestion)
	if err != nil {
		t.Fatalf("failed to create form PDF: %v", err)
	}
	largePDFPath := filepath.Join(tempDir, "large.pdf")
	emptyPDFPath := filepath.Join(tempDir, "empty.pdf")
	nonPDFPath := filepath.Join(tempDir, "document.txt")
	garbagePDFPath := filepath.Join(tempDir, "garbage.pdf")

	if err := os.WriteFile(largePDFPath, make([]byte, 2*1024*1024), 0o644); err != nil {
		t.Fatalf("failed to create large PDF: %v", err)
	}
	if err := os.WriteFile(emptyPDFPath, []byte{}, 0o644); err != nil {
		t.Fatalf("failed to create empty PDF: %v", err)
	}
	if err := os.WriteFile(nonPDFPath, []byte("not a pdf"), 0o644); err != nil {
		t.Fatalf("failed to create non-PDF: %v", err)
	}
	if err := os.WriteFile(garbagePDFPath, []byte("this is not really a pdf"), 0o644); err != nil {
		t.Fatalf("failed to create garbage PDF: %v", err)
	}

	tests := []struct {
		name        string
		path        string
		expectValid bool
		errorMsg    string
	}{
		{name: "empty path", path: "", errorMsg: "path cannot be empty"},
		{name: "non-existent file", path: "/non/existent/file.pdf", errorMsg: "file does not exist"},
		{name: "directory instead of file", path: tempDir, errorMsg: "path is a directory"},
		{name: "non-PDF file", path: nonPDFPath, errorMsg: "file is not a PDF"},
		{name: "empty PDF file", path: emptyPDFPath, errorMsg: "file is empty"},
		{name: "large PDF file", path: largePDFPath, errorMsg: "file too large"},
		{name: "unparseable PDF", path: garbagePDFPath, errorMsg: "invalid PDF file"},
		{name: "form PDF", path: formPath, expectValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validator.ValidateFile(PDFValidateFileRequest{Path: tt.path})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Valid != tt.expectValid {
				t.Errorf("expected Valid=%v but got %v (%s)", tt.expectValid, result.Valid, result.Message)
			}
			if result.Path != tt.path {
				t.Errorf("expected Path=%s but got %s", tt.path, result.Path)
			}
			if tt.errorMsg != "" && !strings.Contains(result.Message, tt.errorMsg) {
				t.Errorf("expected message containing %q, got %q", tt.errorMsg, result.Message)
			}
		})
	}
}

func TestValidator_FormDetails(t *testing.T) {
	validator := NewValidator(0)

	path, err := pdftest.WriteFile(t.TempDir(), "form.pdf", pdftest.InjuryQuestion)
	if err != nil {
		t.Fatalf("failed to create form PDF: %v", err)
	}

	result, err := validator.ValidateFile(PDFValidateFileRequest{Path: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Pages != 1 {
		t.Errorf("expected 1 page, got %d", result.Pages)
	}
	if !result.HasAcroForm {
		t.Error("expected an AcroForm")
	}
	if result.FieldCount != len(pdftest.InjuryQuestion) {
		t.Errorf("expected %d fields, got %d", len(pdftest.InjuryQuestion), result.FieldCount)
	}
	if !validator.IsValidPDF(path) {
		t.Error("IsValidPDF should accept the form")
	}
	if validator.IsValidPDF(filepath.Join(t.TempDir(), "missing.pdf")) {
		t.Error("IsValidPDF should reject a missing file")
	}
}
