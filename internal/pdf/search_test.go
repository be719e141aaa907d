package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/pdftest"
)

func TestMatchesQuery(t *testing.T) {
	tests := []struct {
		filename string
		query    string
		want     bool
	}{
		{filename: "intake-form.pdf", query: "", want: true},
		{filename: "intake-form.pdf", query: "intake", want: true},
		{filename: "Patient_Intake_Form.PDF", query: "intake form", want: true},
		{filename: "claim (2024).pdf", query: "2024 claim", want: true},
		{filename: "claim.pdf", query: "intake", want: false},
		{filename: "claim.pdf", query: "claim intake", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.filename+"/"+tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesQuery(tt.filename, tt.query))
		})
	}
}

func TestService_PDFSearchDirectory(t *testing.T) {
	service, dir := newTestService(t)
	_, err := pdftest.WriteFile(dir, "intake-form.pdf", pdftest.InjuryQuestion)
	require.NoError(t, err)
	sub := filepath.Join(dir, "archive")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	_, err = pdftest.WriteFile(sub, "claim-form.pdf", pdftest.InjuryQuestion)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.pdf"), []byte("%PDF-1.4 garbage"), 0o644))
	hidden := filepath.Join(dir, ".cache")
	require.NoError(t, os.MkdirAll(hidden, 0o755))
	_, err = pdftest.WriteFile(hidden, "copy.pdf", pdftest.InjuryQuestion)
	require.NoError(t, err)

	all, err := service.PDFSearchDirectory(PDFSearchDirectoryRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.TotalCount, "hidden directories are skipped")

	forms, err := service.PDFSearchDirectory(PDFSearchDirectoryRequest{FormsOnly: true})
	require.NoError(t, err)
	require.Equal(t, 2, forms.TotalCount)
	for _, file := range forms.Files {
		assert.Equal(t, len(pdftest.InjuryQuestion), file.FieldCount)
	}

	claims, err := service.PDFSearchDirectory(PDFSearchDirectoryRequest{Directory: "archive", Query: "claim"})
	require.NoError(t, err)
	require.Len(t, claims.Files, 1)
	assert.Equal(t, "claim-form.pdf", claims.Files[0].Name)

	limited, err := service.PDFSearchDirectory(PDFSearchDirectoryRequest{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited.Files, 1)

	_, err = service.PDFSearchDirectory(PDFSearchDirectoryRequest{Directory: "../"})
	assert.ErrorContains(t, err, "security validation failed")
}
