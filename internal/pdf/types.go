package pdf

import (
	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/forms"
	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/metadata"
)

// Request Types

// PDFConsolidateRequest represents a request to repair the radio groups of a
// generated form
type PDFConsolidateRequest struct {
	Path string `json:"path"`
	// OutputPath defaults to Path, replacing the input.
	OutputPath string `json:"output_path,omitempty"`
	// RecordsPath names a JSON or YAML records file.
	RecordsPath string `json:"records_path,omitempty"`
	// Records are used in addition to the ones loaded from RecordsPath.
	Records          []forms.UpdateRecord `json:"records,omitempty"`
	StripTextBorders bool                 `json:"strip_text_borders,omitempty"`
	// FontPatch overrides a font_patch section of the records file.
	FontPatch        *forms.FontPatch `json:"font_patch,omitempty"`
	ExportWidgetData bool             `json:"export_widget_data,omitempty"`
}

// PDFExportWidgetsRequest represents a request to list the widgets of a form
type PDFExportWidgetsRequest struct {
	Path     string `json:"path"`
	WriteCSV bool   `json:"write_csv,omitempty"`
}

// PDFSearchDirectoryRequest represents a request to find PDF files
type PDFSearchDirectoryRequest struct {
	// Directory defaults to the configured directory.
	Directory string `json:"directory,omitempty"`
	Query     string `json:"query,omitempty"`
	FormsOnly bool   `json:"forms_only,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// PDFValidateFileRequest represents a request to validate a PDF file
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// Response Types

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
	FieldCount   int    `json:"field_count,omitempty"`
}

// PDFSearchDirectoryResult represents the result of a PDF search operation
type PDFSearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// PDFConsolidateResult represents the result of a consolidation pass
type PDFConsolidateResult struct {
	Path             string              `json:"path"`
	OutputPath       string              `json:"output_path"`
	Groups           []forms.GroupReport `json:"groups"`
	FieldArray       string              `json:"field_array"`
	RecordCount      int                 `json:"record_count"`
	UnmatchedRecords int                 `json:"unmatched_records"`
	BordersStripped  int                 `json:"borders_stripped"`
	FontPatched      bool                `json:"font_patched"`
	MetadataPath     string              `json:"metadata_path,omitempty"`
	Issues           []string            `json:"issues,omitempty"`
}

// PDFExportWidgetsResult represents the widgets of a form
type PDFExportWidgetsResult struct {
	Path    string         `json:"path"`
	Widgets []metadata.Row `json:"widgets"`
	CSVPath string         `json:"csv_path,omitempty"`
}

// PDFValidateFileResult represents the result of a PDF validation operation
type PDFValidateFileResult struct {
	Valid       bool   `json:"valid"`
	Path        string `json:"path"`
	Pages       int    `json:"pages,omitempty"`
	HasAcroForm bool   `json:"has_acroform"`
	FieldCount  int    `json:"field_count"`
	Message     string `json:"message,omitempty"`
}
