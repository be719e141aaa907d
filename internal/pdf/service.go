package pdf

import (
	"fmt"
	"log"
	"os"

	formerrors "github.com/a3tai/mcp-pdf-formfix/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/forms"
	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/graph"
	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/metadata"
	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/security"
)

// Service runs the form repair pass and its companion operations
type Service struct {
	maxFileSize   int64
	debugMode     bool
	validator     *Validator
	pathValidator *security.PathValidator
	search        *Search
}

// NewService creates a new PDF service confined to configuredDirectory
func NewService(maxFileSize int64, configuredDirectory string, debugMode bool) (*Service, error) {
	pathValidator, err := security.NewPathValidator(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	validator := NewValidator(maxFileSize)
	return &Service{
		maxFileSize:   maxFileSize,
		debugMode:     debugMode,
		validator:     validator,
		pathValidator: pathValidator,
		search:        NewSearch(validator, pathValidator),
	}, nil
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// GetConfiguredDirectory returns the directory tool calls are confined to
func (s *Service) GetConfiguredDirectory() string {
	return s.pathValidator.GetConfiguredDirectory()
}

// PDFConsolidate confines every path of the request to the configured
// directory and runs Consolidate
func (s *Service) PDFConsolidate(req PDFConsolidateRequest) (*PDFConsolidateResult, error) {
	var err error
	if req.Path, err = s.pathValidator.Resolve(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if req.OutputPath != "" {
		if req.OutputPath, err = s.pathValidator.Resolve(req.OutputPath); err != nil {
			return nil, fmt.Errorf("security validation failed: %w", err)
		}
	}
	if req.RecordsPath != "" {
		if req.RecordsPath, err = s.pathValidator.Resolve(req.RecordsPath); err != nil {
			return nil, fmt.Errorf("security validation failed: %w", err)
		}
	}
	return s.Consolidate(req)
}

// PDFExportWidgets lists the widgets of a form inside the configured directory
func (s *Service) PDFExportWidgets(req PDFExportWidgetsRequest) (*PDFExportWidgetsResult, error) {
	path, err := s.pathValidator.Resolve(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	req.Path = path
	return s.ExportWidgets(req)
}

// PDFSearchDirectory finds PDF files below the configured directory
func (s *Service) PDFSearchDirectory(req PDFSearchDirectoryRequest) (*PDFSearchDirectoryResult, error) {
	if req.Directory == "" {
		req.Directory = s.GetConfiguredDirectory()
	}
	directory, err := s.pathValidator.Resolve(req.Directory)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	req.Directory = directory
	return s.search.SearchDirectory(req)
}

// PDFValidateFile performs validation on a PDF file
func (s *Service) PDFValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	path, err := s.pathValidator.Resolve(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	req.Path = path
	return s.validator.ValidateFile(req)
}

// Consolidate opens the form at req.Path, strips text borders and patches the
// signature font when asked, rebuilds the radio groups described by the
// update records, and saves the result. The output is written to a temporary
// file first and renamed into place.
func (s *Service) Consolidate(req PDFConsolidateRequest) (*PDFConsolidateResult, error) {
	if err := s.validator.checkFile(req.Path); err != nil {
		return nil, err
	}
	output := req.OutputPath
	if output == "" {
		output = req.Path
	}

	records := append([]forms.UpdateRecord(nil), req.Records...)
	fontPatch := req.FontPatch
	if req.RecordsPath != "" {
		set, err := forms.LoadRecords(req.RecordsPath)
		if err != nil {
			return nil, err
		}
		records = append(set.Records, records...)
		if fontPatch == nil {
			fontPatch = set.FontPatch
		}
	}

	doc, err := graph.OpenFile(req.Path)
	if err != nil {
		return nil, formerrors.WrapError(formerrors.ErrorTypeStorage, "open form", err).WithFile(req.Path)
	}
	a := graph.New(doc)

	result := &PDFConsolidateResult{
		Path:        req.Path,
		OutputPath:  output,
		RecordCount: len(records),
	}
	issues := formerrors.NewErrorCollection(req.Path)

	if req.StripTextBorders {
		if result.BordersStripped, err = forms.StripTextBorders(a, issues, s.debugMode); err != nil {
			return nil, err
		}
	}

	report, err := forms.NewConsolidator(a, s.debugMode).Consolidate(records)
	if err != nil {
		return nil, err
	}
	result.Groups = report.Groups
	result.FieldArray = report.FieldArray
	result.UnmatchedRecords = report.Unmatched
	for _, issue := range report.Issues.Issues {
		issues.Add(issue)
	}

	if fontPatch != nil {
		patched, err := forms.PatchDefaultResources(a, *fontPatch, s.debugMode)
		if err != nil {
			issues.Add(formerrors.WrapError(formerrors.ErrorTypeUnresolvedReference, "font patch failed", err))
		}
		result.FontPatched = patched
	}

	if err := saveAtomically(doc, output); err != nil {
		return nil, err
	}

	for _, issue := range issues.Issues {
		result.Issues = append(result.Issues, issue.Error())
	}
	if s.debugMode && len(issues.Issues) > 0 {
		log.Printf("Consolidation of %s finished with issues: %s", req.Path, issues.Summary())
	}

	if req.ExportWidgetData {
		csvPath, err := s.writeMetadata(output)
		if err != nil {
			return nil, err
		}
		result.MetadataPath = csvPath
	}
	return result, nil
}

// ExportWidgets reads the widget table of a form, optionally writing it as
// CSV next to the file
func (s *Service) ExportWidgets(req PDFExportWidgetsRequest) (*PDFExportWidgetsResult, error) {
	if err := s.validator.checkFile(req.Path); err != nil {
		return nil, err
	}
	rows, err := s.collect(req.Path)
	if err != nil {
		return nil, err
	}
	result := &PDFExportWidgetsResult{Path: req.Path, Widgets: rows}
	if req.WriteCSV {
		result.CSVPath = metadata.CSVPath(req.Path)
		if err := metadata.WriteCSV(result.CSVPath, rows); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Service) writeMetadata(pdfPath string) (string, error) {
	rows, err := s.collect(pdfPath)
	if err != nil {
		return "", err
	}
	csvPath := metadata.CSVPath(pdfPath)
	if err := metadata.WriteCSV(csvPath, rows); err != nil {
		return "", err
	}
	return csvPath, nil
}

func (s *Service) collect(path string) ([]metadata.Row, error) {
	doc, err := graph.OpenFile(path)
	if err != nil {
		return nil, formerrors.WrapError(formerrors.ErrorTypeStorage, "open form", err).WithFile(path)
	}
	rows, err := metadata.Collect(graph.New(doc))
	if err != nil {
		return nil, err
	}
	if err := metadata.AttachCaptions(path, rows, s.debugMode); err != nil && s.debugMode {
		log.Printf("Captions unavailable for %s: %v", path, err)
	}
	return rows, nil
}

// saveAtomically writes doc to path via a temporary sibling file
func saveAtomically(doc *graph.Document, path string) error {
	tmp := path + ".tmp"
	if err := doc.SaveFile(tmp); err != nil {
		os.Remove(tmp)
		return formerrors.WrapError(formerrors.ErrorTypeStorage, "save form", err).WithFile(tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return formerrors.WrapError(formerrors.ErrorTypeStorage, "replace form", err).WithFile(path)
	}
	return nil
}
