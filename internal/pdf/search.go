package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/security"
)

// Search finds PDF files under a directory
type Search struct {
	validator     *Validator
	pathValidator *security.PathValidator
}

// NewSearch creates a search handler that never leaves the directory of pathValidator
func NewSearch(validator *Validator, pathValidator *security.PathValidator) *Search {
	return &Search{
		validator:     validator,
		pathValidator: pathValidator,
	}
}

// SearchDirectory walks req.Directory for PDF files whose name matches
// req.Query. With FormsOnly set, files without an AcroForm are skipped.
func (s *Search) SearchDirectory(req PDFSearchDirectoryRequest) (*PDFSearchDirectoryResult, error) {
	if req.Directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	absDirectory, err := filepath.Abs(req.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory path: %w", err)
	}
	if info, err := os.Stat(absDirectory); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("directory does not exist: %s", req.Directory)
	}

	query := strings.ToLower(strings.TrimSpace(req.Query))
	var files []FileInfo

	err = filepath.WalkDir(absDirectory, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // Intentionally continue on file errors
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != absDirectory {
				return filepath.SkipDir
			}
			if !s.within(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if req.Limit > 0 && len(files) >= req.Limit {
			return filepath.SkipAll
		}
		if !isPDFFile(d.Name()) || !matchesQuery(d.Name(), query) {
			return nil
		}
		if !s.within(path) {
			return nil
		}
		if err := s.validator.checkFile(path); err != nil {
			return nil //nolint:nilerr // Skip unusable files
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // File vanished during the walk
		}
		file := FileInfo{
			Path:         path,
			Name:         info.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		}

		if req.FormsOnly {
			result, err := s.validator.ValidateFile(PDFValidateFileRequest{Path: path})
			if err != nil || !result.Valid || !result.HasAcroForm {
				return nil //nolint:nilerr // Not a form
			}
			file.FieldCount = result.FieldCount
		}

		files = append(files, file)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	return &PDFSearchDirectoryResult{
		Files:       files,
		TotalCount:  len(files),
		Directory:   absDirectory,
		SearchQuery: req.Query,
	}, nil
}

func (s *Search) within(path string) bool {
	ok, err := s.pathValidator.IsPathWithinDirectory(path)
	return err == nil && ok
}

func isPDFFile(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

// matchesQuery reports whether every word of query occurs in some word of
// filename. query must already be lower case.
func matchesQuery(filename, query string) bool {
	if query == "" {
		return true
	}

	name := strings.TrimSuffix(strings.ToLower(filename), ".pdf")
	if strings.Contains(name, query) {
		return true
	}

	words := splitIntoWords(name)
	for _, queryWord := range splitIntoWords(query) {
		found := false
		for _, word := range words {
			if strings.Contains(word, queryWord) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// splitIntoWords splits a file name on the separators form generators use
func splitIntoWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ' ', '_', '-', '.', '(', ')', '[', ']':
			return true
		}
		return false
	})
}
