package errors

import (
	"errors"
	"fmt"
)

// FormError describes a problem met while repairing a document's form structure
type FormError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Context   string    `json:"context,omitempty"`
	ObjectNum int       `json:"object_num,omitempty"`
	FilePath  string    `json:"file_path,omitempty"`
	Err       error     `json:"-"`
}

// ErrorType represents the categories of form repair failures
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeStructuralAbsence: no form dictionary or no field array.
	ErrorTypeStructuralAbsence
	// ErrorTypeUnresolvedReference: a key or array entry had an unexpected kind.
	ErrorTypeUnresolvedReference
	// ErrorTypeAppearanceRewriteMiss: no renameable on-state entry.
	ErrorTypeAppearanceRewriteMiss
	ErrorTypeInvalidRecord
	ErrorTypeStorage
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

// Error implements the error interface
func (e *FormError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.ObjectNum > 0 {
		msg += fmt.Sprintf(" (object %d)", e.ObjectNum)
	}
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause
func (e *FormError) Unwrap() error {
	return e.Err
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeStructuralAbsence:
		return "STRUCTURAL_ABSENCE"
	case ErrorTypeUnresolvedReference:
		return "UNRESOLVED_REFERENCE"
	case ErrorTypeAppearanceRewriteMiss:
		return "APPEARANCE_REWRITE_MISS"
	case ErrorTypeInvalidRecord:
		return "INVALID_RECORD"
	case ErrorTypeStorage:
		return "STORAGE"
	default:
		return "UNKNOWN"
	}
}

// GetSeverity returns the severity level for a given error type
func (et ErrorType) GetSeverity() ErrorSeverity {
	switch et {
	case ErrorTypeStructuralAbsence, ErrorTypeAppearanceRewriteMiss:
		return SeverityInfo
	case ErrorTypeUnresolvedReference, ErrorTypeInvalidRecord:
		return SeverityWarning
	case ErrorTypeStorage:
		return SeverityFatal
	default:
		return SeverityError
	}
}

// IsRecoverable reports whether the pass may continue past an error of this type
func (et ErrorType) IsRecoverable() bool {
	switch et {
	case ErrorTypeStorage, ErrorTypeUnknown:
		return false
	default:
		return true
	}
}

// NewFormError creates a new FormError
func NewFormError(errorType ErrorType, message string) *FormError {
	return &FormError{
		Type:    errorType,
		Message: message,
	}
}

// WrapError wraps a standard error as a FormError
func WrapError(errorType ErrorType, message string, err error) *FormError {
	return &FormError{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
}

// WithContext adds context to an existing FormError
func (e *FormError) WithContext(context string) *FormError {
	e.Context = context
	return e
}

// WithObject records the object the error refers to
func (e *FormError) WithObject(objNum int) *FormError {
	e.ObjectNum = objNum
	return e
}

// WithFile adds file path information to an existing FormError
func (e *FormError) WithFile(filePath string) *FormError {
	e.FilePath = filePath
	return e
}

// IsRecoverable reports whether this error leaves the rest of the pass intact
func (e *FormError) IsRecoverable() bool {
	return e.Type.IsRecoverable()
}

// IsType reports whether err is a FormError of the given type
func IsType(err error, errorType ErrorType) bool {
	var fe *FormError
	if errors.As(err, &fe) {
		return fe.Type == errorType
	}
	return false
}

// ErrorCollection gathers the recoverable problems of one pass
type ErrorCollection struct {
	Issues   []*FormError `json:"issues"`
	FilePath string       `json:"file_path,omitempty"`
}

// NewErrorCollection creates a new error collection
func NewErrorCollection(filePath string) *ErrorCollection {
	return &ErrorCollection{
		Issues:   make([]*FormError, 0),
		FilePath: filePath,
	}
}

// Add appends an issue, stamping the collection's file path on it
func (ec *ErrorCollection) Add(err *FormError) {
	if err == nil {
		return
	}
	if err.FilePath == "" && ec.FilePath != "" {
		err.FilePath = ec.FilePath
	}
	ec.Issues = append(ec.Issues, err)
}

// CountByType returns how many issues of the given type were collected
func (ec *ErrorCollection) CountByType(errorType ErrorType) int {
	n := 0
	for _, issue := range ec.Issues {
		if issue.Type == errorType {
			n++
		}
	}
	return n
}

// Summary returns a text summary of the collected issues
func (ec *ErrorCollection) Summary() string {
	if len(ec.Issues) == 0 {
		return "No issues"
	}

	warnings := 0
	for _, issue := range ec.Issues {
		if issue.Type.GetSeverity() >= SeverityWarning {
			warnings++
		}
	}
	return fmt.Sprintf("Found %d issue(s), %d warning(s)", len(ec.Issues), warnings)
}
