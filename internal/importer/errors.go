package importer

import "fmt"

// ParseError indicates the uploaded file could not be read as a spreadsheet
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s file: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConfigurationError indicates the extraction backend is not configured,
// typically a missing API key.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return e.Reason }

// BackendError indicates the catalog reference data could not be loaded
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string { return fmt.Sprintf("catalog backend failed: %v", e.Err) }

func (e *BackendError) Unwrap() error { return e.Err }

// ExtractionError indicates the AI call failed or its payload could not
// be decoded into products.
type ExtractionError struct {
	Detail string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s", e.Detail)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ErrImportInProgress is returned when another import run holds the lock
var ErrImportInProgress = fmt.Errorf("an import is already in progress")

// ErrNoRows is returned when the spreadsheet parses but contains no data rows
var ErrNoRows = fmt.Errorf("spreadsheet contains no data rows")
