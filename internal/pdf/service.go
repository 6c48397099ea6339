// Package pdf provides document-level inspection for the form editor:
// validation, page counts, metadata and text previews.
package pdf

// Service orchestrates PDF inspection components
type Service struct {
	maxFileSize int64
	reader      *Reader
	validator   *Validator
}

// NewService creates a new PDF inspection service
func NewService(maxFileSize int64) *Service {
	return &Service{
		maxFileSize: maxFileSize,
		reader:      NewReader(maxFileSize),
		validator:   NewValidator(maxFileSize),
	}
}

// DocInfo returns inspection details for a PDF document
func (s *Service) DocInfo(req DocInfoRequest) (*DocInfoResult, error) {
	return s.reader.DocInfo(req)
}

// ValidateFile performs validation on a PDF file
func (s *Service) ValidateFile(req ValidateFileRequest) (*ValidateFileResult, error) {
	return s.validator.ValidateFile(req)
}

// MaxFileSize returns the configured file size limit in bytes
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}
