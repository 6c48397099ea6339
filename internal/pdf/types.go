package pdf

// Request Types

// DocInfoRequest represents a request to inspect a PDF document
type DocInfoRequest struct {
	Path string `json:"path"`
}

// ValidateFileRequest represents a request to validate a PDF file
type ValidateFileRequest struct {
	Path string `json:"path"`
}

// Response Types

// DocInfoResult represents the result of a document inspection
type DocInfoResult struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	Pages        int    `json:"pages"`
	ModifiedDate string `json:"modified_date"`
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Producer     string `json:"producer,omitempty"`
	CreatedDate  string `json:"created_date,omitempty"`
	TextPreview  string `json:"text_preview,omitempty"`
}

// ValidateFileResult represents the result of a PDF validation operation
type ValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Message string `json:"message,omitempty"`
}
