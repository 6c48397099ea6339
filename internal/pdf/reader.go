package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxPreviewSize caps the text preview returned by DocInfo
const maxPreviewSize = 4 * 1024

// Reader handles PDF document inspection
type Reader struct {
	maxFileSize int64
	validator   *Validator
}

// NewReader creates a new PDF reader with the specified constraints
func NewReader(maxFileSize int64) *Reader {
	return &Reader{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
	}
}

// DocInfo returns page count, metadata and a short text preview for a PDF file
func (r *Reader) DocInfo(req DocInfoRequest) (*DocInfoResult, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(req.Path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", req.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if err := r.validator.ValidateFileInfo(req.Path, fileInfo); err != nil {
		return nil, err
	}

	f, pdfReader, err := pdf.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	result := &DocInfoResult{
		Path:         req.Path,
		Size:         fileInfo.Size(),
		Pages:        pdfReader.NumPage(),
		ModifiedDate: fileInfo.ModTime().Format("2006-01-02 15:04:05"),
		TextPreview:  r.extractPreview(pdfReader),
	}
	r.extractMetadata(pdfReader, result)

	return result, nil
}

// extractPreview extracts up to maxPreviewSize of plain text, skipping
// pages that fail to parse.
func (r *Reader) extractPreview(pdfReader *pdf.Reader) string {
	var builder strings.Builder

	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		content := r.pageText(pdfReader, pageNum)
		if content == "" {
			continue
		}

		if builder.Len()+len(content) > maxPreviewSize {
			remaining := maxPreviewSize - builder.Len()
			if remaining > 0 {
				builder.WriteString(content[:remaining])
			}
			break
		}
		builder.WriteString(content)
	}

	return strings.TrimSpace(builder.String())
}

// pageText extracts plain text from one page, tolerating pages the
// ledongthuc parser cannot handle.
func (r *Reader) pageText(pdfReader *pdf.Reader, pageNum int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}

	content, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return content
}

// extractMetadata safely extracts document info metadata
func (r *Reader) extractMetadata(pdfReader *pdf.Reader, result *DocInfoResult) {
	defer func() {
		// The ledongthuc Value API panics on some malformed documents;
		// metadata is best-effort and basic info is still returned.
		_ = recover()
	}()

	trailer := pdfReader.Trailer()
	if trailer.IsNull() {
		return
	}
	info := trailer.Key("Info")
	if info.IsNull() {
		return
	}

	if title := info.Key("Title"); !title.IsNull() {
		result.Title = strings.TrimSpace(title.Text())
	}
	if author := info.Key("Author"); !author.IsNull() {
		result.Author = strings.TrimSpace(author.Text())
	}
	if subject := info.Key("Subject"); !subject.IsNull() {
		result.Subject = strings.TrimSpace(subject.Text())
	}
	if producer := info.Key("Producer"); !producer.IsNull() {
		result.Producer = strings.TrimSpace(producer.Text())
	}
	if creationDate := info.Key("CreationDate"); !creationDate.IsNull() {
		result.CreatedDate = strings.TrimSpace(creationDate.Text())
	}
}
