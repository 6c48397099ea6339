// Package form extracts fillable form fields from PDF documents into a
// structured page/field model, applies targeted updates keyed by
// annotation id or label, and writes the changes back into the
// document's widget annotations.
package form

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Metadata carries free-form document identification attached to a Form.
// It is stored and exported but never interpreted.
type Metadata struct {
	Name    string `json:"name"`
	Year    int    `json:"year"`
	Version string `json:"version"`
}

// Form is the in-memory representation of one PDF's extracted field and
// page data. It owns the underlying document context from Open until
// Close; a single Form must not be used from multiple goroutines.
type Form struct {
	pdfPath string
	meta    Metadata
	ctx     *model.Context
	pages   []Page
}

// document is the JSON wire format for export and import
type document struct {
	PDFInfo documentInfo `json:"pdf_info"`
	Pages   []Page       `json:"pages"`
}

type documentInfo struct {
	Name    string `json:"name"`
	Year    int    `json:"year"`
	Version string `json:"version"`
	Path    string `json:"path"`
}

// Open reads the PDF at path and eagerly extracts all widget annotations
// into the page/field model. A document without fillable fields is not
// an error; the Form constructs with an empty page list.
func Open(path string, meta Metadata) (*Form, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	ex := &extractor{ctx: ctx}
	pages, err := ex.pages()
	if err != nil {
		return nil, err
	}

	return &Form{
		pdfPath: path,
		meta:    meta,
		ctx:     ctx,
		pages:   pages,
	}, nil
}

// Close releases the document context. The Form cannot be saved afterwards.
func (fo *Form) Close() error {
	fo.ctx = nil
	return nil
}

// PDFPath returns the path the Form was opened from
func (fo *Form) PDFPath() string {
	return fo.pdfPath
}

// Metadata returns the free-form metadata attached at Open
func (fo *Form) Metadata() Metadata {
	return fo.meta
}

// Pages returns a deep copy of the extracted page/field state
func (fo *Form) Pages() []Page {
	return clonePages(fo.pages)
}

// FieldCount returns the total number of extracted fields
func (fo *Form) FieldCount() int {
	n := 0
	for _, pg := range fo.pages {
		n += len(pg.Fields)
	}
	return n
}

// page resolves a page by its 1-based number
func (fo *Form) page(pageNumber int) (*Page, error) {
	for i := range fo.pages {
		if fo.pages[i].PageNumber == pageNumber {
			return &fo.pages[i], nil
		}
	}
	return nil, &NotFoundError{Kind: KindPage, Page: pageNumber}
}

// UpdateFieldByID merges patch into the field with the given annotation
// id on the given page. The patch is validated before any mutation, so a
// failed update leaves the Form unchanged.
func (fo *Form) UpdateFieldByID(annotationID string, pageNumber int, patch FieldPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	pg, err := fo.page(pageNumber)
	if err != nil {
		return err
	}
	for i := range pg.Fields {
		if pg.Fields[i].AnnotationID == annotationID {
			patch.apply(&pg.Fields[i])
			return nil
		}
	}
	return &NotFoundError{Kind: KindAnnotationID, Key: annotationID, Page: pageNumber}
}

// UpdateFieldByLabel merges patch into the first field in page order
// whose label matches. Labels are not guaranteed unique within a page.
func (fo *Form) UpdateFieldByLabel(label string, pageNumber int, patch FieldPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	pg, err := fo.page(pageNumber)
	if err != nil {
		return err
	}
	for i := range pg.Fields {
		if pg.Fields[i].Label == label {
			patch.apply(&pg.Fields[i])
			return nil
		}
	}
	return &NotFoundError{Kind: KindLabel, Key: label, Page: pageNumber}
}

// ExportJSON serializes the Form's pages and metadata to indented JSON.
// Importing the exact output reproduces an equivalent in-memory state.
func (fo *Form) ExportJSON() ([]byte, error) {
	doc := document{
		PDFInfo: documentInfo{
			Name:    fo.meta.Name,
			Year:    fo.meta.Year,
			Version: fo.meta.Version,
			Path:    fo.pdfPath,
		},
		Pages: fo.pages,
	}
	if doc.Pages == nil {
		doc.Pages = []Page{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal form: %w", err)
	}
	return data, nil
}

// WriteJSON writes the export JSON to a file
func (fo *Form) WriteJSON(path string) error {
	data, err := fo.ExportJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}

// ImportJSON validates a JSON document matching the export schema and
// wholesale-replaces the Form's current pages. Nothing is replaced if
// validation fails.
func (fo *Form) ImportJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return &ValidationError{Reason: fmt.Sprintf("malformed form JSON: %v", err)}
	}
	if doc.Pages == nil {
		return &ValidationError{Reason: "missing pages array"}
	}
	for _, pg := range doc.Pages {
		if pg.PageNumber < 1 {
			return &ValidationError{Reason: fmt.Sprintf("invalid page number %d", pg.PageNumber)}
		}
		seen := make(map[string]bool, len(pg.Fields))
		for _, f := range pg.Fields {
			if f.AnnotationID == "" {
				return &ValidationError{Reason: fmt.Sprintf("field without annotation id on page %d", pg.PageNumber)}
			}
			if seen[f.AnnotationID] {
				return &ValidationError{
					Reason: fmt.Sprintf("duplicate annotation id %q on page %d", f.AnnotationID, pg.PageNumber),
				}
			}
			seen[f.AnnotationID] = true
			if f.Position != nil && f.Position.Unit != UnitPoints {
				return &ValidationError{
					Reason: fmt.Sprintf("unsupported position unit %q for field %q", f.Position.Unit, f.AnnotationID),
				}
			}
		}
	}

	fo.pages = clonePages(doc.Pages)
	return nil
}

// LoadJSON reads a JSON file matching the export schema and replaces the
// Form's pages with its contents.
func (fo *Form) LoadJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	return fo.ImportJSON(data)
}

// Summary returns a human-readable inventory of the extracted fields
func (fo *Form) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PDF: %s (Year: %d, Version: %s)\n", fo.meta.Name, fo.meta.Year, fo.meta.Version)
	fmt.Fprintf(&b, "Total Pages: %d\n", len(fo.pages))
	fmt.Fprintf(&b, "Total Fields: %d\n", fo.FieldCount())

	for _, pg := range fo.pages {
		fmt.Fprintf(&b, "\nPage %d: %d fields\n", pg.PageNumber, len(pg.Fields))
		for _, f := range pg.Fields {
			fmt.Fprintf(&b, "  - %s (%s): %q = %q\n", f.AnnotationID, f.Type, f.Label, f.DefaultValue)
			if f.Position != nil {
				fmt.Fprintf(&b, "    Position: (%.1f, %.1f) Size: %.1fx%.1f %s\n",
					f.Position.X, f.Position.Y, f.Position.Width, f.Position.Height, f.Position.Unit)
			}
		}
	}
	return b.String()
}
