package form

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldType classifies a widget annotation by its interaction kind
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeRadio     FieldType = "radio"
	FieldTypeDropdown  FieldType = "dropdown"
	FieldTypeList      FieldType = "list"
	FieldTypeSignature FieldType = "signature"
	FieldTypeUnknown   FieldType = "unknown"
)

// UnitPoints is the coordinate unit for all extracted positions
const UnitPoints = "pt"

// Alignment values for Formatting.Alignment
const (
	AlignmentLeft   = "left"
	AlignmentCenter = "center"
	AlignmentRight  = "right"
)

// Position describes a widget's bounding rectangle in PDF user space.
// X and Y are the lower-left corner of the rectangle.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

// Formatting describes a widget's text appearance and entry constraints
type Formatting struct {
	FontSize   float64 `json:"font_size"`
	FontFamily string  `json:"font_family"`
	Alignment  string  `json:"alignment"`
	MaxLength  int     `json:"max_length"`
	Pattern    string  `json:"pattern"`
	Required   bool    `json:"required"`
}

// Field represents a single form field extracted from a widget annotation.
// AnnotationID is the fully qualified field name and is unique within a page.
type Field struct {
	AnnotationID string      `json:"annotation_id"`
	Type         FieldType   `json:"type"`
	Label        string      `json:"label"`
	DefaultValue string      `json:"default_value"`
	Position     *Position   `json:"position,omitempty"`
	Formatting   *Formatting `json:"formatting,omitempty"`
}

// Page is an ordered collection of Fields belonging to one page.
// PageNumber is 1-based, matching the underlying document.
type Page struct {
	PageNumber int     `json:"page_number"`
	Fields     []Field `json:"fields"`
}

// PositionPatch is a partial Position update. Nil entries keep the
// current value.
type PositionPatch struct {
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Unit   *string  `json:"unit,omitempty"`
}

// FormattingPatch is a partial Formatting update. Nil entries keep the
// current value.
type FormattingPatch struct {
	FontSize   *float64 `json:"font_size,omitempty"`
	FontFamily *string  `json:"font_family,omitempty"`
	Alignment  *string  `json:"alignment,omitempty"`
	MaxLength  *int     `json:"max_length,omitempty"`
	Pattern    *string  `json:"pattern,omitempty"`
	Required   *bool    `json:"required,omitempty"`
}

// FieldPatch describes the attributes of a Field to change during an
// update. It mirrors the Field schema minus the annotation id. Position
// and Formatting sub-objects merge per key rather than replacing the
// whole sub-object.
type FieldPatch struct {
	DefaultValue *string          `json:"default_value,omitempty"`
	Label        *string          `json:"label,omitempty"`
	Position     *PositionPatch   `json:"position,omitempty"`
	Formatting   *FormattingPatch `json:"formatting,omitempty"`
}

// ParseFieldPatch normalizes a loose JSON document into a FieldPatch.
// Unknown keys are rejected with a ValidationError.
func ParseFieldPatch(data []byte) (FieldPatch, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var patch FieldPatch
	if err := dec.Decode(&patch); err != nil {
		return FieldPatch{}, &ValidationError{Reason: fmt.Sprintf("malformed field patch: %v", err)}
	}
	if dec.More() {
		return FieldPatch{}, &ValidationError{Reason: "trailing data after field patch"}
	}
	if err := patch.Validate(); err != nil {
		return FieldPatch{}, err
	}
	return patch, nil
}

// Validate checks the patch against the Field schema constraints
func (p FieldPatch) Validate() error {
	if p.Position != nil {
		if p.Position.Width != nil && *p.Position.Width < 0 {
			return &ValidationError{Reason: "position width must not be negative"}
		}
		if p.Position.Height != nil && *p.Position.Height < 0 {
			return &ValidationError{Reason: "position height must not be negative"}
		}
		if p.Position.Unit != nil && *p.Position.Unit != UnitPoints {
			return &ValidationError{Reason: fmt.Sprintf("unsupported position unit: %q", *p.Position.Unit)}
		}
	}
	if p.Formatting != nil {
		if p.Formatting.FontSize != nil && *p.Formatting.FontSize <= 0 {
			return &ValidationError{Reason: "font size must be positive"}
		}
		if p.Formatting.MaxLength != nil && *p.Formatting.MaxLength < 0 {
			return &ValidationError{Reason: "max length must not be negative"}
		}
		if p.Formatting.Alignment != nil {
			switch *p.Formatting.Alignment {
			case AlignmentLeft, AlignmentCenter, AlignmentRight:
			default:
				return &ValidationError{Reason: fmt.Sprintf("unsupported alignment: %q", *p.Formatting.Alignment)}
			}
		}
	}
	return nil
}

// IsZero reports whether the patch changes nothing
func (p FieldPatch) IsZero() bool {
	return p.DefaultValue == nil && p.Label == nil && p.Position == nil && p.Formatting == nil
}

// apply merges the patch into f. The patch must have been validated.
func (p FieldPatch) apply(f *Field) {
	if p.DefaultValue != nil {
		f.DefaultValue = *p.DefaultValue
	}
	if p.Label != nil {
		f.Label = *p.Label
	}
	if p.Position != nil {
		if f.Position == nil {
			f.Position = &Position{Unit: UnitPoints}
		}
		pos := p.Position
		if pos.X != nil {
			f.Position.X = *pos.X
		}
		if pos.Y != nil {
			f.Position.Y = *pos.Y
		}
		if pos.Width != nil {
			f.Position.Width = *pos.Width
		}
		if pos.Height != nil {
			f.Position.Height = *pos.Height
		}
		if pos.Unit != nil {
			f.Position.Unit = *pos.Unit
		}
	}
	if p.Formatting != nil {
		if f.Formatting == nil {
			f.Formatting = &Formatting{}
		}
		fm := p.Formatting
		if fm.FontSize != nil {
			f.Formatting.FontSize = *fm.FontSize
		}
		if fm.FontFamily != nil {
			f.Formatting.FontFamily = *fm.FontFamily
		}
		if fm.Alignment != nil {
			f.Formatting.Alignment = *fm.Alignment
		}
		if fm.MaxLength != nil {
			f.Formatting.MaxLength = *fm.MaxLength
		}
		if fm.Pattern != nil {
			f.Formatting.Pattern = *fm.Pattern
		}
		if fm.Required != nil {
			f.Formatting.Required = *fm.Required
		}
	}
}

// clone returns a deep copy of the field
func (f Field) clone() Field {
	c := f
	if f.Position != nil {
		pos := *f.Position
		c.Position = &pos
	}
	if f.Formatting != nil {
		fm := *f.Formatting
		c.Formatting = &fm
	}
	return c
}

// clonePages returns a deep copy of a page slice
func clonePages(pages []Page) []Page {
	if pages == nil {
		return nil
	}
	out := make([]Page, len(pages))
	for i, pg := range pages {
		out[i] = Page{PageNumber: pg.PageNumber}
		if pg.Fields != nil {
			out[i].Fields = make([]Field, len(pg.Fields))
			for j, f := range pg.Fields {
				out[i].Fields[j] = f.clone()
			}
		}
	}
	return out
}
