package form

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// pendingWrite pairs a field with its resolved live widget dict
type pendingWrite struct {
	field  *Field
	widget types.Dict
}

// SavePDF writes the current field state back into the document's widget
// annotations and serializes the result to outputPath, or to the source
// path when outputPath is empty. Widgets are resolved for every field
// before any of them is touched, so a stale annotation id aborts the
// save with a ConsistencyError without partial write-back. The output
// file is committed by writing to a temporary file and renaming it, so a
// failed save never leaves a truncated file behind.
func (fo *Form) SavePDF(outputPath string) error {
	if fo.ctx == nil {
		return fmt.Errorf("form is closed")
	}
	if outputPath == "" {
		outputPath = fo.pdfPath
	}

	var writes []pendingWrite
	for i := range fo.pages {
		pg := &fo.pages[i]
		for j := range pg.Fields {
			f := &pg.Fields[j]
			widget, err := fo.findWidget(pg.PageNumber, f.AnnotationID)
			if err != nil {
				return err
			}
			writes = append(writes, pendingWrite{field: f, widget: widget})
		}
	}

	for _, w := range writes {
		if err := applyFieldToWidget(w.widget, w.field); err != nil {
			return err
		}
	}
	if len(writes) > 0 {
		if err := fo.setNeedAppearances(); err != nil {
			return err
		}
	}

	return fo.writeFile(outputPath)
}

// findWidget locates the live widget annotation for an annotation id on
// a page, using the same identification rules as extraction.
func (fo *Form) findWidget(pageNr int, annotationID string) (types.Dict, error) {
	ex := &extractor{ctx: fo.ctx}

	widgets, ids, err := ex.pageWidgets(pageNr)
	if err != nil {
		return nil, &ConsistencyError{AnnotationID: annotationID, Page: pageNr}
	}
	for i, id := range ids {
		if id == annotationID {
			return widgets[i], nil
		}
	}
	return nil, &ConsistencyError{AnnotationID: annotationID, Page: pageNr}
}

// applyFieldToWidget pushes the field's attributes into the widget dict.
// Appearance streams are dropped so viewers regenerate them from the
// updated entries.
func applyFieldToWidget(d types.Dict, f *Field) error {
	switch f.Type {
	case FieldTypeCheckbox, FieldTypeRadio:
		state := f.DefaultValue
		if state == "" {
			state = "Off"
		}
		d["V"] = types.Name(state)
		d["AS"] = types.Name(state)
	default:
		v, err := types.EscapedUTF16String(f.DefaultValue)
		if err != nil {
			return &ValidationError{Reason: fmt.Sprintf("unencodable value for field %q: %v", f.AnnotationID, err)}
		}
		d["V"] = types.StringLiteral(*v)
	}
	delete(d, "AP")

	if f.Label != "" {
		tu, err := types.EscapedUTF16String(f.Label)
		if err != nil {
			return &ValidationError{Reason: fmt.Sprintf("unencodable label for field %q: %v", f.AnnotationID, err)}
		}
		d["TU"] = types.StringLiteral(*tu)
	}

	if f.Position != nil {
		p := f.Position
		d["Rect"] = types.NewNumberArray(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
	}

	if f.Formatting != nil {
		fm := f.Formatting
		if fm.FontSize > 0 {
			size := strconv.FormatFloat(fm.FontSize, 'f', -1, 64)
			d["DA"] = types.StringLiteral(fmt.Sprintf("/%s %s Tf 0 g", fontResourceName(fm.FontFamily), size))
		}
		d["Q"] = types.Integer(quaddingForAlignment(fm.Alignment))
		if fm.MaxLength > 0 && f.Type == FieldTypeText {
			d["MaxLen"] = types.Integer(fm.MaxLength)
		}
		flags := 0
		if existing, found := d.Find("Ff"); found {
			if n, ok := existing.(types.Integer); ok {
				flags = int(n)
			}
		}
		if fm.Required {
			flags |= flagRequired
		} else {
			flags &^= flagRequired
		}
		d["Ff"] = types.Integer(flags)
	}
	return nil
}

// setNeedAppearances asks viewers to rebuild field appearances on load
func (fo *Form) setNeedAppearances() error {
	rootDict, err := fo.ctx.Catalog()
	if err != nil {
		return fmt.Errorf("failed to get catalog: %w", err)
	}
	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil
	}
	acroFormDict, err := fo.ctx.DereferenceDict(acroFormObj)
	if err != nil || acroFormDict == nil {
		return nil
	}
	acroFormDict["NeedAppearances"] = types.Boolean(true)
	return nil
}

// writeFile serializes the context with an all-or-nothing commit
func (fo *Form) writeFile(outputPath string) error {
	dir := filepath.Dir(outputPath)
	tmp, err := os.CreateTemp(dir, ".form-save-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create temporary output file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary output file: %w", err)
	}

	if err := api.WriteContextFile(fo.ctx, tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to commit output file: %w", err)
	}
	return nil
}
