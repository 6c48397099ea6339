package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// maxFieldDepth bounds Parent chain walks so a malformed document with a
// reference cycle cannot loop the extractor.
const maxFieldDepth = 16

// Defaults applied when a widget carries no appearance information,
// matching the document-wide fallback most AcroForm producers assume.
const (
	defaultFontSize   = 8.0
	defaultFontFamily = "Helvetica"
)

// Field flag bits (Ff entry)
const (
	flagRequired   = 1 << 1  // bit 2
	flagRadio      = 1 << 15 // bit 16
	flagPushbutton = 1 << 16 // bit 17
	flagCombo      = 1 << 17 // bit 18
)

// fontFamilies maps the short font resource names commonly used in DA
// strings to full family names.
var fontFamilies = map[string]string{
	"Helv": "Helvetica",
	"HeBo": "Helvetica-Bold",
	"TiRo": "Times-Roman",
	"TiBo": "Times-Bold",
	"Cour": "Courier",
	"ZaDb": "ZapfDingbats",
}

// extractor walks a document context and builds the page/field model.
// It only reads; the context is never mutated.
type extractor struct {
	ctx *model.Context
}

// pages extracts every page that carries at least one widget annotation
func (ex *extractor) pages() ([]Page, error) {
	if err := ex.ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	var pages []Page
	for pageNr := 1; pageNr <= ex.ctx.PageCount; pageNr++ {
		fields, err := ex.pageFields(pageNr)
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}
		pages = append(pages, Page{PageNumber: pageNr, Fields: fields})
	}
	return pages, nil
}

// pageFields extracts the widget annotations of a single page in
// annotation order. A page without annotations is not an error.
func (ex *extractor) pageFields(pageNr int) ([]Field, error) {
	widgets, ids, err := ex.pageWidgets(pageNr)
	if err != nil {
		return nil, err
	}

	var fields []Field
	for i, d := range widgets {
		fields = append(fields, ex.field(d, ids[i]))
	}
	return fields, nil
}

// pageWidgets collects the widget annotation dicts of a page in
// annotation order together with their annotation ids. Sibling widgets
// can share a fully qualified name, as radio group kids do, so repeated
// names get an occurrence suffix to keep ids unique within the page.
func (ex *extractor) pageWidgets(pageNr int) ([]types.Dict, []string, error) {
	pageDict, _, _, err := ex.ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve page %d: %w", pageNr, err)
	}
	if pageDict == nil {
		return nil, nil, nil
	}

	annotsObj, found := pageDict.Find("Annots")
	if !found {
		return nil, nil, nil
	}
	annots, err := ex.ctx.DereferenceArray(annotsObj)
	if err != nil || annots == nil {
		return nil, nil, nil
	}

	var widgets []types.Dict
	var ids []string
	seen := map[string]int{}
	for _, annotRef := range annots {
		d, err := ex.ctx.DereferenceDict(annotRef)
		if err != nil || d == nil || !ex.isWidget(d) {
			continue
		}
		id := ex.widgetID(d, len(widgets))
		seen[id]++
		if n := seen[id]; n > 1 {
			id = fmt.Sprintf("%s#%d", id, n)
		}
		widgets = append(widgets, d)
		ids = append(ids, id)
	}
	return widgets, ids, nil
}

// isWidget reports whether an annotation dict is a form field widget
func (ex *extractor) isWidget(d types.Dict) bool {
	obj, found := d.Find("Subtype")
	if !found {
		return false
	}
	name, err := ex.ctx.DereferenceName(obj, model.V10, nil)
	return err == nil && name == "Widget"
}

// field maps a widget annotation dict onto the Field model
func (ex *extractor) field(d types.Dict, id string) Field {
	f := Field{
		AnnotationID: id,
		Type:         ex.fieldType(d, 0),
		Label:        ex.inheritedString(d, "TU"),
		DefaultValue: ex.inheritedString(d, "V"),
	}
	f.Position = ex.position(d)
	f.Formatting = ex.formatting(d)
	return f
}

// widgetID returns the fully qualified field name, or a stable synthetic
// name when the widget carries no T entry anywhere in its hierarchy.
func (ex *extractor) widgetID(d types.Dict, widgetNr int) string {
	if name := ex.fullName(d); name != "" {
		return name
	}
	return fmt.Sprintf("field_%d", widgetNr)
}

// fullName joins the T entries of the field's Parent chain with dots,
// root first, yielding the fully qualified AcroForm field name.
func (ex *extractor) fullName(d types.Dict) string {
	var parts []string
	for depth := 0; d != nil && depth < maxFieldDepth; depth++ {
		if obj, found := d.Find("T"); found {
			if t, err := ex.ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil && t != "" {
				parts = append([]string{t}, parts...)
			}
		}
		parentObj, found := d.Find("Parent")
		if !found {
			break
		}
		parent, err := ex.ctx.DereferenceDict(parentObj)
		if err != nil {
			break
		}
		d = parent
	}
	return strings.Join(parts, ".")
}

// inheritedString resolves a text entry on the widget or, failing that,
// its Parent chain. Name objects (checkbox and radio states) are
// returned as their plain name.
func (ex *extractor) inheritedString(d types.Dict, key string) string {
	for depth := 0; d != nil && depth < maxFieldDepth; depth++ {
		if obj, found := d.Find(key); found {
			if s, err := ex.ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil {
				return s
			}
			if n, err := ex.ctx.DereferenceName(obj, model.V10, nil); err == nil {
				return n.Value()
			}
		}
		parentObj, found := d.Find("Parent")
		if !found {
			break
		}
		parent, err := ex.ctx.DereferenceDict(parentObj)
		if err != nil {
			break
		}
		d = parent
	}
	return ""
}

// inheritedInt resolves an integer entry on the widget or its Parent chain
func (ex *extractor) inheritedInt(d types.Dict, key string) *int {
	for depth := 0; d != nil && depth < maxFieldDepth; depth++ {
		if obj, found := d.Find(key); found {
			if i, err := ex.ctx.DereferenceInteger(obj); err == nil && i != nil {
				v := int(*i)
				return &v
			}
		}
		parentObj, found := d.Find("Parent")
		if !found {
			break
		}
		parent, err := ex.ctx.DereferenceDict(parentObj)
		if err != nil {
			break
		}
		d = parent
	}
	return nil
}

// fieldType determines the field type from the FT entry, checking the
// Parent chain for inherited types.
func (ex *extractor) fieldType(d types.Dict, depth int) FieldType {
	if d == nil || depth >= maxFieldDepth {
		return FieldTypeUnknown
	}

	ftObj, found := d.Find("FT")
	if !found {
		if parentObj, found := d.Find("Parent"); found {
			if parent, err := ex.ctx.DereferenceDict(parentObj); err == nil {
				return ex.fieldType(parent, depth+1)
			}
		}
		return FieldTypeUnknown
	}

	ftName, err := ex.ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return FieldTypeUnknown
	}

	switch ftName {
	case "Tx":
		return FieldTypeText
	case "Btn":
		if flags := ex.inheritedInt(d, "Ff"); flags != nil {
			if *flags&flagRadio != 0 {
				return FieldTypeRadio
			}
			if *flags&flagPushbutton != 0 {
				return FieldTypeUnknown
			}
		}
		return FieldTypeCheckbox
	case "Ch":
		if flags := ex.inheritedInt(d, "Ff"); flags != nil && *flags&flagCombo != 0 {
			return FieldTypeDropdown
		}
		return FieldTypeList
	case "Sig":
		return FieldTypeSignature
	default:
		return FieldTypeUnknown
	}
}

// position maps the widget's Rect onto the Position model
func (ex *extractor) position(d types.Dict) *Position {
	rectObj, found := d.Find("Rect")
	if !found {
		return nil
	}
	rect, err := ex.ctx.DereferenceArray(rectObj)
	if err != nil || len(rect) != 4 {
		return nil
	}

	coords := make([]float64, 4)
	for i, c := range rect {
		f, err := ex.ctx.DereferenceNumber(c)
		if err != nil {
			return nil
		}
		coords[i] = f
	}

	return &Position{
		X:      coords[0],
		Y:      coords[1],
		Width:  coords[2] - coords[0],
		Height: coords[3] - coords[1],
		Unit:   UnitPoints,
	}
}

// formatting builds the Formatting model from the widget's appearance
// and entry constraints.
func (ex *extractor) formatting(d types.Dict) *Formatting {
	fm := &Formatting{
		FontSize:   defaultFontSize,
		FontFamily: defaultFontFamily,
		Alignment:  AlignmentLeft,
	}

	if da := ex.inheritedString(d, "DA"); da != "" {
		parseDAString(da, fm)
	}
	if q := ex.inheritedInt(d, "Q"); q != nil {
		fm.Alignment = alignmentForQuadding(*q)
	}
	if maxLen := ex.inheritedInt(d, "MaxLen"); maxLen != nil {
		fm.MaxLength = *maxLen
	}
	if flags := ex.inheritedInt(d, "Ff"); flags != nil {
		fm.Required = *flags&flagRequired != 0
	}
	return fm
}

// parseDAString extracts font information from a default appearance string
func parseDAString(da string, fm *Formatting) {
	parts := strings.Fields(da)
	for i, part := range parts {
		if part != "Tf" || i < 2 {
			continue
		}
		name := strings.TrimPrefix(parts[i-2], "/")
		if name != "" {
			if family, ok := fontFamilies[name]; ok {
				fm.FontFamily = family
			} else {
				fm.FontFamily = name
			}
		}
		if size, err := strconv.ParseFloat(parts[i-1], 64); err == nil && size > 0 {
			fm.FontSize = size
		}
	}
}

// alignmentForQuadding maps the Q entry to an alignment keyword
func alignmentForQuadding(q int) string {
	switch q {
	case 1:
		return AlignmentCenter
	case 2:
		return AlignmentRight
	default:
		return AlignmentLeft
	}
}

// quaddingForAlignment is the inverse of alignmentForQuadding
func quaddingForAlignment(alignment string) int {
	switch alignment {
	case AlignmentCenter:
		return 1
	case AlignmentRight:
		return 2
	default:
		return 0
	}
}

// fontResourceName maps a full family name back to the short resource
// name used in DA strings.
func fontResourceName(family string) string {
	for short, full := range fontFamilies {
		if full == family {
			return short
		}
	}
	if family == "" {
		return "Helv"
	}
	return strings.ReplaceAll(family, " ", "")
}
