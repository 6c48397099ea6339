package form

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testWidget describes one widget annotation in a generated fixture PDF
type testWidget struct {
	name      string
	label     string
	value     string
	rect      [4]float64
	da        string
	maxLen    int
	flags     int
	q         int
	fieldType string // FT entry, defaults to Tx
	nameValue bool   // emit V as a name object instead of a string literal
}

func textWidget(name, label, value string, rect [4]float64) testWidget {
	return testWidget{
		name:   name,
		label:  label,
		value:  value,
		rect:   rect,
		da:     "/Helv 10 Tf 0 g",
		maxLen: 40,
	}
}

func checkboxWidget(name, state string, rect [4]float64) testWidget {
	return testWidget{
		name:      name,
		value:     state,
		rect:      rect,
		fieldType: "Btn",
		nameValue: true,
	}
}

// buildFormPDF assembles a minimal AcroForm PDF with the given widgets
// per page and writes it into a temp dir. Object offsets in the xref
// table are computed from the buffer as objects are emitted.
func buildFormPDF(t *testing.T, pages [][]testWidget) string {
	t.Helper()

	nPages := len(pages)
	nWidgets := 0
	for _, pg := range pages {
		nWidgets += len(pg)
	}
	// 1: catalog, 2: page tree, 3..2+nPages: pages, then widgets
	totalObjs := 2 + nPages + nWidgets

	widgetNum := func(pageIdx, widgetIdx int) int {
		n := 2 + nPages
		for i := 0; i < pageIdx; i++ {
			n += len(pages[i])
		}
		return n + widgetIdx + 1
	}

	var buf bytes.Buffer
	offsets := make([]int, totalObjs+1)
	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	buf.WriteString("%PDF-1.4\n")

	var allFieldRefs []string
	for p := range pages {
		for w := range pages[p] {
			allFieldRefs = append(allFieldRefs, fmt.Sprintf("%d 0 R", widgetNum(p, w)))
		}
	}
	writeObj(1, fmt.Sprintf(
		"<< /Type /Catalog /Pages 2 0 R /AcroForm << /Fields [%s] /DA (/Helv 0 Tf 0 g) >> >>",
		strings.Join(allFieldRefs, " ")))

	var kids []string
	for p := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+p))
	}
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), nPages))

	for p, widgets := range pages {
		var annots []string
		for w := range widgets {
			annots = append(annots, fmt.Sprintf("%d 0 R", widgetNum(p, w)))
		}
		writeObj(3+p, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Annots [%s] >>",
			strings.Join(annots, " ")))
	}

	for p, widgets := range pages {
		for w, wd := range widgets {
			ft := wd.fieldType
			if ft == "" {
				ft = "Tx"
			}
			var b strings.Builder
			fmt.Fprintf(&b, "<< /Type /Annot /Subtype /Widget /FT /%s /F 4", ft)
			fmt.Fprintf(&b, " /T (%s)", wd.name)
			if wd.label != "" {
				fmt.Fprintf(&b, " /TU (%s)", wd.label)
			}
			if wd.nameValue {
				fmt.Fprintf(&b, " /V /%s /AS /%s", wd.value, wd.value)
			} else {
				fmt.Fprintf(&b, " /V (%s)", wd.value)
			}
			fmt.Fprintf(&b, " /Rect [%g %g %g %g]", wd.rect[0], wd.rect[1], wd.rect[2], wd.rect[3])
			if wd.da != "" {
				fmt.Fprintf(&b, " /DA (%s)", wd.da)
			}
			if wd.maxLen > 0 {
				fmt.Fprintf(&b, " /MaxLen %d", wd.maxLen)
			}
			fmt.Fprintf(&b, " /Ff %d /Q %d >>", wd.flags, wd.q)
			writeObj(widgetNum(p, w), b.String())
		}
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", totalObjs+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= totalObjs; i++ {
		fmt.Fprintf(&buf, "%010d %05d n \n", offsets[i], 0)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", totalObjs+1, xrefOffset)

	path := filepath.Join(t.TempDir(), "fixture.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write fixture PDF: %v", err)
	}
	return path
}

// singleFieldPDF is the canonical fixture: one page, one text field with
// annotation id "field_1" and label "Name".
func singleFieldPDF(t *testing.T) string {
	t.Helper()
	return buildFormPDF(t, [][]testWidget{
		{textWidget("field_1", "Name", "Alice", [4]float64{100, 700, 300, 720})},
	})
}

// twoFieldPDF has two text fields on one page
func twoFieldPDF(t *testing.T) string {
	t.Helper()
	return buildFormPDF(t, [][]testWidget{
		{
			textWidget("field_1", "Name", "Alice", [4]float64{100, 700, 300, 720}),
			textWidget("field_2", "Email", "", [4]float64{100, 660, 300, 680}),
		},
	})
}
