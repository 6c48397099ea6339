package descriptions

// Tool descriptions with practical examples and use cases

const (
	FormExtractFieldsDescription = `Extract all fillable form fields from a PDF document as structured records.

**When to use:** Need to discover which fields a fillable PDF contains, their identifiers, labels, current values, positions and formatting.

**Why it's useful:** Exposes every widget annotation as a structured record keyed by annotation id and page, the starting point for any update workflow.

**Examples:**
• Inspect a tax form: "List all fields of irs_f1040.pdf with their labels and values"
• Prepare an update: "Find the annotation id of the field labeled 'month' on page 1"

**Common workflows:**
1. Discovery: Extract fields → Pick annotation ids → Update with form_update_field
2. Bulk editing: Extract fields → Export JSON → Edit offline → Apply with form_apply_json

**Best practices:** A PDF without fillable fields is not an error; the result simply lists no pages.`

	FormExportJSONDescription = `Serialize a PDF's form fields to a JSON file matching the export schema.

**When to use:** Need an editable, machine-readable snapshot of all pages and fields for offline modification or archival.

**Why it's useful:** The export is round-trip stable: re-importing the exact output reproduces the same field state, so it doubles as a diffable record of a form's layout.

**Examples:**
• Offline editing: "Export registration.pdf fields to fields.json, edit values, re-apply"
• Change tracking: "Export before and after filling to diff what changed"

**Best practices:** Keep the exported file unmodified except for values, labels, position and formatting; annotation ids are the keys used at apply time.`

	FormUpdateFieldDescription = `Update one form field by annotation id or label and save the modified PDF.

**When to use:** Need a targeted change to a single field: its value, label, position or formatting.

**Why it's useful:** The patch is partial; attributes not named in the patch keep their current values, and sub-objects merge per key.

**Examples:**
• Fill a value: update field "topmostSubform[0].Page1[0].f1_01[0]" on page 1 with {"default_value": "Feb"}
• Move a field: patch {"position": {"x": 226, "y": 62}}

**Common workflows:**
1. Single edit: form_extract_fields → form_update_field → done
2. Label-based edit: when ids are opaque, key the update by the field's label instead

**Best practices:** When several fields on a page share a label, the first in page order is updated; use the annotation id for an exact match.`

	FormApplyJSONDescription = `Load an edited export JSON and write all field changes back into the PDF.

**When to use:** Applying bulk edits made offline to a previously exported JSON document.

**Why it's useful:** Wholesale-replaces the in-memory field state with the imported document and persists every field in one save.

**Best practices:** The JSON must match the export schema exactly; unknown or missing keys fail validation before anything is written.`

	FormDocInfoDescription = `Inspect a PDF document: page count, metadata and a text preview.

**When to use:** Need context about a document before editing its fields, or to verify a file is a readable PDF.

**Examples:**
• Pre-flight: "Check how many pages contract.pdf has before extracting fields"
• Cataloging: "Get title, author and creation date from submitted-form.pdf"`

	FormServerInfoDescription = `Get server information, available tools and usage guidance.

**When to use:** Starting a session with this server, or deciding which tool fits a task.`
)
