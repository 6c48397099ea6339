package form

import "fmt"

// Lookup kinds reported by NotFoundError
const (
	KindPage         = "page"
	KindAnnotationID = "annotation id"
	KindLabel        = "label"
)

// NotFoundError indicates that a requested page, annotation id or label
// does not exist in the Form's extracted state.
type NotFoundError struct {
	Kind string
	Key  string
	Page int
}

func (e *NotFoundError) Error() string {
	if e.Kind == KindPage {
		return fmt.Sprintf("page %d not found", e.Page)
	}
	return fmt.Sprintf("%s %q not found on page %d", e.Kind, e.Key, e.Page)
}

// ValidationError indicates that a patch or imported JSON document does
// not conform to the Field schema.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid field data: " + e.Reason
}

// ConsistencyError indicates that a Field's annotation id no longer
// resolves to a widget in the live document at save time.
type ConsistencyError struct {
	AnnotationID string
	Page         int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("no widget matches annotation id %q on page %d", e.AnnotationID, e.Page)
}
