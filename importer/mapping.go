package importer

import (
	"strings"

	"github.com/leacau/aire-crm-sub001/tabular"
)

// Mapping assigns each header of an uploaded table to a canonical field
// or to FieldIgnore. At most one header holds a given field at any time.
type Mapping struct {
	headers []string
	assign  map[string]CanonicalField
}

// NewMapping builds an empty mapping over the given headers.
func NewMapping(headers []string) *Mapping {
	return &Mapping{
		headers: headers,
		assign:  make(map[string]CanonicalField, len(headers)),
	}
}

// Headers returns the table headers in upload order.
func (m *Mapping) Headers() []string {
	return m.headers
}

// Field returns the field assigned to header, or FieldIgnore.
func (m *Mapping) Field(header string) CanonicalField {
	return m.assign[header]
}

// HeaderFor returns the header currently holding field.
func (m *Mapping) HeaderFor(field CanonicalField) (string, bool) {
	if field == FieldIgnore {
		return "", false
	}
	// Scan in header order so the answer is deterministic.
	for _, header := range m.headers {
		if m.assign[header] == field {
			return header, true
		}
	}
	return "", false
}

// Set assigns field to header. Any other header currently holding the
// same field is demoted to FieldIgnore, so the one-field-one-header
// invariant also survives operator reassignment.
func (m *Mapping) Set(header string, field CanonicalField) {
	if field != FieldIgnore {
		for h, f := range m.assign {
			if f == field && h != header {
				m.assign[h] = FieldIgnore
			}
		}
	}
	m.assign[header] = field
}

// Assignments returns a copy of header-to-field pairs, ignored headers
// included.
func (m *Mapping) Assignments() map[string]CanonicalField {
	out := make(map[string]CanonicalField, len(m.headers))
	for _, header := range m.headers {
		out[header] = m.assign[header]
	}
	return out
}

// fieldValue reads the trimmed value of field from a row through the
// mapping. Unmapped fields read as empty.
func (m *Mapping) fieldValue(row tabular.RawRecord, field CanonicalField) string {
	header, ok := m.HeaderFor(field)
	if !ok {
		return ""
	}
	return strings.TrimSpace(row.Value(header))
}
