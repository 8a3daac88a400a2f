// Package importer maps uploaded spreadsheet columns to client fields,
// screens rows for duplicate or invalid data, and drives the sequential
// client creation run.
package importer

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leacau/aire-crm-sub001/normalization"
)

// CanonicalField is one of the client's writable attributes. FieldIgnore
// marks a column that is not imported.
type CanonicalField string

const (
	FieldIgnore       CanonicalField = ""
	FieldDisplayName  CanonicalField = "display_name"
	FieldLegalName    CanonicalField = "legal_name"
	FieldTaxID        CanonicalField = "tax_id"
	FieldTaxCondition CanonicalField = "tax_condition"
	FieldProvince     CanonicalField = "province"
	FieldLocality     CanonicalField = "locality"
	FieldIndustry     CanonicalField = "industry"
	FieldEmail        CanonicalField = "email"
	FieldPhone        CanonicalField = "phone"
	FieldNotes        CanonicalField = "notes"
	FieldOwner        CanonicalField = "owner"
	FieldClientType   CanonicalField = "client_type"
)

// canonicalFields lists every assignable field, for override validation.
var canonicalFields = map[CanonicalField]bool{
	FieldDisplayName:  true,
	FieldLegalName:    true,
	FieldTaxID:        true,
	FieldTaxCondition: true,
	FieldProvince:     true,
	FieldLocality:     true,
	FieldIndustry:     true,
	FieldEmail:        true,
	FieldPhone:        true,
	FieldNotes:        true,
	FieldOwner:        true,
	FieldClientType:   true,
}

// ParseField validates an operator-supplied field name. The empty string
// and "ignore" both mean FieldIgnore.
func ParseField(name string) (CanonicalField, error) {
	if name == "" || name == "ignore" {
		return FieldIgnore, nil
	}
	field := CanonicalField(name)
	if !canonicalFields[field] {
		return FieldIgnore, fmt.Errorf("unknown field %q", name)
	}
	return field, nil
}

// KeywordGroup ties a canonical field to the header keywords that
// identify it. Groups are tested in order; the first match wins.
type KeywordGroup struct {
	Field    CanonicalField `yaml:"field"`
	Keywords []string       `yaml:"keywords"`
}

// defaultKeywordGroups covers the column names seen in the spreadsheets
// operators actually upload, Spanish first. Order matters: advisor and
// tax id columns are claimed before the broader name keywords.
var defaultKeywordGroups = []KeywordGroup{
	{Field: FieldOwner, Keywords: []string{"asesor", "ejecutivo", "vendedor", "responsable", "owner"}},
	{Field: FieldTaxID, Keywords: []string{"cuit", "cuil", "tax id", "nro doc"}},
	{Field: FieldLegalName, Keywords: []string{"razon social", "razon"}},
	{Field: FieldDisplayName, Keywords: []string{"nombre fantasia", "fantasia", "nombre", "cliente", "empresa", "name"}},
	{Field: FieldEmail, Keywords: []string{"email", "e mail", "mail", "correo"}},
	{Field: FieldPhone, Keywords: []string{"telefono", "tel", "celular", "cel", "movil", "phone"}},
	{Field: FieldProvince, Keywords: []string{"provincia", "province"}},
	{Field: FieldLocality, Keywords: []string{"localidad", "ciudad", "city"}},
	{Field: FieldTaxCondition, Keywords: []string{"condicion iva", "condicion", "iva"}},
	{Field: FieldIndustry, Keywords: []string{"rubro", "industria", "actividad", "categoria"}},
	{Field: FieldClientType, Keywords: []string{"tipo cliente", "tipo"}},
	{Field: FieldNotes, Keywords: []string{"observaciones", "observacion", "nota", "notas", "comentario"}},
}

// Inferencer guesses header-to-field mappings from keyword groups.
type Inferencer struct {
	groups []KeywordGroup
}

// NewInferencer builds an inferencer with the built-in keyword groups.
func NewInferencer() *Inferencer {
	return &Inferencer{groups: defaultKeywordGroups}
}

// NewInferencerFromFile builds an inferencer whose keyword groups are
// loaded from a YAML file, for installations with unusual exports.
func NewInferencerFromFile(path string) (*Inferencer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyword groups: %w", err)
	}

	var groups []KeywordGroup
	if err := yaml.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("failed to parse keyword groups: %w", err)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("keyword groups file %q is empty", path)
	}

	return &Inferencer{groups: groups}, nil
}

// Infer fills the unmapped headers of existing. For each header the
// first matching keyword group wins; when that field is already claimed
// by another header the new header is left ignored, keeping the
// one-field-one-header invariant. A nil existing starts from scratch.
func (inf *Inferencer) Infer(headers []string, existing *Mapping) *Mapping {
	mapping := existing
	if mapping == nil {
		mapping = NewMapping(headers)
	}

	for _, header := range headers {
		if mapping.Field(header) != FieldIgnore {
			continue
		}

		field := inf.matchHeader(header)
		if field == FieldIgnore {
			continue
		}
		if _, claimed := mapping.HeaderFor(field); claimed {
			continue
		}
		mapping.assign[header] = field
	}

	return mapping
}

// matchHeader returns the field of the first keyword group matching the
// folded header, or FieldIgnore.
func (inf *Inferencer) matchHeader(header string) CanonicalField {
	folded := normalization.FoldHeader(header)
	if folded == "" {
		return FieldIgnore
	}

	for _, group := range inf.groups {
		for _, keyword := range group.Keywords {
			if containsWord(folded, keyword) {
				return group.Field
			}
		}
	}

	return FieldIgnore
}

// containsWord reports whether keyword occurs in folded text on word
// boundaries, so "tel" matches "tel cel" but not "detalle".
func containsWord(folded, keyword string) bool {
	return strings.Contains(" "+folded+" ", " "+keyword+" ")
}
