package importer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInferMapping(t *testing.T) {
	headers := []string{"Nombre", "CUIT", "Asesor", "E-Mail", "Tel. Cel.", "Columna Rara"}

	mapping := NewInferencer().Infer(headers, nil)

	tests := []struct {
		header   string
		expected CanonicalField
	}{
		{"Nombre", FieldDisplayName},
		{"CUIT", FieldTaxID},
		{"Asesor", FieldOwner},
		{"E-Mail", FieldEmail},
		{"Tel. Cel.", FieldPhone},
		{"Columna Rara", FieldIgnore},
	}

	for _, tt := range tests {
		if got := mapping.Field(tt.header); got != tt.expected {
			t.Errorf("Field(%q) = %q, want %q", tt.header, got, tt.expected)
		}
	}
}

func TestInferMappingAccentedHeaders(t *testing.T) {
	headers := []string{"Razón Social", "Condición IVA", "Teléfono"}

	mapping := NewInferencer().Infer(headers, nil)

	if got := mapping.Field("Razón Social"); got != FieldLegalName {
		t.Errorf("Field(Razón Social) = %q, want legal name", got)
	}
	if got := mapping.Field("Condición IVA"); got != FieldTaxCondition {
		t.Errorf("Field(Condición IVA) = %q, want tax condition", got)
	}
	if got := mapping.Field("Teléfono"); got != FieldPhone {
		t.Errorf("Field(Teléfono) = %q, want phone", got)
	}
}

func TestInferFirstHeaderWinsDuplicateClaim(t *testing.T) {
	headers := []string{"Tel. Cel.", "Tel. Comercial"}

	mapping := NewInferencer().Infer(headers, nil)

	if got := mapping.Field("Tel. Cel."); got != FieldPhone {
		t.Errorf("First phone column = %q, want phone", got)
	}
	if got := mapping.Field("Tel. Comercial"); got != FieldIgnore {
		t.Errorf("Second phone column = %q, want ignore", got)
	}
}

func TestInferRespectsExistingAssignments(t *testing.T) {
	headers := []string{"Columna Rara", "Tel. Cel."}
	existing := NewMapping(headers)
	existing.Set("Columna Rara", FieldPhone)

	mapping := NewInferencer().Infer(headers, existing)

	if got := mapping.Field("Columna Rara"); got != FieldPhone {
		t.Errorf("Operator assignment lost: Field(Columna Rara) = %q", got)
	}
	if got := mapping.Field("Tel. Cel."); got != FieldIgnore {
		t.Errorf("Claimed field reassigned: Field(Tel. Cel.) = %q", got)
	}
}

func TestSetMappingDemotesPreviousHolder(t *testing.T) {
	mapping := NewMapping([]string{"Tel. Cel.", "Tel. Comercial"})

	mapping.Set("Tel. Cel.", FieldPhone)
	mapping.Set("Tel. Comercial", FieldPhone)

	if got := mapping.Field("Tel. Cel."); got != FieldIgnore {
		t.Errorf("Previous holder = %q, want ignore", got)
	}
	if got := mapping.Field("Tel. Comercial"); got != FieldPhone {
		t.Errorf("New holder = %q, want phone", got)
	}

	header, ok := mapping.HeaderFor(FieldPhone)
	if !ok || header != "Tel. Comercial" {
		t.Errorf("HeaderFor(phone) = %q, %v; want Tel. Comercial", header, ok)
	}
}

func TestWordBoundaryMatching(t *testing.T) {
	// "Detalle" contains "tel" as a substring but not as a word.
	mapping := NewInferencer().Infer([]string{"Detalle"}, nil)

	if got := mapping.Field("Detalle"); got == FieldPhone {
		t.Error("Substring match leaked through word boundaries")
	}
}

func TestNewInferencerFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.yaml")
	content := `
- field: phone
  keywords: ["interno"]
- field: display_name
  keywords: ["socio"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write groups file: %v", err)
	}

	inf, err := NewInferencerFromFile(path)
	if err != nil {
		t.Fatalf("Failed to load groups: %v", err)
	}

	mapping := inf.Infer([]string{"Interno", "Socio", "Nombre"}, nil)
	if got := mapping.Field("Interno"); got != FieldPhone {
		t.Errorf("Field(Interno) = %q, want phone", got)
	}
	if got := mapping.Field("Socio"); got != FieldDisplayName {
		t.Errorf("Field(Socio) = %q, want display name", got)
	}
	// Default keywords are replaced, not merged.
	if got := mapping.Field("Nombre"); got != FieldIgnore {
		t.Errorf("Field(Nombre) = %q, want ignore with custom groups", got)
	}
}

func TestNewInferencerFromFileMissing(t *testing.T) {
	if _, err := NewInferencerFromFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing groups file")
	}
}
