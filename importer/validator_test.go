package importer

import (
	"strings"
	"testing"

	"github.com/leacau/aire-crm-sub001/database"
	"github.com/leacau/aire-crm-sub001/reconcile"
	"github.com/leacau/aire-crm-sub001/tabular"
)

var testHeaders = []string{"Nombre", "CUIT", "Asesor"}

func testSnapshot() []database.Client {
	return []database.Client{
		{ID: "c1", DisplayName: "Acme SRL", TaxID: "20123456786"},
		{ID: "c2", DisplayName: "Transportes del Litoral"},
	}
}

func testDirectory() reconcile.OwnerDirectory {
	return reconcile.BuildOwnerDirectory([]database.Owner{
		{ID: "owner-a", DisplayName: "Laura Gomez"},
	})
}

func validateRows(t *testing.T, rows [][]string) []*Result {
	t.Helper()

	table := tabular.NewTable(testHeaders, rows)
	mapping := NewInferencer().Infer(table.Headers, nil)
	validator := NewValidator(testSnapshot(), testDirectory())
	return validator.Validate(table.Rows, mapping)
}

func TestValidateCleanRow(t *testing.T) {
	results := validateRows(t, [][]string{
		{"Quimica del Sur", "", "Laura Gomez"},
	})

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if len(results[0].Issues) != 0 {
		t.Errorf("Expected no issues, got %+v", results[0].Issues)
	}
	if !results[0].Included {
		t.Error("Clean row should default to included")
	}
}

func TestValidateMissingDisplayName(t *testing.T) {
	results := validateRows(t, [][]string{
		{"", "", "Laura Gomez"},
	})

	if !results[0].HasError() {
		t.Fatal("Expected error for missing display name")
	}
	if results[0].Included {
		t.Error("Error row must not be included")
	}
}

func TestValidateUnknownAdvisor(t *testing.T) {
	results := validateRows(t, [][]string{
		{"Quimica del Sur", "", "Nadie Conocido"},
	})

	if !results[0].HasError() {
		t.Fatal("Expected error for unknown advisor")
	}
	if results[0].Included {
		t.Error("Error row must not be included")
	}
}

func TestValidateAdvisorCaseInsensitive(t *testing.T) {
	results := validateRows(t, [][]string{
		{"Quimica del Sur", "", "LAURA GOMEZ"},
	})

	if results[0].HasError() {
		t.Errorf("Advisor lookup should be case-insensitive, got %+v", results[0].Issues)
	}
}

func TestValidateTaxIDCollision(t *testing.T) {
	results := validateRows(t, [][]string{
		{"Quimica del Sur", "20123456786", "Laura Gomez"},
	})

	if !results[0].HasError() {
		t.Fatal("Expected error for existing tax id")
	}

	var found bool
	for _, issue := range results[0].Issues {
		if issue.Severity == SeverityError && issue.ConflictID == "c1" {
			found = true
			if !strings.Contains(issue.Message, "already exists") {
				t.Errorf("Expected existing-client message, got %q", issue.Message)
			}
		}
	}
	if !found {
		t.Error("Collision issue does not reference the existing client")
	}
	if results[0].Included {
		t.Error("Error row must not be included")
	}
}

func TestValidateInvalidCUITWarns(t *testing.T) {
	results := validateRows(t, [][]string{
		{"Quimica del Sur", "12345", "Laura Gomez"},
	})

	if results[0].HasError() {
		t.Fatalf("Expected no error, got %+v", results[0].Issues)
	}
	if !results[0].HasWarning() {
		t.Fatal("Expected warning for malformed tax id")
	}
	if !results[0].Included {
		t.Error("Warning row should default to included")
	}
}

func TestValidateSimilarNameWarns(t *testing.T) {
	results := validateRows(t, [][]string{
		{"Transporte del Litoral", "", "Laura Gomez"},
	})

	if results[0].HasError() {
		t.Fatalf("Expected no error, got %+v", results[0].Issues)
	}
	if !results[0].HasWarning() {
		t.Fatal("Expected near-duplicate warning")
	}

	issue := results[0].Issues[0]
	if !strings.Contains(issue.Message, "Transportes del Litoral") {
		t.Errorf("Warning does not name the closest match: %q", issue.Message)
	}
	if issue.ConflictID != "c2" {
		t.Errorf("Warning ConflictID = %q, want c2", issue.ConflictID)
	}
	if !results[0].Included {
		t.Error("Warning row should default to included")
	}
}

func TestValidateExactNameNoWarning(t *testing.T) {
	// Identical names score 1.0, outside the near-duplicate band.
	results := validateRows(t, [][]string{
		{"Acme SRL", "", "Laura Gomez"},
	})

	if results[0].HasWarning() {
		t.Errorf("Exact name must not warn, got %+v", results[0].Issues)
	}
}

func TestValidateCustomSimilarity(t *testing.T) {
	table := tabular.NewTable(testHeaders, [][]string{
		{"Quimica del Sur", "", "Laura Gomez"},
	})
	mapping := NewInferencer().Infer(table.Headers, nil)

	validator := NewValidator(testSnapshot(), testDirectory())
	validator.SetSimilarity(func(name string, candidates []string) (int, float64) {
		return 0, 0.9
	})

	results := validator.Validate(table.Rows, mapping)
	if !results[0].HasWarning() {
		t.Error("Swapped scorer should trigger the warning band")
	}
}
