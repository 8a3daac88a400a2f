package importer

import (
	"fmt"

	"github.com/leacau/aire-crm-sub001/database"
	"github.com/leacau/aire-crm-sub001/quality"
	"github.com/leacau/aire-crm-sub001/reconcile"
	"github.com/leacau/aire-crm-sub001/tabular"
)

// Severity of a validation issue. Errors block inclusion, warnings only
// bias the operator's default choice.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding on an imported row. ConflictID references the
// existing client involved, when there is one.
type Issue struct {
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	ConflictID string   `json:"conflict_id,omitempty"`
}

// Result is the validation verdict for one row. Included starts true
// and is forced false while any error issue is present; only the batch
// selector mutates it afterwards.
type Result struct {
	RowIndex int               `json:"row_index"`
	Row      tabular.RawRecord `json:"row"`
	Issues   []Issue           `json:"issues"`
	Included bool              `json:"included"`
}

// HasError reports whether any issue blocks the row.
func (r *Result) HasError() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarning reports whether the row carries at least one warning.
func (r *Result) HasWarning() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// SimilarityFunc scores a name against existing display names and
// returns the index and score of the best match, -1 when there are
// none. Any bounded [0,1] scorer with a stable tie-break fits.
type SimilarityFunc func(name string, candidates []string) (int, float64)

// Validator screens imported rows against a snapshot of the persisted
// clients and the advisor directory.
type Validator struct {
	clients    []database.Client
	names      []string
	owners     reconcile.OwnerDirectory
	similarity SimilarityFunc
	threshold  float64
}

// NewValidator builds a validator over the given snapshot.
func NewValidator(clients []database.Client, owners reconcile.OwnerDirectory) *Validator {
	names := make([]string, len(clients))
	for i, c := range clients {
		names[i] = c.DisplayName
	}
	return &Validator{
		clients:    clients,
		names:      names,
		owners:     owners,
		similarity: quality.BestMatch,
		threshold:  quality.DefaultSimilarityThreshold,
	}
}

// SetSimilarity swaps the name scorer.
func (v *Validator) SetSimilarity(fn SimilarityFunc) {
	v.similarity = fn
}

// Validate screens every row and returns one result per row, in order.
func (v *Validator) Validate(rows []tabular.RawRecord, mapping *Mapping) []*Result {
	results := make([]*Result, 0, len(rows))
	for i, row := range rows {
		results = append(results, v.validateRow(i, row, mapping))
	}
	return results
}

func (v *Validator) validateRow(index int, row tabular.RawRecord, mapping *Mapping) *Result {
	result := &Result{
		RowIndex: index,
		Row:      row,
	}

	displayName := mapping.fieldValue(row, FieldDisplayName)
	if displayName == "" {
		result.Issues = append(result.Issues, Issue{
			Severity: SeverityError,
			Message:  "display name is missing",
		})
	}

	ownerName := mapping.fieldValue(row, FieldOwner)
	if _, ok := v.owners.Resolve(ownerName); !ok {
		result.Issues = append(result.Issues, Issue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("advisor %q not found", ownerName),
		})
	}

	if taxID := mapping.fieldValue(row, FieldTaxID); taxID != "" {
		for i := range v.clients {
			if v.clients[i].TaxID == taxID {
				result.Issues = append(result.Issues, Issue{
					Severity:   SeverityError,
					Message:    fmt.Sprintf("a client with tax id %s already exists: %s", taxID, v.clients[i].DisplayName),
					ConflictID: v.clients[i].ID,
				})
				break
			}
		}
		if !quality.ValidateCUIT(taxID) {
			result.Issues = append(result.Issues, Issue{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("tax id %s fails the CUIT check digit", taxID),
			})
		}
	}

	if displayName != "" {
		if idx, score := v.similarity(displayName, v.names); idx >= 0 && score >= v.threshold && score < 1.0 {
			result.Issues = append(result.Issues, Issue{
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("name is very similar to existing client %q", v.names[idx]),
				ConflictID: v.clients[idx].ID,
			})
		}
	}

	result.Included = !result.HasError()
	return result
}
