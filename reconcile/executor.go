package reconcile

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/leacau/aire-crm-sub001/database"
	"github.com/leacau/aire-crm-sub001/normalization"
)

// InvoiceRow is one uploaded billing record before matching.
type InvoiceRow struct {
	Number    string          `json:"number"`
	OwnerName string          `json:"owner_name"`
	IssueDate string          `json:"issue_date"`
	Amount    decimal.Decimal `json:"amount"`
	ClientID  string          `json:"client_id,omitempty"`
}

// Row statuses in the final report.
const (
	StatusCreated    = "created"
	StatusIdentical  = "identical"
	StatusConflict   = "conflict"
	StatusUnresolved = "unresolved"
	StatusFailed     = "failed"
)

// RowOutcome is the per-row line of the final report.
type RowOutcome struct {
	RowIndex int    `json:"row_index"`
	Status   string `json:"status"`
	Detail   string `json:"detail,omitempty"`
}

// Report summarizes one reconciliation run. Created+Identical+Conflicts+
// Unresolved+Failed always equals Total.
type Report struct {
	Total      int          `json:"total"`
	Created    int          `json:"created"`
	Identical  int          `json:"identical"`
	Conflicts  int          `json:"conflicts"`
	Unresolved int          `json:"unresolved"`
	Failed     int          `json:"failed"`
	Rows       []RowOutcome `json:"rows"`
}

// SnapshotFunc loads the invoice snapshot for one run.
type SnapshotFunc func() ([]database.Invoice, error)

// CreateInvoiceFunc persists one invoice and returns its id.
type CreateInvoiceFunc func(inv *database.Invoice) (string, error)

// ProgressFunc is called after each processed row with monotonically
// increasing counts.
type ProgressFunc func(processed, total int)

// Executor drives one sequential reconciliation run: normalize, match,
// create. Rows are processed strictly one at a time because the batch
// set makes the accept/reject decision order dependent.
type Executor struct {
	snapshot SnapshotFunc
	owners   OwnerDirectory
	create   CreateInvoiceFunc
	progress ProgressFunc
}

// NewExecutor builds an executor. The snapshot is re-loaded on every
// Run so that back-to-back batches each see fresh data.
func NewExecutor(snapshot SnapshotFunc, owners OwnerDirectory, create CreateInvoiceFunc) *Executor {
	return &Executor{
		snapshot: snapshot,
		owners:   owners,
		create:   create,
	}
}

// OnProgress registers a progress callback.
func (e *Executor) OnProgress(fn ProgressFunc) {
	e.progress = fn
}

// Run processes rows in order. Per-row failures are recorded and do not
// abort the batch; cancellation is honored between rows only, so a
// partially completed batch still yields a consistent report.
func (e *Executor) Run(ctx context.Context, rows []InvoiceRow) (*Report, error) {
	index, err := e.snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice snapshot: %w", err)
	}

	matcher := NewMatcher(index)
	report := &Report{
		Total: len(rows),
		Rows:  make([]RowOutcome, 0, len(rows)),
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("reconciliation cancelled after %d of %d rows: %w", i, report.Total, err)
		}

		outcome := e.processRow(matcher, i, row)
		report.Rows = append(report.Rows, outcome)

		switch outcome.Status {
		case StatusCreated:
			report.Created++
		case StatusIdentical:
			report.Identical++
		case StatusConflict:
			report.Conflicts++
		case StatusUnresolved:
			report.Unresolved++
		case StatusFailed:
			report.Failed++
		}

		if e.progress != nil {
			e.progress(i+1, report.Total)
		}
	}

	log.Printf("Reconciliation finished: %d created, %d identical, %d conflicting, %d unresolved, %d failed of %d",
		report.Created, report.Identical, report.Conflicts, report.Unresolved, report.Failed, report.Total)

	return report, nil
}

// processRow classifies and, when accepted, persists a single row.
func (e *Executor) processRow(matcher *Matcher, index int, row InvoiceRow) RowOutcome {
	ownerID, ok := e.owners.Resolve(row.OwnerName)
	if !ok {
		// Late-bound reference that no longer resolves: skip the row
		// without creating anything.
		return RowOutcome{
			RowIndex: index,
			Status:   StatusUnresolved,
			Detail:   fmt.Sprintf("advisor %q not found", row.OwnerName),
		}
	}

	outcome := matcher.Match(Candidate{
		NormalizedNumber: normalization.NormalizeInvoiceNumber(row.Number),
		OwnerID:          ownerID,
		IssueDate:        row.IssueDate,
		Amount:           row.Amount,
	})

	switch outcome.Kind {
	case MatchIdentical:
		return RowOutcome{RowIndex: index, Status: StatusIdentical, Detail: outcome.Describe()}
	case MatchConflict:
		return RowOutcome{RowIndex: index, Status: StatusConflict, Detail: outcome.Describe()}
	}

	_, err := e.create(&database.Invoice{
		Number:    row.Number,
		OwnerID:   ownerID,
		ClientID:  row.ClientID,
		IssueDate: row.IssueDate,
		Amount:    row.Amount,
	})
	if err != nil {
		log.Printf("Error creating invoice %q: %v", row.Number, err)
		return RowOutcome{RowIndex: index, Status: StatusFailed, Detail: err.Error()}
	}

	return RowOutcome{RowIndex: index, Status: StatusCreated}
}
