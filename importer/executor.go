package importer

import (
	"context"
	"fmt"
	"log"

	"github.com/leacau/aire-crm-sub001/database"
	"github.com/leacau/aire-crm-sub001/reconcile"
	"github.com/leacau/aire-crm-sub001/tabular"
)

// CreateClientFunc persists one client and returns its id.
type CreateClientFunc func(c *database.Client) (string, error)

// Report summarizes one client import run.
// Created+Unresolved+Failed always equals Total.
type Report struct {
	Total      int                    `json:"total"`
	Created    int                    `json:"created"`
	Unresolved int                    `json:"unresolved"`
	Failed     int                    `json:"failed"`
	Rows       []reconcile.RowOutcome `json:"rows"`
}

// Executor turns accepted rows into client creation calls, one row at a
// time. Validation results are never mutated here; the executor only
// consumes the rows the operator accepted.
type Executor struct {
	owners   reconcile.OwnerDirectory
	create   CreateClientFunc
	progress reconcile.ProgressFunc
}

// NewExecutor builds a client import executor.
func NewExecutor(owners reconcile.OwnerDirectory, create CreateClientFunc) *Executor {
	return &Executor{
		owners: owners,
		create: create,
	}
}

// OnProgress registers a progress callback.
func (e *Executor) OnProgress(fn reconcile.ProgressFunc) {
	e.progress = fn
}

// Run processes the accepted rows in order. The advisor reference is
// re-resolved at the moment each row is processed; rows whose advisor
// no longer resolves are skipped without creating anything. Creation
// failures are recorded per row and do not abort the batch.
func (e *Executor) Run(ctx context.Context, rows []tabular.RawRecord, mapping *Mapping) (*Report, error) {
	report := &Report{
		Total: len(rows),
		Rows:  make([]reconcile.RowOutcome, 0, len(rows)),
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("import cancelled after %d of %d rows: %w", i, report.Total, err)
		}

		outcome := e.processRow(i, row, mapping)
		report.Rows = append(report.Rows, outcome)

		switch outcome.Status {
		case reconcile.StatusCreated:
			report.Created++
		case reconcile.StatusUnresolved:
			report.Unresolved++
		case reconcile.StatusFailed:
			report.Failed++
		}

		if e.progress != nil {
			e.progress(i+1, report.Total)
		}
	}

	log.Printf("Client import finished: %d created, %d unresolved, %d failed of %d",
		report.Created, report.Unresolved, report.Failed, report.Total)

	return report, nil
}

func (e *Executor) processRow(index int, row tabular.RawRecord, mapping *Mapping) reconcile.RowOutcome {
	ownerName := mapping.fieldValue(row, FieldOwner)
	ownerID, ok := e.owners.Resolve(ownerName)
	if !ok {
		return reconcile.RowOutcome{
			RowIndex: index,
			Status:   reconcile.StatusUnresolved,
			Detail:   fmt.Sprintf("advisor %q not found", ownerName),
		}
	}

	client := buildClient(row, mapping, ownerID)
	if _, err := e.create(client); err != nil {
		log.Printf("Error creating client %q: %v", client.DisplayName, err)
		return reconcile.RowOutcome{
			RowIndex: index,
			Status:   reconcile.StatusFailed,
			Detail:   err.Error(),
		}
	}

	return reconcile.RowOutcome{RowIndex: index, Status: reconcile.StatusCreated}
}

// buildClient assembles the creation payload from the mapped columns.
func buildClient(row tabular.RawRecord, mapping *Mapping, ownerID string) *database.Client {
	return &database.Client{
		DisplayName:  mapping.fieldValue(row, FieldDisplayName),
		LegalName:    mapping.fieldValue(row, FieldLegalName),
		TaxID:        mapping.fieldValue(row, FieldTaxID),
		TaxCondition: mapping.fieldValue(row, FieldTaxCondition),
		Province:     mapping.fieldValue(row, FieldProvince),
		Locality:     mapping.fieldValue(row, FieldLocality),
		Industry:     mapping.fieldValue(row, FieldIndustry),
		Email:        mapping.fieldValue(row, FieldEmail),
		Phone:        mapping.fieldValue(row, FieldPhone),
		Notes:        mapping.fieldValue(row, FieldNotes),
		ClientType:   mapping.fieldValue(row, FieldClientType),
		OwnerID:      ownerID,
	}
}
