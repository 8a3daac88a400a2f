package server

import (
	"log"
	"net/http"

	"github.com/leacau/aire-crm-sub001/database"
	"github.com/leacau/aire-crm-sub001/reconcile"
)

type reconcileRequest struct {
	Rows []reconcile.InvoiceRow `json:"rows"`
}

type reconcileResponse struct {
	RunUUID string            `json:"run_uuid"`
	Report  *reconcile.Report `json:"report"`
}

// handleInvoiceReconcile matches an uploaded invoice batch against the
// store and creates the rows that pass.
func (s *Server) handleInvoiceReconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req reconcileRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Rows) == 0 {
		writeError(w, http.StatusBadRequest, "rows are required")
		return
	}

	owners, err := s.db.ListOwners()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	run, err := s.db.StartImportRun("invoices")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Printf("Reconciliation run %s: %d rows", run.RunUUID, len(req.Rows))

	executor := reconcile.NewExecutor(
		s.db.ListInvoices,
		reconcile.BuildOwnerDirectory(owners),
		func(inv *database.Invoice) (string, error) {
			return s.db.CreateInvoice(inv)
		},
	)

	report, err := executor.Run(r.Context(), req.Rows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	skipped := report.Identical + report.Conflicts
	if err := s.db.CompleteImportRun(run.ID, report.Total, report.Created, skipped, report.Unresolved, report.Failed); err != nil {
		log.Printf("Error completing reconciliation run %s: %v", run.RunUUID, err)
	}

	writeJSON(w, http.StatusOK, reconcileResponse{
		RunUUID: run.RunUUID,
		Report:  report,
	})
}
