package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/leacau/aire-crm-sub001/database"
	"github.com/leacau/aire-crm-sub001/importer"
	"github.com/leacau/aire-crm-sub001/reconcile"
	"github.com/leacau/aire-crm-sub001/tabular"
)

// importRequest carries an uploaded client table. Mapping overrides are
// applied before inference, so operator choices always win; ExcludedRows
// drops rows the operator deselected after reviewing the validation.
type importRequest struct {
	Headers      []string          `json:"headers"`
	Rows         [][]string        `json:"rows"`
	Mapping      map[string]string `json:"mapping,omitempty"`
	ExcludedRows []int             `json:"excluded_rows,omitempty"`
}

type validateResponse struct {
	Mapping  map[string]importer.CanonicalField `json:"mapping"`
	Results  []*importer.Result                 `json:"results"`
	Total    int                                `json:"total"`
	Errors   int                                `json:"errors"`
	Warnings int                                `json:"warnings"`
	Included int                                `json:"included"`
}

type importResponse struct {
	RunUUID string           `json:"run_uuid"`
	Report  *importer.Report `json:"report"`
	Skipped int              `json:"skipped"`
}

// prepareImport parses the request into a table, a mapping and per-row
// validation results, shared by the validate and run handlers.
func (s *Server) prepareImport(req *importRequest) (*tabular.Table, *importer.Mapping, []*importer.Result, error) {
	if len(req.Headers) == 0 {
		return nil, nil, nil, fmt.Errorf("headers are required")
	}

	table := tabular.NewTable(req.Headers, req.Rows)

	mapping := importer.NewMapping(table.Headers)
	for header, name := range req.Mapping {
		field, err := importer.ParseField(name)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid mapping for column %q: %w", header, err)
		}
		mapping.Set(header, field)
	}
	mapping = s.inferencer.Infer(table.Headers, mapping)

	clients, err := s.db.ListClients()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load client snapshot: %w", err)
	}
	owners, err := s.db.ListOwners()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load advisors: %w", err)
	}

	validator := importer.NewValidator(clients, reconcile.BuildOwnerDirectory(owners))
	results := validator.Validate(table.Rows, mapping)

	return table, mapping, results, nil
}

// handleClientValidate screens an uploaded table without writing anything.
func (s *Server) handleClientValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req importRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, mapping, results, err := s.prepareImport(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := validateResponse{
		Mapping: mapping.Assignments(),
		Results: results,
		Total:   len(results),
	}
	for _, result := range results {
		if result.HasError() {
			resp.Errors++
		}
		if result.HasWarning() {
			resp.Warnings++
		}
		if result.Included {
			resp.Included++
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleClientImport re-validates the upload, applies the operator's
// exclusions and creates the accepted rows one at a time.
func (s *Server) handleClientImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req importRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	table, mapping, results, err := s.prepareImport(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	selection := importer.NewSelection(results)
	for _, index := range req.ExcludedRows {
		selection.ToggleRange(index, index, false)
	}

	accepted := make([]tabular.RawRecord, 0, len(results))
	for _, result := range selection.Results() {
		if result.Included {
			accepted = append(accepted, result.Row)
		}
	}

	owners, err := s.db.ListOwners()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	run, err := s.db.StartImportRun("clients")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Printf("Client import run %s: %d of %d rows accepted", run.RunUUID, len(accepted), len(table.Rows))

	executor := importer.NewExecutor(reconcile.BuildOwnerDirectory(owners), func(c *database.Client) (string, error) {
		return s.db.CreateClient(c)
	})

	report, err := executor.Run(r.Context(), accepted, mapping)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Skipped covers only the rows the screening or the operator left
	// out; unresolved advisors are tracked on their own.
	skipped := len(table.Rows) - report.Created - report.Unresolved - report.Failed
	if err := s.db.CompleteImportRun(run.ID, len(table.Rows), report.Created, skipped, report.Unresolved, report.Failed); err != nil {
		log.Printf("Error completing import run %s: %v", run.RunUUID, err)
	}

	writeJSON(w, http.StatusOK, importResponse{
		RunUUID: run.RunUUID,
		Report:  report,
		Skipped: skipped,
	})
}
