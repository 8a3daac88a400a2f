package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/leacau/aire-crm-sub001/database"
	"github.com/leacau/aire-crm-sub001/importer"
)

// Server exposes the bulk-import and reconciliation pipelines over HTTP.
type Server struct {
	db         *database.DB
	config     *Config
	inferencer *importer.Inferencer
	mux        *http.ServeMux
	startedAt  time.Time
}

// NewServer wires the handlers over the entity store.
func NewServer(db *database.DB, config *Config) (*Server, error) {
	inferencer := importer.NewInferencer()
	if config.KeywordGroupsPath != "" {
		loaded, err := importer.NewInferencerFromFile(config.KeywordGroupsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load keyword groups: %w", err)
		}
		inferencer = loaded
		log.Printf("Using keyword groups from %s", config.KeywordGroupsPath)
	}

	s := &Server{
		db:         db,
		config:     config,
		inferencer: inferencer,
		mux:        http.NewServeMux(),
		startedAt:  time.Now(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/import/clients/validate", s.handleClientValidate)
	s.mux.HandleFunc("/api/import/clients/run", s.handleClientImport)
	s.mux.HandleFunc("/api/invoices/reconcile", s.handleInvoiceReconcile)
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// Start blocks serving HTTP on the configured port.
func (s *Server) Start() error {
	addr := ":" + s.config.Port
	log.Printf("CRM import server listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.startedAt).String(),
	})
}

// decodeJSON reads a size-limited JSON request body.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
