package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "github.com/mattn/go-sqlite3"

	"github.com/leacau/aire-crm-sub001/normalization"
)

// DB wraps the sqlite connection holding the CRM entity store.
type DB struct {
	conn *sql.DB
}

// DBConfig tunes connection pooling.
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Owner is a sales advisor that clients and invoices are assigned to.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Client is a persisted CRM client record.
type Client struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	LegalName    string    `json:"legal_name,omitempty"`
	TaxID        string    `json:"tax_id,omitempty"`
	TaxCondition string    `json:"tax_condition,omitempty"`
	Province     string    `json:"province,omitempty"`
	Locality     string    `json:"locality,omitempty"`
	Industry     string    `json:"industry,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	ClientType   string    `json:"client_type,omitempty"`
	OwnerID      string    `json:"owner_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Invoice is a persisted billing record. IssueDate is kept as the exact
// string the operator loaded; comparisons are string equality.
type Invoice struct {
	ID               string          `json:"id"`
	Number           string          `json:"number"`
	NormalizedNumber string          `json:"normalized_number"`
	OwnerID          string          `json:"owner_id,omitempty"`
	ClientID         string          `json:"client_id,omitempty"`
	IssueDate        string          `json:"issue_date"`
	Amount           decimal.Decimal `json:"amount"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ImportRun records one bulk import or reconciliation pass. Skipped
// counts rows left out before creation (operator exclusions, identical
// duplicates, conflicts); Unresolved counts rows whose advisor no
// longer resolved at creation time.
type ImportRun struct {
	ID          int        `json:"id"`
	RunUUID     string     `json:"run_uuid"`
	Kind        string     `json:"kind"`
	Total       int        `json:"total"`
	Created     int        `json:"created"`
	Skipped     int        `json:"skipped"`
	Unresolved  int        `json:"unresolved"`
	Failed      int        `json:"failed"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewDB opens the database at dbPath with default pooling.
func NewDB(dbPath string) (*DB, error) {
	return NewDBWithConfig(dbPath, DBConfig{})
}

// NewDBWithConfig opens the database at dbPath and initializes the schema.
func NewDBWithConfig(dbPath string, config DBConfig) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		conn.SetMaxOpenConns(25)
	}

	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		conn.SetMaxIdleConns(5)
	}

	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}

	if err := initSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Query runs a raw query against the store.
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow runs a raw single-row query against the store.
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}

// AddOwner inserts a sales advisor and returns it with a fresh id.
func (db *DB) AddOwner(displayName string) (*Owner, error) {
	owner := &Owner{
		ID:          uuid.New().String(),
		DisplayName: displayName,
	}

	_, err := db.conn.Exec(
		"INSERT INTO owners (id, display_name) VALUES (?, ?)",
		owner.ID, owner.DisplayName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert owner: %w", err)
	}

	return owner, nil
}

// ListOwners returns every sales advisor.
func (db *DB) ListOwners() ([]Owner, error) {
	rows, err := db.conn.Query("SELECT id, display_name FROM owners ORDER BY display_name")
	if err != nil {
		return nil, fmt.Errorf("failed to query owners: %w", err)
	}
	defer rows.Close()

	owners := make([]Owner, 0)
	for rows.Next() {
		var o Owner
		if err := rows.Scan(&o.ID, &o.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, o)
	}

	return owners, rows.Err()
}

// CreateClient inserts a client and returns its id. A fresh id is
// assigned when the client does not carry one.
func (db *DB) CreateClient(c *Client) (string, error) {
	if c.DisplayName == "" {
		return "", fmt.Errorf("client display name is required")
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	_, err := db.conn.Exec(`
		INSERT INTO clients (
			id, display_name, legal_name, tax_id, tax_condition,
			province, locality, industry, email, phone, notes, client_type, owner_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.DisplayName, c.LegalName, c.TaxID, c.TaxCondition,
		c.Province, c.Locality, c.Industry, c.Email, c.Phone, c.Notes, c.ClientType, c.OwnerID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert client: %w", err)
	}

	return c.ID, nil
}

// ListClients returns a snapshot of every persisted client.
func (db *DB) ListClients() ([]Client, error) {
	rows, err := db.conn.Query(`
		SELECT id, display_name, legal_name, tax_id, tax_condition,
		       province, locality, industry, email, phone, notes, client_type, owner_id, created_at
		FROM clients ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	clients := make([]Client, 0)
	for rows.Next() {
		var c Client
		if err := rows.Scan(
			&c.ID, &c.DisplayName, &c.LegalName, &c.TaxID, &c.TaxCondition,
			&c.Province, &c.Locality, &c.Industry, &c.Email, &c.Phone, &c.Notes,
			&c.ClientType, &c.OwnerID, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}

	return clients, rows.Err()
}

// CreateInvoice inserts an invoice and returns its id. The normalized
// number is always recomputed from the raw number on insert.
func (db *DB) CreateInvoice(inv *Invoice) (string, error) {
	if inv.Number == "" {
		return "", fmt.Errorf("invoice number is required")
	}
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	inv.NormalizedNumber = normalization.NormalizeInvoiceNumber(inv.Number)

	_, err := db.conn.Exec(`
		INSERT INTO invoices (
			id, number, normalized_number, owner_id, client_id, issue_date, amount
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Number, inv.NormalizedNumber, inv.OwnerID, inv.ClientID,
		inv.IssueDate, inv.Amount.String(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert invoice: %w", err)
	}

	return inv.ID, nil
}

// ListInvoices returns a snapshot of every persisted invoice.
func (db *DB) ListInvoices() ([]Invoice, error) {
	rows, err := db.conn.Query(`
		SELECT id, number, normalized_number, owner_id, client_id, issue_date, amount, created_at
		FROM invoices ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]Invoice, 0)
	for rows.Next() {
		var inv Invoice
		var amount string
		if err := rows.Scan(
			&inv.ID, &inv.Number, &inv.NormalizedNumber, &inv.OwnerID,
			&inv.ClientID, &inv.IssueDate, &amount, &inv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid stored amount %q for invoice %s: %w", amount, inv.ID, err)
		}
		inv.Amount = parsed
		invoices = append(invoices, inv)
	}

	return invoices, rows.Err()
}

// StartImportRun records the beginning of a bulk pass of the given kind.
func (db *DB) StartImportRun(kind string) (*ImportRun, error) {
	run := &ImportRun{
		RunUUID:   uuid.New().String(),
		Kind:      kind,
		StartedAt: time.Now(),
	}

	result, err := db.conn.Exec(
		"INSERT INTO import_runs (run_uuid, kind, started_at) VALUES (?, ?, ?)",
		run.RunUUID, run.Kind, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert import run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read import run id: %w", err)
	}
	run.ID = int(id)

	return run, nil
}

// CompleteImportRun stores the final counters of a bulk pass.
func (db *DB) CompleteImportRun(runID int, total, created, skipped, unresolved, failed int) error {
	_, err := db.conn.Exec(`
		UPDATE import_runs
		SET total = ?, created = ?, skipped = ?, unresolved = ?, failed = ?, completed_at = ?
		WHERE id = ?`,
		total, created, skipped, unresolved, failed, time.Now(), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete import run: %w", err)
	}
	return nil
}
