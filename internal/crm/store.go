// Package crm provides the SQLite-backed contact store the sales agent
// queries for customer context.
package crm

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/go-maya-tts/internal/config"
	_ "modernc.org/sqlite"
)

// Contact is one CRM record.
type Contact struct {
	ID        int64
	Name      string
	Company   string
	Role      string
	Email     string
	Status    string
	Notes     string
	CreatedAt time.Time
}

// Summary aggregates the store for agent briefings.
type Summary struct {
	TotalContacts int
	Companies     int
	ByStatus      map[string]int
}

// Store wraps a SQLite-backed contact database.
type Store struct {
	db    *sql.DB
	log   *slog.Logger
	clock func() time.Time
}

// Open initializes the contact store according to config.
func Open(ctx context.Context, cfg config.CRMConfig, log *slog.Logger) (*Store, error) {
	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("crm database path is required")
	}

	dir := filepath.Dir(cfg.DatabasePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cfg.DatabasePath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, log: log, clock: time.Now}

	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s.log.Debug("contact store opened", slog.String("path", cfg.DatabasePath))

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS contacts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    company TEXT,
    role TEXT,
    email TEXT,
    status TEXT NOT NULL DEFAULT 'lead',
    notes TEXT,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contacts_company ON contacts(company);
CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts(name);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close releases underlying resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// AddContact inserts a record and returns its id.
func (s *Store) AddContact(ctx context.Context, c Contact) (int64, error) {
	if strings.TrimSpace(c.Name) == "" {
		return 0, fmt.Errorf("contact name is required")
	}
	if c.Status == "" {
		c.Status = "lead"
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.clock().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO contacts(name, company, role, email, status, notes, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Company, c.Role, c.Email, c.Status, c.Notes, c.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert contact: %w", err)
	}

	return res.LastInsertId()
}

// SearchContacts matches the query against name, company and email,
// case-insensitively, returning up to limit records.
func (s *Store) SearchContacts(ctx context.Context, query string, limit int) ([]Contact, error) {
	if limit <= 0 {
		limit = 25
	}

	pattern := "%" + strings.TrimSpace(query) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, company, role, email, status, notes, created_at
		 FROM contacts
		 WHERE name LIKE ? COLLATE NOCASE
		    OR company LIKE ? COLLATE NOCASE
		    OR email LIKE ? COLLATE NOCASE
		 ORDER BY name
		 LIMIT ?`,
		pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	defer rows.Close()

	return scanContacts(rows)
}

// CompanyContacts returns every contact at the named company.
func (s *Store) CompanyContacts(ctx context.Context, company string) ([]Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, company, role, email, status, notes, created_at
		 FROM contacts
		 WHERE company = ? COLLATE NOCASE
		 ORDER BY name`,
		strings.TrimSpace(company))
	if err != nil {
		return nil, fmt.Errorf("company contacts: %w", err)
	}
	defer rows.Close()

	return scanContacts(rows)
}

// CountContacts reports the number of stored contacts, optionally filtered
// by pipeline status. An empty status counts everyone.
func (s *Store) CountContacts(ctx context.Context, status string) (int, error) {
	status = strings.TrimSpace(status)

	var (
		n   int
		err error
	)
	if status == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM contacts WHERE status = ? COLLATE NOCASE`,
			status).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}

	return n, nil
}

// Summarize aggregates contact counts by status for agent briefings.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	sum := Summary{ByStatus: make(map[string]int)}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT company) FROM contacts`).Scan(&sum.TotalContacts, &sum.Companies)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize contacts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM contacts GROUP BY status`)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Summary{}, fmt.Errorf("scan status row: %w", err)
		}
		sum.ByStatus[status] = count
	}

	return sum, rows.Err()
}

func scanContacts(rows *sql.Rows) ([]Contact, error) {
	var out []Contact
	for rows.Next() {
		var c Contact
		err := rows.Scan(&c.ID, &c.Name, &c.Company, &c.Role, &c.Email, &c.Status, &c.Notes, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}

	return out, rows.Err()
}
