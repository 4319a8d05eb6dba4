package discover

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SavedStatus represents the application status for a saved opportunity.
type SavedStatus string

const (
	StatusSaved     SavedStatus = "saved"
	StatusApplied   SavedStatus = "applied"
	StatusInterview SavedStatus = "interview"
	StatusOffer     SavedStatus = "offer"
	StatusRejected  SavedStatus = "rejected"
)

// validStatus checks if a status string is valid.
func validStatus(s string) bool {
	switch SavedStatus(s) {
	case StatusSaved, StatusApplied, StatusInterview, StatusOffer, StatusRejected:
		return true
	}
	return false
}

// SavedOpportunity is a single entry in the saved list.
type SavedOpportunity struct {
	ID          int64         `json:"id"`
	UserID      string        `json:"user_id,omitempty"`
	CandidateID string        `json:"candidate_id"`
	Kind        CandidateKind `json:"kind"`
	Title       string        `json:"title"`
	Company     string        `json:"company,omitempty"`
	URL         string        `json:"url,omitempty"`
	Status      SavedStatus   `json:"status"`
	Notes       string        `json:"notes,omitempty"`
	CreatedAt   string        `json:"created_at"`
	UpdatedAt   string        `json:"updated_at"`
}

// SavedStore keeps saved opportunities in a local SQLite database.
type SavedStore struct {
	db *sql.DB
}

// OpenSavedStore opens (or creates) the SQLite database at path. An empty
// path defaults to ~/.intro/saved.db.
func OpenSavedStore(path string) (*SavedStore, error) {
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".intro", "saved.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("saved store: mkdir %s: %w", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("saved store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS saved_opportunities (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id      TEXT NOT NULL DEFAULT '',
		candidate_id TEXT NOT NULL,
		kind         TEXT NOT NULL,
		title        TEXT NOT NULL,
		company      TEXT,
		url          TEXT,
		status       TEXT NOT NULL DEFAULT 'saved',
		notes        TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL,
		UNIQUE (user_id, candidate_id)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("saved store: init schema: %w", err)
	}
	return &SavedStore{db: db}, nil
}

func (s *SavedStore) Close() error { return s.db.Close() }

// Save stores one opportunity. Saving an already-saved candidate for the same
// user refreshes its fields but keeps status and notes.
func (s *SavedStore) Save(_ context.Context, userID string, c *Candidate, status, notes string) (*SavedOpportunity, error) {
	if c == nil || c.ID == "" {
		return nil, errors.New("save: candidate is required")
	}
	if status == "" {
		status = string(StatusSaved)
	}
	status = strings.ToLower(status)
	if !validStatus(status) {
		return nil, fmt.Errorf("save: invalid status %q (valid: saved, applied, interview, offer, rejected)", status)
	}

	title, company := savedDisplay(c)
	if title == "" {
		return nil, errors.New("save: candidate has no displayable title")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO saved_opportunities (user_id, candidate_id, kind, title, company, url, status, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, candidate_id) DO UPDATE SET
		   title = excluded.title, company = excluded.company, url = excluded.url, updated_at = excluded.updated_at`,
		userID, c.ID, string(c.Kind), title, company, c.URL, status, notes, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("save: insert: %w", err)
	}

	id, _ := res.LastInsertId()
	return &SavedOpportunity{
		ID:          id,
		UserID:      userID,
		CandidateID: c.ID,
		Kind:        c.Kind,
		Title:       title,
		Company:     company,
		URL:         c.URL,
		Status:      SavedStatus(status),
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// List returns saved opportunities for a user, newest first, optionally
// filtered by status.
func (s *SavedStore) List(_ context.Context, userID, status string, limit int) ([]SavedOpportunity, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var rows *sql.Rows
	var err error
	if status != "" {
		status = strings.ToLower(status)
		if !validStatus(status) {
			return nil, 0, fmt.Errorf("list: invalid status %q", status)
		}
		rows, err = s.db.Query(
			`SELECT id, user_id, candidate_id, kind, title, company, url, status, notes, created_at, updated_at
			 FROM saved_opportunities WHERE user_id = ? AND status = ? ORDER BY updated_at DESC LIMIT ?`,
			userID, status, limit,
		)
	} else {
		rows, err = s.db.Query(
			`SELECT id, user_id, candidate_id, kind, title, company, url, status, notes, created_at, updated_at
			 FROM saved_opportunities WHERE user_id = ? ORDER BY updated_at DESC LIMIT ?`,
			userID, limit,
		)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("list: query: %w", err)
	}
	defer rows.Close()

	var saved []SavedOpportunity
	for rows.Next() {
		var o SavedOpportunity
		var company, url, notes sql.NullString
		if err := rows.Scan(&o.ID, &o.UserID, &o.CandidateID, &o.Kind, &o.Title,
			&company, &url, &o.Status, &notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
			continue
		}
		o.Company = company.String
		o.URL = url.String
		o.Notes = notes.String
		saved = append(saved, o)
	}

	var total int
	if status != "" {
		s.db.QueryRow(`SELECT COUNT(*) FROM saved_opportunities WHERE user_id = ? AND status = ?`, userID, status).Scan(&total) //nolint:errcheck
	} else {
		s.db.QueryRow(`SELECT COUNT(*) FROM saved_opportunities WHERE user_id = ?`, userID).Scan(&total) //nolint:errcheck
	}

	if saved == nil {
		saved = []SavedOpportunity{}
	}
	return saved, total, rows.Err()
}

// Update changes the status and/or notes of a saved opportunity.
func (s *SavedStore) Update(_ context.Context, id int64, status, notes string) error {
	if id <= 0 {
		return errors.New("update: id is required")
	}
	if status == "" && notes == "" {
		return errors.New("update: at least one of status or notes must be provided")
	}
	if status != "" {
		status = strings.ToLower(status)
		if !validStatus(status) {
			return fmt.Errorf("update: invalid status %q", status)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)

	var res sql.Result
	var err error
	switch {
	case status != "" && notes != "":
		res, err = s.db.Exec(`UPDATE saved_opportunities SET status=?, notes=?, updated_at=? WHERE id=?`,
			status, notes, now, id)
	case status != "":
		res, err = s.db.Exec(`UPDATE saved_opportunities SET status=?, updated_at=? WHERE id=?`,
			status, now, id)
	default:
		res, err = s.db.Exec(`UPDATE saved_opportunities SET notes=?, updated_at=? WHERE id=?`,
			notes, now, id)
	}
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update: no saved opportunity with id %d", id)
	}
	return nil
}

// savedDisplay derives the display title and company for a candidate.
func savedDisplay(c *Candidate) (title, company string) {
	switch {
	case c.Job != nil:
		return c.Job.Title, c.Job.Company
	case c.Person != nil:
		return c.Person.Name, c.Person.Company
	}
	return "", ""
}
