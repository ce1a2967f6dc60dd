package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/draftline/ast-identity/internal/identity"
)

// UpsertDocument records a document and its language, refreshing the
// updated_at stamp.
func (s *Store) UpsertDocument(uri, language string) error {
	_, err := s.q.Exec(`INSERT INTO documents (uri, language, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(uri) DO UPDATE SET language=excluded.language, updated_at=excluded.updated_at`,
		uri, language, Now())
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// GetDocument returns the document row for a URI, or nil if untracked.
func (s *Store) GetDocument(uri string) (*Document, error) {
	row := s.q.QueryRow(`SELECT uri, language, updated_at FROM documents WHERE uri=?`, uri)
	var d Document
	if err := row.Scan(&d.URI, &d.Language, &d.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &d, nil
}

// ListDocuments returns all tracked documents.
func (s *Store) ListDocuments() ([]Document, error) {
	rows, err := s.q.Query(`SELECT uri, language, updated_at FROM documents ORDER BY uri`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.URI, &d.Language, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// SaveSnapshot persists a registry's exported state for a document.
func (s *Store) SaveSnapshot(uri string, st identity.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	_, err = s.q.Exec(`INSERT INTO snapshots (uri, state) VALUES (?, ?)
		ON CONFLICT(uri) DO UPDATE SET state=excluded.state`, uri, string(data))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the persisted state for a document. The second
// return value is false when no snapshot exists. Decoding tolerates
// damaged entries, skipping them instead of failing.
func (s *Store) LoadSnapshot(uri string) (identity.State, bool, error) {
	row := s.q.QueryRow(`SELECT state FROM snapshots WHERE uri=?`, uri)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return identity.State{}, false, nil
		}
		return identity.State{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	st, err := identity.ParseState([]byte(raw))
	if err != nil {
		return identity.State{}, false, fmt.Errorf("parse snapshot: %w", err)
	}
	return st, true, nil
}

// DeleteDocument removes a document, its snapshot and its layouts.
func (s *Store) DeleteDocument(uri string) error {
	if _, err := s.q.Exec(`DELETE FROM documents WHERE uri=?`, uri); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
