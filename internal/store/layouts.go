package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// SetLayout stores a diagram element's placement for an identity.
func (s *Store) SetLayout(l Layout) error {
	_, err := s.q.Exec(`INSERT INTO layouts (uri, identity, x, y, width, height) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(uri, identity) DO UPDATE SET x=excluded.x, y=excluded.y, width=excluded.width, height=excluded.height`,
		l.URI, l.Identity, l.X, l.Y, l.Width, l.Height)
	if err != nil {
		return fmt.Errorf("set layout: %w", err)
	}
	return nil
}

// GetLayout returns the stored placement for an identity, or nil if none.
func (s *Store) GetLayout(uri, id string) (*Layout, error) {
	row := s.q.QueryRow(`SELECT uri, identity, x, y, width, height FROM layouts WHERE uri=? AND identity=?`, uri, id)
	var l Layout
	if err := row.Scan(&l.URI, &l.Identity, &l.X, &l.Y, &l.Width, &l.Height); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get layout: %w", err)
	}
	return &l, nil
}

// ListLayouts returns every stored placement for a document.
func (s *Store) ListLayouts(uri string) ([]Layout, error) {
	rows, err := s.q.Query(`SELECT uri, identity, x, y, width, height FROM layouts WHERE uri=? ORDER BY identity`, uri)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	defer rows.Close()

	var layouts []Layout
	for rows.Next() {
		var l Layout
		if err := rows.Scan(&l.URI, &l.Identity, &l.X, &l.Y, &l.Width, &l.Height); err != nil {
			return nil, fmt.Errorf("scan layout: %w", err)
		}
		layouts = append(layouts, l)
	}
	return layouts, rows.Err()
}

// PruneLayouts drops placements whose identities are no longer live,
// mirroring the registry's garbage collection of vanished nodes.
func (s *Store) PruneLayouts(uri string, live map[string]bool) error {
	layouts, err := s.ListLayouts(uri)
	if err != nil {
		return err
	}
	for _, l := range layouts {
		if live[l.Identity] {
			continue
		}
		if _, err := s.q.Exec(`DELETE FROM layouts WHERE uri=? AND identity=?`, uri, l.Identity); err != nil {
			return fmt.Errorf("prune layout: %w", err)
		}
	}
	return nil
}
