package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/draftline/ast-identity/internal/config"
	"github.com/draftline/ast-identity/internal/lang"
	"github.com/draftline/ast-identity/internal/store"
)

// Manager tracks the open document sessions of one workspace.
type Manager struct {
	store *store.Store
	cfg   *config.Config

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager backed by the given store.
func NewManager(st *store.Store, cfg *config.Config) *Manager {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Manager{
		store:    st,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Open creates (or returns) the session for a document and runs the
// first reconciliation against the given text.
func (m *Manager) Open(uri string, language lang.Language, text []byte) (*Session, error) {
	if !m.cfg.LanguageEnabled(string(language)) {
		return nil, fmt.Errorf("language disabled: %s", language)
	}

	m.mu.Lock()
	if s, ok := m.sessions[uri]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	s, err := New(uri, language, m.store, m.cfg.EffectiveFuzzyThreshold())
	if err != nil {
		return nil, err
	}
	if _, err := s.Update(text); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if prior, ok := m.sessions[uri]; ok {
		// Lost the race; keep the first session.
		return prior, nil
	}
	m.sessions[uri] = s
	return s, nil
}

// Get returns the open session for a URI, or nil.
func (m *Manager) Get(uri string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[uri]
}

// URIs returns the URIs of all open sessions.
func (m *Manager) URIs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	uris := make([]string, 0, len(m.sessions))
	for uri := range m.sessions {
		uris = append(uris, uri)
	}
	return uris
}

// Close persists and removes one session.
func (m *Manager) Close(uri string) error {
	m.mu.Lock()
	s := m.sessions[uri]
	delete(m.sessions, uri)
	m.mu.Unlock()

	if s == nil {
		return nil
	}
	return s.Close()
}

// RestoreAll reopens sessions for every tracked document whose file is
// still readable, parsing concurrently. Unreadable or unrecognized files
// are skipped, not fatal.
func (m *Manager) RestoreAll(ctx context.Context) error {
	docs, err := m.store.ListDocuments()
	if err != nil {
		return err
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			text, err := os.ReadFile(doc.URI)
			if err != nil {
				slog.Warn("session.restore.skip", "uri", doc.URI, "err", err)
				return nil
			}
			language, ok := lang.LanguageForExtension(filepath.Ext(doc.URI))
			if !ok {
				slog.Warn("session.restore.skip", "uri", doc.URI, "err", "unknown extension")
				return nil
			}
			if _, err := m.Open(doc.URI, language, text); err != nil {
				slog.Warn("session.restore.skip", "uri", doc.URI, "err", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// CloseAll persists and removes every open session.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var firstErr error
	for _, s := range sessions {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
