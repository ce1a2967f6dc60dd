package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/draftline/ast-identity/internal/ast"
	"github.com/draftline/ast-identity/internal/identity"
	"github.com/draftline/ast-identity/internal/lang"
	"github.com/draftline/ast-identity/internal/parser"
	"github.com/draftline/ast-identity/internal/store"
)

// Session owns the identity registry for one open document. All
// reconciliation for the document funnels through its mutex, upholding
// the registry's single-owner discipline even when transport handlers
// race.
type Session struct {
	uri      string
	language lang.Language
	spec     *lang.LanguageSpec
	store    *store.Store

	mu       sync.Mutex
	registry *identity.Registry
	root     *ast.SyntaxNode
}

// New creates a session for a document, restoring the persisted identity
// snapshot if one exists. The caller provides the store the session
// persists to on Close; a nil store keeps the session memory-only.
func New(uri string, language lang.Language, st *store.Store, fuzzyThreshold int) (*Session, error) {
	spec := lang.ForLanguage(language)
	if spec == nil {
		return nil, fmt.Errorf("unsupported language: %s", language)
	}

	reg := identity.NewRegistry()
	reg.SetFuzzyThreshold(fuzzyThreshold)

	if st != nil {
		snapshot, ok, err := st.LoadSnapshot(uri)
		if err != nil {
			return nil, fmt.Errorf("restore snapshot: %w", err)
		}
		if ok {
			reg.Load(snapshot)
			slog.Info("session.restore", "uri", uri, "identities", len(snapshot.Fingerprints))
		}
		if err := st.UpsertDocument(uri, string(language)); err != nil {
			return nil, err
		}
	}

	return &Session{
		uri:      uri,
		language: language,
		spec:     spec,
		store:    st,
		registry: reg,
	}, nil
}

// URI returns the document URI.
func (s *Session) URI() string { return s.uri }

// Language returns the document's hosted language.
func (s *Session) Language() lang.Language { return s.language }

// Update reparses the document text and reconciles identities against
// the new tree. The previous generation's tree and node associations are
// discarded wholesale.
func (s *Session) Update(text []byte) (identity.Stats, error) {
	tree, err := parser.Parse(s.language, text)
	if err != nil {
		return identity.Stats{}, fmt.Errorf("parse %s: %w", s.uri, err)
	}
	root := ast.FromTreeSitter(tree.RootNode(), text, s.spec.NameOf)
	tree.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.registry.Reconcile(root)
	s.root = root
	slog.Debug("session.reconcile", "uri", s.uri,
		"nodes", stats.Total(), "exact", stats.Exact, "fuzzy", stats.Fuzzy, "fresh", stats.Fresh)
	return stats, nil
}

// Identity returns the identity of a node in the current generation.
func (s *Session) Identity(node ast.Node) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Identity(node)
}

// Node returns the current generation's node for an identity.
func (s *Session) Node(id string) (ast.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Node(id)
}

// Root returns the most recently reconciled tree, or nil before the
// first Update.
func (s *Session) Root() ast.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.root == nil {
		return nil
	}
	return s.root
}

// Registry exposes the underlying registry for pre-registration and
// export. The caller must not reconcile through it directly.
func (s *Session) Registry() *identity.Registry {
	return s.registry
}

// LiveIdentities returns the identities resolved in the current
// generation as a set.
func (s *Session) LiveIdentities() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := make(map[string]bool)
	for _, id := range s.registry.Identities() {
		live[id] = true
	}
	return live
}

// Close persists the registry's durable state and releases the session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.SaveSnapshot(s.uri, s.registry.Export()); err != nil {
		return fmt.Errorf("save snapshot %s: %w", s.uri, err)
	}
	return nil
}
