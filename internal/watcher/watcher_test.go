package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/draftline/ast-identity/internal/ast"
	"github.com/draftline/ast-identity/internal/lang"
	"github.com/draftline/ast-identity/internal/session"
	"github.com/draftline/ast-identity/internal/store"
)

func TestPollDetectsFileChange(t *testing.T) {
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer st.Close()

	path := filepath.Join(t.TempDir(), "a.yaml")
	if err := os.WriteFile(path, []byte("name: app\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m := session.NewManager(st, nil)
	if _, err := m.Open(path, lang.YAML, []byte("name: app\n")); err != nil {
		t.Fatalf("Open: %v", err)
	}

	w := New(m)
	w.pollAll() // baseline

	// Touch the file with new content and a distinct mtime.
	if err := os.WriteFile(path, []byte("name: app\nreplicas: 3\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	w.pollAll()

	var pairs int
	ast.Walk(m.Get(path).Root(), func(n ast.Node) bool {
		if n.Type() == "block_mapping_pair" {
			pairs++
		}
		return true
	})
	if pairs != 2 {
		t.Errorf("session not reconciled after change: %d pairs, want 2", pairs)
	}
}

func TestPollIgnoresMissingFiles(t *testing.T) {
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer st.Close()

	w := New(session.NewManager(st, nil))
	w.poll("/nonexistent/a.yaml")
	if len(w.snapshots) != 0 {
		t.Error("snapshot recorded for missing file")
	}
}

func TestPollFirstSightingIsBaselineOnly(t *testing.T) {
	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer st.Close()

	path := filepath.Join(t.TempDir(), "a.yaml")
	if err := os.WriteFile(path, []byte("name: app\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m := session.NewManager(st, nil)
	if _, err := m.Open(path, lang.YAML, []byte("name: app\n")); err != nil {
		t.Fatalf("Open: %v", err)
	}
	rootBefore := m.Get(path).Root()

	w := New(m)
	w.poll(path)

	if m.Get(path).Root() != rootBefore {
		t.Error("baseline poll triggered a reconcile")
	}
	if _, ok := w.snapshots[path]; !ok {
		t.Error("baseline not recorded")
	}
}
