package watcher

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/draftline/ast-identity/internal/session"
)

const pollInterval = 1 * time.Second

type fileSnapshot struct {
	modTime time.Time
	size    int64
}

// Watcher polls the files behind open sessions and reconciles identities
// when a document changes on disk (e.g. an external editor touched it).
// Edits arriving through the MCP surface don't need it; this covers the
// out-of-band path.
type Watcher struct {
	sessions  *session.Manager
	snapshots map[string]fileSnapshot
}

// New creates a Watcher over the manager's open sessions.
func New(sessions *session.Manager) *Watcher {
	return &Watcher{
		sessions:  sessions,
		snapshots: make(map[string]fileSnapshot),
	}
}

// Run blocks until ctx is cancelled, polling once per interval.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pollAll()
		}
	}
}

func (w *Watcher) pollAll() {
	for _, uri := range w.sessions.URIs() {
		w.poll(uri)
	}
}

// poll compares a document's on-disk stat with the previous poll.
// First poll captures a baseline without triggering reconciliation.
func (w *Watcher) poll(uri string) {
	info, err := os.Stat(uri)
	if err != nil {
		// In-memory or deleted document; nothing to watch.
		delete(w.snapshots, uri)
		return
	}

	snap := fileSnapshot{modTime: info.ModTime(), size: info.Size()}
	prev, seen := w.snapshots[uri]
	w.snapshots[uri] = snap
	if !seen || (prev.modTime.Equal(snap.modTime) && prev.size == snap.size) {
		return
	}

	sess := w.sessions.Get(uri)
	if sess == nil {
		return
	}
	text, err := os.ReadFile(uri)
	if err != nil {
		slog.Warn("watcher.read", "uri", uri, "err", err)
		return
	}
	if _, err := sess.Update(text); err != nil {
		slog.Warn("watcher.reconcile", "uri", uri, "err", err)
		return
	}
	slog.Info("watcher.changed", "uri", uri, "size", snap.size)
}
