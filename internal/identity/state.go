package identity

import (
	"encoding/json"
	"log/slog"

	"github.com/draftline/ast-identity/internal/ast"
)

// State is the serializable form of the registry's durable state. Its
// JSON shape is the cross-session persistence format shared with the
// diagram frontend.
type State struct {
	IDMap        map[string]string      `json:"idMap"`
	Fingerprints map[string]Fingerprint `json:"fingerprints"`
}

// Export returns a copy of the durable state for persistence at session
// teardown.
func (r *Registry) Export() State {
	st := State{
		IDMap:        make(map[string]string, len(r.idByKey)),
		Fingerprints: make(map[string]Fingerprint, len(r.fpByID)),
	}
	for k, id := range r.idByKey {
		st.IDMap[k] = id
	}
	for id, fp := range r.fpByID {
		st.Fingerprints[id] = fp
	}
	return st
}

// Load replaces the durable state with a previously exported one.
// Malformed entries are skipped rather than failing the load, so a
// partially damaged snapshot still restores what it can. Load must run
// before the session's first Reconcile; afterwards it discards in-session
// continuity.
func (r *Registry) Load(st State) {
	idByKey := make(map[string]string, len(st.IDMap))
	fpByID := make(map[string]Fingerprint, len(st.Fingerprints))

	for id, fp := range st.Fingerprints {
		if id == "" || fp.AstType == "" || fp.ParentID == "" {
			slog.Warn("identity.load.fingerprint.skip", "identity", id, "ast_type", fp.AstType)
			continue
		}
		fpByID[id] = fp
	}
	for key, id := range st.IDMap {
		if key == "" || id == "" {
			slog.Warn("identity.load.idmap.skip", "key", key, "identity", id)
			continue
		}
		if _, ok := fpByID[id]; !ok {
			slog.Warn("identity.load.idmap.orphan", "key", key, "identity", id)
			continue
		}
		idByKey[key] = id
	}

	r.idByKey = idByKey
	r.fpByID = fpByID
	r.idByNode = make(map[ast.Node]string)
	r.nodeByID = make(map[string]ast.Node)
}

// ParseState decodes a persisted snapshot, skipping entries that fail to
// decode instead of rejecting the whole document.
func ParseState(data []byte) (State, error) {
	var wire struct {
		IDMap        map[string]json.RawMessage `json:"idMap"`
		Fingerprints map[string]json.RawMessage `json:"fingerprints"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return State{}, err
	}

	st := State{
		IDMap:        make(map[string]string, len(wire.IDMap)),
		Fingerprints: make(map[string]Fingerprint, len(wire.Fingerprints)),
	}
	for key, raw := range wire.IDMap {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			slog.Warn("identity.state.idmap.skip", "key", key, "err", err)
			continue
		}
		st.IDMap[key] = id
	}
	for id, raw := range wire.Fingerprints {
		var fp Fingerprint
		if err := json.Unmarshal(raw, &fp); err != nil {
			slog.Warn("identity.state.fingerprint.skip", "identity", id, "err", err)
			continue
		}
		st.Fingerprints[id] = fp
	}
	return st, nil
}
