package identity

import (
	"github.com/google/uuid"

	"github.com/draftline/ast-identity/internal/ast"
)

// Registry assigns stable, opaque identities to the nodes of a repeatedly
// rebuilt tree, so diagram layout, undo history and selection state can
// keep referring to "the same" element across reparses.
//
// One Registry serves one document and is owned by that document's edit
// pipeline. It is not safe for concurrent use: exactly one Reconcile may
// be in flight per instance, and Export/Load belong at session boundaries
// only.
type Registry struct {
	// Durable state. Survives reconciliations and, via Export/Load,
	// process restarts. Rebuilt from scratch at the end of every pass, so
	// identities of vanished nodes are dropped rather than accumulated.
	idByKey map[string]string      // exact-match index: fingerprint key -> identity
	fpByID  map[string]Fingerprint // last observed structural fact per identity

	// Per-generation state. Replaced wholesale by every Reconcile, never
	// merged; holding tree nodes across generations would dangle once the
	// parse result is discarded.
	idByNode map[ast.Node]string
	nodeByID map[string]ast.Node

	threshold int
	mint      func() string
}

// Stats summarizes how one reconciliation pass resolved its nodes.
type Stats struct {
	Exact int
	Fuzzy int
	Fresh int
}

// Total returns the number of nodes resolved in the pass.
func (s Stats) Total() int { return s.Exact + s.Fuzzy + s.Fresh }

// NewRegistry returns an empty registry for a single document.
func NewRegistry() *Registry {
	return &Registry{
		idByKey:   make(map[string]string),
		fpByID:    make(map[string]Fingerprint),
		idByNode:  make(map[ast.Node]string),
		nodeByID:  make(map[string]ast.Node),
		threshold: DefaultFuzzyThreshold,
		mint:      uuid.NewString,
	}
}

// SetFuzzyThreshold overrides the minimum fuzzy-match score.
func (r *Registry) SetFuzzyThreshold(threshold int) {
	r.threshold = threshold
}

// Identity returns the identity assigned to node in the current
// generation.
func (r *Registry) Identity(node ast.Node) (string, bool) {
	id, ok := r.idByNode[node]
	return id, ok
}

// Node returns the current generation's node for an identity.
func (r *Registry) Node(id string) (ast.Node, bool) {
	n, ok := r.nodeByID[id]
	return n, ok
}

// Identities returns every identity resolved in the current generation.
func (r *Registry) Identities() []string {
	out := make([]string, 0, len(r.nodeByID))
	for id := range r.nodeByID {
		out = append(out, id)
	}
	return out
}

// Fingerprint returns the stored fingerprint for an identity.
func (r *Registry) Fingerprint(id string) (Fingerprint, bool) {
	fp, ok := r.fpByID[id]
	return fp, ok
}

// RegisterNewIdentity inserts an identity together with the fingerprint
// its node will have once the document is reparsed, overwriting any prior
// entry under that fingerprint key. An element-creation operation uses
// this so the next Reconcile recognizes the new node by exact match
// instead of minting an unrelated fresh identity.
func (r *Registry) RegisterNewIdentity(id string, fp Fingerprint) {
	r.fpByID[id] = fp
	r.idByKey[fp.Key()] = id
}

// Reconcile assigns an identity to every node reachable from root and
// replaces both the per-generation maps and the durable state with the
// results of this pass. It never fails on structural variation: a node no
// matching strategy recognizes simply receives a fresh identity.
//
// Resolution runs in two sweeps. The first claims exact matches in
// pre-order for every node whose parent resolved exactly; the second
// revisits deferred nodes, still in pre-order so parents always resolve
// before their children, retrying the exact index before falling back to
// fuzzy matching and finally fresh allocation. Running the exact sweep
// first keeps a fuzzily moved node from stealing an identity that some
// later node still matches exactly.
func (r *Registry) Reconcile(root ast.Node) Stats {
	var stats Stats

	idByNode := make(map[ast.Node]string, len(r.idByNode)+1)
	nodeByID := make(map[string]ast.Node, len(r.nodeByID)+1)
	fpByNode := make(map[ast.Node]Fingerprint, len(r.idByNode)+1)
	claimed := make(map[string]bool)

	claim := func(node ast.Node, id string, fp Fingerprint) {
		idByNode[node] = id
		nodeByID[id] = node
		claimed[id] = true
		fpByNode[node] = fp
	}

	// Root resolution: reuse whatever identity was last stored at the
	// root position, else mint one.
	rootFP := Extract(root, RootParentID)
	rootID, ok := r.idByKey[rootFP.Key()]
	if !ok {
		rootID = r.mint()
		stats.Fresh++
	} else {
		stats.Exact++
	}
	claim(root, rootID, rootFP)

	// Exact sweep. Children of unresolved nodes cannot be fingerprinted
	// yet and are deferred in traversal order.
	var deferred []ast.Node
	var sweep func(n ast.Node)
	sweep = func(n ast.Node) {
		parentID, resolved := idByNode[n]
		for _, child := range n.Children() {
			if !resolved {
				deferred = append(deferred, child)
			} else {
				fp := Extract(child, parentID)
				if id, hit := r.idByKey[fp.Key()]; hit && !claimed[id] {
					claim(child, id, fp)
					stats.Exact++
				} else {
					deferred = append(deferred, child)
				}
			}
			sweep(child)
		}
	}
	sweep(root)

	// Deferred sweep: fuzzy match, then fresh allocation. Parents precede
	// children in the deferred list, so every parent identity is known by
	// the time its children come up; the sentinel fallback below is the
	// never-expected safety net.
	for _, node := range deferred {
		parentID := RootParentID
		if p := node.Parent(); p != nil {
			if id, ok := idByNode[p]; ok {
				parentID = id
			}
		}
		fp := Extract(node, parentID)
		if id, hit := r.idByKey[fp.Key()]; hit && !claimed[id] {
			claim(node, id, fp)
			stats.Exact++
			continue
		}
		if id := r.bestFuzzyMatch(fp, claimed); id != "" {
			claim(node, id, fp)
			stats.Fuzzy++
			continue
		}
		claim(node, r.mint(), fp)
		stats.Fresh++
	}

	// Rebuild durable state from this pass only. Identities nobody
	// claimed are dropped here; that is the whole garbage collection.
	idByKey := make(map[string]string, len(idByNode))
	fpByID := make(map[string]Fingerprint, len(idByNode))
	for node, id := range idByNode {
		fp := fpByNode[node]
		fpByID[id] = fp
		idByKey[fp.Key()] = id
	}

	r.idByKey = idByKey
	r.fpByID = fpByID
	r.idByNode = idByNode
	r.nodeByID = nodeByID
	return stats
}
