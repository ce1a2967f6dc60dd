package identity

import (
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/draftline/ast-identity/internal/ast"
)

// LegacyIDFunc computes a node's identifier under the prior, unstable
// identification scheme.
type LegacyIDFunc func(node ast.Node) string

// BuildLegacyIDMapping walks the tree of the most recent reconciliation
// and maps each node's legacy identifier to its stable identity. It is a
// one-time upgrade aid for external state still keyed by the old scheme,
// such as persisted diagram layouts. Nodes without a resolved identity
// are left out.
func (r *Registry) BuildLegacyIDMapping(root ast.Node, legacyFn LegacyIDFunc) map[string]string {
	mapping := make(map[string]string)
	ast.Walk(root, func(node ast.Node) bool {
		id, ok := r.idByNode[node]
		if !ok {
			return true
		}
		if legacy := legacyFn(node); legacy != "" {
			mapping[legacy] = id
		}
		return true
	})
	return mapping
}

// OffsetLegacyID reproduces the retired identification scheme: a hash of
// the node's type-and-offset path from the root. Offsets shift on every
// edit, which is exactly why the scheme was replaced.
func OffsetLegacyID(node ast.Node) string {
	var parts []string
	for n := node; n != nil; n = n.Parent() {
		parts = append(parts, n.Type()+"@"+strconv.Itoa(n.StartByte()))
	}
	// parts were collected leaf-first; the legacy scheme hashed root-first.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	sum := xxh3.HashString(strings.Join(parts, "/"))
	return "n" + strconv.FormatUint(sum, 16)
}
