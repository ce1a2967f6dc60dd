package identity

import (
	"strconv"

	"github.com/draftline/ast-identity/internal/ast"
)

// RootParentID is the sentinel parent identity marking the tree root.
const RootParentID = "root"

// Fingerprint describes a node's structural position within one parse
// result. Name and LastOffset are matching hints only; they never
// participate in exact-match equality.
type Fingerprint struct {
	AstType      string `json:"astType"`
	Property     string `json:"containmentProperty"`
	SiblingIndex int    `json:"siblingIndex"`
	ParentID     string `json:"parentUuid"`
	Name         string `json:"name,omitempty"`
	LastOffset   int    `json:"lastOffset,omitempty"`
}

// Key returns the deterministic exact-match key. Only the structural
// quadruple (parent identity, containing property, sibling index, node
// type) participates.
func (fp Fingerprint) Key() string {
	return fp.ParentID + "/" + fp.Property + "[" + strconv.Itoa(fp.SiblingIndex) + "]:" + fp.AstType
}

// Extract computes the fingerprint of a node given the already-resolved
// identity of its parent. The sibling index counts prior same-type
// siblings in the same containing field; it is recomputed every pass and
// shifts when an earlier same-type sibling is inserted or removed.
func Extract(node ast.Node, parentID string) Fingerprint {
	fp := Fingerprint{
		AstType:    node.Type(),
		Property:   node.Field(),
		ParentID:   parentID,
		Name:       node.Name(),
		LastOffset: node.StartByte(),
	}
	parent := node.Parent()
	if parent == nil {
		fp.ParentID = RootParentID
		fp.Property = ""
		return fp
	}
	for _, sib := range parent.Children() {
		if sib == node {
			break
		}
		if sib.Field() == node.Field() && sib.Type() == node.Type() {
			fp.SiblingIndex++
		}
	}
	return fp
}
