package ast

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// NameFunc extracts a display name for a tree-sitter node, or "" when the
// node has none. Each hosted language supplies its own.
type NameFunc func(node *tree_sitter.Node, source []byte) string

// FromTreeSitter converts a parsed tree-sitter tree into a SyntaxNode tree.
// Only named nodes are kept; anonymous tokens (punctuation, keywords) carry
// no identity of their own. Unfielded children are grouped under the
// "children" property, matching how the grammar exposes them.
func FromTreeSitter(root *tree_sitter.Node, source []byte, names NameFunc) *SyntaxNode {
	if root == nil {
		return nil
	}
	out := NewTree(root.Kind())
	out.startByte = int(root.StartByte())
	if names != nil {
		out.name = names(root, source)
	}
	adaptChildren(root, out, source, names)
	return out
}

func adaptChildren(src *tree_sitter.Node, dst *SyntaxNode, source []byte, names NameFunc) {
	for i := uint(0); i < src.ChildCount(); i++ {
		child := src.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		field := src.FieldNameForChild(uint32(i))
		if field == "" {
			field = "children"
		}
		node := dst.Append(field, child.Kind())
		node.startByte = int(child.StartByte())
		if names != nil {
			node.name = names(child, source)
		}
		adaptChildren(child, node, source, names)
	}
}
