package ast

// Node is the tree shape the identity registry operates on. Parse results
// from any hosted language are adapted into this interface; nothing
// parser-specific leaks past it. Nodes are transient: a parse result owns
// its nodes, and the whole set is discarded on the next reparse.
type Node interface {
	// Type returns the node's grammar type tag (e.g. "block", "table").
	Type() string
	// Name returns a human-readable label for the node, or "" if it has none.
	Name() string
	// Field returns the name of the parent property holding this node
	// ("" for the root).
	Field() string
	// StartByte returns the node's byte offset in the source text.
	StartByte() int
	// Parent returns the containing node, or nil for the root.
	Parent() Node
	// Children returns the node's children in document order.
	Children() []Node
}

// SyntaxNode is the in-memory Node implementation produced by the
// tree-sitter adapter and by tests.
type SyntaxNode struct {
	nodeType  string
	name      string
	field     string
	startByte int
	parent    *SyntaxNode
	children  []*SyntaxNode
}

// NewTree returns a root SyntaxNode of the given type.
func NewTree(nodeType string) *SyntaxNode {
	return &SyntaxNode{nodeType: nodeType}
}

// Append creates a child of the given type under the given field and
// returns it.
func (n *SyntaxNode) Append(field, nodeType string) *SyntaxNode {
	child := &SyntaxNode{nodeType: nodeType, field: field, parent: n}
	n.children = append(n.children, child)
	return child
}

// SetName sets the node's display name and returns the node.
func (n *SyntaxNode) SetName(name string) *SyntaxNode {
	n.name = name
	return n
}

// SetStartByte sets the node's source offset and returns the node.
func (n *SyntaxNode) SetStartByte(offset int) *SyntaxNode {
	n.startByte = offset
	return n
}

// Remove detaches the node from its parent. No-op on the root.
func (n *SyntaxNode) Remove() {
	if n.parent == nil {
		return
	}
	kept := n.parent.children[:0]
	for _, c := range n.parent.children {
		if c != n {
			kept = append(kept, c)
		}
	}
	n.parent.children = kept
	n.parent = nil
}

func (n *SyntaxNode) Type() string   { return n.nodeType }
func (n *SyntaxNode) Name() string   { return n.name }
func (n *SyntaxNode) Field() string  { return n.field }
func (n *SyntaxNode) StartByte() int { return n.startByte }

func (n *SyntaxNode) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *SyntaxNode) Children() []Node {
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// WalkFunc is called for each node during traversal.
// Return false to skip the node's children.
type WalkFunc func(node Node) bool

// Walk traverses the tree in depth-first pre-order.
func Walk(node Node, fn WalkFunc) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for _, child := range node.Children() {
		Walk(child, fn)
	}
}
