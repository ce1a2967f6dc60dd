package main

import (
	"fmt"

	"github.com/draftline/ast-identity/internal/ast"
	"github.com/draftline/ast-identity/internal/identity"
	"github.com/draftline/ast-identity/internal/lang"
	"github.com/draftline/ast-identity/internal/parser"
)

func printTree(reg *identity.Registry, node ast.Node, indent int) {
	prefix := ""
	for i := 0; i < indent; i++ {
		prefix += "  "
	}
	id, _ := reg.Identity(node)
	name := node.Name()
	if name == "" {
		name = "-"
	}
	fmt.Printf("%s%s name=%s field=%s id=%s\n", prefix, node.Type(), name, node.Field(), id)
	for _, child := range node.Children() {
		printTree(reg, child, indent+1)
	}
}

func reconcileText(reg *identity.Registry, l lang.Language, text []byte) (ast.Node, identity.Stats, error) {
	tree, err := parser.Parse(l, text)
	if err != nil {
		return nil, identity.Stats{}, err
	}
	defer tree.Close()
	spec := lang.ForLanguage(l)
	root := ast.FromTreeSitter(tree.RootNode(), text, spec.NameOf)
	stats := reg.Reconcile(root)
	return root, stats, nil
}

func main() {
	reg := identity.NewRegistry()

	before := []byte("server:\n  host: localhost\n  port: 8080\nclient:\n  retries: 3\n")
	after := []byte("server:\n  port: 8080\nclient:\n  retries: 3\n  timeout: 30\n")

	fmt.Println("=== PASS 1 ===")
	root, stats, err := reconcileText(reg, lang.YAML, before)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("exact=%d fuzzy=%d fresh=%d\n", stats.Exact, stats.Fuzzy, stats.Fresh)
	printTree(reg, root, 0)

	fmt.Println("\n=== PASS 2 (host removed, timeout added) ===")
	root, stats, err = reconcileText(reg, lang.YAML, after)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("exact=%d fuzzy=%d fresh=%d\n", stats.Exact, stats.Fuzzy, stats.Fresh)
	printTree(reg, root, 0)
}
