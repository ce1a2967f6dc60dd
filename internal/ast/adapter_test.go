package ast

import (
	"testing"

	"github.com/draftline/ast-identity/internal/lang"
	"github.com/draftline/ast-identity/internal/parser"
)

func TestFromTreeSitterYAML(t *testing.T) {
	source := []byte("name: app\nreplicas: 3\n")
	tree, err := parser.Parse(lang.YAML, source)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer tree.Close()

	spec := lang.ForLanguage(lang.YAML)
	root := FromTreeSitter(tree.RootNode(), source, spec.NameOf)
	if root == nil {
		t.Fatal("nil root")
	}
	if root.Type() != "stream" {
		t.Errorf("root type = %s, want stream", root.Type())
	}

	var pairs []Node
	Walk(root, func(n Node) bool {
		if n.Type() == "block_mapping_pair" {
			pairs = append(pairs, n)
		}
		return true
	})
	if len(pairs) != 2 {
		t.Fatalf("mapping pairs = %d, want 2", len(pairs))
	}
	if pairs[0].Name() != "name" || pairs[1].Name() != "replicas" {
		t.Errorf("pair names = %q, %q", pairs[0].Name(), pairs[1].Name())
	}
	if pairs[0].StartByte() != 0 {
		t.Errorf("first pair offset = %d, want 0", pairs[0].StartByte())
	}
}

func TestFromTreeSitterKeepsOnlyNamedNodes(t *testing.T) {
	source := []byte("a = \"b\"\n")
	tree, err := parser.Parse(lang.TOML, source)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer tree.Close()

	root := FromTreeSitter(tree.RootNode(), source, nil)
	Walk(root, func(n Node) bool {
		if n.Type() == "=" || n.Type() == "\"" {
			t.Errorf("anonymous token %q survived adaptation", n.Type())
		}
		if n.Parent() != nil && n.Field() == "" {
			t.Errorf("node %s has no containment property", n.Type())
		}
		return true
	})
}

func TestFromTreeSitterNil(t *testing.T) {
	if FromTreeSitter(nil, nil, nil) != nil {
		t.Error("nil input must yield nil tree")
	}
}
