package lang

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Language represents a hosted textual language.
type Language string

const (
	YAML Language = "yaml"
	TOML Language = "toml"
	HCL  Language = "hcl"
	SQL  Language = "sql"
)

// AllLanguages returns all hosted languages.
func AllLanguages() []Language {
	return []Language{YAML, TOML, HCL, SQL}
}

// LanguageSpec describes how to read a hosted language's syntax tree.
type LanguageSpec struct {
	Language       Language
	FileExtensions []string

	// NameFields lists tree-sitter field names holding a node's display
	// name, tried in order.
	NameFields []string
	// NameChildTypes lists child node kinds whose text serves as the
	// display name when no name field matches.
	NameChildTypes []string
}

// registry maps file extensions to language specs.
var registry = map[string]*LanguageSpec{}

// Register adds a LanguageSpec to the global registry.
func Register(spec *LanguageSpec) {
	for _, ext := range spec.FileExtensions {
		registry[ext] = spec
	}
}

// ForExtension returns the LanguageSpec for a file extension (e.g. ".yaml").
func ForExtension(ext string) *LanguageSpec {
	return registry[ext]
}

// ForLanguage returns the LanguageSpec for a language.
func ForLanguage(l Language) *LanguageSpec {
	for _, spec := range registry {
		if spec.Language == l {
			return spec
		}
	}
	return nil
}

// LanguageForExtension returns the Language for a file extension.
func LanguageForExtension(ext string) (Language, bool) {
	spec := registry[ext]
	if spec == nil {
		return "", false
	}
	return spec.Language, true
}

// NameOf extracts a display name for a node using the language's name hooks,
// or "" when the node has none. The name serves only as a fuzzy-match
// hint and diagram label, so quotes are stripped and long names cut.
func (s *LanguageSpec) NameOf(node *tree_sitter.Node, source []byte) string {
	for _, field := range s.NameFields {
		if c := node.ChildByFieldName(field); c != nil {
			return cleanName(string(source[c.StartByte():c.EndByte()]))
		}
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c := node.NamedChild(i)
		if c == nil {
			continue
		}
		for _, kind := range s.NameChildTypes {
			if c.Kind() == kind {
				return cleanName(string(source[c.StartByte():c.EndByte()]))
			}
		}
	}
	return ""
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Trim(name, `"'`)
	if len(name) > 64 {
		name = name[:64]
	}
	return name
}
