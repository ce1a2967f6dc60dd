package lang

func init() {
	Register(&LanguageSpec{
		Language:       YAML,
		FileExtensions: []string{".yml", ".yaml"},
		NameFields:     []string{"key"},
		NameChildTypes: []string{"flow_node"},
	})
}
