package lang

func init() {
	Register(&LanguageSpec{
		Language:       HCL,
		FileExtensions: []string{".tf", ".hcl"},
		NameFields:     []string{"name"},
		NameChildTypes: []string{"identifier", "string_lit"},
	})
}
