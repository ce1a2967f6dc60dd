package lang

func init() {
	Register(&LanguageSpec{
		Language:       SQL,
		FileExtensions: []string{".sql"},
		NameFields:     []string{"name"},
		NameChildTypes: []string{"object_reference", "identifier"},
	})
}
