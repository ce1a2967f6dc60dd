package lang

func init() {
	Register(&LanguageSpec{
		Language:       TOML,
		FileExtensions: []string{".toml"},
		NameChildTypes: []string{"bare_key", "quoted_key", "dotted_key"},
	})
}
