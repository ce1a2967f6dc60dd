package lang

import "testing"

func TestLanguageForExtension(t *testing.T) {
	cases := map[string]Language{
		".yaml": YAML,
		".yml":  YAML,
		".toml": TOML,
		".tf":   HCL,
		".hcl":  HCL,
		".sql":  SQL,
	}
	for ext, want := range cases {
		got, ok := LanguageForExtension(ext)
		if !ok || got != want {
			t.Errorf("LanguageForExtension(%s) = %s, %v; want %s", ext, got, ok, want)
		}
	}
	if _, ok := LanguageForExtension(".go"); ok {
		t.Error("unexpected spec for .go")
	}
}

func TestForLanguageCoversAll(t *testing.T) {
	for _, l := range AllLanguages() {
		spec := ForLanguage(l)
		if spec == nil {
			t.Errorf("no spec registered for %s", l)
			continue
		}
		if len(spec.FileExtensions) == 0 {
			t.Errorf("%s spec has no file extensions", l)
		}
		if len(spec.NameFields) == 0 && len(spec.NameChildTypes) == 0 {
			t.Errorf("%s spec has no name hooks", l)
		}
	}
}

func TestCleanName(t *testing.T) {
	if got := cleanName(`  "server"  `); got != "server" {
		t.Errorf("cleanName = %q", got)
	}
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'x'
	}
	if got := cleanName(string(long)); len(got) != 64 {
		t.Errorf("cleanName length = %d, want 64", len(got))
	}
}
