package domaincode

import (
	"errors"
	"testing"

	perr "pvcreek/internal/platform/errors"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		code string
		want Site
	}{
		{"en", Site{"en", "wikipedia.org", false}},
		{"ko", Site{"ko", "wikipedia.org", false}},
		{"en.m", Site{"en", "wikipedia.org", true}},
		{"en.zero", Site{"en", "wikipedia.org", true}},
		{"en.b", Site{"en", "wikibooks.org", false}},
		{"en.d", Site{"en", "wiktionary.org", false}},
		{"en.m.b", Site{"en", "wikibooks.org", true}},
		{"de.m.voy", Site{"de", "wikivoyage.org", true}},
		{"www.wd", Site{"www", "wikidata.org", false}},
		{"en.m.wd", Site{"en", "wikidata.org", true}},
		{"no.m", Site{"no", "wikipedia.org", true}},
		{"no.m.m", Site{"no", "wikimedia.org", true}},
		{"zh-min-nan.q", Site{"zh-min-nan", "wikiquote.org", false}},
		{"en.xyz", Site{"en", "xyz", false}},
		{"en.m.xyz", Site{"en", "xyz", true}},
		{"commons.m", Site{"en", "commons.wikimedia.org", false}},
		{"commons.m.m", Site{"en", "commons.wikimedia.org", true}},
		{"meta.m", Site{"en", "meta.wikimedia.org", false}},
		{"species.m.m", Site{"en", "species.wikimedia.org", true}},
		{"commons", Site{"commons", "wikipedia.org", false}},
	}
	for _, c := range cases {
		got, err := Decode(c.code)
		if err != nil {
			t.Fatalf("Decode(%q) error: %v", c.code, err)
		}
		if got != c.want {
			t.Fatalf("Decode(%q) = %+v, want %+v", c.code, got, c.want)
		}
	}
}

func TestDecode_Invalid(t *testing.T) {
	for _, code := range []string{"en.m.m.m", "a.b.c.d", "commons.m.m.m", "", ".m", "...."} {
		_, err := Decode(code)
		if err == nil {
			t.Fatalf("Decode(%q) expected error", code)
		}
		var inv *InvalidDomainCodeError
		if !errors.As(err, &inv) {
			t.Fatalf("Decode(%q) error type = %T, want *InvalidDomainCodeError", code, err)
		}
		if inv.Token != code {
			t.Fatalf("Decode(%q) error token = %q", code, inv.Token)
		}
		if !perr.IsCode(err, perr.ErrorCodeMalformed) {
			t.Fatalf("Decode(%q) error code = %v, want malformed", code, perr.CodeOf(err))
		}
	}
}

func TestDecode_MetaProjectsAreEnglish(t *testing.T) {
	for _, name := range MetaProjects() {
		domain, ok := MetaProject(name)
		if !ok {
			t.Fatalf("MetaProject(%q) not found", name)
		}
		desktop, err := Decode(name + ".m")
		if err != nil {
			t.Fatalf("Decode(%q.m): %v", name, err)
		}
		if desktop != (Site{"en", domain, false}) {
			t.Fatalf("Decode(%q.m) = %+v", name, desktop)
		}
		mobile, err := Decode(name + ".m.m")
		if err != nil {
			t.Fatalf("Decode(%q.m.m): %v", name, err)
		}
		if mobile != (Site{"en", domain, true}) {
			t.Fatalf("Decode(%q.m.m) = %+v", name, mobile)
		}
	}
}

func TestDecode_Deterministic(t *testing.T) {
	a, errA := Decode("fr.m.s")
	b, errB := Decode("fr.m.s")
	if errA != nil || errB != nil || a != b {
		t.Fatalf("Decode not deterministic: %+v %+v", a, b)
	}
	if a.Language == "" || a.Project == "" {
		t.Fatalf("decoded fields must not be empty: %+v", a)
	}
}

func TestProjectDomain(t *testing.T) {
	if got := ProjectDomain(""); got != BaseProject {
		t.Fatalf("ProjectDomain(\"\") = %q", got)
	}
	if got := ProjectDomain("f"); got != "wikimediafoundation.org" {
		t.Fatalf("ProjectDomain(f) = %q", got)
	}
	if got := ProjectDomain("unknown"); got != "unknown" {
		t.Fatalf("ProjectDomain(unknown) = %q", got)
	}
}
