package pageviews

import (
	"errors"
	"io"
	"testing"

	"pvcreek/internal/core/domaincode"
	"pvcreek/internal/core/stream"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		line string
		want Record
	}{
		{
			"en.d circumfluebant 1 0",
			Record{"en.d", "circumfluebant", 1, "en", "wiktionary.org", false},
		},
		{
			"ko 서울_지하철_7호선 2 0",
			Record{"ko", "서울_지하철_7호선", 2, "ko", "wikipedia.org", false},
		},
		{
			"commons.m.m File:Example.jpg 17 0",
			Record{"commons.m.m", "File:Example.jpg", 17, "en", "commons.wikimedia.org", true},
		},
		{
			"da Linjeløb 2 0",
			Record{"da", "Linjeløb", 2, "da", "wikipedia.org", false},
		},
		{
			"de.m.voy  Berlin\t30 0",
			Record{"de.m.voy", "Berlin", 30, "de", "wikivoyage.org", true},
		},
	}
	for _, c := range cases {
		got, err := ParseLine(c.line)
		if err != nil {
			t.Fatalf("ParseLine(%q) error: %v", c.line, err)
		}
		if got != c.want {
			t.Fatalf("ParseLine(%q) = %+v, want %+v", c.line, got, c.want)
		}
	}
}

func TestParseLine_Malformed(t *testing.T) {
	for _, line := range []string{
		"",
		"en Main_Page 10",
		"en Main_Page 10 0 extra",
		"en Main_Page ten 0",
		"en Main_Page 1.5 0",
	} {
		_, err := ParseLine(line)
		var mal *MalformedLineError
		if !errors.As(err, &mal) {
			t.Fatalf("ParseLine(%q) error = %v, want *MalformedLineError", line, err)
		}
		if mal.Line != line {
			t.Fatalf("MalformedLineError.Line = %q, want %q", mal.Line, line)
		}
	}
}

func TestParseLine_InvalidDomainCodePropagates(t *testing.T) {
	_, err := ParseLine("en.m.m.m Main_Page 1 0")
	var inv *domaincode.InvalidDomainCodeError
	if !errors.As(err, &inv) || inv.Token != "en.m.m.m" {
		t.Fatalf("ParseLine error = %v, want InvalidDomainCodeError", err)
	}
	if !IsRowError(err) {
		t.Fatalf("IsRowError should accept domain code errors")
	}
}

func TestParse_OneToOne(t *testing.T) {
	lines := []string{"en A 1 0", "fr B 2 0", "en.m C 3 0"}
	got, err := stream.Collect[Record](Parse(stream.Slice(lines)))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].PageTitle != "A" || got[2].PageTitle != "C" || !got[2].IsMobile {
		t.Fatalf("Parse = %+v", got)
	}
}

func TestParse_AbortsOnFirstBadLine(t *testing.T) {
	p := Parse(stream.Slice([]string{"en A 1 0", "broken", "en C 3 0"}))
	if _, err := p.Next(); err != nil {
		t.Fatalf("first record: %v", err)
	}
	_, err := p.Next()
	var mal *MalformedLineError
	if !errors.As(err, &mal) {
		t.Fatalf("second Next() = %v, want malformed", err)
	}
	if _, again := p.Next(); again != err {
		t.Fatalf("parser did not stay failed: %v", again)
	}
}

func TestParse_SkipMalformed(t *testing.T) {
	var dropped []string
	p := Parse(
		stream.Slice([]string{"en A 1 0", "broken", "x.y.z.w B 1 0", "en C 3 0"}),
		WithSkipMalformed(func(line string, _ error) { dropped = append(dropped, line) }),
	)
	got, err := stream.Collect[Record](p)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].PageTitle != "C" {
		t.Fatalf("records = %+v", got)
	}
	if len(dropped) != 2 {
		t.Fatalf("dropped = %v", dropped)
	}
	if parsed, skipped := p.Stats(); parsed != 2 || skipped != 2 {
		t.Fatalf("Stats() = %d, %d", parsed, skipped)
	}
}

func TestParse_SourceErrorsAreNotSkipped(t *testing.T) {
	boom := errors.New("read failed")
	calls := 0
	src := stream.Func[string](func() (string, error) {
		calls++
		if calls == 1 {
			return "en A 1 0", nil
		}
		return "", boom
	})
	p := Parse(src, WithSkipMalformed(nil))
	if _, err := p.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Next(); !errors.Is(err, boom) {
		t.Fatalf("Next() = %v, want source error", err)
	}
	if _, err := Parse(stream.Slice[string](nil)).Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("empty source should yield io.EOF, got %v", err)
	}
}
