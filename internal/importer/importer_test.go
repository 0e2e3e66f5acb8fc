package importer

import (
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	for _, name := range []string{"a.md", "b.TXT", "c.csv", "d.htm", "e.pdf", "f.docx"} {
		if _, err := ForFile(name); err != nil {
			t.Errorf("ForFile(%q): unexpected error: %v", name, err)
		}
		if !IsSupported(name) {
			t.Errorf("IsSupported(%q) = false", name)
		}
	}
	if _, err := ForFile("g.rtf"); err == nil {
		t.Error("expected error for .rtf")
	}
}

func TestTextImporter_Paragraphs(t *testing.T) {
	input := "First line one.\nFirst line two.\n\nSecond paragraph.\n\n\nThird."
	got, err := TextImporter{}.Import(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "# notes\n\nFirst line one.\nFirst line two.\n\nSecond paragraph.\n\nThird.\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTextImporter_Empty(t *testing.T) {
	got, err := TextImporter{}.Import(strings.NewReader("\n\n"), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestCSVImporter_Table(t *testing.T) {
	input := "name,role\nAda,admin\nBob,a|b\nCy\n"
	got, err := CSVImporter{}.Import(strings.NewReader(input), "people.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "# people\n\n| name | role |\n| --- | --- |\n| Ada | admin |\n| Bob | a\\|b |\n| Cy |  |\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHTMLImporter(t *testing.T) {
	input := `<html><head><title>Legacy</title><style>p{}</style></head><body>
<nav>skip me</nav>
<h2>Setup</h2>
<p>Open <a href="/settings">Settings</a> and
click save.</p>
<ul><li>one</li><li>two</li></ul>
<p><img src="/a.png" alt="A"></p>
<pre>line 1
line 2
</pre>
<table><tr><td>x</td></tr></table>
</body></html>`
	got, err := HTMLImporter{}.Import(strings.NewReader(input), "legacy.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"# Legacy\n",
		"## Setup\n",
		"Open [Settings](/settings) and click save.",
		"- one\n- two",
		"![A](/a.png)",
		"```\nline 1\nline 2\n```",
		"<table><tbody><tr><td>x</td></tr></tbody></table>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "skip me") {
		t.Errorf("nav content leaked into output:\n%s", got)
	}
}

func TestMarkdownImporter_PassThrough(t *testing.T) {
	got, err := MarkdownImporter{}.Import(strings.NewReader("# Hi\n"), "x.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "# Hi\n" {
		t.Errorf("got %q", got)
	}
}
