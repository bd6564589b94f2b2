package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseEmitRoundTrip(t *testing.T) {
	text := "#comment\nA|1|B,C\nB|2|\n"
	c, err := parse("cat", strings.NewReader(text))
	if err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	if err := c.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	c2, err := parse("cat", strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("re-parse: %v\n%s", err, buf.String())
	}
	if !reflect.DeepEqual(c.Entries(), c2.Entries()) {
		t.Fatalf("round trip mismatch: %+v vs %+v", c.Entries(), c2.Entries())
	}
}

func TestFind(t *testing.T) {
	c, err := parse("cat", strings.NewReader("A|1|\nB|2|A\n"))
	if err != nil {
		t.Fatal(err)
	}
	e, ok := c.Find("B")
	if !ok || e.Release != 2 || len(e.Depends) != 1 || e.Depends[0] != "A" {
		t.Fatalf("Find(B) = %+v, %v", e, ok)
	}
	if _, ok := c.Find("nope"); ok {
		t.Fatal("expected miss")
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{"|1|\n", "A||\n", "A|notanumber|\n", "A\n"}
	for _, in := range cases {
		if _, err := parse("cat", strings.NewReader(in)); err == nil {
			t.Fatalf("input %q: expected error", in)
		}
	}
}

func TestBuildWalksRepository(t *testing.T) {
	root := t.TempDir()
	mkPkg := func(name, rel, deps string) {
		dir := filepath.Join(root, name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		content := "package " + name + "\nrelease " + rel + "\n\n"
		for _, d := range strings.Split(deps, ",") {
			if d != "" {
				content += "depend " + d + "\n"
			}
		}
		if err := os.WriteFile(filepath.Join(dir, "manifest"), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	mkPkg("A", "1", "B")
	mkPkg("B", "2", "")

	c, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	a, ok := c.Find("A")
	if !ok || a.Release != 1 || len(a.Depends) != 1 || a.Depends[0] != "B" {
		t.Fatalf("A entry = %+v, %v", a, ok)
	}
	if _, ok := c.Find("B"); !ok {
		t.Fatal("B entry missing")
	}
}
