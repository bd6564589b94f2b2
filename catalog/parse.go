package catalog

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mpkgtools/mpkg/lex"
	"github.com/mpkgtools/mpkg/mpkgerr"
)

// Parse reads a catalog file: name|release|dep1,dep2,... per non-comment,
// non-blank line (spec.md §4.3). An empty name or release field is fatal;
// an empty dependency list is legal (no dependencies).
func Parse(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, mpkgerr.IO("open", path, err)
	}
	defer f.Close()
	return parse(path, f)
}

func parse(path string, r io.Reader) (*Catalog, error) {
	c := New()
	scanner := bufio.NewScanner(r)
	lineno := 0

	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		fields := lex.Fields(line)
		if len(fields) == 0 || lex.IsComment(fields) {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) != 3 {
			return nil, mpkgerr.Format(path, lineno, "expected name|release|depends, got %q", line)
		}
		name, releaseField, dependsField := parts[0], parts[1], parts[2]
		if name == "" {
			return nil, mpkgerr.Format(path, lineno, "empty name field")
		}
		if releaseField == "" {
			return nil, mpkgerr.Format(path, lineno, "empty release field")
		}
		release, err := strconv.Atoi(releaseField)
		if err != nil {
			return nil, mpkgerr.Format(path, lineno, "invalid release %q", releaseField)
		}

		var depends []string
		if dependsField != "" {
			depends = strings.Split(dependsField, ",")
		}
		c.Append(Entry{Name: name, Release: release, Depends: depends})
	}
	if err := scanner.Err(); err != nil {
		return nil, mpkgerr.IO("read", path, err)
	}
	return c, nil
}
