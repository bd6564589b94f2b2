package ar

import (
	"strconv"
	"strings"

	"github.com/mpkgtools/mpkg/mpkgerr"
)

// stringTable is the ordered sequence of long/slashed names referenced by
// "/<offset>" headers. Offset of entry i is the sum of len(name_k)+2 for
// k<i, matching spec.md §4.1's "String table semantics".
type stringTable struct {
	names  []string
	offset int64
}

// needsTable reports whether name must be routed through the string table
// rather than the 16-byte short-name slot: longer than 15 bytes (to leave
// room for the trailing "/") or containing a "/" itself.
func needsTable(name string) bool {
	return len(name) > 15 || strings.Contains(name, "/")
}

// register appends name and returns the byte offset to encode as "/<offset>".
func (t *stringTable) register(name string) int64 {
	off := t.offset
	t.names = append(t.names, name)
	t.offset += int64(len(name)) + 2 // "<name>/\n"
	return off
}

func (t *stringTable) empty() bool { return len(t.names) == 0 }

// payload renders the table's on-disk form: names separated by "/\n".
func (t *stringTable) payload() []byte {
	var b strings.Builder
	for _, n := range t.names {
		b.WriteString(n)
		b.WriteString("/\n")
	}
	return []byte(b.String())
}

// parseStringTable splits a string table payload into its ordered names,
// per spec.md §4.1: "split on \n, trim the trailing / from each name".
func parseStringTable(path string, payload []byte) ([]string, error) {
	text := string(payload)
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	// payload ends in "\n", so splitting yields one trailing empty string.
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	names := make([]string, 0, len(lines))
	for _, line := range lines {
		if !strings.HasSuffix(line, "/") {
			return nil, mpkgerr.Format(path, 0, "string table entry %q missing trailing /", line)
		}
		names = append(names, strings.TrimSuffix(line, "/"))
	}
	return names, nil
}

// resolveOffset walks names summing len+2 until the cumulative offset
// matches off, per spec.md §4.1: "resolve by walking the retained list and
// summing lengths until the cumulative offset matches."
func resolveOffset(path string, names []string, offsetField string) (string, error) {
	off, err := strconv.ParseInt(offsetField, 10, 64)
	if err != nil {
		return "", mpkgerr.Format(path, 0, "bad string table offset %q", offsetField)
	}
	var cum int64
	for _, n := range names {
		if cum == off {
			return n, nil
		}
		cum += int64(len(n)) + 2
	}
	return "", mpkgerr.Format(path, 0, "string table offset %d not found", off)
}
