package manifest

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/mpkgtools/mpkg/lex"
	"github.com/mpkgtools/mpkg/mpkgerr"
)

// Parse reads a manifest file. Blank lines and lines whose first token
// starts with '#' are comments. Every other line must tokenize into
// exactly a directive and one argument; anything else is a fatal format
// error carrying the file and line number, per spec.md §4.2.
func Parse(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, mpkgerr.IO("open", path, err)
	}
	defer f.Close()
	return parse(path, f)
}

func parse(path string, r io.Reader) (*Manifest, error) {
	mf := &Manifest{}
	scanner := bufio.NewScanner(r)
	lineno := 0

	for scanner.Scan() {
		lineno++
		fields := lex.Fields(scanner.Text())
		if len(fields) == 0 || lex.IsComment(fields) {
			continue
		}
		if len(fields) < 2 {
			return nil, mpkgerr.Format(path, lineno, "not enough arguments")
		}
		if len(fields) > 2 {
			return nil, mpkgerr.Format(path, lineno, "too many arguments")
		}

		directive, arg := fields[0], fields[1]
		switch directive {
		case "package":
			mf.Name = arg
		case "release":
			n, err := strconv.Atoi(arg)
			if err != nil || n < 0 {
				return nil, mpkgerr.Format(path, lineno, "invalid release %q", arg)
			}
			mf.Release = n
		case "depend":
			mf.Depends = append(mf.Depends, Dependency{Name: arg})
		case "file":
			mf.Nodes = append(mf.Nodes, Node{Path: arg, Kind: NodeFile})
		case "config":
			mf.Nodes = append(mf.Nodes, Node{Path: arg, Kind: NodeConfig})
		case "dir":
			mf.Nodes = append(mf.Nodes, Node{Path: arg, Kind: NodeDir})
		case "script":
			mf.Script = arg
		default:
			return nil, mpkgerr.Format(path, lineno, "%s: unknown command", directive)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, mpkgerr.IO("read", path, err)
	}
	if mf.Name == "" {
		return nil, mpkgerr.Format(path, 0, "missing package directive")
	}
	return mf, nil
}
