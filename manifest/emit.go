package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mpkgtools/mpkg/mpkgerr"
)

const banner = "#\n# Created by mpkg-create\n# /!\\ DO NOT EDIT!!! /!\\\n#\n\n"

// Emit writes path in manifest format: banner, package/release, a blank
// line, depend lines, a blank line, then nodes in insertion order tagged
// with their directive, and finally the script directive if present.
func (mf *Manifest) Emit(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return mpkgerr.IO("open", path, err)
	}
	defer f.Close()
	if err := mf.WriteTo(f); err != nil {
		return mpkgerr.IO("write", path, err)
	}
	return nil
}

// WriteTo renders the manifest format to w.
func (mf *Manifest) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, banner)
	fmt.Fprintf(bw, "package %s\n", mf.Name)
	fmt.Fprintf(bw, "release %d\n\n", mf.Release)

	for _, d := range mf.Depends {
		fmt.Fprintf(bw, "depend %s\n", d.Name)
	}
	fmt.Fprintln(bw)

	for _, n := range mf.Nodes {
		fmt.Fprintf(bw, "%s %s\n", n.Kind, n.Path)
	}
	if mf.Script != "" {
		fmt.Fprintf(bw, "script %s\n", mf.Script)
	}
	return bw.Flush()
}
