package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mpkgtools/mpkg/mpkgerr"
)

const banner = "#\n# Created by mpkg-repo\n# /!\\ DO NOT EDIT!!! /!\\\n#\n\n"

// Emit writes the catalog to path, prepending the do-not-edit banner
// (spec.md §4.3, grounded on original_source/src/catalog.c's catalog_emit).
func (c *Catalog) Emit(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return mpkgerr.IO("open", path, err)
	}
	defer f.Close()
	if err := c.WriteTo(f); err != nil {
		return mpkgerr.IO("write", path, err)
	}
	return nil
}

// WriteTo renders the catalog format to w.
func (c *Catalog) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, banner)
	for _, e := range c.entries {
		fmt.Fprintf(bw, "%s|%d|%s\n", e.Name, e.Release, strings.Join(e.Depends, ","))
	}
	return bw.Flush()
}
