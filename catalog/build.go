package catalog

import (
	"os"
	"path/filepath"

	"github.com/mpkgtools/mpkg/fsutil"
	"github.com/mpkgtools/mpkg/manifest"
)

// Build walks repoDir (grounded on original_source/src/repo.c's walk) and
// appends a catalog Entry for every file literally named "manifest" it
// finds, descending into every subdirectory. Traversal order is lexical,
// so catalog output is stable across runs.
func Build(repoDir string) (*Catalog, error) {
	c := New()
	err := fsutil.Walk(repoDir, func(path string, info os.FileInfo) error {
		if info.Name() != "manifest" {
			return nil
		}
		mf, err := manifest.Parse(path)
		if err != nil {
			return err
		}
		depends := make([]string, len(mf.Depends))
		for i, d := range mf.Depends {
			depends[i] = d.Name
		}
		c.Append(Entry{Name: mf.Name, Release: mf.Release, Depends: depends})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// BuildAndEmit builds the catalog for repoDir and writes it to
// <repoDir>/catalog.
func BuildAndEmit(repoDir string) (*Catalog, error) {
	c, err := Build(repoDir)
	if err != nil {
		return nil, err
	}
	if err := c.Emit(filepath.Join(repoDir, "catalog")); err != nil {
		return nil, err
	}
	return c, nil
}
