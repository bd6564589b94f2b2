// Package db implements InstalledDb: the target root's record of what is
// installed and whether it was pulled in automatically, per spec.md §4.4.
// Grounded on original_source/src/db.c.
package db

import (
	"os"
	"path/filepath"

	"github.com/mpkgtools/mpkg/fsutil"
	"github.com/mpkgtools/mpkg/manifest"
	"github.com/mpkgtools/mpkg/mpkgerr"
)

// Record is one installed package's on-disk record.
type Record struct {
	Manifest  *manifest.Manifest
	Automatic bool
}

// Db enumerates <root>/var/db/mpkg.
type Db struct {
	path    string
	records []Record
	byName  map[string]int
}

// Path returns <root>/var/db/mpkg, the InstalledDb convention of spec.md §4.4.
func Path(root string) string {
	return filepath.Join(root, "var", "db", "mpkg")
}

// Init creates the record directory tree if it is absent.
func Init(root string) (*Db, error) {
	path := Path(root)
	if err := fsutil.MkdirAll(path, 0755); err != nil {
		return nil, err
	}
	d := &Db{path: path, byName: make(map[string]int)}
	if err := d.load(); err != nil {
		return nil, err
	}
	return d, nil
}

// Load opens an existing record directory without creating it.
func Load(root string) (*Db, error) {
	d := &Db{path: Path(root), byName: make(map[string]int)}
	if err := d.load(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Db) load() error {
	d.records = nil
	d.byName = make(map[string]int)

	entries, err := os.ReadDir(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return mpkgerr.IO("opendir", d.path, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := filepath.Join(d.path, e.Name())
		mfPath := filepath.Join(sub, "manifest")
		if _, err := os.Stat(mfPath); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return mpkgerr.IO("stat", mfPath, err)
		}
		mf, err := manifest.Parse(mfPath)
		if err != nil {
			return err
		}
		automatic := false
		if _, err := os.Stat(filepath.Join(sub, "automatic")); err == nil {
			automatic = true
		}
		d.byName[mf.Name] = len(d.records)
		d.records = append(d.records, Record{Manifest: mf, Automatic: automatic})
	}
	return nil
}

// Reload discards the current record set and re-executes Load. The Worker
// calls this after a sub-install to observe the newly-installed record
// (spec.md §4.4).
func (d *Db) Reload() error {
	return d.load()
}

// Find looks up an installed record by package name.
func (d *Db) Find(name string) (Record, bool) {
	idx, ok := d.byName[name]
	if !ok {
		return Record{}, false
	}
	return d.records[idx], true
}

// Records returns every installed record.
func (d *Db) Records() []Record {
	return d.records
}

// RecordDir returns <root>/var/db/mpkg/<name>, the path a package's
// manifest and automatic marker live under.
func (d *Db) RecordDir(name string) string {
	return filepath.Join(d.path, name)
}
