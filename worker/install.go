package worker

import (
	"io"
	"os"
	"path/filepath"

	"github.com/mpkgtools/mpkg/ar"
	"github.com/mpkgtools/mpkg/fsutil"
	"github.com/mpkgtools/mpkg/manifest"
	"github.com/mpkgtools/mpkg/mpkgerr"
)

// install extracts <repo>/<name>/data.a into the root and writes the
// installed record (manifest copy plus an automatic marker if automatic).
func (w *Worker) install(name string, automatic bool) error {
	archivePath := filepath.Join(w.cfg.Repo, name, "data.a")
	r, err := ar.Open(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()
	if err := r.ExtractAll(w.cfg.Root); err != nil {
		return err
	}

	mf, err := manifest.Parse(filepath.Join(w.cfg.Repo, name, "manifest"))
	if err != nil {
		return err
	}

	recordDir := w.db.RecordDir(name)
	if err := fsutil.MkdirAll(recordDir, 0755); err != nil {
		return err
	}
	if err := mf.Emit(filepath.Join(recordDir, "manifest")); err != nil {
		return err
	}
	if automatic {
		marker := filepath.Join(recordDir, "automatic")
		if err := os.WriteFile(marker, nil, 0644); err != nil {
			return mpkgerr.IO("write", marker, err)
		}
	}
	return w.db.Reload()
}

// uninstall unlinks every FILE/CONFIG node, then removes empty DIR nodes
// (processed strictly after file removal so directories are observed in
// their post-unlink state; a non-empty one is left in place with a
// warning), then removes the installed record. Per
// spec.md §9's open-question resolution, CONFIG nodes are treated as FILE
// for uninstall too — unlike original_source/src/worker.c, which only
// matched MF_NODE_FILE and left CONFIG nodes behind.
func (w *Worker) uninstall(name string) error {
	rec, ok := w.db.Find(name)
	if !ok {
		return mpkgerr.Missing("installed db", name)
	}
	mf := rec.Manifest

	for _, n := range mf.Nodes {
		if n.Kind == manifest.NodeDir {
			continue
		}
		path := filepath.Join(w.cfg.Root, n.Path)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			w.log.Warn(mpkgerr.Partial("unlink %s: %v", path, err))
		}
	}

	for _, n := range mf.Nodes {
		if n.Kind != manifest.NodeDir {
			continue
		}
		path := filepath.Join(w.cfg.Root, n.Path)
		empty, err := dirEmpty(path)
		if err != nil {
			w.log.Warn(mpkgerr.Partial("stat %s: %v", path, err))
			continue
		}
		if !empty {
			w.log.Warn(mpkgerr.Partial("rmdir %s: directory not empty", path))
			continue
		}
		if err := os.Remove(path); err != nil {
			w.log.Warn(mpkgerr.Partial("rmdir %s: %v", path, err))
		}
	}

	recordDir := w.db.RecordDir(name)
	if err := os.RemoveAll(recordDir); err != nil {
		return mpkgerr.IO("remove", recordDir, err)
	}
	return w.db.Reload()
}

func dirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	_, err = f.Readdirnames(1)
	switch err {
	case nil:
		return false, nil
	case io.EOF:
		return true, nil
	default:
		return false, err
	}
}
