// Package fsutil holds the thin glue helpers (mkdir -p, copy, directory
// walk) that the original source kept in utils.c/repo.c: small enough that
// wrapping them in their own abstraction would be overhead, but shared by
// build, catalog and worker so they live in one place instead of three.
package fsutil

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/mpkgtools/mpkg/mpkgerr"
)

// MkdirAll creates path and any missing parents, mirroring the original's
// mpkg_mkdirs incremental mkdir loop (os.MkdirAll already does this
// correctly and portably, so there is no reason to hand-roll the
// strsep-on-'/' loop from utils.c).
func MkdirAll(path string, perm os.FileMode) error {
	if err := os.MkdirAll(path, perm); err != nil {
		return mpkgerr.IO("mkdir", path, err)
	}
	return nil
}

// CopyFile copies src to dst, creating dst (or truncating it) with the
// given permissions. Used by the worker's script-in-chroot path to stage a
// script under <root>/tmp before executing it under chroot.
func CopyFile(dst, src string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return mpkgerr.IO("open", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return mpkgerr.IO("open", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return mpkgerr.IO("write", dst, err)
	}
	return nil
}

// Walk descends dir and every subdirectory (skipping "." and ".."
// implicitly, as os.ReadDir never yields them), invoking fn for every
// entry that is not a directory. Traversal order is lexical per directory,
// matching the original repo.c walk closely enough that catalog output
// order is stable across runs.
func Walk(dir string, fn func(path string, info os.FileInfo) error) error {
	entries, err := readDirSorted(dir)
	if err != nil {
		return mpkgerr.IO("opendir", dir, err)
	}
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if err := Walk(full, fn); err != nil {
				return err
			}
			continue
		}
		info, err := e.Info()
		if err != nil {
			return mpkgerr.IO("stat", full, err)
		}
		if err := fn(full, info); err != nil {
			return err
		}
	}
	return nil
}

func readDirSorted(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}
