// Package build implements the build path (spec.md §2 "a build path
// takes manifests + a staging directory, writes data.a ... and manifest
// per package"): turning a parsed Manifest plus a staging directory into
// <repoDir>/<name>/{data.a,manifest}. Grounded on original_source/src/
// create.c (the mpkg-create body).
package build

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/mpkgtools/mpkg/ar"
	"github.com/mpkgtools/mpkg/fsutil"
	"github.com/mpkgtools/mpkg/manifest"
	"github.com/mpkgtools/mpkg/mpkgerr"
)

// Package builds <repoDir>/<mf.Name>/{data.a,manifest} from protoDir,
// appending every node in mf in manifest order.
func Package(mf *manifest.Manifest, protoDir, repoDir string) error {
	pkgDir := filepath.Join(repoDir, mf.Name)
	if err := fsutil.MkdirAll(pkgDir, 0755); err != nil {
		return err
	}

	w, err := ar.Create(filepath.Join(pkgDir, "data.a"))
	if err != nil {
		return err
	}
	for _, node := range mf.Nodes {
		if err := appendNode(w, protoDir, node); err != nil {
			w.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	return mf.Emit(filepath.Join(pkgDir, "manifest"))
}

func appendNode(w *ar.Writer, protoDir string, node manifest.Node) error {
	full := filepath.Join(protoDir, node.Path)
	info, err := os.Lstat(full)
	if err != nil {
		return mpkgerr.IO("lstat", full, err)
	}

	entry := ar.Entry{
		Name:    node.Path,
		ModTime: info.ModTime(),
		Mode:    statMode(info),
	}
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		entry.Uid = int(st.Uid)
		entry.Gid = int(st.Gid)
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(full)
		if err != nil {
			return mpkgerr.IO("readlink", full, err)
		}
		entry.Size = int64(len(target))
		return w.Append(entry, strings.NewReader(target))
	case info.IsDir(), info.Mode()&os.ModeNamedPipe != 0:
		return w.Append(entry, nil)
	default:
		f, err := os.Open(full)
		if err != nil {
			return mpkgerr.IO("open", full, err)
		}
		defer f.Close()
		entry.Size = info.Size()
		return w.Append(entry, f)
	}
}

// statMode converts a Go os.FileMode to the raw POSIX mode (type bits
// included) the archive header stores, per spec.md §4.1.
func statMode(info os.FileInfo) uint32 {
	perm := uint32(info.Mode().Perm())
	switch {
	case info.IsDir():
		return unix.S_IFDIR | perm
	case info.Mode()&os.ModeSymlink != 0:
		return unix.S_IFLNK | perm
	case info.Mode()&os.ModeNamedPipe != 0:
		return unix.S_IFIFO | perm
	case info.Mode()&os.ModeSocket != 0:
		return unix.S_IFSOCK | perm
	case info.Mode()&os.ModeDevice != 0:
		if info.Mode()&os.ModeCharDevice != 0 {
			return unix.S_IFCHR | perm
		}
		return unix.S_IFBLK | perm
	default:
		return unix.S_IFREG | perm
	}
}
