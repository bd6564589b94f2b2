package ar

import (
	"time"

	"golang.org/x/sys/unix"
)

// Kind classifies an Entry by its POSIX file type bits.
type Kind int

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
	KindFifo
	KindOther // socket, char device, block device: extracted nowhere, silently skipped
)

// Entry is the archive codec's unit, mirroring spec.md §3's ArchiveEntry:
// name, mtime, uid, gid, the full POSIX mode (type bits included), and the
// payload length. Entry itself never carries the payload bytes; those flow
// through the Reader/Writer's io.Reader/io.Writer surface.
type Entry struct {
	Name    string
	ModTime time.Time
	Uid     int
	Gid     int
	Mode    uint32
	Size    int64
}

// Kind reports the entry's file type from its mode bits.
func (e Entry) Kind() Kind {
	switch e.Mode & unix.S_IFMT {
	case unix.S_IFDIR:
		return KindDir
	case unix.S_IFLNK:
		return KindSymlink
	case unix.S_IFIFO:
		return KindFifo
	case unix.S_IFREG:
		return KindFile
	default:
		return KindOther
	}
}
