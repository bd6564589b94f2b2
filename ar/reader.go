package ar

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/mpkgtools/mpkg/mpkgerr"
)

// Reader walks an archive's entry stream. It owns one positional cursor
// and, per spec.md §5, a single pending "payload window" belonging to the
// most recently returned entry: Read drains that window, and the next
// Next() call seeks past whatever was left unread.
type Reader struct {
	path    string
	f       *os.File
	pending int64
	names   []string // parsed string table, populated on first "//" header
	eof     bool
}

// Open validates the magic and returns a positioned Reader.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, mpkgerr.IO("open", path, err)
	}
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(f, magic); err != nil {
		f.Close()
		return nil, mpkgerr.Format(path, 0, "truncated or missing archive magic")
	}
	if string(magic) != Magic {
		f.Close()
		return nil, mpkgerr.Format(path, 0, "bad archive magic")
	}
	return &Reader{path: path, f: f}, nil
}

// Close releases the underlying file descriptor.
func (r *Reader) Close() error {
	if err := r.f.Close(); err != nil {
		return mpkgerr.IO("close", r.path, err)
	}
	return nil
}

// Next returns the next ArchiveEntry, or io.EOF once the archive is
// exhausted. A header named "//" is consumed internally as the string
// table and is never returned to the caller (spec.md §4.1).
func (r *Reader) Next() (*Entry, error) {
	if r.pending > 0 {
		if _, err := r.f.Seek(r.pending, io.SeekCurrent); err != nil {
			return nil, mpkgerr.IO("seek", r.path, err)
		}
		r.pending = 0
	}
	if r.eof {
		return nil, io.EOF
	}

	for {
		var buf [headerSize]byte
		n, err := io.ReadFull(r.f, buf[:])
		if err == io.EOF && n == 0 {
			r.eof = true
			return nil, io.EOF
		}
		if err != nil {
			return nil, mpkgerr.Format(r.path, 0, "truncated entry header")
		}

		d, err := decodeHeader(r.path, buf)
		if err != nil {
			return nil, err
		}

		if d.rawName == stringTableName {
			payload := make([]byte, d.size)
			if _, err := io.ReadFull(r.f, payload); err != nil {
				return nil, mpkgerr.Format(r.path, 0, "truncated string table")
			}
			names, err := parseStringTable(r.path, payload)
			if err != nil {
				return nil, err
			}
			r.names = names
			continue
		}

		name, err := r.resolveName(d.rawName)
		if err != nil {
			return nil, err
		}

		r.pending = d.size
		return &Entry{
			Name:    name,
			ModTime: time.Unix(d.modTime, 0),
			Uid:     d.uid,
			Gid:     d.gid,
			Mode:    d.mode,
			Size:    d.size,
		}, nil
	}
}

func (r *Reader) resolveName(raw string) (string, error) {
	if len(raw) == 0 {
		return "", mpkgerr.Format(r.path, 0, "empty entry name")
	}
	if raw[0] == '/' {
		return resolveOffset(r.path, r.names, raw[1:])
	}
	if raw[len(raw)-1] != '/' {
		return "", mpkgerr.Format(r.path, 0, "short entry name %q missing trailing /", raw)
	}
	return raw[:len(raw)-1], nil
}

// Read drains the current entry's payload window. It returns io.EOF once
// the window (bounded by the entry's Size) is exhausted, matching the
// archive/tar.Reader convention the rest of the Go ecosystem expects.
func (r *Reader) Read(p []byte) (int, error) {
	if r.pending == 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > r.pending {
		p = p[:r.pending]
	}
	n, err := r.f.Read(p)
	r.pending -= int64(n)
	return n, err
}

// Extract materializes one entry under destRoot and sets its mtime via
// lutimes(2) (so symlinks themselves, not their targets, are stamped).
// Socket, character and block device entries are silently skipped per
// spec.md §4.1.
func (r *Reader) Extract(e *Entry, destRoot string) error {
	dest := filepath.Join(destRoot, e.Name)
	perm := os.FileMode(e.Mode & 0o7777)

	switch e.Kind() {
	case KindDir:
		if err := os.Mkdir(dest, perm); err != nil && !os.IsExist(err) {
			return mpkgerr.IO("mkdir", dest, err)
		}
	case KindFifo:
		if err := unix.Mkfifo(dest, uint32(perm)); err != nil {
			return mpkgerr.IO("mkfifo", dest, err)
		}
	case KindSymlink:
		target := make([]byte, e.Size)
		if _, err := io.ReadFull(r, target); err != nil {
			return mpkgerr.IO("read", dest, err)
		}
		if err := os.Symlink(string(target), dest); err != nil {
			return mpkgerr.IO("symlink", dest, err)
		}
	case KindFile:
		out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
		if err != nil {
			return mpkgerr.IO("open", dest, err)
		}
		_, copyErr := io.Copy(out, r)
		closeErr := out.Close()
		if copyErr != nil {
			return mpkgerr.IO("write", dest, copyErr)
		}
		if closeErr != nil {
			return mpkgerr.IO("close", dest, closeErr)
		}
	default:
		return nil
	}

	return lutimes(dest, e.ModTime)
}

// ExtractAll extracts every entry under destRoot in archive order, then
// reapplies directory mtimes in reverse insertion order so that creating
// files inside a directory (which bumps its mtime) never clobbers the
// mtime the archive recorded for that directory.
func (r *Reader) ExtractAll(destRoot string) error {
	type dirStamp struct {
		path  string
		mtime time.Time
	}
	var dirs []dirStamp

	for {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := r.Extract(e, destRoot); err != nil {
			return err
		}
		if e.Kind() == KindDir {
			dirs = append(dirs, dirStamp{filepath.Join(destRoot, e.Name), e.ModTime})
		}
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		if err := lutimes(dirs[i].path, dirs[i].mtime); err != nil {
			return err
		}
	}
	return nil
}

func lutimes(path string, t time.Time) error {
	tv := unix.NsecToTimeval(t.UnixNano())
	if err := unix.Lutimes(path, []unix.Timeval{tv, tv}); err != nil {
		return mpkgerr.IO("lutimes", path, err)
	}
	return nil
}
