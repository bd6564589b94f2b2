package ar

import (
	"io"
	"os"
	"strconv"

	"github.com/mpkgtools/mpkg/mpkgerr"
)

// Writer builds an archive. Long names are buffered: each appended entry's
// header and payload are written to an anonymous spool file (created with
// os.CreateTemp and unlinked immediately, kept alive only through its open
// file descriptor) so that, on Close, the string table — whose final size
// is only known once every name has been seen — can be written right after
// the magic, with the spooled entry bodies streamed out after it. This
// replaces the original's numbered-side-files-next-to-the-archive strategy,
// an implementation freedom spec.md §9 grants explicitly.
type Writer struct {
	f      *os.File
	spool  *os.File
	strtab stringTable
	closed bool
}

// Create truncates (or creates) path and writes the archive magic.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, mpkgerr.IO("open", path, err)
	}
	if _, err := f.WriteString(Magic); err != nil {
		f.Close()
		return nil, mpkgerr.IO("write", path, err)
	}

	spool, err := os.CreateTemp("", "mpkg-ar-spool-")
	if err != nil {
		f.Close()
		return nil, mpkgerr.IO("open", "spool", err)
	}
	name := spool.Name()
	if err := os.Remove(name); err != nil {
		spool.Close()
		f.Close()
		return nil, mpkgerr.IO("unlink", name, err)
	}

	return &Writer{f: f, spool: spool}, nil
}

// Append writes one entry's header followed by payload's bytes (read
// exactly e.Size of them for regular files and symlinks; payload may be
// nil for directories, FIFOs and other non-content kinds, whose Size must
// be 0 per the ArchiveEntry invariant in spec.md §3).
func (w *Writer) Append(e Entry, payload io.Reader) error {
	if e.Size < 0 {
		return mpkgerr.Programmer("ar: entry %q has negative size", e.Name)
	}

	var nameField string
	switch {
	case e.Name == stringTableName:
		return mpkgerr.Programmer("ar: entry name %q is reserved for the string table", e.Name)
	case needsTable(e.Name):
		off := w.strtab.register(e.Name)
		nameField = "/" + strconv.FormatInt(off, 10)
	default:
		nameField = e.Name + "/"
	}

	header, err := encodeHeader(nameField, e)
	if err != nil {
		return err
	}
	if _, err := w.spool.Write(header[:]); err != nil {
		return mpkgerr.IO("write", "spool", err)
	}

	if e.Size == 0 {
		return nil
	}
	if payload == nil {
		return mpkgerr.Programmer("ar: entry %q has size %d but no payload", e.Name, e.Size)
	}
	n, err := io.CopyN(w.spool, payload, e.Size)
	if err != nil {
		return mpkgerr.IO("write", "spool", err)
	}
	if n != e.Size {
		return mpkgerr.Format(e.Name, 0, "short payload: wrote %d of %d bytes", n, e.Size)
	}
	return nil
}

// Close finalizes the archive: the string table (if any names were
// registered) right after the magic, followed by every spooled entry.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer w.spool.Close()
	defer w.f.Close()

	if !w.strtab.empty() {
		payload := w.strtab.payload()
		header, err := encodeHeader(stringTableName, Entry{Size: int64(len(payload))})
		if err != nil {
			return err
		}
		if _, err := w.f.Write(header[:]); err != nil {
			return mpkgerr.IO("write", "archive", err)
		}
		if _, err := w.f.Write(payload); err != nil {
			return mpkgerr.IO("write", "archive", err)
		}
	}

	if _, err := w.spool.Seek(0, io.SeekStart); err != nil {
		return mpkgerr.IO("seek", "spool", err)
	}
	if _, err := io.Copy(w.f, w.spool); err != nil {
		return mpkgerr.IO("write", "archive", err)
	}
	return nil
}
