package ar

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func mustWrite(t *testing.T, path string, entries []Entry, payloads [][]byte) {
	t.Helper()
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i, e := range entries {
		var r io.Reader
		if payloads[i] != nil {
			r = bytes.NewReader(payloads[i])
		}
		if err := w.Append(e, r); err != nil {
			t.Fatalf("Append(%s): %v", e.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestShortNameRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.a")
	mtime := time.Unix(1000000000, 0)
	entry := Entry{Name: "hello", ModTime: mtime, Uid: 0, Gid: 0, Mode: unix.S_IFREG | 0644, Size: 5}

	mustWrite(t, path, []Entry{entry}, [][]byte{[]byte("world")})

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	e, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if e.Name != "hello" || e.Size != 5 {
		t.Fatalf("got %+v", e)
	}
	payload, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(payload) != "world" {
		t.Fatalf("payload = %q", payload)
	}
	if !e.ModTime.Equal(mtime) {
		t.Fatalf("mtime = %v, want %v", e.ModTime, mtime)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestLongNameRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.a")
	name := "a_very_long_filename_indeed.txt"
	entry := Entry{Name: name, ModTime: time.Unix(1, 0), Mode: unix.S_IFREG | 0644, Size: 3}

	mustWrite(t, path, []Entry{entry}, [][]byte{[]byte("abc")})

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Immediately after magic + string-table header (60 bytes) must come
	// the table payload "<name>/\n".
	tablePayloadStart := len(Magic) + headerSize
	want := name + "/\n"
	got := string(raw[tablePayloadStart : tablePayloadStart+len(want)])
	if got != want {
		t.Fatalf("string table payload = %q, want %q", got, want)
	}
	// The entry header right after the table must encode "/0".
	entryHeaderStart := tablePayloadStart + len(want)
	entryName := string(bytes.TrimRight(raw[entryHeaderStart:entryHeaderStart+fieldName], " "))
	if entryName != "/0" {
		t.Fatalf("entry name field = %q, want /0", entryName)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	e, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	if e.Name != name {
		t.Fatalf("Name = %q, want %q", e.Name, name)
	}
}

func TestSymlink(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.a")
	target := "target/inner"
	entry := Entry{Name: "link", ModTime: time.Unix(42, 0), Mode: unix.S_IFLNK | 0777, Size: int64(len(target))}
	mustWrite(t, path, []Entry{entry}, [][]byte{[]byte(target)})

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	e, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	destRoot := t.TempDir()
	if err := os.MkdirAll(filepath.Join(destRoot, "target"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := r.Extract(e, destRoot); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	got, err := os.Readlink(filepath.Join(destRoot, "link"))
	if err != nil {
		t.Fatal(err)
	}
	if got != target {
		t.Fatalf("Readlink = %q, want %q", got, target)
	}
}

func TestDirectoryMtimePreservation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.a")

	dirMtime := time.Unix(1000, 0)
	fileMtime := time.Unix(2000, 0)
	entries := []Entry{
		{Name: "d", ModTime: dirMtime, Mode: unix.S_IFDIR | 0755},
		{Name: "d/f", ModTime: fileMtime, Mode: unix.S_IFREG | 0644, Size: 1},
	}
	mustWrite(t, path, entries, [][]byte{nil, []byte("x")})

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	destRoot := t.TempDir()
	if err := r.ExtractAll(destRoot); err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}

	dfi, err := os.Lstat(filepath.Join(destRoot, "d"))
	if err != nil {
		t.Fatal(err)
	}
	if !dfi.ModTime().Equal(dirMtime) {
		t.Fatalf("dir mtime = %v, want %v", dfi.ModTime(), dirMtime)
	}
	ffi, err := os.Lstat(filepath.Join(destRoot, "d/f"))
	if err != nil {
		t.Fatal(err)
	}
	if !ffi.ModTime().Equal(fileMtime) {
		t.Fatalf("file mtime = %v, want %v", ffi.ModTime(), fileMtime)
	}
}

func TestEmptyArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.a")
	mustWrite(t, path, nil, nil)

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF on empty archive, got %v", err)
	}
}

func TestBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.a")
	if err := os.WriteFile(path, []byte("not an archive"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestNameExactly15BytesStaysShort(t *testing.T) {
	name := "123456789012345" // 15 bytes, no slash
	if needsTable(name) {
		t.Fatalf("%q (len %d) should fit the short-name slot", name, len(name))
	}
	if !needsTable(name + "6") {
		t.Fatalf("16-byte name should require the string table")
	}
	if !needsTable("a/b") {
		t.Fatalf("slashed name should require the string table")
	}
}
