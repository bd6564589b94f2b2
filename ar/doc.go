// Package ar reads and writes the SVR4-style archive format mpkg uses to
// carry a package's files between the repository and an installed root:
// an 8-byte magic, a stream of fixed 60-byte headers each immediately
// followed by payload bytes (no even-offset padding — this is a
// deliberate deviation from POSIX ar; interop with system ar tooling is
// out of scope), and an optional "//" string-table entry for names longer
// than 15 bytes or containing a slash.
//
// The Writer and Reader each own a single positional cursor and must not
// be used from more than one call site at a time.
package ar
