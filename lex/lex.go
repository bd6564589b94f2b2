// Package lex is the small line-tokenizer shared by manifest and catalog
// (spec.md §9: "a small line-tokenizer helper taking a whitespace set").
package lex

import "strings"

// whitespace mirrors the original source's WS macro: tab, newline,
// vertical tab, form feed, carriage return, space.
const whitespace = "\t\n\v\f\r "

// Fields splits line on any byte in whitespace, dropping empty fields —
// the Go equivalent of the original's repeated strsep(&line, WS) loop.
func Fields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return strings.ContainsRune(whitespace, r)
	})
}

// IsComment reports whether the first token on the line starts with '#'.
func IsComment(fields []string) bool {
	return len(fields) > 0 && strings.HasPrefix(fields[0], "#")
}
