// Package ident normalizes identifier text so two different Unicode
// encodings of the same name compare equal everywhere an identifier is
// used as a map key: data-constructor names, class names, and type
// names all pass through Normalize before they are stored in or looked
// up from a table, mirroring the teacher's own lexer-level use of
// golang.org/x/text/unicode/norm for source identifiers.
package ident

import "golang.org/x/text/unicode/norm"

// Normalize rewrites name to NFC (Normalization Form C), so a
// precomposed character (e.g. "é") and its decomposed spelling ("e"
// followed by a combining acute accent) hash and compare identically.
func Normalize(name string) string {
	return norm.NFC.String(name)
}
