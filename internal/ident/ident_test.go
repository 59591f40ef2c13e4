package ident

import "testing"

func TestNormalizeUnifiesComposedAndDecomposedForms(t *testing.T) {
	composed := "Café"   // NFC: e-acute as a single code point
	decomposed := "Café" // NFD: e followed by a combining acute accent
	if composed == decomposed {
		t.Fatalf("test fixture error: composed and decomposed forms are byte-identical")
	}
	if Normalize(composed) != Normalize(decomposed) {
		t.Fatalf("expected composed and decomposed spellings to normalize equal, got %q vs %q",
			Normalize(composed), Normalize(decomposed))
	}
}

func TestNormalizeIsIdempotentOnPlainASCII(t *testing.T) {
	if Normalize("Option") != "Option" {
		t.Fatalf("expected plain ASCII identifiers to pass through unchanged")
	}
}
