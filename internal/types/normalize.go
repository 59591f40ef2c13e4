package types

import (
	"fmt"
	"strings"

	"github.com/ziontype/zinfer/internal/ident"
)

// NormalizeTypeName produces a canonical string representation of a
// ground type for use as a deterministic instance-registry key and in
// diagnostics. Type variables are not expected to appear; if one does
// (an internal-error condition) it is rendered with a leading
// underscore rather than panicking, so the caller's error message still
// points at something readable.
func NormalizeTypeName(t Type) string {
	if t == nil {
		return "<unknown>"
	}
	switch typ := t.(type) {
	case *TyId:
		return ident.Normalize(typ.Name)
	case *TyVar:
		return fmt.Sprintf("_%s", typ.Name)
	case *TyApp:
		args := make([]string, len(typ.Args))
		for i, a := range typ.Args {
			args[i] = NormalizeTypeName(a)
		}
		if len(args) == 0 {
			return ident.Normalize(typ.Operator)
		}
		return fmt.Sprintf("%s<%s>", ident.Normalize(typ.Operator), strings.Join(args, ","))
	case *TyLambda:
		return NormalizeTypeName(typ.Body)
	default:
		return t.String()
	}
}

// CanonKey produces a deterministic registry key "ClassName::TypeNF" used
// by the instance environment for coherence checking and lookup.
func CanonKey(className string, typ Type) string {
	return fmt.Sprintf("%s::%s", ident.Normalize(className), NormalizeTypeName(typ))
}

// IsGroundType reports whether t contains no free type variables.
func IsGroundType(t Type) bool {
	return len(t.FreeVars()) == 0
}
