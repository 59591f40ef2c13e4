package types

import (
	"fmt"
	"strings"
)

// TypeErrorKind identifies which unification or instance-resolution rule
// failed. These map onto the UNI/CLS error-code families.
type TypeErrorKind string

const (
	KindMismatchError         TypeErrorKind = "kind_mismatch"
	TypeMismatchError         TypeErrorKind = "type_mismatch"
	OccursCheckError          TypeErrorKind = "occurs_check"
	UnboundVariableError      TypeErrorKind = "unbound_variable"
	ArityMismatchError        TypeErrorKind = "arity_mismatch"
	NoInstanceError           TypeErrorKind = "no_instance"
	AmbiguousInstanceError    TypeErrorKind = "ambiguous_instance"
	DuplicateInstanceError    TypeErrorKind = "duplicate_instance"
	RemainingAmbiguousError   TypeErrorKind = "remaining_ambiguous"
)

// TypeCheckError is a detailed, position-carrying type error.
type TypeCheckError struct {
	Kind       TypeErrorKind
	Path       []string
	Position   string
	Expected   Type
	Actual     Type
	Message    string
	Suggestion string
}

func (e *TypeCheckError) Error() string {
	var parts []string
	if e.Position != "" {
		parts = append(parts, e.Position)
	}
	if len(e.Path) > 0 {
		parts = append(parts, fmt.Sprintf("at %s", strings.Join(e.Path, ".")))
	}
	parts = append(parts, e.Message)
	if e.Expected != nil && e.Actual != nil {
		parts = append(parts, fmt.Sprintf("\n  Expected: %s\n  Actual:   %s", e.Expected, e.Actual))
	}
	if e.Suggestion != "" {
		parts = append(parts, fmt.Sprintf("\n  Suggestion: %s", e.Suggestion))
	}
	return strings.Join(parts, ": ")
}

// NewKindMismatchError reports that a type operator was applied to the
// wrong number, or kind, of arguments.
func NewKindMismatchError(pos string, expected, actual int) *TypeCheckError {
	return &TypeCheckError{
		Kind:     KindMismatchError,
		Position: pos,
		Message:  fmt.Sprintf("kind mismatch: expected %d argument(s), got %d", expected, actual),
	}
}

// NewTypeMismatchError reports that two types could not be unified.
func NewTypeMismatchError(pos string, expected, actual Type) *TypeCheckError {
	return &TypeCheckError{
		Kind:     TypeMismatchError,
		Position: pos,
		Expected: expected,
		Actual:   actual,
		Message:  "type mismatch",
	}
}

// NewOccursCheckError reports that unifying v with t would construct an
// infinite type.
func NewOccursCheckError(pos string, v *TyVar, t Type) *TypeCheckError {
	return &TypeCheckError{
		Kind:       OccursCheckError,
		Position:   pos,
		Message:    fmt.Sprintf("infinite type: %s occurs in %s", v.Name, t),
		Suggestion: "this would create an infinite type; check for recursion without a base case",
	}
}

// NewUnboundVariableError reports a reference to an undeclared name.
func NewUnboundVariableError(pos, name string) *TypeCheckError {
	return &TypeCheckError{
		Kind:     UnboundVariableError,
		Position: pos,
		Message:  fmt.Sprintf("unbound variable: %s", name),
	}
}

// NewArityMismatchError reports a constructor or function applied to the
// wrong number of arguments.
func NewArityMismatchError(pos string, expected, actual int) *TypeCheckError {
	return &TypeCheckError{
		Kind:     ArityMismatchError,
		Position: pos,
		Message:  fmt.Sprintf("expected %d argument(s), got %d", expected, actual),
	}
}

// NewNoInstanceError reports that no instance of className exists for
// headType, and no superclass derivation could supply one.
func NewNoInstanceError(pos, className string, headType Type) *TypeCheckError {
	suggestion := fmt.Sprintf("%s needs an instance of %s", headType, className)
	switch className {
	case "Num":
		suggestion = fmt.Sprintf("%s must be a numeric type to use +, -, *, /", headType)
	case "Ord":
		suggestion = fmt.Sprintf("%s must support ordering (<, >, <=, >=)", headType)
	case "Eq":
		suggestion = fmt.Sprintf("%s must support equality (==, /=)", headType)
	case "Show":
		suggestion = fmt.Sprintf("%s must be convertible to a string", headType)
	}
	return &TypeCheckError{
		Kind:       NoInstanceError,
		Position:   pos,
		Message:    fmt.Sprintf("no instance for %s %s", className, headType),
		Suggestion: suggestion,
	}
}

// NewAmbiguousInstanceError reports a predicate whose type variable was
// never resolved to a concrete head by the end of a declaration's
// generalization, with no applicable default.
func NewAmbiguousInstanceError(pos string, pred ClassPredicate) *TypeCheckError {
	return &TypeCheckError{
		Kind:     AmbiguousInstanceError,
		Position: pos,
		Message:  fmt.Sprintf("ambiguous type class constraint: %s", pred),
	}
}

// NewDuplicateInstanceError reports two instance declarations claiming
// coherence for the same class and head-constant tuple.
func NewDuplicateInstanceError(pos, className, key string) *TypeCheckError {
	return &TypeCheckError{
		Kind:     DuplicateInstanceError,
		Position: pos,
		Message:  fmt.Sprintf("duplicate instance: %s %s already declared", className, key),
	}
}

// NewRemainingAmbiguousError reports a predicate left over after
// generalization whose variable does not appear in the generalized type,
// meaning no call site can ever determine which instance to use.
func NewRemainingAmbiguousError(pos string, pred ClassPredicate) *TypeCheckError {
	return &TypeCheckError{
		Kind:     RemainingAmbiguousError,
		Position: pos,
		Message:  fmt.Sprintf("ambiguous constraint %s: its variable does not appear in the generalized type", pred),
	}
}

// ErrorList aggregates multiple type errors collected while a declaration
// group is processed under the try/recover-per-declaration discipline.
type ErrorList []*TypeCheckError

func (e ErrorList) Error() string {
	if len(e) == 0 {
		return "no errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	parts := []string{fmt.Sprintf("%d type errors:", len(e))}
	for i, err := range e {
		parts = append(parts, fmt.Sprintf("\n[%d] %s", i+1, err.Error()))
	}
	return strings.Join(parts, "\n")
}
