// Package types implements the type-expression algebra, substitution,
// unification, generalization, and class-instance resolution at the core
// of the inference pipeline.
//
// The type-expression AST is a closed sum of four variants: TyId (a
// nullary constant, e.g. Int), TyVar (a variable, optionally carrying
// class predicates), TyApp (operator application — arrow, product,
// pointer, ref, maybe and class-predicate types are all encoded as
// applications of a named operator), and TyLambda (a parameterized type
// that beta-reduces when applied). There is deliberately no fifth
// variant; every compound shape in the source language is built from
// these four through convention, the same way the original had a single
// type_t discriminated union.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the interface every type-expression variant satisfies.
type Type interface {
	fmt.Stringer
	Equals(Type) bool
	Substitute(Substitution) Type
	FreeVars() map[string]bool
	typeNode()
}

// Substitution maps type-variable names to their replacement type.
// Composition is left-biased: ComposeSubs(s2, s1) applies s1 first, then
// s2, matching function composition order (s2 ∘ s1).
type Substitution map[string]Type

// ComposeSubs returns s2 ∘ s1: applying the result to a type is the same
// as applying s1 then s2.
func ComposeSubs(s2, s1 Substitution) Substitution {
	result := make(Substitution, len(s1)+len(s2))
	for k, v := range s1 {
		result[k] = v.Substitute(s2)
	}
	for k, v := range s2 {
		if _, ok := result[k]; !ok {
			result[k] = v
		}
	}
	return result
}

// ClassPredicate is a single type-class constraint "ClassName type-args".
// It is attached to TyVar values that are constrained, and collected
// separately alongside a Scheme's quantified variables.
type ClassPredicate struct {
	ClassName string
	Args      []Type
}

func (p ClassPredicate) String() string {
	if len(p.Args) == 0 {
		return p.ClassName
	}
	args := make([]string, len(p.Args))
	for i, a := range p.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s %s", p.ClassName, strings.Join(args, " "))
}

func (p ClassPredicate) Equals(other ClassPredicate) bool {
	if p.ClassName != other.ClassName || len(p.Args) != len(other.Args) {
		return false
	}
	for i := range p.Args {
		if !p.Args[i].Equals(other.Args[i]) {
			return false
		}
	}
	return true
}

func (p ClassPredicate) Substitute(s Substitution) ClassPredicate {
	args := make([]Type, len(p.Args))
	for i, a := range p.Args {
		args[i] = a.Substitute(s)
	}
	return ClassPredicate{ClassName: p.ClassName, Args: args}
}

func (p ClassPredicate) FreeVars() map[string]bool {
	vars := map[string]bool{}
	for _, a := range p.Args {
		for v := range a.FreeVars() {
			vars[v] = true
		}
	}
	return vars
}

// TyId is a nullary type constant such as Int, Bool, or a user-declared
// data type's head constructor (e.g. "Maybe", "List").
type TyId struct {
	Name string
}

func (t *TyId) typeNode()   {}
func (t *TyId) String() string { return t.Name }

func (t *TyId) Equals(other Type) bool {
	o, ok := other.(*TyId)
	return ok && t.Name == o.Name
}

func (t *TyId) Substitute(Substitution) Type { return t }

func (t *TyId) FreeVars() map[string]bool { return map[string]bool{} }

// TyVar is a type variable. Predicates carries any class constraints
// currently known to apply to it; unification propagates predicates onto
// whichever variable the variable resolves to (see attachPredicates for
// the concrete-type case).
type TyVar struct {
	Name       string
	Predicates []ClassPredicate
}

func (t *TyVar) typeNode() {}

func (t *TyVar) String() string {
	if len(t.Predicates) == 0 {
		return t.Name
	}
	preds := make([]string, len(t.Predicates))
	for i, p := range t.Predicates {
		preds[i] = p.String()
	}
	return fmt.Sprintf("%s{%s}", t.Name, strings.Join(preds, ", "))
}

func (t *TyVar) Equals(other Type) bool {
	o, ok := other.(*TyVar)
	return ok && t.Name == o.Name
}

func (t *TyVar) Substitute(s Substitution) Type {
	if repl, ok := s[t.Name]; ok {
		if len(t.Predicates) == 0 {
			return repl
		}
		return attachPredicates(repl, t.Predicates, s)
	}
	if len(t.Predicates) == 0 {
		return t
	}
	preds := make([]ClassPredicate, len(t.Predicates))
	for i, p := range t.Predicates {
		preds[i] = p.Substitute(s)
	}
	return &TyVar{Name: t.Name, Predicates: preds}
}

// attachPredicates propagates predicates owed by a variable onto the type
// it was unified with. When that type is itself a variable the predicate
// is simply merged in; when it is a concrete type, repl is returned
// unchanged and the predicates are dropped: no resolution obligation is
// recorded here.
func attachPredicates(repl Type, preds []ClassPredicate, s Substitution) Type {
	substituted := make([]ClassPredicate, len(preds))
	for i, p := range preds {
		substituted[i] = p.Substitute(s)
	}
	if v, ok := repl.(*TyVar); ok {
		merged := append(append([]ClassPredicate{}, v.Predicates...), substituted...)
		return &TyVar{Name: v.Name, Predicates: dedupPredicates(merged)}
	}
	return repl
}

func dedupPredicates(preds []ClassPredicate) []ClassPredicate {
	var out []ClassPredicate
	for _, p := range preds {
		dup := false
		for _, q := range out {
			if p.Equals(q) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

func (t *TyVar) FreeVars() map[string]bool {
	vars := map[string]bool{t.Name: true}
	for _, p := range t.Predicates {
		for v := range p.FreeVars() {
			vars[v] = true
		}
	}
	return vars
}

// TyApp is application of a named type operator to zero or more argument
// types. Arrow, tuple, pointer, ref, and maybe types are all TyApp values
// over the conventional operator names below; there is no dedicated
// function/tuple/pointer node in the type-expression AST.
type TyApp struct {
	Operator string
	Args     []Type
}

// Conventional operator names used to encode compound types as TyApp.
const (
	OpArrow   = "->"   // TyApp{"->", [param, result]}
	OpTuple   = "(,)"  // TyApp{"(,)", elements...}
	OpPointer = "Ptr"  // TyApp{"Ptr", [pointee]}
	OpRef     = "Ref"  // TyApp{"Ref", [pointee]}
	OpMaybe   = "Maybe" // TyApp{"Maybe", [value]}
)

func (t *TyApp) typeNode() {}

func (t *TyApp) String() string {
	switch t.Operator {
	case OpArrow:
		if len(t.Args) == 2 {
			return fmt.Sprintf("(%s -> %s)", t.Args[0], t.Args[1])
		}
	case OpTuple:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	if len(args) == 0 {
		return t.Operator
	}
	return fmt.Sprintf("%s[%s]", t.Operator, strings.Join(args, ", "))
}

func (t *TyApp) Equals(other Type) bool {
	o, ok := other.(*TyApp)
	if !ok || t.Operator != o.Operator || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equals(o.Args[i]) {
			return false
		}
	}
	return true
}

func (t *TyApp) Substitute(s Substitution) Type {
	args := make([]Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Substitute(s)
	}
	return &TyApp{Operator: t.Operator, Args: args}
}

func (t *TyApp) FreeVars() map[string]bool {
	vars := map[string]bool{}
	for _, a := range t.Args {
		for v := range a.FreeVars() {
			vars[v] = true
		}
	}
	return vars
}

// TyLambda is a parameterized type (a type-level function). It only ever
// appears as a data type's definition head; it is beta-reduced by
// Apply/EvalApp when applied to arguments, mirroring the original's
// type_lambda_t handling in type_eval.cpp. An unapplied TyLambda that
// reaches Unify is unified only with another TyLambda of the same arity.
type TyLambda struct {
	Params []string
	Body   Type
}

func (t *TyLambda) typeNode()    {}
func (t *TyLambda) String() string {
	return fmt.Sprintf("\\%s -> %s", strings.Join(t.Params, " "), t.Body)
}

func (t *TyLambda) Equals(other Type) bool {
	o, ok := other.(*TyLambda)
	if !ok || len(t.Params) != len(o.Params) {
		return false
	}
	return t.Body.Equals(o.Body)
}

func (t *TyLambda) Substitute(s Substitution) Type {
	inner := make(Substitution, len(s))
	for k, v := range s {
		skip := false
		for _, p := range t.Params {
			if p == k {
				skip = true
				break
			}
		}
		if !skip {
			inner[k] = v
		}
	}
	return &TyLambda{Params: t.Params, Body: t.Body.Substitute(inner)}
}

func (t *TyLambda) FreeVars() map[string]bool {
	vars := t.Body.FreeVars()
	for _, p := range t.Params {
		delete(vars, p)
	}
	return vars
}

// Apply beta-reduces a TyLambda against concrete argument types. It is an
// error (returned as nil, ok=false) to call with the wrong arity; callers
// are expected to have already checked arity against the declaring
// TypeDecl.
func (t *TyLambda) Apply(args []Type) (Type, bool) {
	if len(args) != len(t.Params) {
		return nil, false
	}
	s := make(Substitution, len(args))
	for i, p := range t.Params {
		s[p] = args[i]
	}
	return t.Body.Substitute(s), true
}

// Eval rebuilds t node by node. A TyApp's operator is a name, never a
// TyLambda, so no lambda is in applied position and Eval reduces nothing;
// a named type is not looked up or expanded. Beta-reduction happens only
// in EvalApp/Apply. This is the Go counterpart of type_eval.cpp's
// eval_core dispatch.
func Eval(t Type) Type {
	switch n := t.(type) {
	case *TyApp:
		args := make([]Type, len(n.Args))
		for i, a := range n.Args {
			args[i] = Eval(a)
		}
		return &TyApp{Operator: n.Operator, Args: args}
	case *TyLambda:
		return &TyLambda{Params: n.Params, Body: Eval(n.Body)}
	default:
		return t
	}
}

// EvalApp beta-reduces applying head (possibly a TyLambda) to args,
// re-wrapping as a TyApp when head is not itself a lambda.
func EvalApp(head Type, args []Type) Type {
	if lam, ok := head.(*TyLambda); ok {
		if reduced, ok := lam.Apply(args); ok {
			return Eval(reduced)
		}
	}
	if id, ok := head.(*TyId); ok {
		return &TyApp{Operator: id.Name, Args: args}
	}
	return &TyApp{Operator: head.String(), Args: args}
}

// Builtin nullary types.
var (
	TyInt    = &TyId{Name: "Int"}
	TyFloat  = &TyId{Name: "Float"}
	TyString = &TyId{Name: "String"}
	TyBool   = &TyId{Name: "Bool"}
	TyUnit   = &TyId{Name: "Unit"}
)

// Arrow builds the TyApp encoding of a function type from -> to.
func Arrow(from, to Type) Type {
	return &TyApp{Operator: OpArrow, Args: []Type{from, to}}
}

// TupleType builds the TyApp encoding of a fixed-arity product type.
func TupleType(elems ...Type) Type {
	return &TyApp{Operator: OpTuple, Args: elems}
}

// SortedFreeVars returns FreeVars() as a stably ordered slice, used
// wherever a deterministic traversal order matters (generalization,
// printing, error messages).
func SortedFreeVars(t Type) []string {
	vars := t.FreeVars()
	out := make([]string, 0, len(vars))
	for v := range vars {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
