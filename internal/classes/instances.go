// Package classes implements the type-class/instance resolver: a
// coherence-checked instance registry plus resolution with superclass
// derivation, deferral on free variables, and ambiguity detection.
package classes

import (
	"fmt"

	"github.com/ziontype/zinfer/internal/ast"
	zerrors "github.com/ziontype/zinfer/internal/errors"
	"github.com/ziontype/zinfer/internal/types"
)

// Instance is a single class-instance declaration: an implementation of
// ClassName at the head type HeadType, carrying whatever superclass
// predicates it requires of its own type arguments.
type Instance struct {
	ClassName string
	HeadType  types.Type
	Where     []types.ClassPredicate
	Methods   map[string]ast.Identifier // method name -> implementation decl
	Super     []string                  // superclasses this instance also discharges
}

// Registry is the coherence-checked set of instances in scope, plus any
// default head types registered for otherwise-ambiguous predicates (e.g.
// defaulting an unconstrained Num literal to Int).
type Registry struct {
	instances map[string]*Instance
	defaults  map[string]types.Type
}

// NewRegistry creates an empty instance registry.
func NewRegistry() *Registry {
	return &Registry{
		instances: make(map[string]*Instance),
		defaults:  make(map[string]types.Type),
	}
}

// Add inserts inst, returning a CLS003 report if an instance for the same
// class+head-type tuple already exists — the coherence property that
// there is at most one instance per (class, head constant tuple).
func (r *Registry) Add(inst *Instance, loc ast.Pos) error {
	key := types.CanonKey(inst.ClassName, inst.HeadType)
	if existing, ok := r.instances[key]; ok {
		_ = existing
		rep := zerrors.New(zerrors.CLS003, loc, fmt.Sprintf("duplicate instance: %s %s", inst.ClassName, inst.HeadType))
		return zerrors.Wrap(rep)
	}
	r.instances[key] = inst
	return nil
}

// SetDefault registers the type to fall back to when a predicate on
// className is never resolved to a concrete head via unification alone
// (numeric literal defaulting).
func (r *Registry) SetDefault(className string, t types.Type) {
	r.defaults[className] = t
}

// Default returns the registered default for className, or nil.
func (r *Registry) Default(className string) types.Type {
	return r.defaults[className]
}

// Lookup resolves a predicate's instance by class name and head type.
// Direct hits are returned first; failing that, Eq is derived from an Ord
// instance on the same head type (the one built-in superclass
// derivation), matching eq(x,y) = ¬lt(x,y) ∧ ¬lt(y,x).
func (r *Registry) Lookup(className string, head types.Type, loc ast.Pos) (*Instance, error) {
	key := types.CanonKey(className, head)
	if inst, ok := r.instances[key]; ok {
		return inst, nil
	}
	if className == "Eq" {
		if ord, ok := r.instances[types.CanonKey("Ord", head)]; ok {
			return deriveEqFromOrd(ord), nil
		}
	}
	rep := zerrors.New(zerrors.CLS001, loc, fmt.Sprintf("no instance for %s %s", className, head))
	return nil, zerrors.Wrap(rep)
}

func deriveEqFromOrd(ord *Instance) *Instance {
	return &Instance{
		ClassName: "Eq",
		HeadType:  ord.HeadType,
		Methods:   map[string]ast.Identifier{},
	}
}

// Resolve discharges a single predicate against the registry. If the
// predicate's lead type argument is still a variable (not yet unified to
// a concrete head), resolution is deferred: Resolve returns ok=false with
// no error, and the caller must retry once more of the surrounding
// declaration has been solved. If every variable in the owning scheme
// never becomes concrete, the caller reports CLS002/CLS004 itself once
// generalization has finished (Resolve cannot tell ambiguous-forever
// apart from not-yet-solved on its own).
func (r *Registry) Resolve(pred types.ClassPredicate, loc ast.Pos) (inst *Instance, ok bool, err error) {
	if len(pred.Args) == 0 {
		return nil, false, fmt.Errorf("class predicate %s has no type argument", pred.ClassName)
	}
	head := pred.Args[0]
	if _, isVar := head.(*types.TyVar); isVar {
		return nil, false, nil
	}
	inst, lookupErr := r.Lookup(pred.ClassName, head, loc)
	if lookupErr != nil {
		return nil, false, lookupErr
	}
	return inst, true, nil
}

// LoadBuiltins populates r with the standard Num/Eq/Ord/Show instances
// for the primitive types, the same way a prelude import would.
func LoadBuiltins() *Registry {
	r := NewRegistry()
	must := func(inst *Instance) {
		if err := r.Add(inst, ast.Pos{}); err != nil {
			panic(fmt.Sprintf("builtin instance conflict: %v", err))
		}
	}

	must(&Instance{ClassName: "Num", HeadType: types.TyInt})
	must(&Instance{ClassName: "Num", HeadType: types.TyFloat})
	must(&Instance{ClassName: "Eq", HeadType: types.TyInt})
	must(&Instance{ClassName: "Eq", HeadType: types.TyFloat})
	must(&Instance{ClassName: "Eq", HeadType: types.TyString})
	must(&Instance{ClassName: "Eq", HeadType: types.TyBool})
	must(&Instance{ClassName: "Ord", HeadType: types.TyInt, Super: []string{"Eq"}})
	must(&Instance{ClassName: "Ord", HeadType: types.TyFloat, Super: []string{"Eq"}})
	must(&Instance{ClassName: "Ord", HeadType: types.TyString, Super: []string{"Eq"}})
	must(&Instance{ClassName: "Show", HeadType: types.TyInt})
	must(&Instance{ClassName: "Show", HeadType: types.TyFloat})
	must(&Instance{ClassName: "Show", HeadType: types.TyString})
	must(&Instance{ClassName: "Show", HeadType: types.TyBool})

	r.SetDefault("Num", types.TyInt)
	return r
}
