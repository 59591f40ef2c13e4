// Package pipeline is the per-declaration driver that wires the
// constraint generator, solver, class/instance resolver and
// generalizer together: declaration collection (types, then classes,
// then instances, then values, per SPEC_FULL.md's phase_scope_setup
// ordering) followed by a try/recover loop over the value declarations
// so one failing declaration does not stop every other declaration in
// the module from being checked - it is poisoned with an opaque scheme
// and the pipeline moves on, collecting every Report along the way
// instead of aborting at the first one.
package pipeline

import (
	"fmt"

	"github.com/ziontype/zinfer/internal/ast"
	"github.com/ziontype/zinfer/internal/classes"
	"github.com/ziontype/zinfer/internal/ctable"
	zerrors "github.com/ziontype/zinfer/internal/errors"
	"github.com/ziontype/zinfer/internal/fresh"
	"github.com/ziontype/zinfer/internal/infer"
	"github.com/ziontype/zinfer/internal/solve"
	"github.com/ziontype/zinfer/internal/types"
)

// TypeResolver resolves an opaque ast type expression into a concrete
// types.Type; the same function infer.Generator and ctable.AddTypeDecl
// both need, given its own name here so callers never have to import
// infer just for the type.
type TypeResolver = infer.TypeResolver

// Result is everything mono.NewTranslator needs to monomorphize the
// checked module, plus every diagnostic collected while checking it.
type Result struct {
	Ctors   *ctable.Table
	Classes *classes.Registry
	Decls   map[string]ast.Expr
	Schemes map[string]*types.Scheme
	BaseEnv *types.Env
	Fresh   *fresh.Source
	Reports []*zerrors.Report
}

// poisonScheme stands in for a declaration whose own inference failed,
// so anything elsewhere in the module that refers to it still
// type-checks against something rather than cascading a second,
// unrelated error on top of the first one.
func poisonScheme() *types.Scheme {
	return &types.Scheme{
		Vars: []string{"_poisoned_a", "_poisoned_b"},
		Type: types.Arrow(&types.TyVar{Name: "_poisoned_a"}, &types.TyVar{Name: "_poisoned_b"}),
	}
}

func (r *Result) report(rep *zerrors.Report) {
	r.Reports = append(r.Reports, rep)
}

func (r *Result) reportErr(phase string, err error) {
	if rep, ok := zerrors.AsReport(err); ok {
		r.report(rep)
		return
	}
	r.report(zerrors.NewGeneric(phase, err))
}

// Run type-checks mod - a single flat module, already composed by
// internal/prefix if it originated from more than one source module -
// end to end. Declaration collection runs in a fixed order: data types
// and their constructors populate Ctors first, so that a value
// declaration or an instance method appearing anywhere in the module
// can already look up a constructor or resolve an instance's head type
// against a fully registered constructor table; class instances are
// added to the registry next, so the first value declaration's class
// predicates have something to resolve against; value declarations are
// checked last, in declaration order. defaults overrides (or adds to)
// the builtin defaulting table before any declaration is checked, so a
// project's zinfer.yaml can change what an unresolved predicate
// defaults to (Num -> Float instead of Num -> Int, say) without
// touching LoadBuiltins itself; pass nil to accept the plain builtins.
// builtins registers each entry under "__builtin_"+name in BaseEnv
// before any declaration is checked, so an *ast.Builtin node referring
// to that name resolves; pass nil (the NO_BUILTINS behavior) to
// register none.
func Run(mod *ast.Module, resolve TypeResolver, defaults map[string]types.Type, builtins map[string]*types.Scheme) *Result {
	r := &Result{
		Ctors:   ctable.New(),
		Decls:   map[string]ast.Expr{},
		Schemes: map[string]*types.Scheme{},
		Fresh:   fresh.NewSource("t"),
	}

	for _, td := range mod.TypeDecls {
		if err := r.Ctors.AddTypeDecl(td, resolve); err != nil {
			r.reportErr("scope", err)
		}
	}

	r.Classes = classes.LoadBuiltins()
	for className, t := range defaults {
		r.Classes.SetDefault(className, t)
	}
	r.BaseEnv = r.Ctors.ExtendEnv(types.NewEnv())
	for name, scheme := range builtins {
		r.BaseEnv = r.BaseEnv.Extend("__builtin_"+name, scheme)
	}

	for _, tc := range mod.TypeClasses {
		for name, sig := range tc.Methods {
			scheme, ok := sig.(*types.Scheme)
			if !ok {
				r.report(zerrors.New(zerrors.SCP003, tc.Loc,
					fmt.Sprintf("class %s: method %s has no resolved scheme", tc.ID.Name, name)))
				continue
			}
			r.BaseEnv = r.BaseEnv.Extend(name, scheme)
		}
	}

	gen := infer.NewGenerator(r.Ctors, r.Fresh, resolve)

	for _, inst := range mod.Instances {
		r.registerInstance(gen, resolve, inst)
	}

	for _, d := range mod.Decls {
		scheme, err := r.checkDecl(gen, d.Value, d.Loc)
		if err != nil {
			r.reportErr("infer", err)
			scheme = poisonScheme()
		}
		r.Decls[d.Name.Name] = d.Value
		r.Schemes[d.Name.Name] = scheme
		r.BaseEnv = r.BaseEnv.Extend(d.Name.Name, scheme)
	}
	return r
}

// registerInstance elaborates one instance declaration: each method
// implementation gets its own global, class-and-head-mangled name
// (distinct instances of the same class both implementing "show" must
// not collide the way two plain top-level "show" decls would), is
// type-checked the same way a value declaration is, and the resulting
// classes.Instance is added to the registry for Resolve to find later.
func (r *Result) registerInstance(gen *infer.Generator, resolve TypeResolver, inst *ast.Instance) {
	if len(inst.TypeArgs) == 0 {
		r.report(zerrors.New(zerrors.SCP003, inst.Loc, fmt.Sprintf("instance %s has no type argument", inst.Class.Name)))
		return
	}
	headType := resolve(inst.TypeArgs[0])
	mangledBase := fmt.Sprintf("%s_%s", inst.Class.Name, types.NormalizeTypeName(headType))

	where := make([]types.ClassPredicate, 0, len(inst.Where))
	for _, w := range inst.Where {
		switch p := w.(type) {
		case types.ClassPredicate:
			where = append(where, p)
		case *types.ClassPredicate:
			where = append(where, *p)
		}
	}

	methods := map[string]ast.Identifier{}
	for _, b := range inst.Bindings {
		implName := mangledBase + "_" + b.Name.Name
		scheme, err := r.checkDecl(gen, b.Value, b.Loc)
		if err != nil {
			r.reportErr("infer", err)
			scheme = poisonScheme()
		}
		r.Decls[implName] = b.Value
		r.Schemes[implName] = scheme
		methods[b.Name.Name] = ast.Identifier{Name: implName, Loc: b.Loc}
	}

	domainInst := &classes.Instance{
		ClassName: inst.Class.Name,
		HeadType:  headType,
		Where:     where,
		Methods:   methods,
	}
	if err := r.Classes.Add(domainInst, inst.Loc); err != nil {
		r.reportErr("class", err)
	}
}

// checkDecl infers, solves, resolves leftover class predicates against
// the registry (defaulting any that are still only constrained by a
// free variable and have a registered default), and generalizes a
// single declaration's value. Any predicate whose variables end up
// neither quantified nor free in the generalized type is reported as
// CLS004: generalization silently drops it, per types.Generalize's own
// contract, so this is the one place that can still catch it.
func (r *Result) checkDecl(gen *infer.Generator, value ast.Expr, loc ast.Pos) (*types.Scheme, error) {
	ty, cs, err := gen.Infer(r.BaseEnv, value)
	if err != nil {
		return nil, err
	}
	result, err := solve.Solve(cs)
	if err != nil {
		return nil, err
	}
	solvedTy := ty.Substitute(result.Sub)
	genEnv := r.BaseEnv.ApplySubst(result.Sub)

	remaining, defaultSub := r.resolvePredicates(result.Predicates, loc)
	if len(defaultSub) > 0 {
		solvedTy = solvedTy.Substitute(defaultSub)
		genEnv = genEnv.ApplySubst(defaultSub)
		for i, p := range remaining {
			remaining[i] = p.Substitute(defaultSub)
		}
	}

	scheme := types.Generalize(genEnv, solvedTy, remaining)
	r.checkNoDroppedPredicates(remaining, scheme, loc)
	return scheme, nil
}

// resolvePredicates discharges every predicate that already resolves
// directly against the registry, defaults any predicate still headed
// by a free variable that has a registered default (numeric literal
// defaulting), and returns whatever predicates are left to be carried
// into the scheme, plus the substitution the defaulting pass produced.
func (r *Result) resolvePredicates(preds []types.ClassPredicate, loc ast.Pos) ([]types.ClassPredicate, types.Substitution) {
	var remaining []types.ClassPredicate
	for _, p := range preds {
		_, ok, err := r.Classes.Resolve(p, loc)
		if err != nil {
			r.reportErr("class", err)
			continue
		}
		if !ok {
			remaining = append(remaining, p)
		}
	}

	sub := types.Substitution{}
	var stillOpen []types.ClassPredicate
	for _, p := range remaining {
		if len(p.Args) == 0 {
			stillOpen = append(stillOpen, p)
			continue
		}
		tv, isVar := p.Args[0].(*types.TyVar)
		def := r.Classes.Default(p.ClassName)
		if isVar && def != nil {
			sub[tv.Name] = def
			continue
		}
		stillOpen = append(stillOpen, p)
	}
	if len(sub) == 0 {
		return stillOpen, sub
	}

	// Defaulting one predicate's variable can make a sibling predicate
	// on the same variable concretely resolvable; give the registry one
	// more pass now that the substitution is known.
	var final []types.ClassPredicate
	for _, p := range stillOpen {
		sp := p.Substitute(sub)
		_, ok, err := r.Classes.Resolve(sp, loc)
		if err != nil {
			r.reportErr("class", err)
			continue
		}
		if !ok {
			final = append(final, sp)
		}
	}
	return final, sub
}

// checkNoDroppedPredicates reports CLS004 for every predicate
// Generalize silently left out of scheme.Predicates: that only happens
// when none of the predicate's variables end up quantified or free in
// the declaration's own type, i.e. it is ambiguous and nothing upstream
// (direct resolution, defaulting) ever discharged it.
func (r *Result) checkNoDroppedPredicates(preds []types.ClassPredicate, scheme *types.Scheme, loc ast.Pos) {
	for _, p := range preds {
		kept := false
		for _, sp := range scheme.Predicates {
			if sp.Equals(p) {
				kept = true
				break
			}
		}
		if !kept {
			r.report(zerrors.New(zerrors.CLS004, loc,
				fmt.Sprintf("ambiguous constraint %s: no instance, no default, and its variable escapes generalization", p)))
		}
	}
}
