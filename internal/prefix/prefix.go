// Package prefix composes several raw-AST modules into one by qualifying
// every reference to a module-local binding with its owning module's
// name, the way a linker resolves one flat symbol table out of several
// compilation units without ever renaming anything the program itself
// can observe (unqualified local names still work inside their own
// module; only cross-module visibility requires the qualified form).
//
// Grounded on zion's prefix.cpp: a binding set names which identifiers
// are "ours" to rewrite, lambda/let bindings remove their own name from
// that set for the scope of their body (shadowing), and everything else
// not in the set passes through untouched. zion itself only ever prefixes
// a module against its own declarations, leaving cross-module resolution
// to an earlier import-qualification pass; zinfer has no import syntax of
// its own; Compose below plays that role, so the rename table it builds
// is keyed by each name's actual declaring module rather than by
// whichever module happens to be rewritten at the time.
package prefix

import (
	"sort"
	"strings"

	"github.com/ziontype/zinfer/internal/ast"
)

// Bindings is the set of names a module owns: its top-level
// declarations, its data constructors, and its type class methods.
type Bindings map[string]bool

// ModuleBindings collects every name mod declares at module scope.
func ModuleBindings(mod *ast.Module) Bindings {
	b := Bindings{}
	for _, d := range mod.Decls {
		b[d.Name.Name] = true
	}
	for _, td := range mod.TypeDecls {
		for _, c := range td.Ctors {
			b[c.Name.Name] = true
		}
	}
	for _, tc := range mod.TypeClasses {
		for name := range tc.Methods {
			b[name] = true
		}
	}
	return b
}

// Rename maps an unqualified bound name to its qualified form. Unlike a
// flat "pre" string, it lets each name carry its own owning module's
// prefix, which is what makes cross-module references resolve to the
// module that actually declared them rather than the module currently
// being rewritten.
type Rename map[string]string

// Qualify builds the Rename table for a single module: every name in
// bindings maps to pre+"."+name. Names already qualified (containing ".")
// are left out, the same guard prefix.cpp's string prefix() applies.
func Qualify(bindings Bindings, pre string) Rename {
	out := make(Rename, len(bindings))
	for name := range bindings {
		if !strings.Contains(name, ".") {
			out[name] = pre + "." + name
		}
	}
	return out
}

func without(r Rename, name string) Rename {
	if _, ok := r[name]; !ok {
		return r
	}
	out := make(Rename, len(r))
	for k, v := range r {
		if k != name {
			out[k] = v
		}
	}
	return out
}

func subtract(r Rename, remove map[string]bool) Rename {
	if len(remove) == 0 {
		return r
	}
	out := make(Rename, len(r))
	for k, v := range r {
		if !remove[k] {
			out[k] = v
		}
	}
	return out
}

// Name qualifies name via rename; anything outside rename's domain is
// left alone.
func Name(rename Rename, name string) string {
	if q, ok := rename[name]; ok {
		return q
	}
	return name
}

// Ident qualifies an Identifier's Name, preserving its Pos.
func Ident(rename Rename, id ast.Identifier) ast.Identifier {
	return ast.Identifier{Name: Name(rename, id.Name), Loc: id.Loc}
}

// Expr rewrites every rename-owned free identifier in value to its
// qualified form, respecting the lexical scoping each node variant
// introduces.
func Expr(rename Rename, value ast.Expr) ast.Expr {
	switch v := value.(type) {
	case nil:
		return nil
	case *ast.Literal:
		return v
	case *ast.Var:
		return &ast.Var{ID: Ident(rename, v.ID), Loc: v.Loc}
	case *ast.Lambda:
		return &ast.Lambda{
			Param: v.Param,
			Body:  Expr(without(rename, v.Param.Name), v.Body),
			Loc:   v.Loc,
		}
	case *ast.Application:
		return &ast.Application{Fn: Expr(rename, v.Fn), Arg: Expr(rename, v.Arg), Loc: v.Loc}
	case *ast.Let:
		inner := without(rename, v.Name.Name)
		return &ast.Let{
			Name:  v.Name,
			Value: Expr(rename, v.Value),
			Body:  Expr(inner, v.Body),
			Loc:   v.Loc,
		}
	case *ast.Fix:
		return &ast.Fix{Name: v.Name, Body: Expr(without(rename, v.Name.Name), v.Body), Loc: v.Loc}
	case *ast.Conditional:
		return &ast.Conditional{
			Cond: Expr(rename, v.Cond),
			Then: Expr(rename, v.Then),
			Else: Expr(rename, v.Else),
			Loc:  v.Loc,
		}
	case *ast.Block:
		stmts := make([]ast.Expr, len(v.Statements))
		for i, s := range v.Statements {
			stmts[i] = Expr(rename, s)
		}
		return &ast.Block{Statements: stmts, Loc: v.Loc}
	case *ast.While:
		return &ast.While{Cond: Expr(rename, v.Cond), Body: Expr(rename, v.Body), Loc: v.Loc}
	case *ast.Break:
		return v
	case *ast.Continue:
		return v
	case *ast.Return:
		if v.Value == nil {
			return v
		}
		return &ast.Return{Value: Expr(rename, v.Value), Loc: v.Loc}
	case *ast.Tuple:
		elems := make([]ast.Expr, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = Expr(rename, e)
		}
		return &ast.Tuple{Elements: elems, Loc: v.Loc}
	case *ast.TupleDeref:
		return &ast.TupleDeref{Tuple: Expr(rename, v.Tuple), Index: v.Index, Loc: v.Loc}
	case *ast.As:
		return &ast.As{Value: Expr(rename, v.Value), Type: v.Type, Force: v.Force, Loc: v.Loc}
	case *ast.Match:
		arms := make([]ast.MatchArm, len(v.Arms))
		for i, arm := range v.Arms {
			newSymbols := map[string]bool{}
			pred := Predicate(rename, arm.Predicate, newSymbols)
			arms[i] = ast.MatchArm{
				Predicate: pred,
				Result:    Expr(subtract(rename, newSymbols), arm.Result),
			}
		}
		return &ast.Match{Scrutinee: Expr(rename, v.Scrutinee), Arms: arms, Loc: v.Loc}
	case *ast.Builtin:
		args := make([]ast.Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = Expr(rename, a)
		}
		return &ast.Builtin{Name: v.Name, Args: args, Loc: v.Loc}
	case *ast.Sizeof:
		return v
	case *ast.StaticPrint:
		return &ast.StaticPrint{Expr: Expr(rename, v.Expr), Loc: v.Loc}
	default:
		panic("prefix.Expr: unhandled expression node")
	}
}

// Predicate rewrites a pattern predicate, recording every name it binds
// into newSymbols so the caller can exclude them from its arm's result
// rewrite — mirroring prefix.cpp's new_symbols out-parameter.
func Predicate(rename Rename, pred ast.Predicate, newSymbols map[string]bool) ast.Predicate {
	switch p := pred.(type) {
	case *ast.Irrefutable:
		if p.Name != nil {
			newSymbols[p.Name.Name] = true
		}
		return p
	case *ast.TuplePredicate:
		if p.Name != nil {
			newSymbols[p.Name.Name] = true
		}
		parts := make([]ast.Predicate, len(p.Parts))
		for i, part := range p.Parts {
			parts[i] = Predicate(rename, part, newSymbols)
		}
		return &ast.TuplePredicate{Parts: parts, Name: p.Name, Loc: p.Loc}
	case *ast.CtorPredicate:
		if p.Name != nil {
			newSymbols[p.Name.Name] = true
		}
		parts := make([]ast.Predicate, len(p.Parts))
		for i, part := range p.Parts {
			parts[i] = Predicate(rename, part, newSymbols)
		}
		return &ast.CtorPredicate{Ctor: Ident(rename, p.Ctor), Parts: parts, Name: p.Name, Loc: p.Loc}
	case *ast.LiteralPredicate:
		return p
	default:
		panic("prefix.Predicate: unhandled predicate node")
	}
}

// Decl rewrites a single top-level binding.
func Decl(rename Rename, d *ast.Decl) *ast.Decl {
	return &ast.Decl{Name: Ident(rename, d.Name), Value: Expr(rename, d.Value), Loc: d.Loc}
}

// TypeDecl rewrites a data type's own identifier and its constructors'
// names; its parameters are type variables and are never qualified. The
// constructors are qualified here, not left to ctable, because
// ModuleBindings already counts them as module-owned names: every Var or
// CtorPredicate elsewhere that refers to one goes through the same
// rename table, so the constructor table built from the composed
// module's TypeDecls must see the identical qualified spelling.
func TypeDecl(rename Rename, td *ast.TypeDecl) *ast.TypeDecl {
	ctors := make([]ast.CtorDecl, len(td.Ctors))
	for i, c := range td.Ctors {
		ctors[i] = ast.CtorDecl{Name: Ident(rename, c.Name), Args: c.Args}
	}
	return &ast.TypeDecl{ID: Ident(rename, td.ID), Params: td.Params, Ctors: ctors, Loc: td.Loc}
}

// uppercaseOnly restricts a Rename to its type-level (capitalized)
// entries, mirroring prefix.cpp's only_uppercase_bindings: a type
// class's type parameter is lowercase and must never be qualified even
// though it shares the bindings set with term-level names.
func uppercaseOnly(rename Rename) Rename {
	out := Rename{}
	for name, q := range rename {
		if len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z' {
			out[name] = q
		}
	}
	return out
}

// TypeClass rewrites a class declaration's own identifier and
// superclass references; method signatures are left as-is since they
// are resolved against the already-qualified class name.
func TypeClass(rename Rename, tc *ast.TypeClass) *ast.TypeClass {
	upper := uppercaseOnly(rename)
	supers := make([]ast.Identifier, len(tc.Superclasses))
	for i, s := range tc.Superclasses {
		supers[i] = Ident(upper, s)
	}
	return &ast.TypeClass{
		ID:           Ident(upper, tc.ID),
		Param:        tc.Param,
		Superclasses: supers,
		Methods:      tc.Methods,
		Loc:          tc.Loc,
	}
}

// Instance rewrites an instance's class reference and method bodies.
func Instance(rename Rename, inst *ast.Instance) *ast.Instance {
	upper := uppercaseOnly(rename)
	bound := make([]ast.Decl, len(inst.Bindings))
	for i, b := range inst.Bindings {
		bound[i] = *Decl(rename, &b)
	}
	return &ast.Instance{
		Class:    Ident(upper, inst.Class),
		TypeArgs: inst.TypeArgs,
		Where:    inst.Where,
		Bindings: bound,
		Loc:      inst.Loc,
	}
}

// Compose flattens several modules into one, qualifying every
// cross-module-visible name with its owning module's own name so a
// single flat declaration list can be handed to the rest of the
// pipeline — zion's module-linking step, generalized to resolve
// references across modules since zinfer has no import syntax of its
// own to have done that qualification already. mods is keyed by module
// name; order controls the composed module's declaration order (stable
// builds require it, so callers must supply a deterministic order
// rather than relying on map iteration). A name declared by more than
// one module is owned by whichever appears last in order.
func Compose(mods map[string]*ast.Module, order []string) *ast.Module {
	rename := Rename{}
	for _, name := range order {
		for k, v := range Qualify(ModuleBindings(mods[name]), name) {
			rename[k] = v
		}
	}

	composed := &ast.Module{Name: "main"}
	for _, name := range order {
		mod := mods[name]
		for _, d := range mod.Decls {
			composed.Decls = append(composed.Decls, Decl(rename, d))
		}
		for _, td := range mod.TypeDecls {
			composed.TypeDecls = append(composed.TypeDecls, TypeDecl(rename, td))
		}
		for _, tc := range mod.TypeClasses {
			composed.TypeClasses = append(composed.TypeClasses, TypeClass(rename, tc))
		}
		for _, inst := range mod.Instances {
			composed.Instances = append(composed.Instances, Instance(rename, inst))
		}
	}
	return composed
}

// SortedModuleNames returns the keys of mods in a stable order, the
// default order Compose should use when the caller has no import-order
// preference of its own.
func SortedModuleNames(mods map[string]*ast.Module) []string {
	names := make([]string, 0, len(mods))
	for name := range mods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
