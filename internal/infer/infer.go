// Package infer implements the constraint generator: a structural walk
// of the raw AST that produces a type for an expression together with
// the equality and class-predicate constraints the constraint solver
// must discharge for that type to be valid.
//
// let-bindings are the one place generation and solving interleave: a
// let value's constraints are solved immediately so the value's type can
// be generalized before the body is checked, exactly as plain
// Hindley-Milner requires. Everywhere else, constraints are only
// collected, never solved, matching the original's separation between
// infer.h's constraint production and the solver that consumes it.
package infer

import (
	"fmt"

	"github.com/ziontype/zinfer/internal/ast"
	"github.com/ziontype/zinfer/internal/ctable"
	zerrors "github.com/ziontype/zinfer/internal/errors"
	"github.com/ziontype/zinfer/internal/fresh"
	"github.com/ziontype/zinfer/internal/solve"
	"github.com/ziontype/zinfer/internal/types"
)

// TypeResolver turns an opaque ast type-expression (the Type field of
// ast.As/ast.Sizeof) into a concrete types.Type; supplied by the caller
// to avoid an ast -> types import cycle.
type TypeResolver func(interface{}) types.Type

// Generator walks expressions, producing types and constraints against a
// shared fresh-variable source.
type Generator struct {
	Ctors   *ctable.Table
	Fresh   *fresh.Source
	Resolve TypeResolver
}

// NewGenerator builds a Generator over the given constructor table and
// fresh-variable source.
func NewGenerator(ctors *ctable.Table, fr *fresh.Source, resolve TypeResolver) *Generator {
	return &Generator{Ctors: ctors, Fresh: fr, Resolve: resolve}
}

func (g *Generator) freshVar() *types.TyVar {
	return &types.TyVar{Name: g.Fresh.Next()}
}

// Infer produces expr's type and the constraints it imposes, under env.
func (g *Generator) Infer(env *types.Env, expr ast.Expr) (types.Type, []solve.Constraint, error) {
	switch e := expr.(type) {

	case *ast.Literal:
		return g.inferLiteral(e), nil, nil

	case *ast.Var:
		return g.inferVar(env, e)

	case *ast.Lambda:
		return g.inferLambda(env, e)

	case *ast.Application:
		return g.inferApplication(env, e)

	case *ast.Let:
		return g.inferLet(env, e)

	case *ast.Fix:
		return g.inferFix(env, e)

	case *ast.Conditional:
		return g.inferConditional(env, e)

	case *ast.Block:
		return g.inferBlock(env, e)

	case *ast.While:
		return g.inferWhile(env, e)

	case *ast.Break:
		return types.TyUnit, nil, nil

	case *ast.Continue:
		return types.TyUnit, nil, nil

	case *ast.Return:
		return g.inferReturn(env, e)

	case *ast.Tuple:
		return g.inferTuple(env, e)

	case *ast.TupleDeref:
		return g.inferTupleDeref(env, e)

	case *ast.As:
		return g.inferAs(env, e)

	case *ast.Match:
		return g.inferMatch(env, e)

	case *ast.Builtin:
		return g.inferBuiltin(env, e)

	case *ast.Sizeof:
		return types.TyInt, nil, nil

	case *ast.StaticPrint:
		_, cs, err := g.Infer(env, e.Expr)
		if err != nil {
			return nil, nil, err
		}
		return types.TyUnit, cs, nil

	default:
		return nil, nil, fmt.Errorf("infer: unhandled expression node %T", expr)
	}
}

func (g *Generator) inferLiteral(l *ast.Literal) types.Type {
	switch l.Kind {
	case ast.IntLit:
		return types.TyInt
	case ast.FloatLit:
		return types.TyFloat
	case ast.StringLit:
		return types.TyString
	case ast.BoolLit:
		return types.TyBool
	default:
		return types.TyUnit
	}
}

func (g *Generator) inferVar(env *types.Env, v *ast.Var) (types.Type, []solve.Constraint, error) {
	if ctorInfo, ok := g.Ctors.Lookup(v.ID.Name); ok && ctorInfo.Arity == 0 {
		scheme, _ := g.Ctors.Scheme(v.ID.Name)
		t, preds := scheme.Instantiate(g.Fresh.Next)
		return t, predConstraints(preds, v.Loc), nil
	}
	scheme, err := env.Lookup(v.ID.Name, v.Loc.String())
	if err != nil {
		rep := zerrors.New(zerrors.UNI004, v.Loc, err.Error())
		return nil, nil, zerrors.Wrap(rep)
	}
	t, preds := scheme.Instantiate(g.Fresh.Next)
	return t, predConstraints(preds, v.Loc), nil
}

func predConstraints(preds []types.ClassPredicate, loc ast.Pos) []solve.Constraint {
	cs := make([]solve.Constraint, len(preds))
	for i, p := range preds {
		cs[i] = solve.ClassC(p, loc)
	}
	return cs
}

func (g *Generator) inferLambda(env *types.Env, l *ast.Lambda) (types.Type, []solve.Constraint, error) {
	paramTy := g.freshVar()
	bodyEnv := env.Extend(l.Param.Name, &types.Scheme{Type: paramTy})
	bodyTy, cs, err := g.Infer(bodyEnv, l.Body)
	if err != nil {
		return nil, nil, err
	}
	return types.Arrow(paramTy, bodyTy), cs, nil
}

func (g *Generator) inferApplication(env *types.Env, a *ast.Application) (types.Type, []solve.Constraint, error) {
	fnTy, cs1, err := g.Infer(env, a.Fn)
	if err != nil {
		return nil, nil, err
	}
	argTy, cs2, err := g.Infer(env, a.Arg)
	if err != nil {
		return nil, nil, err
	}
	result := g.freshVar()
	cs := append(append(cs1, cs2...), solve.EqC(fnTy, types.Arrow(argTy, result), a.Loc))
	return result, cs, nil
}

func (g *Generator) inferLet(env *types.Env, l *ast.Let) (types.Type, []solve.Constraint, error) {
	valueTy, valueCs, err := g.Infer(env, l.Value)
	if err != nil {
		return nil, nil, err
	}
	result, err := solve.Solve(valueCs)
	if err != nil {
		return nil, nil, err
	}
	solvedTy := valueTy.Substitute(result.Sub)
	genEnv := env.ApplySubst(result.Sub)
	scheme := types.Generalize(genEnv, solvedTy, result.Predicates)

	bodyEnv := genEnv.Extend(l.Name.Name, scheme)
	bodyTy, bodyCs, err := g.Infer(bodyEnv, l.Body)
	if err != nil {
		return nil, nil, err
	}
	return bodyTy, bodyCs, nil
}

func (g *Generator) inferFix(env *types.Env, f *ast.Fix) (types.Type, []solve.Constraint, error) {
	selfTy := g.freshVar()
	bodyEnv := env.Extend(f.Name.Name, &types.Scheme{Type: selfTy})
	bodyTy, cs, err := g.Infer(bodyEnv, f.Body)
	if err != nil {
		return nil, nil, err
	}
	cs = append(cs, solve.EqC(selfTy, bodyTy, f.Loc))
	return selfTy, cs, nil
}

func (g *Generator) inferConditional(env *types.Env, c *ast.Conditional) (types.Type, []solve.Constraint, error) {
	condTy, cs1, err := g.Infer(env, c.Cond)
	if err != nil {
		return nil, nil, err
	}
	thenTy, cs2, err := g.Infer(env, c.Then)
	if err != nil {
		return nil, nil, err
	}
	elseTy, cs3, err := g.Infer(env, c.Else)
	if err != nil {
		return nil, nil, err
	}
	cs := append(append(append(cs1, cs2...), cs3...),
		solve.EqC(condTy, types.TyBool, c.Cond.Position()),
		solve.EqC(thenTy, elseTy, c.Loc),
	)
	return thenTy, cs, nil
}

func (g *Generator) inferBlock(env *types.Env, b *ast.Block) (types.Type, []solve.Constraint, error) {
	var cs []solve.Constraint
	var last types.Type = types.TyUnit
	for _, stmt := range b.Statements {
		t, c, err := g.Infer(env, stmt)
		if err != nil {
			return nil, nil, err
		}
		cs = append(cs, c...)
		last = t
	}
	return last, cs, nil
}

func (g *Generator) inferWhile(env *types.Env, w *ast.While) (types.Type, []solve.Constraint, error) {
	condTy, cs1, err := g.Infer(env, w.Cond)
	if err != nil {
		return nil, nil, err
	}
	_, cs2, err := g.Infer(env, w.Body)
	if err != nil {
		return nil, nil, err
	}
	cs := append(append(cs1, cs2...), solve.EqC(condTy, types.TyBool, w.Cond.Position()))
	return types.TyUnit, cs, nil
}

func (g *Generator) inferReturn(env *types.Env, r *ast.Return) (types.Type, []solve.Constraint, error) {
	if r.Value == nil {
		return g.freshVar(), nil, nil
	}
	_, cs, err := g.Infer(env, r.Value)
	if err != nil {
		return nil, nil, err
	}
	return g.freshVar(), cs, nil
}

func (g *Generator) inferTuple(env *types.Env, tp *ast.Tuple) (types.Type, []solve.Constraint, error) {
	elemTypes := make([]types.Type, len(tp.Elements))
	var cs []solve.Constraint
	for i, el := range tp.Elements {
		t, c, err := g.Infer(env, el)
		if err != nil {
			return nil, nil, err
		}
		elemTypes[i] = t
		cs = append(cs, c...)
	}
	return types.TupleType(elemTypes...), cs, nil
}

func (g *Generator) inferTupleDeref(env *types.Env, td *ast.TupleDeref) (types.Type, []solve.Constraint, error) {
	if lit, ok := td.Tuple.(*ast.Tuple); ok {
		if td.Index < 0 || td.Index >= len(lit.Elements) {
			return nil, nil, fmt.Errorf("tuple index %d out of range at %s", td.Index, td.Loc)
		}
		tupleTy, cs, err := g.inferTuple(env, lit)
		if err != nil {
			return nil, nil, err
		}
		return tupleTy.(*types.TyApp).Args[td.Index], cs, nil
	}
	tupleTy, cs, err := g.Infer(env, td.Tuple)
	if err != nil {
		return nil, nil, err
	}
	result := g.freshVar()
	elems := make([]types.Type, td.Index+1)
	for i := range elems {
		if i == td.Index {
			elems[i] = result
		} else {
			elems[i] = g.freshVar()
		}
	}
	cs = append(cs, solve.EqC(tupleTy, types.TupleType(elems...), td.Loc))
	return result, cs, nil
}

func (g *Generator) inferAs(env *types.Env, a *ast.As) (types.Type, []solve.Constraint, error) {
	valueTy, cs, err := g.Infer(env, a.Value)
	if err != nil {
		return nil, nil, err
	}
	target := g.Resolve(a.Type)
	if a.Force {
		// Forceful casts change representation and impose no structural
		// constraint between the source and target types.
		return target, cs, nil
	}
	cs = append(cs, solve.EqC(valueTy, target, a.Loc))
	return target, cs, nil
}

func (g *Generator) inferMatch(env *types.Env, m *ast.Match) (types.Type, []solve.Constraint, error) {
	scrutTy, cs, err := g.Infer(env, m.Scrutinee)
	if err != nil {
		return nil, nil, err
	}
	result := g.freshVar()
	for _, arm := range m.Arms {
		armEnv, armCs, err := g.bindPredicate(env, scrutTy, arm.Predicate)
		if err != nil {
			return nil, nil, err
		}
		armTy, resultCs, err := g.Infer(armEnv, arm.Result)
		if err != nil {
			return nil, nil, err
		}
		cs = append(cs, armCs...)
		cs = append(cs, resultCs...)
		cs = append(cs, solve.EqC(result, armTy, arm.Predicate.Position()))
	}
	return result, cs, nil
}

// bindPredicate extends env with whatever names pred binds and returns
// the constraints that tie scrutTy to pred's shape. Mirrors the raw
// constructor/tuple/literal destructuring a match arm performs at
// runtime, expressed here as equality constraints the solver discharges
// the same way application does.
func (g *Generator) bindPredicate(env *types.Env, scrutTy types.Type, pred ast.Predicate) (*types.Env, []solve.Constraint, error) {
	switch p := pred.(type) {
	case *ast.Irrefutable:
		if p.Name != nil {
			return env.Extend(p.Name.Name, &types.Scheme{Type: scrutTy}), nil, nil
		}
		return env, nil, nil

	case *ast.TuplePredicate:
		elemTypes := make([]types.Type, len(p.Parts))
		for i := range elemTypes {
			elemTypes[i] = g.freshVar()
		}
		cs := []solve.Constraint{solve.EqC(scrutTy, types.TupleType(elemTypes...), p.Loc)}
		out := env
		if p.Name != nil {
			out = out.Extend(p.Name.Name, &types.Scheme{Type: scrutTy})
		}
		for i, part := range p.Parts {
			var partCs []solve.Constraint
			var err error
			out, partCs, err = g.bindPredicate(out, elemTypes[i], part)
			if err != nil {
				return nil, nil, err
			}
			cs = append(cs, partCs...)
		}
		return out, cs, nil

	case *ast.CtorPredicate:
		info, ok := g.Ctors.Lookup(p.Ctor.Name)
		if !ok {
			rep := zerrors.New(zerrors.UNI004, p.Loc, fmt.Sprintf("unknown data constructor: %s", p.Ctor.Name))
			return nil, nil, zerrors.Wrap(rep)
		}
		if len(p.Parts) != info.Arity {
			rep := zerrors.New(zerrors.UNI003, p.Loc, fmt.Sprintf(
				"constructor %s expects %d argument(s), pattern supplies %d", p.Ctor.Name, info.Arity, len(p.Parts)))
			return nil, nil, zerrors.Wrap(rep)
		}
		scheme, _ := g.Ctors.Scheme(p.Ctor.Name)
		fnTy, _ := scheme.Instantiate(g.Fresh.Next)
		argTypes := make([]types.Type, info.Arity)
		ctorResult := fnTy
		for i := 0; i < info.Arity; i++ {
			arrow, ok := ctorResult.(*types.TyApp)
			if !ok || arrow.Operator != types.OpArrow {
				rep := zerrors.New(zerrors.INT001, p.Loc, fmt.Sprintf("malformed constructor scheme for %s", p.Ctor.Name))
				return nil, nil, zerrors.Wrap(rep)
			}
			argTypes[i] = arrow.Args[0]
			ctorResult = arrow.Args[1]
		}
		cs := []solve.Constraint{solve.EqC(scrutTy, ctorResult, p.Loc)}
		out := env
		if p.Name != nil {
			out = out.Extend(p.Name.Name, &types.Scheme{Type: scrutTy})
		}
		for i, part := range p.Parts {
			var partCs []solve.Constraint
			var err error
			out, partCs, err = g.bindPredicate(out, argTypes[i], part)
			if err != nil {
				return nil, nil, err
			}
			cs = append(cs, partCs...)
		}
		return out, cs, nil

	case *ast.LiteralPredicate:
		return env, []solve.Constraint{solve.EqC(scrutTy, g.inferLiteral(&ast.Literal{Kind: p.Kind, Value: p.Value}), p.Loc)}, nil

	default:
		return nil, nil, fmt.Errorf("infer: unhandled predicate node %T", pred)
	}
}

func (g *Generator) inferBuiltin(env *types.Env, b *ast.Builtin) (types.Type, []solve.Constraint, error) {
	scheme, err := env.Lookup("__builtin_"+b.Name.Name, b.Loc.String())
	if err != nil {
		rep := zerrors.New(zerrors.UNI004, b.Loc, fmt.Sprintf("unknown builtin: %s", b.Name.Name))
		return nil, nil, zerrors.Wrap(rep)
	}
	fnTy, preds := scheme.Instantiate(g.Fresh.Next)
	cs := predConstraints(preds, b.Loc)
	for _, arg := range b.Args {
		argTy, argCs, err := g.Infer(env, arg)
		if err != nil {
			return nil, nil, err
		}
		cs = append(cs, argCs...)
		result := g.freshVar()
		cs = append(cs, solve.EqC(fnTy, types.Arrow(argTy, result), arg.Position()))
		fnTy = result
	}
	return fnTy, cs, nil
}
