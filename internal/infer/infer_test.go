package infer

import (
	"testing"

	"github.com/ziontype/zinfer/internal/ast"
	"github.com/ziontype/zinfer/internal/ctable"
	"github.com/ziontype/zinfer/internal/fresh"
	"github.com/ziontype/zinfer/internal/solve"
	"github.com/ziontype/zinfer/internal/types"
)

func newGenerator() *Generator {
	tbl := ctable.New()
	_ = tbl.AddTypeDecl(&ast.TypeDecl{
		ID:     ast.Identifier{Name: "Option"},
		Params: []ast.Identifier{{Name: "a"}},
		Ctors: []ast.CtorDecl{
			{Name: ast.Identifier{Name: "None"}},
			{Name: ast.Identifier{Name: "Some"}, Args: []interface{}{"a"}},
		},
	}, func(v interface{}) types.Type { return &types.TyVar{Name: v.(string)} })

	resolve := func(v interface{}) types.Type {
		if t, ok := v.(types.Type); ok {
			return t
		}
		return types.TyInt
	}
	return NewGenerator(tbl, fresh.NewSource("t"), resolve)
}

func solveAndApply(t *testing.T, ty types.Type, cs []solve.Constraint) types.Type {
	t.Helper()
	result, err := solve.Solve(cs)
	if err != nil {
		t.Fatalf("unexpected solve error: %v", err)
	}
	return ty.Substitute(result.Sub)
}

func TestInferLiteral(t *testing.T) {
	g := newGenerator()
	ty, cs, err := g.Infer(types.NewEnv(), &ast.Literal{Kind: ast.IntLit, Value: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cs) != 0 || !ty.Equals(types.TyInt) {
		t.Fatalf("expected bare Int, got %s with %d constraints", ty, len(cs))
	}
}

func TestInferIdentityLambdaParamMatchesResult(t *testing.T) {
	g := newGenerator()
	env := types.NewEnv()
	lambda := &ast.Lambda{Param: ast.Identifier{Name: "x"}, Body: &ast.Var{ID: ast.Identifier{Name: "x"}}}
	ty, cs, err := g.Infer(env, lambda)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolved := solveAndApply(t, ty, cs)
	app, ok := resolved.(*types.TyApp)
	if !ok || app.Operator != types.OpArrow {
		t.Fatalf("expected arrow type, got %s", resolved)
	}
	if !app.Args[0].Equals(app.Args[1]) {
		t.Fatalf("expected identity function's param and result to unify, got %s", resolved)
	}
}

func TestInferApplicationUnifiesArgument(t *testing.T) {
	g := newGenerator()
	env := types.NewEnv()
	scheme := types.Generalize(env, &types.TyApp{Operator: types.OpArrow, Args: []types.Type{types.TyInt, types.TyBool}}, nil)
	env = env.Extend("f", scheme)
	app := &ast.Application{Fn: &ast.Var{ID: ast.Identifier{Name: "f"}}, Arg: &ast.Literal{Kind: ast.IntLit, Value: 1}}
	ty, cs, err := g.Infer(env, app)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolved := solveAndApply(t, ty, cs)
	if !resolved.Equals(types.TyBool) {
		t.Fatalf("expected Bool result, got %s", resolved)
	}
}

func TestInferLetGeneralizesPolymorphicValue(t *testing.T) {
	g := newGenerator()
	env := types.NewEnv()
	// let id = \x -> x in (id 1, id true)
	let := &ast.Let{
		Name:  ast.Identifier{Name: "id"},
		Value: &ast.Lambda{Param: ast.Identifier{Name: "x"}, Body: &ast.Var{ID: ast.Identifier{Name: "x"}}},
		Body: &ast.Tuple{Elements: []ast.Expr{
			&ast.Application{Fn: &ast.Var{ID: ast.Identifier{Name: "id"}}, Arg: &ast.Literal{Kind: ast.IntLit, Value: 1}},
			&ast.Application{Fn: &ast.Var{ID: ast.Identifier{Name: "id"}}, Arg: &ast.Literal{Kind: ast.BoolLit, Value: true}},
		}},
	}
	ty, cs, err := g.Infer(env, let)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolved := solveAndApply(t, ty, cs)
	app, ok := resolved.(*types.TyApp)
	if !ok || app.Operator != types.OpTuple {
		t.Fatalf("expected tuple result, got %s", resolved)
	}
	if !app.Args[0].Equals(types.TyInt) || !app.Args[1].Equals(types.TyBool) {
		t.Fatalf("expected (Int, Bool), got %s", resolved)
	}
}

func TestInferConditionalRequiresBoolCondition(t *testing.T) {
	g := newGenerator()
	env := types.NewEnv()
	cond := &ast.Conditional{
		Cond: &ast.Literal{Kind: ast.IntLit, Value: 1},
		Then: &ast.Literal{Kind: ast.IntLit, Value: 1},
		Else: &ast.Literal{Kind: ast.IntLit, Value: 2},
	}
	_, cs, err := g.Infer(env, cond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := solve.Solve(cs); err == nil {
		t.Fatalf("expected solve failure unifying Int condition against Bool")
	}
}

func TestInferNullaryCtorVar(t *testing.T) {
	g := newGenerator()
	env := types.NewEnv()
	ty, cs, err := g.Infer(env, &ast.Var{ID: ast.Identifier{Name: "None"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = solveAndApply(t, ty, cs)
}

func TestInferBuiltinAppliesArguments(t *testing.T) {
	g := newGenerator()
	env := types.NewEnv().Extend("__builtin_add",
		&types.Scheme{Type: types.Arrow(types.TyInt, types.Arrow(types.TyInt, types.TyInt))})
	b := &ast.Builtin{
		Name: ast.Identifier{Name: "add"},
		Args: []ast.Expr{&ast.Literal{Kind: ast.IntLit, Value: 1}, &ast.Literal{Kind: ast.IntLit, Value: 2}},
	}
	ty, cs, err := g.Infer(env, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolved := solveAndApply(t, ty, cs)
	if !resolved.Equals(types.TyInt) {
		t.Fatalf("expected Int, got %s", resolved)
	}
}

func TestInferVarUnbound(t *testing.T) {
	g := newGenerator()
	_, _, err := g.Infer(types.NewEnv(), &ast.Var{ID: ast.Identifier{Name: "nope"}})
	if err == nil {
		t.Fatalf("expected unbound variable error")
	}
}

func TestInferMatchUnifiesArmsAndBindsCtorFields(t *testing.T) {
	g := newGenerator()
	env := types.NewEnv()
	m := &ast.Match{
		Scrutinee: &ast.Var{ID: ast.Identifier{Name: "None"}},
		Arms: []ast.MatchArm{
			{
				Predicate: &ast.CtorPredicate{
					Ctor:  ast.Identifier{Name: "Some"},
					Parts: []ast.Predicate{&ast.Irrefutable{Name: &ast.Identifier{Name: "x"}}},
				},
				Result: &ast.Var{ID: ast.Identifier{Name: "x"}},
			},
			{
				Predicate: &ast.CtorPredicate{Ctor: ast.Identifier{Name: "None"}},
				Result:    &ast.Literal{Kind: ast.IntLit, Value: 0},
			},
		},
	}
	// None is the scrutinee here only to exercise a nullary ctor Var in
	// scrutinee position; what matters is both arms' result types unify
	// to the same ground type.
	ty, cs, err := g.Infer(env, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolved := solveAndApply(t, ty, cs)
	if !resolved.Equals(types.TyInt) {
		t.Fatalf("expected both arms to unify to Int, got %s", resolved)
	}
}

func TestInferMatchArityMismatchFails(t *testing.T) {
	g := newGenerator()
	env := types.NewEnv()
	m := &ast.Match{
		Scrutinee: &ast.Var{ID: ast.Identifier{Name: "None"}},
		Arms: []ast.MatchArm{
			{
				Predicate: &ast.CtorPredicate{
					Ctor:  ast.Identifier{Name: "Some"},
					Parts: []ast.Predicate{&ast.Irrefutable{}, &ast.Irrefutable{}},
				},
				Result: &ast.Literal{Kind: ast.IntLit, Value: 0},
			},
		},
	}
	_, _, err := g.Infer(env, m)
	if err == nil {
		t.Fatalf("expected arity mismatch error for Some pattern")
	}
}
