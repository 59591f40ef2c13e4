package pipeline

import (
	"testing"

	"github.com/ziontype/zinfer/internal/ast"
	"github.com/ziontype/zinfer/internal/types"
)

func resolve(v interface{}) types.Type {
	switch t := v.(type) {
	case string:
		return &types.TyVar{Name: t}
	case types.Type:
		return t
	default:
		return types.TyInt
	}
}

func optionModule(mainValue ast.Expr) *ast.Module {
	return &ast.Module{
		Name: "main",
		TypeDecls: []*ast.TypeDecl{
			{
				ID:     ast.Identifier{Name: "Option"},
				Params: []ast.Identifier{{Name: "a"}},
				Ctors: []ast.CtorDecl{
					{Name: ast.Identifier{Name: "None"}},
					{Name: ast.Identifier{Name: "Some"}, Args: []interface{}{"a"}},
				},
			},
		},
		Decls: []*ast.Decl{
			{
				Name: ast.Identifier{Name: "classify"},
				Value: &ast.Lambda{
					Param: ast.Identifier{Name: "opt"},
					Body: &ast.Match{
						Scrutinee: &ast.Var{ID: ast.Identifier{Name: "opt"}},
						Arms: []ast.MatchArm{
							{
								Predicate: &ast.CtorPredicate{
									Ctor:  ast.Identifier{Name: "Some"},
									Parts: []ast.Predicate{&ast.Irrefutable{Name: &ast.Identifier{Name: "n"}}},
								},
								Result: &ast.Var{ID: ast.Identifier{Name: "n"}},
							},
							{
								Predicate: &ast.CtorPredicate{Ctor: ast.Identifier{Name: "None"}},
								Result:    &ast.Literal{Kind: ast.IntLit, Value: 0},
							},
						},
					},
				},
			},
			{Name: ast.Identifier{Name: "main"}, Value: mainValue},
		},
	}
}

func TestRunChecksOptionClassifyProgram(t *testing.T) {
	mainValue := &ast.Application{
		Fn: &ast.Var{ID: ast.Identifier{Name: "classify"}},
		Arg: &ast.Application{
			Fn:  &ast.Var{ID: ast.Identifier{Name: "Some"}},
			Arg: &ast.Literal{Kind: ast.IntLit, Value: 1},
		},
	}
	r := Run(optionModule(mainValue), resolve, nil, nil)
	if len(r.Reports) != 0 {
		t.Fatalf("expected no reports, got %v", r.Reports)
	}
	mainScheme, ok := r.Schemes["main"]
	if !ok {
		t.Fatalf("expected a scheme for main")
	}
	if mainScheme.Type.String() != types.TyInt.String() {
		t.Fatalf("expected main : Int, got %s", mainScheme.Type)
	}
	classifyScheme, ok := r.Schemes["classify"]
	if !ok {
		t.Fatalf("expected a scheme for classify")
	}
	// The None arm's literal 0 pins Option's element type to Int, so
	// classify ends up fully monomorphic rather than generalized.
	want := "(Option[Int] -> Int)"
	if got := classifyScheme.Type.String(); got != want {
		t.Fatalf("expected classify : %s, got %s", want, got)
	}
}

func TestRunReportsDuplicateDataConstructor(t *testing.T) {
	mod := &ast.Module{
		Name: "main",
		TypeDecls: []*ast.TypeDecl{
			{ID: ast.Identifier{Name: "A"}, Ctors: []ast.CtorDecl{{Name: ast.Identifier{Name: "Dup"}}}},
			{ID: ast.Identifier{Name: "B"}, Ctors: []ast.CtorDecl{{Name: ast.Identifier{Name: "Dup"}}}},
		},
	}
	r := Run(mod, resolve, nil, nil)
	if len(r.Reports) != 1 {
		t.Fatalf("expected exactly one report for the duplicate constructor, got %v", r.Reports)
	}
}

func TestRunAppliesConfiguredDefault(t *testing.T) {
	// A decl with no constraints at all still type-checks the same
	// whether or not a default is supplied; this exercises Run's
	// defaults parameter plumbing into the registry before any
	// declaration is checked.
	mod := &ast.Module{
		Name:  "main",
		Decls: []*ast.Decl{{Name: ast.Identifier{Name: "one"}, Value: &ast.Literal{Kind: ast.IntLit, Value: 1}}},
	}
	r := Run(mod, resolve, map[string]types.Type{"Num": types.TyFloat}, nil)
	if len(r.Reports) != 0 {
		t.Fatalf("expected no reports, got %v", r.Reports)
	}
	if got := r.Classes.Default("Num"); got == nil || got.String() != types.TyFloat.String() {
		t.Fatalf("expected configured Num default Float to reach the registry, got %v", got)
	}
}

func TestRunResolvesRegisteredBuiltin(t *testing.T) {
	mod := &ast.Module{
		Name: "main",
		Decls: []*ast.Decl{
			{
				Name: ast.Identifier{Name: "three"},
				Value: &ast.Builtin{
					Name: ast.Identifier{Name: "add"},
					Args: []ast.Expr{
						&ast.Literal{Kind: ast.IntLit, Value: 1},
						&ast.Literal{Kind: ast.IntLit, Value: 2},
					},
				},
			},
		},
	}
	builtins := map[string]*types.Scheme{
		"add": {Type: types.Arrow(types.TyInt, types.Arrow(types.TyInt, types.TyInt))},
	}
	r := Run(mod, resolve, nil, builtins)
	if len(r.Reports) != 0 {
		t.Fatalf("expected no reports, got %v", r.Reports)
	}
	scheme, ok := r.Schemes["three"]
	if !ok || scheme.Type.String() != types.TyInt.String() {
		t.Fatalf("expected three : Int via the registered add builtin, got %v", scheme)
	}
}

func TestRunUnregisteredBuiltinReportsScopeError(t *testing.T) {
	mod := &ast.Module{
		Name: "main",
		Decls: []*ast.Decl{
			{Name: ast.Identifier{Name: "bad"}, Value: &ast.Builtin{Name: ast.Identifier{Name: "add"}}},
		},
	}
	r := Run(mod, resolve, nil, nil)
	if len(r.Reports) != 1 {
		t.Fatalf("expected one report for an unregistered builtin (NO_BUILTINS behavior), got %v", r.Reports)
	}
}

func TestCheckNoDroppedPredicatesReportsCLS004ForEscapedVariable(t *testing.T) {
	r := &Result{}
	pred := types.ClassPredicate{ClassName: "Foo", Args: []types.Type{&types.TyVar{Name: "z"}}}
	// A scheme that quantifies over nothing and carries no predicates:
	// as if "z" never made it into the generalized type at all.
	scheme := &types.Scheme{Type: types.TyInt}
	r.checkNoDroppedPredicates([]types.ClassPredicate{pred}, scheme, ast.Pos{})
	if len(r.Reports) != 1 || r.Reports[0].Code != "CLS004" {
		t.Fatalf("expected a single CLS004 report, got %v", r.Reports)
	}
}

func TestCheckNoDroppedPredicatesAcceptsKeptPredicate(t *testing.T) {
	r := &Result{}
	pred := types.ClassPredicate{ClassName: "Foo", Args: []types.Type{&types.TyVar{Name: "z"}}}
	scheme := &types.Scheme{Vars: []string{"z"}, Predicates: []types.ClassPredicate{pred}, Type: &types.TyVar{Name: "z"}}
	r.checkNoDroppedPredicates([]types.ClassPredicate{pred}, scheme, ast.Pos{})
	if len(r.Reports) != 0 {
		t.Fatalf("expected no reports for a predicate the scheme kept, got %v", r.Reports)
	}
}
