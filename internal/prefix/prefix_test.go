package prefix

import (
	"testing"

	"github.com/ziontype/zinfer/internal/ast"
)

func TestNameQualifiesOnlyBoundNames(t *testing.T) {
	r := Qualify(Bindings{"foo": true}, "M")
	if got := Name(r, "foo"); got != "M.foo" {
		t.Fatalf("expected M.foo, got %s", got)
	}
	if got := Name(r, "bar"); got != "bar" {
		t.Fatalf("expected bar unqualified, got %s", got)
	}
}

func TestExprQualifiesFreeVarButNotShadowedLambdaParam(t *testing.T) {
	r := Qualify(Bindings{"x": true}, "M")
	lambda := &ast.Lambda{
		Param: ast.Identifier{Name: "x"},
		Body:  &ast.Var{ID: ast.Identifier{Name: "x"}},
	}
	rewritten := Expr(r, lambda).(*ast.Lambda)
	v := rewritten.Body.(*ast.Var)
	if v.ID.Name != "x" {
		t.Fatalf("expected shadowed param to stay unqualified, got %s", v.ID.Name)
	}
}

func TestExprQualifiesFreeVarOutsideLambda(t *testing.T) {
	r := Qualify(Bindings{"helper": true}, "M")
	app := &ast.Application{
		Fn:  &ast.Var{ID: ast.Identifier{Name: "helper"}},
		Arg: &ast.Literal{Kind: ast.IntLit, Value: 1},
	}
	rewritten := Expr(r, app).(*ast.Application)
	v := rewritten.Fn.(*ast.Var)
	if v.ID.Name != "M.helper" {
		t.Fatalf("expected M.helper, got %s", v.ID.Name)
	}
}

func TestMatchArmExcludesBoundPatternNames(t *testing.T) {
	r := Qualify(Bindings{"x": true}, "M")
	m := &ast.Match{
		Scrutinee: &ast.Var{ID: ast.Identifier{Name: "x"}},
		Arms: []ast.MatchArm{
			{
				Predicate: &ast.Irrefutable{Name: &ast.Identifier{Name: "x"}},
				Result:    &ast.Var{ID: ast.Identifier{Name: "x"}},
			},
		},
	}
	rewritten := Expr(r, m).(*ast.Match)
	scrutinee := rewritten.Scrutinee.(*ast.Var)
	if scrutinee.ID.Name != "M.x" {
		t.Fatalf("expected scrutinee qualified, got %s", scrutinee.ID.Name)
	}
	result := rewritten.Arms[0].Result.(*ast.Var)
	if result.ID.Name != "x" {
		t.Fatalf("expected pattern-bound x to stay unqualified, got %s", result.ID.Name)
	}
}

func TestComposeQualifiesCrossModuleReferences(t *testing.T) {
	modA := &ast.Module{
		Name: "A",
		Decls: []*ast.Decl{
			{Name: ast.Identifier{Name: "helper"}, Value: &ast.Literal{Kind: ast.IntLit, Value: 1}},
		},
	}
	modB := &ast.Module{
		Name: "B",
		Decls: []*ast.Decl{
			{Name: ast.Identifier{Name: "main"}, Value: &ast.Var{ID: ast.Identifier{Name: "helper"}}},
		},
	}
	mods := map[string]*ast.Module{"A": modA, "B": modB}
	composed := Compose(mods, []string{"A", "B"})
	if len(composed.Decls) != 2 {
		t.Fatalf("expected 2 decls, got %d", len(composed.Decls))
	}
	mainDecl := composed.Decls[1]
	if mainDecl.Name.Name != "B.main" {
		t.Fatalf("expected B.main, got %s", mainDecl.Name.Name)
	}
	ref := mainDecl.Value.(*ast.Var)
	if ref.ID.Name != "A.helper" {
		t.Fatalf("expected cross-module reference qualified to A.helper, got %s", ref.ID.Name)
	}
}

func TestModuleBindingsCollectsCtorsAndMethods(t *testing.T) {
	mod := &ast.Module{
		TypeDecls: []*ast.TypeDecl{
			{ID: ast.Identifier{Name: "Option"}, Ctors: []ast.CtorDecl{{Name: ast.Identifier{Name: "Some"}}}},
		},
		TypeClasses: []*ast.TypeClass{
			{ID: ast.Identifier{Name: "Show"}, Methods: map[string]interface{}{"show": nil}},
		},
	}
	b := ModuleBindings(mod)
	if !b["Some"] || !b["show"] {
		t.Fatalf("expected Some and show bound, got %v", b)
	}
}
