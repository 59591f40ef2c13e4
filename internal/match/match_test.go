package match

import (
	"testing"

	"github.com/ziontype/zinfer/internal/ast"
	"github.com/ziontype/zinfer/internal/ctable"
	"github.com/ziontype/zinfer/internal/types"
)

func optionTable() *ctable.Table {
	tbl := ctable.New()
	_ = tbl.AddTypeDecl(&ast.TypeDecl{
		ID:     ast.Identifier{Name: "Option"},
		Params: []ast.Identifier{{Name: "a"}},
		Ctors: []ast.CtorDecl{
			{Name: ast.Identifier{Name: "None"}},
			{Name: ast.Identifier{Name: "Some"}, Args: []interface{}{"a"}},
		},
	}, func(v interface{}) types.Type { return &types.TyVar{Name: v.(string)} })
	return tbl
}

func someNoneArms() []ast.MatchArm {
	return []ast.MatchArm{
		{
			Predicate: &ast.CtorPredicate{Ctor: ast.Identifier{Name: "Some"}, Parts: []ast.Predicate{&ast.Irrefutable{Name: &ast.Identifier{Name: "x"}}}},
			Result:    &ast.Var{ID: ast.Identifier{Name: "x"}},
		},
		{
			Predicate: &ast.CtorPredicate{Ctor: ast.Identifier{Name: "None"}},
			Result:    &ast.Literal{Kind: ast.IntLit, Value: 0},
		},
	}
}

func TestCheckExhaustiveCoversEverySibling(t *testing.T) {
	l := NewLattice(optionTable())
	res := Check(l, "Option", someNoneArms())
	if !res.Exhaustive {
		t.Fatalf("expected Some/None to be exhaustive, missing: %v", res.Missing)
	}
	if len(res.Unreachable) != 0 {
		t.Fatalf("expected no unreachable arms, got %v", res.Unreachable)
	}
}

func TestCheckNonExhaustiveReportsMissingCtor(t *testing.T) {
	l := NewLattice(optionTable())
	arms := []ast.MatchArm{
		{
			Predicate: &ast.CtorPredicate{Ctor: ast.Identifier{Name: "Some"}, Parts: []ast.Predicate{&ast.Irrefutable{}}},
			Result:    &ast.Literal{Kind: ast.IntLit, Value: 1},
		},
	}
	res := Check(l, "Option", arms)
	if res.Exhaustive {
		t.Fatalf("expected non-exhaustive match missing None")
	}
	if len(res.Missing) != 1 || res.Missing[0] != "None" {
		t.Fatalf("expected missing witness None, got %v", res.Missing)
	}
}

func TestCheckFlagsRedundantArmAfterWildcard(t *testing.T) {
	l := NewLattice(optionTable())
	arms := []ast.MatchArm{
		{Predicate: &ast.Irrefutable{}, Result: &ast.Literal{Kind: ast.IntLit, Value: 0}},
		{Predicate: &ast.CtorPredicate{Ctor: ast.Identifier{Name: "None"}}, Result: &ast.Literal{Kind: ast.IntLit, Value: 1}},
	}
	res := Check(l, "Option", arms)
	if !res.Exhaustive {
		t.Fatalf("expected exhaustive (leading wildcard covers everything)")
	}
	if len(res.Unreachable) != 1 || res.Unreachable[0] != 1 {
		t.Fatalf("expected arm 1 flagged unreachable, got %v", res.Unreachable)
	}
}

func TestCheckBoolLiteralsAreExhaustive(t *testing.T) {
	l := NewLattice(ctable.New())
	arms := []ast.MatchArm{
		{Predicate: &ast.LiteralPredicate{Kind: ast.BoolLit, Value: true}, Result: &ast.Literal{Kind: ast.IntLit, Value: 1}},
		{Predicate: &ast.LiteralPredicate{Kind: ast.BoolLit, Value: false}, Result: &ast.Literal{Kind: ast.IntLit, Value: 0}},
	}
	res := Check(l, "Bool", arms)
	if !res.Exhaustive {
		t.Fatalf("expected true/false to exhaust Bool, missing: %v", res.Missing)
	}
}

func TestCheckIntLiteralsNeverExhaustiveWithoutWildcard(t *testing.T) {
	l := NewLattice(ctable.New())
	arms := []ast.MatchArm{
		{Predicate: &ast.LiteralPredicate{Kind: ast.IntLit, Value: 1}, Result: &ast.Literal{Kind: ast.IntLit, Value: 1}},
	}
	res := Check(l, "Int", arms)
	if res.Exhaustive {
		t.Fatalf("expected an infinite domain to stay non-exhaustive without a wildcard arm")
	}
}

func TestCompileBuildsSwitchOverCtorTags(t *testing.T) {
	c := NewCompiler(someNoneArms())
	tree := c.Compile()
	sw, ok := tree.(*Switch)
	if !ok {
		t.Fatalf("expected a Switch at the root, got %T", tree)
	}
	if len(sw.Cases) != 2 {
		t.Fatalf("expected 2 cases (Some, None), got %d", len(sw.Cases))
	}
	if _, ok := sw.Cases["Some"]; !ok {
		t.Fatalf("expected a Some case")
	}
	someLeaf, ok := sw.Cases["Some"].(*Leaf)
	if !ok {
		t.Fatalf("expected Some's subtree to resolve directly to a leaf (its arg is irrefutable), got %T", sw.Cases["Some"])
	}
	if someLeaf.ArmIndex != 0 {
		t.Fatalf("expected arm 0 for Some, got %d", someLeaf.ArmIndex)
	}
}

func TestCompileWildcardOnlyArmIsImmediateLeaf(t *testing.T) {
	c := NewCompiler([]ast.MatchArm{
		{Predicate: &ast.Irrefutable{}, Result: &ast.Literal{Kind: ast.IntLit, Value: 0}},
	})
	tree := c.Compile()
	if _, ok := tree.(*Leaf); !ok {
		t.Fatalf("expected a bare wildcard arm to compile straight to a Leaf, got %T", tree)
	}
}
