package solve

import (
	"testing"

	"github.com/ziontype/zinfer/internal/ast"
	"github.com/ziontype/zinfer/internal/types"
)

func TestSolveChainsEarlyBindingsIntoLaterConstraints(t *testing.T) {
	a := &types.TyVar{Name: "a"}
	b := &types.TyVar{Name: "b"}
	cs := []Constraint{
		EqC(a, types.TyInt, ast.Pos{}),
		EqC(b, a, ast.Pos{}),
	}
	result, err := Solve(cs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Sub["b"].Equals(types.TyInt) {
		t.Fatalf("expected b resolved to Int via a, got %s", result.Sub["b"])
	}
}

func TestSolveCollectsAndSubstitutesClassPredicates(t *testing.T) {
	a := &types.TyVar{Name: "a"}
	cs := []Constraint{
		EqC(a, types.TyInt, ast.Pos{}),
		ClassC(types.ClassPredicate{ClassName: "Num", Args: []types.Type{a}}, ast.Pos{}),
	}
	result, err := Solve(cs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Predicates) != 1 {
		t.Fatalf("expected 1 predicate, got %d", len(result.Predicates))
	}
	if !result.Predicates[0].Args[0].Equals(types.TyInt) {
		t.Fatalf("expected predicate's arg substituted to Int, got %s", result.Predicates[0].Args[0])
	}
}

func TestSolveFailsOnIncompatibleEquality(t *testing.T) {
	cs := []Constraint{EqC(types.TyInt, types.TyBool, ast.Pos{})}
	if _, err := Solve(cs); err == nil {
		t.Fatalf("expected unification failure")
	}
}
