package classes

import (
	"testing"

	"github.com/ziontype/zinfer/internal/ast"
	"github.com/ziontype/zinfer/internal/types"
)

func TestLoadBuiltinsResolvesNumInt(t *testing.T) {
	r := LoadBuiltins()
	inst, err := r.Lookup("Num", types.TyInt, ast.Pos{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.ClassName != "Num" {
		t.Fatalf("got class %s", inst.ClassName)
	}
}

func TestLookupMissingInstance(t *testing.T) {
	r := LoadBuiltins()
	if _, err := r.Lookup("Show", &types.TyId{Name: "Widget"}, ast.Pos{}); err == nil {
		t.Fatalf("expected missing-instance error")
	}
}

func TestEqDerivedFromOrd(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(&Instance{ClassName: "Ord", HeadType: types.TyInt}, ast.Pos{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inst, err := r.Lookup("Eq", types.TyInt, ast.Pos{})
	if err != nil {
		t.Fatalf("expected Eq to be derivable from Ord: %v", err)
	}
	if inst.ClassName != "Eq" {
		t.Fatalf("got %s", inst.ClassName)
	}
}

func TestAddDuplicateInstanceFails(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(&Instance{ClassName: "Num", HeadType: types.TyInt}, ast.Pos{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Add(&Instance{ClassName: "Num", HeadType: types.TyInt}, ast.Pos{}); err == nil {
		t.Fatalf("expected duplicate-instance error")
	}
}

func TestResolveDefersOnFreeVariable(t *testing.T) {
	r := LoadBuiltins()
	pred := types.ClassPredicate{ClassName: "Num", Args: []types.Type{&types.TyVar{Name: "a"}}}
	_, ok, err := r.Resolve(pred, ast.Pos{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected resolution to defer on a free variable")
	}
}
