package typedast

import (
	"strings"
	"testing"

	"github.com/ziontype/zinfer/internal/ast"
	"github.com/ziontype/zinfer/internal/types"
)

func TestVarStringPrefersMonoName(t *testing.T) {
	v := &Var{base: base{Type: types.TyInt}, Name: "id", MonoName: "id$Int"}
	if v.String() != "id$Int" {
		t.Fatalf("expected mangled name, got %s", v.String())
	}
	local := &Var{base: base{Type: types.TyInt}, Name: "x"}
	if local.String() != "x" {
		t.Fatalf("expected bare local name, got %s", local.String())
	}
}

func TestFunctionAndCallsiteString(t *testing.T) {
	param := &Argument{base: base{Type: types.TyInt}, Index: 0, Name: "x"}
	entry := &Block{Name: "entry", Instructions: []Node{&Return{base: base{Type: types.TyInt}, Value: param}}}
	fn := &Function{
		base:   base{Type: types.Arrow(types.TyInt, types.TyInt)},
		Params: []*Argument{param},
		Blocks: []*Block{entry},
		Entry:  "entry",
	}
	call := &Callsite{base: base{Type: types.TyInt}, Callee: fn, Args: []Node{&Lit{base: base{Type: types.TyInt}, Kind: ast.IntLit, Value: 1}}}
	if call.GetType() != types.TyInt {
		t.Fatalf("expected Callsite's type to be Int")
	}
	if call.String() == "" {
		t.Fatalf("expected non-empty String()")
	}
}

func TestPatternStringForms(t *testing.T) {
	cases := []struct {
		pat  Pattern
		want string
	}{
		{Irrefutable{}, "_"},
		{Irrefutable{Name: "x"}, "x"},
		{LiteralPattern{Value: 5}, "5"},
		{CtorPattern{Ctor: "None"}, "None"},
		{CtorPattern{Ctor: "Some", Parts: []Pattern{Irrefutable{Name: "x"}}}, "Some(x)"},
		{TuplePattern{Parts: []Pattern{Irrefutable{Name: "a"}, Irrefutable{Name: "b"}}}, "(a, b)"},
	}
	for _, c := range cases {
		if got := c.pat.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestProgramStringListsEveryDefn(t *testing.T) {
	prog := &Program{
		Entry: "main :: Unit",
		Defns: map[string]Node{
			"main :: Unit": &Lit{base: base{Type: types.TyUnit}, Kind: ast.UnitLit, Value: nil},
		},
	}
	out := prog.String()
	if out == "" {
		t.Fatalf("expected non-empty program dump")
	}
	if !strings.Contains(out, "main :: Unit") {
		t.Fatalf("expected program dump to list main :: Unit, got %q", out)
	}
}
