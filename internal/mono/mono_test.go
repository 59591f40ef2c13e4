package mono

import (
	"strings"
	"testing"

	"github.com/ziontype/zinfer/internal/ast"
	"github.com/ziontype/zinfer/internal/ctable"
	zerrors "github.com/ziontype/zinfer/internal/errors"
	"github.com/ziontype/zinfer/internal/fresh"
	"github.com/ziontype/zinfer/internal/infer"
	"github.com/ziontype/zinfer/internal/typedast"
	"github.com/ziontype/zinfer/internal/types"
)

func newTranslator(decls map[string]ast.Expr, schemes map[string]*types.Scheme) *Translator {
	resolve := func(v interface{}) types.Type {
		if t, ok := v.(types.Type); ok {
			return t
		}
		return types.TyInt
	}
	gen := infer.NewGenerator(ctable.New(), fresh.NewSource("m"), resolve)
	env := types.NewEnv()
	for name, scheme := range schemes {
		env = env.Extend(name, scheme)
	}
	return NewTranslator(decls, schemes, gen, env)
}

func TestTranslatePolymorphicIdDiscoversTwoInstantiations(t *testing.T) {
	idScheme := &types.Scheme{Vars: []string{"a"}, Type: types.Arrow(&types.TyVar{Name: "a"}, &types.TyVar{Name: "a"})}
	decls := map[string]ast.Expr{
		"id": &ast.Lambda{Param: ast.Identifier{Name: "x"}, Body: &ast.Var{ID: ast.Identifier{Name: "x"}}},
		"main": &ast.Tuple{Elements: []ast.Expr{
			&ast.Application{Fn: &ast.Var{ID: ast.Identifier{Name: "id"}}, Arg: &ast.Literal{Kind: ast.IntLit, Value: 1}},
			&ast.Application{Fn: &ast.Var{ID: ast.Identifier{Name: "id"}}, Arg: &ast.Literal{Kind: ast.BoolLit, Value: true}},
		}},
	}
	schemes := map[string]*types.Scheme{"id": idScheme}
	tr := newTranslator(decls, schemes)

	entry := DefnID{Name: "main", Type: types.TupleType(types.TyInt, types.TyBool)}
	prog, err := tr.Translate(entry)
	if err != nil {
		t.Fatalf("unexpected translation error: %v", err)
	}

	idInstantiations := 0
	for key := range prog.Defns {
		if strings.HasPrefix(key, "id ::") {
			idInstantiations++
		}
	}
	if idInstantiations != 2 {
		t.Fatalf("expected 2 distinct monomorphic instantiations of id, got %d (%v)", idInstantiations, SortedDefnKeys(prog))
	}
}

func TestFixMonomorphizesSelfReferenceAtBoundType(t *testing.T) {
	decls := map[string]ast.Expr{
		"main": &ast.Fix{
			Name: ast.Identifier{Name: "loop"},
			Body: &ast.Var{ID: ast.Identifier{Name: "loop"}},
		},
	}
	tr := newTranslator(decls, nil)

	node, err := tr.texpr(DefnID{Name: "main", Type: types.TyInt}, decls["main"], map[string]bool{}, types.TyInt, tr.BaseEnv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fix, ok := node.(*typedast.Fix)
	if !ok {
		t.Fatalf("expected *typedast.Fix, got %T", node)
	}
	v, ok := fix.Body.(*typedast.Var)
	if !ok {
		t.Fatalf("expected fix body to be a local Var, got %T", fix.Body)
	}
	if v.MonoName != "" {
		t.Fatalf("expected self-reference to stay a bound local (no mono name), got %s", v.MonoName)
	}
}

func TestGroundOrErrorRejectsResidualTypeVariable(t *testing.T) {
	err := groundOrError(&types.TyVar{Name: "a"}, ast.Pos{}, "some expr")
	if err == nil {
		t.Fatalf("expected MONO001 for a non-ground type")
	}
	rep, ok := zerrors.AsReport(err)
	if !ok || rep.Code != zerrors.MONO001 {
		t.Fatalf("expected MONO001 report, got %v", err)
	}
}

func TestForcefulAsProducesCastNonForcefulDoesNot(t *testing.T) {
	decls := map[string]ast.Expr{}
	tr := newTranslator(decls, nil)

	forceful := &ast.As{Value: &ast.Literal{Kind: ast.IntLit, Value: 1}, Type: types.TyBool, Force: true}
	node, err := tr.texpr(DefnID{Name: "main", Type: types.TyBool}, forceful, map[string]bool{}, types.TyBool, tr.BaseEnv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := node.(*typedast.Cast); !ok {
		t.Fatalf("expected forceful as to produce *typedast.Cast, got %T", node)
	}

	nonForceful := &ast.As{Value: &ast.Literal{Kind: ast.IntLit, Value: 1}, Type: types.TyInt, Force: false}
	node, err = tr.texpr(DefnID{Name: "main", Type: types.TyInt}, nonForceful, map[string]bool{}, types.TyInt, tr.BaseEnv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := node.(*typedast.Cast); ok {
		t.Fatalf("non-forceful as should not produce a Cast node")
	}
	if _, ok := node.(*typedast.Lit); !ok {
		t.Fatalf("expected non-forceful as to pass through to the literal, got %T", node)
	}
}

func TestTranslateUndeclaredGlobalFails(t *testing.T) {
	tr := newTranslator(map[string]ast.Expr{}, nil)
	_, err := tr.Translate(DefnID{Name: "missing", Type: types.TyInt})
	if err == nil {
		t.Fatalf("expected error translating an undeclared global")
	}
}

// TestStatementAfterReturnIsUnreachable exercises "\x. return x; x + 1":
// the block's second statement can never run once the first has returned,
// so translating it must fail with CTL001 (UnreachableCode) rather than
// silently emitting the builtin.
func TestStatementAfterReturnIsUnreachable(t *testing.T) {
	decl := &ast.Lambda{
		Param: ast.Identifier{Name: "x"},
		Body: &ast.Block{
			Statements: []ast.Expr{
				&ast.Return{Value: &ast.Var{ID: ast.Identifier{Name: "x"}}},
				&ast.Builtin{
					Name: ast.Identifier{Name: "add"},
					Args: []ast.Expr{
						&ast.Var{ID: ast.Identifier{Name: "x"}},
						&ast.Literal{Kind: ast.IntLit, Value: 1},
					},
				},
			},
		},
	}
	decls := map[string]ast.Expr{"f": decl}
	tr := newTranslator(decls, nil)
	tr.BaseEnv = tr.BaseEnv.Extend("__builtin_add",
		&types.Scheme{Type: types.Arrow(types.TyInt, types.Arrow(types.TyInt, types.TyInt))})

	entry := DefnID{Name: "f", Type: types.Arrow(types.TyInt, types.TyInt)}
	_, err := tr.Translate(entry)
	if err == nil {
		t.Fatalf("expected CTL001 translating dead code after a return")
	}
	rep, ok := zerrors.AsReport(err)
	if !ok || rep.Code != zerrors.CTL001 {
		t.Fatalf("expected CTL001 (UnreachableCode), got %v", err)
	}
}

// TestBreakAndContinueOutsideLoopFail exercises CTL003/CTL004: a bare
// break or continue with no enclosing while is a translation error, not
// a no-op. Each is wrapped in a trivial zero-arg decl so buildFunction
// opens the block context translateBreak/translateContinue read from.
func TestBreakAndContinueOutsideLoopFail(t *testing.T) {
	withBreak := map[string]ast.Expr{"f": &ast.Break{}}
	tr := newTranslator(withBreak, nil)
	if _, err := tr.Translate(DefnID{Name: "f", Type: types.TyUnit}); err == nil {
		t.Fatalf("expected CTL003 for break outside a loop")
	} else if rep, ok := zerrors.AsReport(err); !ok || rep.Code != zerrors.CTL003 {
		t.Fatalf("expected CTL003 (BreakOutsideLoop), got %v", err)
	}

	withContinue := map[string]ast.Expr{"f": &ast.Continue{}}
	tr = newTranslator(withContinue, nil)
	if _, err := tr.Translate(DefnID{Name: "f", Type: types.TyUnit}); err == nil {
		t.Fatalf("expected CTL004 for continue outside a loop")
	} else if rep, ok := zerrors.AsReport(err); !ok || rep.Code != zerrors.CTL004 {
		t.Fatalf("expected CTL004 (ContinueOutsideLoop), got %v", err)
	}
}
