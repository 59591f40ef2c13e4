// Package mono implements the monomorphizing translator: given a
// polymorphic, already-typechecked program and one concrete entry-point
// instantiation, it produces a fully monomorphic typedast.Program by
// demand-driven worklist translation, mirroring zion's translate.cpp/
// defn_id.cpp needed_defns_t mechanism.
//
// Every global declaration can be instantiated at more than one
// concrete type across a program (e.g. a polymorphic identity function
// applied at both Int and Bool); each distinct (name, type) pair is its
// own DefnID and gets its own entry in the output Program, discovered
// on demand the first time a Var expression references it at that type.
// Local let/fix bindings are, by contrast, translated once at the
// single concrete type inference resolved for their one occurrence —
// zion's translate.cpp never generalizes a local let during
// monomorphization either, only top-level declarations get the
// worklist treatment.
//
// Every top-level declaration, and every nested lambda found while
// translating one, is lowered to a typedast.Function: a set of basic
// blocks reached from an entry label, ending in terminators (Goto,
// CondBranch, Return) rather than staying a nested expression tree for
// control flow, matching zion's src/lower.cpp block-graph shape. The
// Translator tracks the currently-open block on its fb field exactly
// the way spec's "returns" flag is meant to: fb.cur going nil means the
// path just translated has returned, broken, or continued on every
// branch, and any further statement in the same block is unreachable.
package mono

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ziontype/zinfer/internal/ast"
	zerrors "github.com/ziontype/zinfer/internal/errors"
	"github.com/ziontype/zinfer/internal/infer"
	"github.com/ziontype/zinfer/internal/match"
	"github.com/ziontype/zinfer/internal/solve"
	"github.com/ziontype/zinfer/internal/typedast"
	"github.com/ziontype/zinfer/internal/types"
)

// DefnID identifies one monomorphic instantiation of a named global:
// its source name together with the fully ground type it is needed at.
type DefnID struct {
	Name string
	Type types.Type
}

// Key renders the DefnID as the stable string identity used everywhere
// a map key or set membership check is needed, since types.Type is not
// itself a comparable Go value (TyApp/TyLambda hold slices).
func (d DefnID) Key() string {
	return fmt.Sprintf("%s :: %s", d.Name, types.NormalizeTypeName(d.Type))
}

// MangledName is a identifier-safe rendering of Key, suitable as the
// symbol name an eventual code generator emits for this instantiation.
func (d DefnID) MangledName() string {
	r := strings.NewReplacer(" ", "_", "::", "$", "(", "", ")", "", ",", "_", "->", "to", "<", "_", ">", "", "{", "", "}", "")
	return r.Replace(d.Key())
}

// DefnRef is one call site that demanded a DefnID, kept for diagnostics
// (zion's needed_defns_t entries carry the same pair).
type DefnRef struct {
	Location ast.Pos
	From     DefnID
}

// NeededDefns is the demand-driven worklist: every DefnID discovered so
// far, and the ordered set of call sites that asked for it.
type NeededDefns struct {
	order   []string
	ids     map[string]DefnID
	refs    map[string][]DefnRef
	visited map[string]bool
}

// NewNeededDefns creates an empty worklist.
func NewNeededDefns() *NeededDefns {
	return &NeededDefns{
		ids:     map[string]DefnID{},
		refs:    map[string][]DefnRef{},
		visited: map[string]bool{},
	}
}

// Insert records that id is needed, because from referenced it at loc.
// First-time insertion enqueues id onto the pending worklist order.
func (n *NeededDefns) Insert(id DefnID, loc ast.Pos, from DefnID) {
	key := id.Key()
	if _, ok := n.ids[key]; !ok {
		n.ids[key] = id
		n.order = append(n.order, key)
	}
	n.refs[key] = append(n.refs[key], DefnRef{Location: loc, From: from})
}

// Pop removes and returns the next not-yet-visited DefnID in discovery
// order, or ok=false once the worklist is drained.
func (n *NeededDefns) Pop() (DefnID, bool) {
	for len(n.order) > 0 {
		key := n.order[0]
		n.order = n.order[1:]
		if n.visited[key] {
			continue
		}
		n.visited[key] = true
		return n.ids[key], true
	}
	return DefnID{}, false
}

// loopLabels is the pair of block labels an enclosing ast.While gives
// its body, so a nested ast.Break/ast.Continue knows where to jump.
type loopLabels struct {
	header string
	exit   string
}

// fnBuilder accumulates the basic blocks of one typedast.Function while
// it is being translated. cur is the block instructions are currently
// appended to; cur == nil means the path just translated already ended
// in a terminator (Goto/CondBranch/Return) on every branch, the block
// builder's own stand-in for spec's mutable "returns" flag.
type fnBuilder struct {
	blocks             []*typedast.Block
	cur                *typedast.Block
	seq                int
	loops              []loopLabels
	usedExplicitReturn bool
}

func newFnBuilder() *fnBuilder { return &fnBuilder{} }

// label mints a fresh, unique block or slot name.
func (fb *fnBuilder) label(prefix string) string {
	fb.seq++
	return fmt.Sprintf("%s%d", prefix, fb.seq)
}

func (fb *fnBuilder) startBlock(name string) {
	b := &typedast.Block{Name: name}
	fb.blocks = append(fb.blocks, b)
	fb.cur = b
}

func (fb *fnBuilder) emit(n typedast.Node) {
	fb.cur.Instructions = append(fb.cur.Instructions, n)
}

// terminate appends n as the current block's terminator and seals the
// block: fb.cur goes nil, marking this path as having returned.
func (fb *fnBuilder) terminate(n typedast.Node) {
	fb.cur.Instructions = append(fb.cur.Instructions, n)
	fb.cur = nil
}

// Translator monomorphizes a flat, prefixed program: a name -> decl
// expression map plus each name's generalized scheme, against a
// constraint generator shared with internal/infer so sub-expression
// types can be re-derived on demand rather than carried in a persistent
// typing map.
type Translator struct {
	Decls   map[string]ast.Expr
	Schemes map[string]*types.Scheme
	Gen     *infer.Generator
	BaseEnv *types.Env
	Needed  *NeededDefns
	Matches *match.Lattice

	// fb is the block builder for whichever typedast.Function is
	// currently being translated. texpr reads/writes it directly so
	// control-flow cases (Conditional/Block/While/Break/Continue/Return)
	// don't need a parallel parameter threaded through every call -
	// buildFunction saves/restores it around each nested function value
	// (a closure literal), so re-entrant translation nests correctly on
	// the Go call stack.
	fb *fnBuilder
}

// NewTranslator builds a Translator over a flat program. The pattern-match
// lattice is built from the same constructor table the constraint
// generator already holds, so every match arm is checked for
// exhaustiveness and reachability as it is monomorphized.
func NewTranslator(decls map[string]ast.Expr, schemes map[string]*types.Scheme, gen *infer.Generator, baseEnv *types.Env) *Translator {
	return &Translator{
		Decls:   decls,
		Schemes: schemes,
		Gen:     gen,
		BaseEnv: baseEnv,
		Needed:  NewNeededDefns(),
		Matches: match.NewLattice(gen.Ctors),
	}
}

// scrutTypeName extracts the head type name a scrutinee's concrete,
// fully-resolved type names - the only handle the pattern-match lattice
// needs to look up a data type's sibling constructors.
func scrutTypeName(t types.Type) string {
	switch ty := t.(type) {
	case *types.TyId:
		return ty.Name
	case *types.TyApp:
		return ty.Operator
	default:
		return ""
	}
}

// Translate demand-drives the worklist starting from entry, returning
// every monomorphic definition reached.
func (tr *Translator) Translate(entry DefnID) (*typedast.Program, error) {
	prog := &typedast.Program{Entry: entry.Key(), Defns: map[string]typedast.Node{}}
	tr.Needed.Insert(entry, ast.Pos{}, entry)

	for {
		id, ok := tr.Needed.Pop()
		if !ok {
			break
		}
		body, ok := tr.Decls[id.Name]
		if !ok {
			return nil, zerrors.Wrap(zerrors.New(zerrors.UNI004, ast.Pos{}, fmt.Sprintf("monomorphization needs undeclared global %q", id.Name)))
		}
		fn, err := tr.translateDefn(id, body, tr.BaseEnv)
		if err != nil {
			return nil, err
		}
		prog.Defns[id.Key()] = fn
	}
	return prog, nil
}

// translateDefn produces the typedast.Function for one top-level
// declaration. A lambda-chain body uncurries into Function's Params via
// texpr's *ast.Lambda case; any other body becomes a zero-parameter
// Function, so every Program.Defns entry is uniformly a *typedast.Function.
func (tr *Translator) translateDefn(id DefnID, body ast.Expr, env *types.Env) (*typedast.Function, error) {
	if err := groundOrError(id.Type, body.Position(), body.String()); err != nil {
		return nil, err
	}
	if _, ok := body.(*ast.Lambda); ok {
		node, err := tr.texpr(id, body, map[string]bool{}, id.Type, env)
		if err != nil {
			return nil, err
		}
		fn, ok := node.(*typedast.Function)
		if !ok {
			return nil, fmt.Errorf("mono: expected *typedast.Function translating lambda decl %q, got %T", id.Name, node)
		}
		return fn, nil
	}
	return tr.buildFunction(id, nil, body, map[string]bool{}, id.Type, env)
}

// paramSpec is one uncurried lambda parameter: its name and its
// concrete, already-resolved type.
type paramSpec struct {
	name string
	ty   types.Type
}

// buildFunction opens a fresh fnBuilder, translates body as the
// function's tail expression, and wraps a trailing Return around
// whatever value it produced if body didn't already terminate every
// path itself (an explicit return/break/continue inside an exhaustive
// conditional, for instance). fnType is the function's own type,
// recorded on the returned node's base - for a zero-parameter Function
// it is simply resultTarget.
func (tr *Translator) buildFunction(forDefn DefnID, params []paramSpec, body ast.Expr, bound map[string]bool, resultTarget types.Type, env *types.Env) (*typedast.Function, error) {
	saved := tr.fb
	fb := newFnBuilder()
	tr.fb = fb
	fb.startBlock(fb.label("entry"))

	newBound, newEnv := bound, env
	args := make([]*typedast.Argument, len(params))
	for i, p := range params {
		args[i] = typedast.NewArgument(p.ty, body.Position(), i, p.name)
		newBound = extend(newBound, p.name)
		newEnv = newEnv.Extend(p.name, &types.Scheme{Type: p.ty})
	}

	fnType := resultTarget
	for i := len(params) - 1; i >= 0; i-- {
		fnType = types.Arrow(params[i].ty, fnType)
	}

	val, err := tr.texpr(forDefn, body, newBound, resultTarget, newEnv)
	if err != nil {
		tr.fb = saved
		return nil, err
	}
	if fb.cur != nil {
		if fb.usedExplicitReturn && !resultTarget.Equals(types.TyUnit) {
			tr.fb = saved
			return nil, zerrors.Wrap(zerrors.New(zerrors.CTL002, body.Position(),
				fmt.Sprintf("%s uses an explicit return on some paths but not every path returns a value", forDefn.Name)))
		}
		fb.terminate(typedast.NewReturn(resultTarget, body.Position(), val))
	}

	fn := typedast.NewFunction(fnType, body.Position(), args, fb.blocks, fb.blocks[0].Name)
	tr.fb = saved
	return fn, nil
}

// groundOrError rejects a residual type variable surviving to
// monomorphization: MONO001, the translator's own "still polymorphic
// here" failure mode, distinct from CLS001's "no instance" failure.
func groundOrError(t types.Type, loc ast.Pos, context string) error {
	if types.IsGroundType(t) {
		return nil
	}
	rep := zerrors.New(zerrors.MONO001, loc,
		fmt.Sprintf("%s is not fully monomorphic (%s); add an 'as' type hint", context, t))
	return zerrors.Wrap(rep)
}

// texpr is the core recursive translation, named after zion's texpr: it
// walks expr in lockstep with the concrete target type it must have,
// discovering each subexpression's own concrete type by re-running
// constraint generation scoped to just that subexpression and unifying
// it against whatever target shape the parent node structurally implies.
//
// Control-flow cases (Conditional/Block/While/Break/Continue/Return)
// read and mutate tr.fb, the block builder for whichever Function is
// currently being assembled; every other case is a plain value-producing
// node and leaves tr.fb untouched.
func (tr *Translator) texpr(forDefn DefnID, expr ast.Expr, bound map[string]bool, target types.Type, env *types.Env) (typedast.Node, error) {
	if err := groundOrError(target, expr.Position(), expr.String()); err != nil {
		return nil, err
	}

	switch e := expr.(type) {
	case *ast.Literal:
		return typedast.NewLit(target, e.Loc, e.Kind, e.Value), nil

	case *ast.Var:
		if bound[e.ID.Name] {
			return typedast.NewVar(target, e.Loc, e.ID.Name, ""), nil
		}
		id := DefnID{Name: e.ID.Name, Type: types.Eval(target)}
		tr.Needed.Insert(id, e.Loc, forDefn)
		return typedast.NewVar(target, e.Loc, e.ID.Name, id.MangledName()), nil

	case *ast.Lambda:
		arrow, ok := target.(*types.TyApp)
		if !ok || arrow.Operator != types.OpArrow || len(arrow.Args) != 2 {
			return nil, zerrors.Wrap(zerrors.New(zerrors.MONO002, e.Loc,
				fmt.Sprintf("lambda needs an arrow type to monomorphize against, got %s", target)))
		}
		var params []paramSpec
		var cur ast.Expr = e
		curTy := target
		for {
			lam, ok := cur.(*ast.Lambda)
			if !ok {
				break
			}
			arr, ok := curTy.(*types.TyApp)
			if !ok || arr.Operator != types.OpArrow || len(arr.Args) != 2 {
				return nil, zerrors.Wrap(zerrors.New(zerrors.MONO002, lam.Loc,
					fmt.Sprintf("lambda needs an arrow type to monomorphize against, got %s", curTy)))
			}
			params = append(params, paramSpec{name: lam.Param.Name, ty: arr.Args[0]})
			cur = lam.Body
			curTy = arr.Args[1]
		}
		return tr.buildFunction(forDefn, params, cur, bound, curTy, env)

	case *ast.Application:
		fnTy, fnCs, err := tr.Gen.Infer(env, e.Fn)
		if err != nil {
			return nil, err
		}
		argTy, argCs, err := tr.Gen.Infer(env, e.Arg)
		if err != nil {
			return nil, err
		}
		cs := append(append(append([]solve.Constraint{}, fnCs...), argCs...),
			solve.EqC(fnTy, types.Arrow(argTy, target), e.Loc))
		result, err := solve.Solve(cs)
		if err != nil {
			return nil, err
		}
		fnExpr, err := tr.texpr(forDefn, e.Fn, bound, fnTy.Substitute(result.Sub), env)
		if err != nil {
			return nil, err
		}
		argExpr, err := tr.texpr(forDefn, e.Arg, bound, argTy.Substitute(result.Sub), env)
		if err != nil {
			return nil, err
		}
		return typedast.NewCallsite(target, e.Loc, fnExpr, []typedast.Node{argExpr}), nil

	case *ast.Let:
		valueTy, valueCs, err := tr.Gen.Infer(env, e.Value)
		if err != nil {
			return nil, err
		}
		result, err := solve.Solve(valueCs)
		if err != nil {
			return nil, err
		}
		concreteValueTy := valueTy.Substitute(result.Sub)
		if err := groundOrError(concreteValueTy, e.Loc, "let "+e.Name.Name); err != nil {
			return nil, err
		}
		valueExpr, err := tr.texpr(forDefn, e.Value, bound, concreteValueTy, env)
		if err != nil {
			return nil, err
		}
		newBound := extend(bound, e.Name.Name)
		newEnv := env.Extend(e.Name.Name, &types.Scheme{Type: concreteValueTy})
		bodyExpr, err := tr.texpr(forDefn, e.Body, newBound, target, newEnv)
		if err != nil {
			return nil, err
		}
		return typedast.NewLet(target, e.Loc, e.Name.Name, valueExpr, bodyExpr), nil

	case *ast.Fix:
		newBound := extend(bound, e.Name.Name)
		newEnv := env.Extend(e.Name.Name, &types.Scheme{Type: target})
		bodyExpr, err := tr.texpr(forDefn, e.Body, newBound, target, newEnv)
		if err != nil {
			return nil, err
		}
		return typedast.NewFix(target, e.Loc, e.Name.Name, bodyExpr), nil

	case *ast.Conditional:
		return tr.translateConditional(forDefn, e, bound, target, env)

	case *ast.Block:
		return tr.translateBlock(forDefn, e, bound, target, env)

	case *ast.While:
		return tr.translateWhile(forDefn, e, bound, env)

	case *ast.Break:
		return tr.translateBreak(e)

	case *ast.Continue:
		return tr.translateContinue(e)

	case *ast.Return:
		return tr.translateReturn(forDefn, e, bound, target, env)

	case *ast.Tuple:
		app, ok := target.(*types.TyApp)
		if !ok || app.Operator != types.OpTuple || len(app.Args) != len(e.Elements) {
			return nil, zerrors.Wrap(zerrors.New(zerrors.MONO002, e.Loc,
				fmt.Sprintf("tuple needs a %d-arity tuple type, got %s", len(e.Elements), target)))
		}
		elems := make([]typedast.Node, len(e.Elements))
		for i, el := range e.Elements {
			node, err := tr.texpr(forDefn, el, bound, app.Args[i], env)
			if err != nil {
				return nil, err
			}
			elems[i] = node
		}
		return typedast.NewTuple(target, e.Loc, elems), nil

	case *ast.TupleDeref:
		tupleTy, cs, err := tr.Gen.Infer(env, e.Tuple)
		if err != nil {
			return nil, err
		}
		elems := make([]types.Type, e.Index+1)
		for i := range elems {
			if i == e.Index {
				elems[i] = target
			} else {
				elems[i] = &types.TyVar{Name: fmt.Sprintf("_tupderef%d", i)}
			}
		}
		cs = append(cs, solve.EqC(tupleTy, types.TupleType(elems...), e.Loc))
		result, err := solve.Solve(cs)
		if err != nil {
			return nil, err
		}
		tupleExpr, err := tr.texpr(forDefn, e.Tuple, bound, tupleTy.Substitute(result.Sub), env)
		if err != nil {
			return nil, err
		}
		return typedast.NewTupleDeref(target, e.Loc, tupleExpr, e.Index), nil

	case *ast.As:
		if e.Force {
			valueTy, valueCs, err := tr.Gen.Infer(env, e.Value)
			if err != nil {
				return nil, err
			}
			result, err := solve.Solve(valueCs)
			if err != nil {
				return nil, err
			}
			valueExpr, err := tr.texpr(forDefn, e.Value, bound, valueTy.Substitute(result.Sub), env)
			if err != nil {
				return nil, err
			}
			return typedast.NewCast(target, e.Loc, valueExpr), nil
		}
		valueExpr, err := tr.texpr(forDefn, e.Value, bound, target, env)
		if err != nil {
			return nil, err
		}
		return valueExpr, nil

	case *ast.Match:
		scrutTy, scrutCs, err := tr.Gen.Infer(env, e.Scrutinee)
		if err != nil {
			return nil, err
		}
		scrutResult, err := solve.Solve(scrutCs)
		if err != nil {
			return nil, err
		}
		concreteScrutTy := scrutTy.Substitute(scrutResult.Sub)
		if reports := match.Report(match.Check(tr.Matches, scrutTypeName(concreteScrutTy), e.Arms), e.Loc); len(reports) > 0 {
			return nil, zerrors.Wrap(reports[0])
		}
		scrutExpr, err := tr.texpr(forDefn, e.Scrutinee, bound, concreteScrutTy, env)
		if err != nil {
			return nil, err
		}
		arms := make([]typedast.MatchArm, len(e.Arms))
		for i, arm := range e.Arms {
			pat, armBound, armEnv, err := tr.texprPattern(concreteScrutTy, arm.Predicate, bound, env)
			if err != nil {
				return nil, err
			}
			resultExpr, err := tr.texpr(forDefn, arm.Result, armBound, target, armEnv)
			if err != nil {
				return nil, err
			}
			arms[i] = typedast.MatchArm{Pattern: pat, Result: resultExpr}
		}
		return typedast.NewMatch(target, e.Loc, scrutExpr, arms), nil

	case *ast.Builtin:
		args := make([]typedast.Node, len(e.Args))
		fnTy, fnCs, err := tr.builtinScheme(env, e.Name.Name, e.Loc)
		if err != nil {
			return nil, err
		}
		cs := append([]solve.Constraint{}, fnCs...)
		argTypes := make([]types.Type, len(e.Args))
		curFnTy := fnTy
		for i, a := range e.Args {
			argTy, argCs, err := tr.Gen.Infer(env, a)
			if err != nil {
				return nil, err
			}
			cs = append(cs, argCs...)
			result := &types.TyVar{Name: fmt.Sprintf("_builtin_result%d", i)}
			cs = append(cs, solve.EqC(curFnTy, types.Arrow(argTy, result), a.Position()))
			argTypes[i] = argTy
			curFnTy = result
		}
		cs = append(cs, solve.EqC(curFnTy, target, e.Loc))
		result, err := solve.Solve(cs)
		if err != nil {
			return nil, err
		}
		for i, a := range e.Args {
			node, err := tr.texpr(forDefn, a, bound, argTypes[i].Substitute(result.Sub), env)
			if err != nil {
				return nil, err
			}
			args[i] = node
		}
		return typedast.NewBuiltin(target, e.Loc, e.Name.Name, args), nil

	case *ast.Sizeof:
		return typedast.NewLit(types.TyInt, e.Loc, ast.IntLit, int64(0)), nil

	case *ast.StaticPrint:
		return typedast.NewLit(types.TyUnit, e.Loc, ast.UnitLit, nil), nil

	default:
		return nil, fmt.Errorf("mono: unhandled expression node %T", expr)
	}
}

// translateConditional lowers an if/then/else into a CondBranch plus
// then/else/join blocks. A branch that itself returns on every path
// (fb.cur == nil after translating it) contributes no value and no edge
// to the join block; if both branches do, the conditional itself has
// returned on every path and there is no join block at all - spec's
// "a conditional sets the returns flag only if both branches do", with
// fb.cur == nil standing in for the flag. A branch that falls through
// stores its value into a shared slot before jumping to join, which
// loads it back - the join-slot each branch writes doubles as this
// translator's stand-in for a phi node, the same role zion's load_t/
// store_t play for its Ref cells, repurposed here since zion's own
// phi_node_t case was never implemented (lower.cpp asserts on it).
func (tr *Translator) translateConditional(forDefn DefnID, e *ast.Conditional, bound map[string]bool, target types.Type, env *types.Env) (typedast.Node, error) {
	fb := tr.fb
	condNode, err := tr.texpr(forDefn, e.Cond, bound, types.TyBool, env)
	if err != nil {
		return nil, err
	}

	thenLabel := fb.label("then")
	elseLabel := fb.label("else")
	joinLabel := fb.label("join")
	fb.terminate(typedast.NewCondBranch(types.TyUnit, e.Loc, condNode, thenLabel, elseLabel))

	fb.startBlock(thenLabel)
	thenVal, err := tr.texpr(forDefn, e.Then, bound, target, env)
	if err != nil {
		return nil, err
	}
	thenOpen := fb.cur != nil

	var slot string
	if thenOpen {
		slot = fb.label("slot")
		fb.emit(typedast.NewStore(target, e.Loc, slot, thenVal))
		fb.terminate(typedast.NewGoto(types.TyUnit, e.Loc, joinLabel))
	}

	fb.startBlock(elseLabel)
	elseVal, err := tr.texpr(forDefn, e.Else, bound, target, env)
	if err != nil {
		return nil, err
	}
	elseOpen := fb.cur != nil

	if elseOpen {
		if slot == "" {
			slot = fb.label("slot")
		}
		fb.emit(typedast.NewStore(target, e.Loc, slot, elseVal))
		fb.terminate(typedast.NewGoto(types.TyUnit, e.Loc, joinLabel))
	}

	if !thenOpen && !elseOpen {
		// Both branches returned/broke/continued: no value flows out of
		// this conditional on any path, so there's nothing to join.
		return typedast.NewLit(target, e.Loc, ast.UnitLit, nil), nil
	}

	fb.startBlock(joinLabel)
	return typedast.NewLoad(target, e.Loc, slot), nil
}

// translateBlock translates a statement sequence, rejecting any
// statement that follows one which already closed the current block
// (fb.cur == nil) as CTL001 (UnreachableCode) - spec's
// "Dead-code-after-return" check, generalized to break/continue too
// since both close the block the same way a return does.
func (tr *Translator) translateBlock(forDefn DefnID, e *ast.Block, bound map[string]bool, target types.Type, env *types.Env) (typedast.Node, error) {
	var result typedast.Node = typedast.NewLit(types.TyUnit, e.Loc, ast.UnitLit, nil)
	for i, s := range e.Statements {
		if tr.fb.cur == nil {
			return nil, zerrors.Wrap(zerrors.New(zerrors.CTL001, s.Position(),
				"unreachable code after a return, break, or continue"))
		}
		stmtTarget := target
		if i != len(e.Statements)-1 {
			ty, cs, err := tr.Gen.Infer(env, s)
			if err != nil {
				return nil, err
			}
			solved, err := solve.Solve(cs)
			if err != nil {
				return nil, err
			}
			ty = ty.Substitute(solved.Sub)
			if !types.IsGroundType(ty) {
				// A statement evaluated only for effect (chiefly return,
				// break, continue - the generator deliberately gives
				// return a fresh, unconstrained type since control never
				// falls through past it) leaves nothing to unify its
				// type against; Unit stands in, matching the rest of
				// this block's "evaluated for effect" statements.
				ty = types.TyUnit
			}
			stmtTarget = ty
		}
		node, err := tr.texpr(forDefn, s, bound, stmtTarget, env)
		if err != nil {
			return nil, err
		}
		result = node
	}
	return result, nil
}

// translateWhile lowers a while loop into header/body/exit blocks: the
// header re-evaluates the condition and branches into the body or out
// to exit, and the body jumps back to the header when it falls through
// normally. Per spec, a loop never sets the returns flag: translateWhile
// always leaves fb parked in the (always reachable) exit block, no
// matter how the body terminated internally.
func (tr *Translator) translateWhile(forDefn DefnID, e *ast.While, bound map[string]bool, env *types.Env) (typedast.Node, error) {
	fb := tr.fb
	headerLabel := fb.label("loop_header")
	bodyLabel := fb.label("loop_body")
	exitLabel := fb.label("loop_exit")

	fb.terminate(typedast.NewGoto(types.TyUnit, e.Loc, headerLabel))
	fb.startBlock(headerLabel)
	condNode, err := tr.texpr(forDefn, e.Cond, bound, types.TyBool, env)
	if err != nil {
		return nil, err
	}
	fb.terminate(typedast.NewCondBranch(types.TyUnit, e.Loc, condNode, bodyLabel, exitLabel))

	fb.startBlock(bodyLabel)
	bodyTy, bodyCs, err := tr.Gen.Infer(env, e.Body)
	if err != nil {
		return nil, err
	}
	bodyResult, err := solve.Solve(bodyCs)
	if err != nil {
		return nil, err
	}
	bodyTy = bodyTy.Substitute(bodyResult.Sub)
	if !types.IsGroundType(bodyTy) {
		// A body ending in return/break/continue carries no real value
		// type of its own (§4.7: loop bodies are evaluated for effect).
		bodyTy = types.TyUnit
	}
	fb.loops = append(fb.loops, loopLabels{header: headerLabel, exit: exitLabel})
	_, err = tr.texpr(forDefn, e.Body, bound, bodyTy, env)
	fb.loops = fb.loops[:len(fb.loops)-1]
	if err != nil {
		return nil, err
	}
	if fb.cur != nil {
		fb.terminate(typedast.NewGoto(types.TyUnit, e.Loc, headerLabel))
	}

	fb.startBlock(exitLabel)
	return typedast.NewLit(types.TyUnit, e.Loc, ast.UnitLit, nil), nil
}

// translateBreak jumps to the nearest enclosing loop's exit block, or
// reports CTL003 (BreakOutsideLoop) if there is none.
func (tr *Translator) translateBreak(e *ast.Break) (typedast.Node, error) {
	fb := tr.fb
	if len(fb.loops) == 0 {
		return nil, zerrors.Wrap(zerrors.New(zerrors.CTL003, e.Loc, "break used outside of a loop"))
	}
	top := fb.loops[len(fb.loops)-1]
	fb.terminate(typedast.NewGoto(types.TyUnit, e.Loc, top.exit))
	return typedast.NewLit(types.TyUnit, e.Loc, ast.UnitLit, nil), nil
}

// translateContinue jumps back to the nearest enclosing loop's header
// block, or reports CTL004 (ContinueOutsideLoop) if there is none.
func (tr *Translator) translateContinue(e *ast.Continue) (typedast.Node, error) {
	fb := tr.fb
	if len(fb.loops) == 0 {
		return nil, zerrors.Wrap(zerrors.New(zerrors.CTL004, e.Loc, "continue used outside of a loop"))
	}
	top := fb.loops[len(fb.loops)-1]
	fb.terminate(typedast.NewGoto(types.TyUnit, e.Loc, top.header))
	return typedast.NewLit(types.TyUnit, e.Loc, ast.UnitLit, nil), nil
}

// translateReturn closes the current block with a Return terminator,
// setting fb.cur to nil - the path just translated has now returned on
// every branch reaching this point.
func (tr *Translator) translateReturn(forDefn DefnID, e *ast.Return, bound map[string]bool, target types.Type, env *types.Env) (typedast.Node, error) {
	fb := tr.fb
	fb.usedExplicitReturn = true
	var valueNode typedast.Node
	if e.Value != nil {
		valueTy, valueCs, err := tr.Gen.Infer(env, e.Value)
		if err != nil {
			return nil, err
		}
		result, err := solve.Solve(valueCs)
		if err != nil {
			return nil, err
		}
		valueNode, err = tr.texpr(forDefn, e.Value, bound, valueTy.Substitute(result.Sub), env)
		if err != nil {
			return nil, err
		}
	}
	fb.terminate(typedast.NewReturn(target, e.Loc, valueNode))
	return typedast.NewLit(types.TyUnit, e.Loc, ast.UnitLit, nil), nil
}

// texprPattern translates a single match-arm predicate against the
// scrutinee's already-concrete type, returning the names it binds folded
// into bound/env for its result expression's own translation.
func (tr *Translator) texprPattern(scrutTy types.Type, pred ast.Predicate, bound map[string]bool, env *types.Env) (typedast.Pattern, map[string]bool, *types.Env, error) {
	switch p := pred.(type) {
	case *ast.Irrefutable:
		if p.Name == nil {
			return typedast.Irrefutable{}, bound, env, nil
		}
		newBound := extend(bound, p.Name.Name)
		newEnv := env.Extend(p.Name.Name, &types.Scheme{Type: scrutTy})
		return typedast.Irrefutable{Name: p.Name.Name}, newBound, newEnv, nil

	case *ast.TuplePredicate:
		app, ok := scrutTy.(*types.TyApp)
		if !ok || app.Operator != types.OpTuple || len(app.Args) != len(p.Parts) {
			return nil, nil, nil, zerrors.Wrap(zerrors.New(zerrors.MONO002, p.Loc,
				fmt.Sprintf("tuple pattern needs a %d-arity tuple type, got %s", len(p.Parts), scrutTy)))
		}
		newBound, newEnv := bound, env
		if p.Name != nil {
			newBound = extend(newBound, p.Name.Name)
			newEnv = newEnv.Extend(p.Name.Name, &types.Scheme{Type: scrutTy})
		}
		parts := make([]typedast.Pattern, len(p.Parts))
		for i, part := range p.Parts {
			pat, b, ev, err := tr.texprPattern(app.Args[i], part, newBound, newEnv)
			if err != nil {
				return nil, nil, nil, err
			}
			parts[i] = pat
			newBound, newEnv = b, ev
		}
		name := ""
		if p.Name != nil {
			name = p.Name.Name
		}
		return typedast.TuplePattern{Parts: parts, Name: name}, newBound, newEnv, nil

	case *ast.CtorPredicate:
		info, ok := tr.Gen.Ctors.Lookup(p.Ctor.Name)
		if !ok {
			return nil, nil, nil, zerrors.Wrap(zerrors.New(zerrors.UNI004, p.Loc,
				fmt.Sprintf("unknown data constructor: %s", p.Ctor.Name)))
		}
		if len(p.Parts) != info.Arity {
			return nil, nil, nil, zerrors.Wrap(zerrors.New(zerrors.UNI003, p.Loc,
				fmt.Sprintf("constructor %s expects %d argument(s), pattern supplies %d", p.Ctor.Name, info.Arity, len(p.Parts))))
		}
		scheme, _ := tr.Gen.Ctors.Scheme(p.Ctor.Name)
		fnTy, _ := scheme.Instantiate(tr.Gen.Fresh.Next)
		argTypes := make([]types.Type, info.Arity)
		ctorResult := fnTy
		for i := 0; i < info.Arity; i++ {
			arrow, ok := ctorResult.(*types.TyApp)
			if !ok || arrow.Operator != types.OpArrow {
				return nil, nil, nil, zerrors.Wrap(zerrors.New(zerrors.INT001, p.Loc,
					fmt.Sprintf("malformed constructor scheme for %s", p.Ctor.Name)))
			}
			argTypes[i] = arrow.Args[0]
			ctorResult = arrow.Args[1]
		}
		result, err := solve.Solve([]solve.Constraint{solve.EqC(scrutTy, ctorResult, p.Loc)})
		if err != nil {
			return nil, nil, nil, err
		}
		newBound, newEnv := bound, env
		if p.Name != nil {
			newBound = extend(newBound, p.Name.Name)
			newEnv = newEnv.Extend(p.Name.Name, &types.Scheme{Type: scrutTy})
		}
		parts := make([]typedast.Pattern, len(p.Parts))
		for i, part := range p.Parts {
			argTy := argTypes[i].Substitute(result.Sub)
			pat, b, ev, err := tr.texprPattern(argTy, part, newBound, newEnv)
			if err != nil {
				return nil, nil, nil, err
			}
			parts[i] = pat
			newBound, newEnv = b, ev
		}
		name := ""
		if p.Name != nil {
			name = p.Name.Name
		}
		return typedast.CtorPattern{Ctor: p.Ctor.Name, Parts: parts, Name: name}, newBound, newEnv, nil

	case *ast.LiteralPredicate:
		return typedast.LiteralPattern{Value: p.Value}, bound, env, nil

	default:
		return nil, nil, nil, fmt.Errorf("mono: unhandled predicate node %T", pred)
	}
}

func (tr *Translator) builtinScheme(env *types.Env, name string, loc ast.Pos) (types.Type, []solve.Constraint, error) {
	scheme, err := env.Lookup("__builtin_"+name, loc.String())
	if err != nil {
		return nil, nil, zerrors.Wrap(zerrors.New(zerrors.UNI004, loc, fmt.Sprintf("unknown builtin: %s", name)))
	}
	t, preds := scheme.Instantiate(tr.Gen.Fresh.Next)
	cs := make([]solve.Constraint, len(preds))
	for i, p := range preds {
		cs[i] = solve.ClassC(p, loc)
	}
	return t, cs, nil
}

func extend(bound map[string]bool, name string) map[string]bool {
	out := make(map[string]bool, len(bound)+1)
	for k := range bound {
		out[k] = true
	}
	out[name] = true
	return out
}

// SortedDefnKeys returns a Program's definition keys in stable order,
// for deterministic dumps and golden tests.
func SortedDefnKeys(prog *typedast.Program) []string {
	keys := make([]string, 0, len(prog.Defns))
	for k := range prog.Defns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
