// Package typedast is the monomorphized, fully-typed intermediate
// representation produced by internal/mono: every node carries a ground
// (variable-free) types.Type, and every node that denotes a top-level
// reference to a polymorphic global is already resolved to the specific
// monomorphic instantiation needed at that call site.
//
// The IR is a control-flow graph per function, matching zion's own
// gen::value_t/gen::block_t shape (src/lower.cpp): a Function owns a set
// of Blocks, each a straight-line Instructions list ending in exactly one
// terminator (Goto, CondBranch, or Return). return/break/continue all
// compile down to a terminator rather than staying nested expression
// forms, so "does every path return" is a property of the block graph,
// not of a recursive tree walk. Every top-level definition is modeled as
// a Function, even a zero-parameter one, for uniformity - the same
// convention zion's gen_env used for non-function globals lowered
// through lower_decl.
package typedast

import (
	"fmt"
	"strings"

	"github.com/ziontype/zinfer/internal/ast"
	"github.com/ziontype/zinfer/internal/types"
)

// Node is the interface every typed node satisfies.
type Node interface {
	GetType() types.Type
	GetSpan() ast.Pos
	String() string
}

// base is embedded by every concrete node to supply Type/Span plumbing.
type base struct {
	Type types.Type
	Span ast.Pos
}

func (b base) GetType() types.Type { return b.Type }
func (b base) GetSpan() ast.Pos    { return b.Span }

func mk(t types.Type, span ast.Pos) base { return base{Type: t, Span: span} }

// Var is a reference to a bound local or a specific monomorphic
// instantiation of a global. MonoName is empty for locals; for globals
// it is the mangled (name, type) key mono.DefnID produced, the symbol
// the eventual code generator must emit a single definition for.
type Var struct {
	base
	Name     string
	MonoName string
}

func (v *Var) String() string {
	if v.MonoName != "" {
		return v.MonoName
	}
	return v.Name
}

// Lit is a monomorphic literal.
type Lit struct {
	base
	Kind  ast.LitKind
	Value interface{}
}

func (l *Lit) String() string { return fmt.Sprintf("%v", l.Value) }

// Argument names one parameter slot of an enclosing Function, addressed
// positionally by Index - the same convention lower.cpp's argument_t
// uses to pick out the Nth llvm::Argument of the function being built,
// rather than by name.
type Argument struct {
	base
	Index int
	Name  string
}

func (a *Argument) String() string { return fmt.Sprintf("%s/%d : %s", a.Name, a.Index, a.Type) }

// Function is a (possibly zero-arity) monomorphic definition: a flat set
// of Blocks reached from Entry. Every ast.Lambda in a chain (curried
// parameters) is uncurried into one Function's Params, matching the
// plural "args" gen::function_t itself carries.
type Function struct {
	base
	Params []*Argument
	Blocks []*Block
	Entry  string
}

func (f *Function) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.Name
	}
	var b strings.Builder
	fmt.Fprintf(&b, "fn(%s) : %s {\n", strings.Join(parts, ", "), f.Type)
	for _, blk := range f.Blocks {
		fmt.Fprintf(&b, "%s", blk)
	}
	b.WriteString("}")
	return b.String()
}

// Block is one basic block: a straight-line Instructions list that must
// end with exactly one terminator node (Goto, CondBranch, or Return).
// Instructions is deliberately a flat Node slice rather than a narrower
// "Instruction" type, since ordinary value-producing nodes (Callsite,
// Let, Store, Builtin, ...) and terminators share the same list the way
// lower_block walks block->instructions uniformly in zion.
type Block struct {
	Name         string
	Instructions []Node
}

func (b *Block) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s:\n", b.Name)
	for _, instr := range b.Instructions {
		fmt.Fprintf(&sb, "    %s\n", instr)
	}
	return sb.String()
}

// Goto is an unconditional jump to Target, the block-graph replacement
// for a ast.Break/ast.Continue/fallthrough edge.
type Goto struct {
	base
	Target string
}

func (g *Goto) String() string { return fmt.Sprintf("goto %s", g.Target) }

// CondBranch is the two-way terminator an ast.Conditional or ast.While
// condition compiles to.
type CondBranch struct {
	base
	Cond Node
	Then string
	Else string
}

func (c *CondBranch) String() string {
	return fmt.Sprintf("branch %s ? %s : %s", c.Cond, c.Then, c.Else)
}

// Callsite applies Callee to Args; the zion original always treats a
// callsite as calling a closure value, never a bare code pointer, and
// this stays a single-argument application (like the source ast.Application
// it replaces) rather than collecting a curried call's whole argument
// spine, since nothing downstream of this IR needs the uncollected shape.
type Callsite struct {
	base
	Callee Node
	Args   []Node
}

func (c *Callsite) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("call %s(%s) : %s", c.Callee, strings.Join(parts, ", "), c.Type)
}

// Return is a block terminator; Value is nil for a bare return.
type Return struct {
	base
	Value Node
}

func (r *Return) String() string {
	if r.Value == nil {
		return "return"
	}
	return fmt.Sprintf("return %s", r.Value)
}

// Store writes Value into the named Slot. The translator uses named
// slots to materialize the value of a conditional expression across a
// CondBranch join, the same role gen::store_t plays in zion for a ref
// cell: "locals[slot] = value" in one predecessor block, read back by a
// Load in the successor, with no phi node required.
type Store struct {
	base
	Slot  string
	Value Node
}

func (s *Store) String() string { return fmt.Sprintf("store %s <- %s", s.Slot, s.Value) }

// Load reads the named Slot a prior Store wrote.
type Load struct {
	base
	Slot string
}

func (l *Load) String() string { return fmt.Sprintf("load %s", l.Slot) }

// Let is a monomorphic local binding (monomorphization resolves any
// polymorphism a let-bound name had at inference time to the single type
// it is actually used at in this translation).
type Let struct {
	base
	Name  string
	Value Node
	Body  Node
}

func (l *Let) String() string {
	return fmt.Sprintf("let %s = %s in %s", l.Name, l.Value, l.Body)
}

// Fix is self-recursive binding, resolved to a single monomorphic type.
type Fix struct {
	base
	Name string
	Body Node
}

func (f *Fix) String() string { return fmt.Sprintf("fix %s = %s", f.Name, f.Body) }

// Tuple is a fixed-arity product value.
type Tuple struct {
	base
	Elements []Node
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

// TupleDeref projects element Index out of Tuple.
type TupleDeref struct {
	base
	Tuple Node
	Index int
}

func (t *TupleDeref) String() string { return fmt.Sprintf("%s.%d", t.Tuple, t.Index) }

// Match dispatches on Scrutinee against an ordered list of arms, each
// already checked complete/reachable by internal/match before translation.
type Match struct {
	base
	Scrutinee Node
	Arms      []MatchArm
}

// MatchArm pairs a typed pattern with its result expression.
type MatchArm struct {
	Pattern Pattern
	Result  Node
}

func (m *Match) String() string {
	parts := make([]string, len(m.Arms))
	for i, a := range m.Arms {
		parts[i] = fmt.Sprintf("%s -> %s", a.Pattern, a.Result)
	}
	return fmt.Sprintf("match %s { %s } : %s", m.Scrutinee, strings.Join(parts, "; "), m.Type)
}

// Builtin is a resolved call to a compiler-internal primitive.
type Builtin struct {
	base
	Name string
	Args []Node
}

func (b *Builtin) String() string {
	parts := make([]string, len(b.Args))
	for i, a := range b.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("__builtin_%s(%s) : %s", b.Name, strings.Join(parts, ", "), b.Type)
}

// Pattern is the typed counterpart of ast.Predicate.
type Pattern interface {
	String() string
	patternNode()
}

// Irrefutable always matches, optionally binding Name.
type Irrefutable struct{ Name string }

func (p Irrefutable) patternNode() {}
func (p Irrefutable) String() string {
	if p.Name == "" {
		return "_"
	}
	return p.Name
}

// TuplePattern destructures a tuple.
type TuplePattern struct {
	Parts []Pattern
	Name  string
}

func (p TuplePattern) patternNode() {}
func (p TuplePattern) String() string {
	parts := make([]string, len(p.Parts))
	for i, part := range p.Parts {
		parts[i] = part.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

// CtorPattern matches a data constructor's tag and destructures its fields.
type CtorPattern struct {
	Ctor  string
	Parts []Pattern
	Name  string
}

func (p CtorPattern) patternNode() {}
func (p CtorPattern) String() string {
	if len(p.Parts) == 0 {
		return p.Ctor
	}
	parts := make([]string, len(p.Parts))
	for i, part := range p.Parts {
		parts[i] = part.String()
	}
	return fmt.Sprintf("%s(%s)", p.Ctor, strings.Join(parts, ", "))
}

// LiteralPattern matches an exact literal value.
type LiteralPattern struct{ Value interface{} }

func (p LiteralPattern) patternNode()   {}
func (p LiteralPattern) String() string { return fmt.Sprintf("%v", p.Value) }

// Cast is a forceful representation-changing ascription: internal/mono
// emits this instead of unifying Value's type with the target, since a
// forceful cast explicitly opts out of the structural constraint a
// non-forceful "as" would otherwise impose.
type Cast struct {
	base
	Value Node
}

func (c *Cast) String() string { return fmt.Sprintf("(%s as! %s)", c.Value, c.Type) }

// Constructors. internal/mono builds every node through these rather
// than touching the unexported base field directly.

func NewVar(t types.Type, span ast.Pos, name, monoName string) *Var {
	return &Var{base: mk(t, span), Name: name, MonoName: monoName}
}

func NewLit(t types.Type, span ast.Pos, kind ast.LitKind, value interface{}) *Lit {
	return &Lit{base: mk(t, span), Kind: kind, Value: value}
}

func NewArgument(t types.Type, span ast.Pos, index int, name string) *Argument {
	return &Argument{base: mk(t, span), Index: index, Name: name}
}

func NewFunction(t types.Type, span ast.Pos, params []*Argument, blocks []*Block, entry string) *Function {
	return &Function{base: mk(t, span), Params: params, Blocks: blocks, Entry: entry}
}

func NewGoto(t types.Type, span ast.Pos, target string) *Goto {
	return &Goto{base: mk(t, span), Target: target}
}

func NewCondBranch(t types.Type, span ast.Pos, cond Node, then, els string) *CondBranch {
	return &CondBranch{base: mk(t, span), Cond: cond, Then: then, Else: els}
}

func NewCallsite(t types.Type, span ast.Pos, callee Node, args []Node) *Callsite {
	return &Callsite{base: mk(t, span), Callee: callee, Args: args}
}

func NewReturn(t types.Type, span ast.Pos, value Node) *Return {
	return &Return{base: mk(t, span), Value: value}
}

func NewStore(t types.Type, span ast.Pos, slot string, value Node) *Store {
	return &Store{base: mk(t, span), Slot: slot, Value: value}
}

func NewLoad(t types.Type, span ast.Pos, slot string) *Load {
	return &Load{base: mk(t, span), Slot: slot}
}

func NewLet(t types.Type, span ast.Pos, name string, value, body Node) *Let {
	return &Let{base: mk(t, span), Name: name, Value: value, Body: body}
}

func NewFix(t types.Type, span ast.Pos, name string, body Node) *Fix {
	return &Fix{base: mk(t, span), Name: name, Body: body}
}

func NewTuple(t types.Type, span ast.Pos, elems []Node) *Tuple {
	return &Tuple{base: mk(t, span), Elements: elems}
}

func NewTupleDeref(t types.Type, span ast.Pos, tuple Node, index int) *TupleDeref {
	return &TupleDeref{base: mk(t, span), Tuple: tuple, Index: index}
}

func NewMatch(t types.Type, span ast.Pos, scrutinee Node, arms []MatchArm) *Match {
	return &Match{base: mk(t, span), Scrutinee: scrutinee, Arms: arms}
}

func NewBuiltin(t types.Type, span ast.Pos, name string, args []Node) *Builtin {
	return &Builtin{base: mk(t, span), Name: name, Args: args}
}

func NewCast(t types.Type, span ast.Pos, value Node) *Cast {
	return &Cast{base: mk(t, span), Value: value}
}

// Program is the full set of monomorphic definitions the translator
// produced, keyed by the (name, type) identity mono.DefnID.Key()
// computes, plus the entry point's own key. Every entry is a *Function,
// including zero-parameter top-level values, kept as the Node interface
// type since that is what every other typedast node satisfies too.
type Program struct {
	Defns map[string]Node
	Entry string
}

func (p *Program) String() string {
	var b strings.Builder
	for name, n := range p.Defns {
		fmt.Fprintf(&b, "%s = %s\n", name, n)
	}
	return b.String()
}
