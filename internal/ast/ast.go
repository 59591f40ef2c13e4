// Package ast defines the raw, pre-elaboration syntax tree handed to the
// type-inference core by the parser collaborator (out of scope here).
//
// Every node variant enumerated in the specification's data model is
// represented: Literal, Var, Lambda, Application, Let, Fix, Conditional,
// Block, While, Break, Continue, Return, Tuple, TupleDeref, As, Match,
// Builtin, Sizeof, StaticPrint. Predicates used inside Match arms live in
// ast_patterns.go.
package ast

import (
	"fmt"
	"strings"
)

// Pos is a position in a source file. Two identifiers compare equal when
// their Name is equal; Pos is carried for diagnostics only.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Identifier is a name paired with a source location. Equality is by Name
// alone; Location is non-semantic and ignored by Equals.
type Identifier struct {
	Name string
	Loc  Pos
}

func (id Identifier) Equals(other Identifier) bool { return id.Name == other.Name }
func (id Identifier) String() string                { return id.Name }
func (id Identifier) Position() Pos                 { return id.Loc }

// Node is the base interface every AST node satisfies.
type Node interface {
	String() string
	Position() Pos
}

// Expr is the base interface for raw expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Literal is a constant of a primitive kind.
type Literal struct {
	Kind  LitKind
	Value interface{}
	Loc   Pos
}

type LitKind int

const (
	IntLit LitKind = iota
	FloatLit
	StringLit
	BoolLit
	UnitLit
)

func (l *Literal) exprNode()        {}
func (l *Literal) Position() Pos    { return l.Loc }
func (l *Literal) String() string   { return fmt.Sprintf("%v", l.Value) }

// Var is a free or bound identifier reference.
type Var struct {
	ID  Identifier
	Loc Pos
}

func (v *Var) exprNode()      {}
func (v *Var) Position() Pos  { return v.Loc }
func (v *Var) String() string { return v.ID.Name }

// Lambda is a single-parameter abstraction; multi-arg surface sugar is
// required (per §6) to have been curried by the parser into nested Lambdas.
type Lambda struct {
	Param Identifier
	Body  Expr
	Loc   Pos
}

func (l *Lambda) exprNode()      {}
func (l *Lambda) Position() Pos  { return l.Loc }
func (l *Lambda) String() string { return fmt.Sprintf("(\\%s -> %s)", l.Param.Name, l.Body) }

// Application is function application of a single argument; curried.
type Application struct {
	Fn  Expr
	Arg Expr
	Loc Pos
}

func (a *Application) exprNode()      {}
func (a *Application) Position() Pos  { return a.Loc }
func (a *Application) String() string { return fmt.Sprintf("(%s %s)", a.Fn, a.Arg) }

// Let is a non-recursive binding: let x = value in body.
type Let struct {
	Name  Identifier
	Value Expr
	Body  Expr
	Loc   Pos
}

func (l *Let) exprNode()      {}
func (l *Let) Position() Pos  { return l.Loc }
func (l *Let) String() string { return fmt.Sprintf("let %s = %s in %s", l.Name.Name, l.Value, l.Body) }

// Fix is the explicit recursion operator used to desugar "let rec".
type Fix struct {
	Name Identifier
	Body Expr
	Loc  Pos
}

func (f *Fix) exprNode()      {}
func (f *Fix) Position() Pos  { return f.Loc }
func (f *Fix) String() string { return fmt.Sprintf("fix %s = %s", f.Name.Name, f.Body) }

// Conditional is a three-branch if expression.
type Conditional struct {
	Cond Expr
	Then Expr
	Else Expr
	Loc  Pos
}

func (c *Conditional) exprNode()      {}
func (c *Conditional) Position() Pos  { return c.Loc }
func (c *Conditional) String() string { return fmt.Sprintf("if %s then %s else %s", c.Cond, c.Then, c.Else) }

// Block is a sequence of statements evaluated for effect, the last one for
// value. Used by §4.7's dead-code-after-return check.
type Block struct {
	Statements []Expr
	Loc        Pos
}

func (b *Block) exprNode()     {}
func (b *Block) Position() Pos { return b.Loc }
func (b *Block) String() string {
	parts := make([]string, len(b.Statements))
	for i, s := range b.Statements {
		parts[i] = s.String()
	}
	return fmt.Sprintf("{ %s }", strings.Join(parts, "; "))
}

// While is a condition-checked loop; its type is Unit.
type While struct {
	Cond Expr
	Body Expr
	Loc  Pos
}

func (w *While) exprNode()      {}
func (w *While) Position() Pos  { return w.Loc }
func (w *While) String() string { return fmt.Sprintf("while %s { %s }", w.Cond, w.Body) }

// Break exits the nearest enclosing loop.
type Break struct{ Loc Pos }

func (b *Break) exprNode()      {}
func (b *Break) Position() Pos  { return b.Loc }
func (b *Break) String() string { return "break" }

// Continue restarts the nearest enclosing loop.
type Continue struct{ Loc Pos }

func (c *Continue) exprNode()      {}
func (c *Continue) Position() Pos  { return c.Loc }
func (c *Continue) String() string { return "continue" }

// Return yields a value from the enclosing function.
type Return struct {
	Value Expr // nil for a bare return
	Loc   Pos
}

func (r *Return) exprNode()     {}
func (r *Return) Position() Pos { return r.Loc }
func (r *Return) String() string {
	if r.Value == nil {
		return "return"
	}
	return fmt.Sprintf("return %s", r.Value)
}

// Tuple is a fixed-arity product value.
type Tuple struct {
	Elements []Expr
	Loc      Pos
}

func (t *Tuple) exprNode()     {}
func (t *Tuple) Position() Pos { return t.Loc }
func (t *Tuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

// TupleDeref projects the element at Index out of a tuple-typed Tuple expr.
type TupleDeref struct {
	Tuple Expr
	Index int
	Loc   Pos
}

func (t *TupleDeref) exprNode()      {}
func (t *TupleDeref) Position() Pos  { return t.Loc }
func (t *TupleDeref) String() string { return fmt.Sprintf("%s.%d", t.Tuple, t.Index) }

// As is a type ascription. Force controls whether it is a non-forceful
// (structural-constraint) cast or a forceful (representation-changing,
// no structural constraint) cast — see spec.md §4.3 and §9.
type As struct {
	Value Expr
	Type  interface{} // *types.Type, kept opaque here to avoid an import cycle
	Force bool
	Loc   Pos
}

func (a *As) exprNode()      {}
func (a *As) Position() Pos  { return a.Loc }
func (a *As) String() string { return fmt.Sprintf("(%s as %v)", a.Value, a.Type) }

// Match dispatches on a scrutinee against an ordered list of pattern arms.
type Match struct {
	Scrutinee Expr
	Arms      []MatchArm
	Loc       Pos
}

// MatchArm is one alternative of a Match: a predicate plus its result.
type MatchArm struct {
	Predicate Predicate
	Result    Expr
}

func (m *Match) exprNode()     {}
func (m *Match) Position() Pos { return m.Loc }
func (m *Match) String() string {
	parts := make([]string, len(m.Arms))
	for i, a := range m.Arms {
		parts[i] = fmt.Sprintf("%s -> %s", a.Predicate, a.Result)
	}
	return fmt.Sprintf("match %s { %s }", m.Scrutinee, strings.Join(parts, "; "))
}

// Builtin is a reference to a compiler-internal operation not expressible
// in surface syntax (e.g. the primitive arithmetic underlying a class
// method's default dictionary entry).
type Builtin struct {
	Name Identifier
	Args []Expr
	Loc  Pos
}

func (b *Builtin) exprNode()     {}
func (b *Builtin) Position() Pos { return b.Loc }
func (b *Builtin) String() string {
	parts := make([]string, len(b.Args))
	for i, a := range b.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("__builtin_%s(%s)", b.Name.Name, strings.Join(parts, ", "))
}

// Sizeof yields the Int size of a type; the type is opaque here (see As).
type Sizeof struct {
	Type interface{}
	Loc  Pos
}

func (s *Sizeof) exprNode()      {}
func (s *Sizeof) Position() Pos  { return s.Loc }
func (s *Sizeof) String() string { return fmt.Sprintf("sizeof(%v)", s.Type) }

// StaticPrint elaborates to Unit (see §4.7's texpr handling); inference
// and translation print no diagnostic for it.
type StaticPrint struct {
	Expr Expr
	Loc  Pos
}

func (s *StaticPrint) exprNode()      {}
func (s *StaticPrint) Position() Pos  { return s.Loc }
func (s *StaticPrint) String() string { return fmt.Sprintf("static_print(%s)", s.Expr) }

// Decl is a single top-level value binding: name = value.
type Decl struct {
	Name  Identifier
	Value Expr
	Loc   Pos
}

func (d *Decl) Position() Pos  { return d.Loc }
func (d *Decl) String() string { return fmt.Sprintf("%s = %s", d.Name.Name, d.Value) }

// TypeDecl declares a (possibly parameterized) data type and is consumed
// by declaration processing to populate the data-constructor table.
type TypeDecl struct {
	ID      Identifier
	Params  []Identifier
	Ctors   []CtorDecl
	Loc     Pos
}

// CtorDecl is one data constructor of a TypeDecl, with its argument types
// as opaque type expressions (resolved by the caller against internal/types).
type CtorDecl struct {
	Name Identifier
	Args []interface{} // []*types.Type
}

func (t *TypeDecl) Position() Pos  { return t.Loc }
func (t *TypeDecl) String() string { return fmt.Sprintf("type %s", t.ID.Name) }

// TypeClass declares a class and its method signatures.
type TypeClass struct {
	ID           Identifier
	Param        Identifier
	Superclasses []Identifier
	Methods      map[string]interface{} // method name -> *types.Scheme
	Loc          Pos
}

func (t *TypeClass) Position() Pos  { return t.Loc }
func (t *TypeClass) String() string { return fmt.Sprintf("class %s", t.ID.Name) }

// Instance declares an implementation of a class at a specific type.
type Instance struct {
	Class    Identifier
	TypeArgs []interface{} // []*types.Type
	Where    []interface{} // []*types.ClassPredicate, predicates that must hold
	Bindings []Decl        // method_name = implementation
	Loc      Pos
}

func (i *Instance) Position() Pos  { return i.Loc }
func (i *Instance) String() string { return fmt.Sprintf("instance %s", i.Class.Name) }

// Module is a single compilation unit as produced by the parser.
type Module struct {
	Name        string
	Decls       []*Decl
	TypeDecls   []*TypeDecl
	TypeClasses []*TypeClass
	Instances   []*Instance
	Loc         Pos
}

func (m *Module) Position() Pos  { return m.Loc }
func (m *Module) String() string { return fmt.Sprintf("module %s", m.Name) }
