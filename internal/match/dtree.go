package match

import (
	"fmt"

	"github.com/ziontype/zinfer/internal/ast"
)

// Tree is a compiled dispatch plan for a match expression: a sequence of
// single-tag tests that avoids re-testing a scrutinee's shape once a
// preceding test has already pinned it down.
type Tree interface {
	isTree()
	String() string
}

// Leaf is a matched arm: Body is its original result expression.
type Leaf struct {
	ArmIndex int
	Body     ast.Expr
}

func (*Leaf) isTree()        {}
func (l *Leaf) String() string { return fmt.Sprintf("leaf(arm=%d)", l.ArmIndex) }

// Fail marks a scrutinee shape no arm claims; reaching one at runtime
// means the match was non-exhaustive (the elaborator should have already
// rejected this via Check, so a Fail surviving to codegen is a bug, not
// a user-facing condition).
type Fail struct{}

func (Fail) isTree()        {}
func (Fail) String() string { return "fail" }

// Switch dispatches on the constructor tag found at Path within the
// original scrutinee (Path is a sequence of field indices from the
// root), routing to Cases by tag name or to Default for an
// irrefutable/variable pattern.
type Switch struct {
	Path    []int
	Cases   map[string]Tree
	Default Tree
}

func (*Switch) isTree() {}
func (s *Switch) String() string {
	return fmt.Sprintf("switch(path=%v, cases=%d, default=%v)", s.Path, len(s.Cases), s.Default != nil)
}

// row is one line of the pattern matrix during compilation: the
// remaining predicates still to test for one arm, alongside that arm's
// own identity.
type row struct {
	preds    []ast.Predicate
	armIndex int
	body     ast.Expr
}

// Compiler lowers a match's arms into a Tree by repeatedly picking a
// column to split on and specializing the matrix, the same column-based
// algorithm the teacher's own decision-tree compiler runs over its core
// IR, ported here to operate directly on raw-AST predicates.
type Compiler struct {
	arms []ast.MatchArm
}

// NewCompiler builds a Compiler over one match expression's arms.
func NewCompiler(arms []ast.MatchArm) *Compiler {
	return &Compiler{arms: arms}
}

// Compile produces the dispatch Tree for the arm list.
func (c *Compiler) Compile() Tree {
	matrix := make([]row, len(c.arms))
	for i, arm := range c.arms {
		matrix[i] = row{preds: []ast.Predicate{arm.Predicate}, armIndex: i, body: arm.Result}
	}
	return c.compileMatrix(matrix, nil)
}

func (c *Compiler) compileMatrix(matrix []row, path []int) Tree {
	if len(matrix) == 0 {
		return Fail{}
	}
	if isDefaultRow(matrix[0]) {
		return &Leaf{ArmIndex: matrix[0].armIndex, Body: matrix[0].body}
	}
	return c.buildSwitch(matrix, path, 0)
}

func isDefaultRow(r row) bool {
	for _, p := range r.preds {
		if _, ok := p.(*ast.Irrefutable); !ok {
			return false
		}
	}
	return true
}

func (c *Compiler) buildSwitch(matrix []row, path []int, col int) Tree {
	cases := map[string][]row{}
	var order []string
	var defaults []row

	for _, r := range matrix {
		if col >= len(r.preds) {
			defaults = append(defaults, r)
			continue
		}
		switch p := r.preds[col].(type) {
		case *ast.CtorPredicate:
			if _, seen := cases[p.Ctor.Name]; !seen {
				order = append(order, p.Ctor.Name)
			}
			cases[p.Ctor.Name] = append(cases[p.Ctor.Name], specializeCtor(r, col, p))
		case *ast.LiteralPredicate:
			tag := literalTag(p)
			if _, seen := cases[tag]; !seen {
				order = append(order, tag)
			}
			cases[tag] = append(cases[tag], specializeLiteral(r, col))
		case *ast.TuplePredicate:
			const tupleTag = "(,)"
			if _, seen := cases[tupleTag]; !seen {
				order = append(order, tupleTag)
			}
			cases[tupleTag] = append(cases[tupleTag], specializeTuple(r, col, p))
		default:
			defaults = append(defaults, specializeWildcard(r, col))
		}
	}

	if len(cases) == 0 {
		return c.compileMatrix(defaults, path)
	}

	sw := &Switch{Path: append(append([]int{}, path...), col), Cases: map[string]Tree{}}
	for _, tag := range order {
		sw.Cases[tag] = c.compileMatrix(cases[tag], sw.Path)
	}
	if len(defaults) > 0 {
		sw.Default = c.compileMatrix(defaults, sw.Path)
	} else {
		sw.Default = Fail{}
	}
	return sw
}

// specializeCtor removes column col's ctor test and splices the
// constructor's own sub-patterns in its place, so later columns test
// one field at a time instead of the whole constructor application.
func specializeCtor(r row, col int, p *ast.CtorPredicate) row {
	preds := make([]ast.Predicate, 0, len(r.preds)-1+len(p.Parts))
	preds = append(preds, r.preds[:col]...)
	preds = append(preds, p.Parts...)
	preds = append(preds, r.preds[col+1:]...)
	return row{preds: preds, armIndex: r.armIndex, body: r.body}
}

// specializeTuple splices a tuple's own parts into place exactly like a
// constructor's, since a tuple is a single-constructor product type.
func specializeTuple(r row, col int, p *ast.TuplePredicate) row {
	preds := make([]ast.Predicate, 0, len(r.preds)-1+len(p.Parts))
	preds = append(preds, r.preds[:col]...)
	preds = append(preds, p.Parts...)
	preds = append(preds, r.preds[col+1:]...)
	return row{preds: preds, armIndex: r.armIndex, body: r.body}
}

func specializeLiteral(r row, col int) row {
	preds := make([]ast.Predicate, 0, len(r.preds)-1)
	preds = append(preds, r.preds[:col]...)
	preds = append(preds, r.preds[col+1:]...)
	return row{preds: preds, armIndex: r.armIndex, body: r.body}
}

func specializeWildcard(r row, col int) row {
	return specializeLiteral(r, col)
}
