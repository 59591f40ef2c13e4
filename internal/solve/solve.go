// Package solve implements the constraint solver: given the equality and
// class-predicate constraints the constraint generator produced for one
// declaration, compute the substitution that discharges every equality
// constraint, left to right, composing as it goes.
package solve

import (
	"github.com/ziontype/zinfer/internal/ast"
	zerrors "github.com/ziontype/zinfer/internal/errors"
	"github.com/ziontype/zinfer/internal/types"
)

// Kind distinguishes the two constraint shapes the generator emits.
type Kind int

const (
	// Eq requires A and B to unify.
	Eq Kind = iota
	// Class requires Pred to eventually be discharged by an instance.
	Class
)

// Constraint is one obligation produced during constraint generation.
type Constraint struct {
	Kind Kind
	A, B types.Type
	Pred types.ClassPredicate
	Pos  ast.Pos
}

// EqC builds an equality constraint.
func EqC(a, b types.Type, pos ast.Pos) Constraint {
	return Constraint{Kind: Eq, A: a, B: b, Pos: pos}
}

// ClassC builds a class-predicate constraint.
func ClassC(pred types.ClassPredicate, pos ast.Pos) Constraint {
	return Constraint{Kind: Class, Pred: pred, Pos: pos}
}

// Result is the outcome of solving a constraint set: the substitution
// that satisfies every equality constraint, and the class predicates
// that remain (with the substitution already applied), for the
// class/instance resolver and then generalization to handle.
type Result struct {
	Sub        types.Substitution
	Predicates []types.ClassPredicate
}

// Solve processes constraints left to right. Each equality constraint is
// unified against the substitution accumulated so far (so an early
// binding narrows every later constraint); each class constraint has the
// accumulated substitution applied and is carried through to Result
// unresolved — resolution is the class/instance resolver's job, not the
// solver's, by design: the solver never consults an instance registry.
func Solve(constraints []Constraint) (*Result, error) {
	sub := types.Substitution{}
	var preds []types.ClassPredicate

	for _, c := range constraints {
		switch c.Kind {
		case Eq:
			a := c.A.Substitute(sub)
			b := c.B.Substitute(sub)
			s, err := types.Unify(a, b, c.Pos.String())
			if err != nil {
				code := zerrors.UNI001
				if tce, ok := err.(*types.TypeCheckError); ok {
					switch tce.Kind {
					case types.OccursCheckError:
						code = zerrors.UNI002
					case types.KindMismatchError:
						code = zerrors.UNI003
					}
				}
				return nil, zerrors.Wrap(zerrors.New(code, c.Pos, err.Error()))
			}
			sub = types.ComposeSubs(s, sub)
		case Class:
			preds = append(preds, c.Pred)
		}
	}

	resolved := make([]types.ClassPredicate, len(preds))
	for i, p := range preds {
		resolved[i] = p.Substitute(sub)
	}

	return &Result{Sub: sub, Predicates: dedup(resolved)}, nil
}

func dedup(preds []types.ClassPredicate) []types.ClassPredicate {
	var out []types.ClassPredicate
	for _, p := range preds {
		dup := false
		for _, q := range out {
			if p.Equals(q) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}
