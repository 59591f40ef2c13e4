package ast

import (
	"fmt"
	"strings"
)

// Predicate is a single pattern-matching predicate tested against a
// scrutinee inside a Match arm. The four variants below are exactly the
// shapes the pattern-match compiler's lattice operates over: an
// irrefutable binding, a fixed-arity tuple destructure, a data-constructor
// destructure, and a literal equality test.
type Predicate interface {
	Node
	patternNode()
}

// Irrefutable always matches and optionally binds the scrutinee to Name.
type Irrefutable struct {
	Name *Identifier // nil for a bare "_"
	Loc  Pos
}

func (p *Irrefutable) patternNode() {}
func (p *Irrefutable) Position() Pos { return p.Loc }
func (p *Irrefutable) String() string {
	if p.Name == nil {
		return "_"
	}
	return p.Name.Name
}

// TuplePredicate destructures a fixed-arity tuple and optionally binds the
// whole tuple to Name in addition to its parts.
type TuplePredicate struct {
	Parts []Predicate
	Name  *Identifier
	Loc   Pos
}

func (p *TuplePredicate) patternNode() {}
func (p *TuplePredicate) Position() Pos { return p.Loc }
func (p *TuplePredicate) String() string {
	parts := make([]string, len(p.Parts))
	for i, part := range p.Parts {
		parts[i] = part.String()
	}
	s := fmt.Sprintf("(%s)", strings.Join(parts, ", "))
	if p.Name != nil {
		return fmt.Sprintf("%s@%s", p.Name.Name, s)
	}
	return s
}

// CtorPredicate destructures a data constructor application; Parts has
// exactly as many entries as the constructor's declared arity.
type CtorPredicate struct {
	Ctor  Identifier
	Parts []Predicate
	Name  *Identifier
	Loc   Pos
}

func (p *CtorPredicate) patternNode() {}
func (p *CtorPredicate) Position() Pos { return p.Loc }
func (p *CtorPredicate) String() string {
	var s string
	if len(p.Parts) == 0 {
		s = p.Ctor.Name
	} else {
		parts := make([]string, len(p.Parts))
		for i, part := range p.Parts {
			parts[i] = part.String()
		}
		s = fmt.Sprintf("%s(%s)", p.Ctor.Name, strings.Join(parts, ", "))
	}
	if p.Name != nil {
		return fmt.Sprintf("%s@%s", p.Name.Name, s)
	}
	return s
}

// LiteralPredicate matches only a scrutinee equal to Value.
type LiteralPredicate struct {
	Value interface{}
	Kind  LitKind
	Loc   Pos
}

func (p *LiteralPredicate) patternNode() {}
func (p *LiteralPredicate) Position() Pos { return p.Loc }
func (p *LiteralPredicate) String() string { return fmt.Sprintf("%v", p.Value) }
