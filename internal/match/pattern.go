// Package match implements the pattern-match compiler: a small lattice
// of "what values does this pattern cover" (grounded on zion's
// match.h - Nothing, AllOf, a single constructor shape, and a set of
// covered constructor shapes, with intersect/difference/union over
// them), used by the monomorphizing translator to check each match
// expression's arms for exhaustiveness and reachability as it translates
// them, plus
// a decision-tree lowering that turns an arm list into a dispatch tree a
// code generator can walk without re-testing the same tag twice.
package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ziontype/zinfer/internal/ast"
	"github.com/ziontype/zinfer/internal/ctable"
)

// Pattern is one lattice element: the set of scrutinee shapes a group of
// match arms has collectively covered so far.
type Pattern interface {
	patternNode()
	String() string
}

// Nothing is the empty set: nothing has been covered yet. It is the
// identity of Union and the absorbing element of Intersect.
type Nothing struct{}

func (Nothing) patternNode()   {}
func (Nothing) String() string { return "<nothing>" }

// AllOf covers every value of the named type: what a bare wildcard or
// variable-binding pattern contributes.
type AllOf struct{ TypeName string }

func (AllOf) patternNode()    {}
func (a AllOf) String() string { return "_" }

// Ctor covers values built with one specific constructor, recursively
// refined by Args: each Args[i] is itself a lattice element describing
// what's covered of that field, not merely whether the field is present.
type Ctor struct {
	TypeName string
	Name     string
	Args     []Pattern
}

func (Ctor) patternNode() {}
func (c Ctor) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(parts, ", "))
}

// Ctors is a partial union of sibling constructors of one sum type,
// keyed by constructor name. A type is fully covered once every sibling
// name is present and each is itself fully covered.
type Ctors struct {
	TypeName string
	Variants map[string]Ctor
}

func (Ctors) patternNode() {}
func (c Ctors) String() string {
	names := make([]string, 0, len(c.Variants))
	for n := range c.Variants {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = c.Variants[n].String()
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, " | "))
}

// Lattice evaluates Pattern operations against a constructor table, so
// it can tell when a Ctors value has accumulated every sibling of its
// type and therefore equals AllOf.
type Lattice struct {
	Ctors *ctable.Table
}

// NewLattice builds a Lattice over the given constructor table.
func NewLattice(ctors *ctable.Table) *Lattice {
	return &Lattice{Ctors: ctors}
}

// FromPredicate converts a single match-arm predicate into the lattice
// element describing exactly the shapes it matches, relative to a
// scrutinee of the named type.
func (l *Lattice) FromPredicate(typeName string, pred ast.Predicate) Pattern {
	switch p := pred.(type) {
	case *ast.Irrefutable:
		return AllOf{TypeName: typeName}

	case *ast.LiteralPredicate:
		return Ctor{TypeName: typeName, Name: literalTag(p)}

	case *ast.TuplePredicate:
		args := make([]Pattern, len(p.Parts))
		for i, part := range p.Parts {
			args[i] = l.FromPredicate("", part)
		}
		return Ctor{TypeName: typeName, Name: "(,)", Args: args}

	case *ast.CtorPredicate:
		info, ok := l.Ctors.Lookup(p.Ctor.Name)
		ownerType := typeName
		if ok {
			ownerType = info.TypeName
		}
		args := make([]Pattern, len(p.Parts))
		for i, part := range p.Parts {
			argType := ""
			if ok && i < len(info.ArgTypes) {
				argType = info.ArgTypes[i].String()
			}
			args[i] = l.FromPredicate(argType, part)
		}
		return Ctor{TypeName: ownerType, Name: p.Ctor.Name, Args: args}

	default:
		return Nothing{}
	}
}

func literalTag(p *ast.LiteralPredicate) string {
	return fmt.Sprintf("%v", p.Value)
}

// siblings returns the full constructor-name set of a Ctor's owning
// type: its data-constructor siblings from the table, or the two
// literal tags of Bool for a boolean scrutinee, or nil when the domain
// is unbounded (Int/Float/String) or unknown, in which case completeness
// can never be established without a trailing wildcard arm.
func (l *Lattice) siblings(typeName string) ([]string, bool) {
	switch typeName {
	case "Bool":
		return []string{"true", "false"}, true
	case "Int", "Float", "String", "Unit", "":
		return nil, false
	}
	if sibs := l.Ctors.CtorsOfType(typeName); sibs != nil {
		return sibs, true
	}
	return nil, false
}

// Union merges two lattice elements into the shapes either covers.
func (l *Lattice) Union(a, b Pattern) Pattern {
	switch av := a.(type) {
	case Nothing:
		return b
	case AllOf:
		return av
	case Ctor:
		switch bv := b.(type) {
		case Nothing:
			return av
		case AllOf:
			return bv
		case Ctor:
			merged := Ctors{TypeName: av.TypeName, Variants: map[string]Ctor{av.Name: av}}
			return l.Union(merged, bv)
		case Ctors:
			return l.unionCtorsWith(bv, av)
		}
	case Ctors:
		switch bv := b.(type) {
		case Nothing:
			return av
		case AllOf:
			return bv
		case Ctor:
			return l.unionCtorsWith(av, bv)
		case Ctors:
			out := Ctors{TypeName: av.TypeName, Variants: map[string]Ctor{}}
			for k, v := range av.Variants {
				out.Variants[k] = v
			}
			for k, v := range bv.Variants {
				if existing, ok := out.Variants[k]; ok {
					merged := l.unionCtorArgs(existing, v)
					out.Variants[k] = merged
				} else {
					out.Variants[k] = v
				}
			}
			return l.collapseIfComplete(out)
		}
	}
	return Nothing{}
}

func (l *Lattice) unionCtorsWith(cs Ctors, c Ctor) Pattern {
	out := Ctors{TypeName: cs.TypeName, Variants: map[string]Ctor{}}
	for k, v := range cs.Variants {
		out.Variants[k] = v
	}
	if existing, ok := out.Variants[c.Name]; ok {
		out.Variants[c.Name] = l.unionCtorArgs(existing, c)
	} else {
		out.Variants[c.Name] = c
	}
	return l.collapseIfComplete(out)
}

func (l *Lattice) unionCtorArgs(a, b Ctor) Ctor {
	if len(a.Args) != len(b.Args) {
		return a
	}
	args := make([]Pattern, len(a.Args))
	for i := range args {
		args[i] = l.Union(a.Args[i], b.Args[i])
	}
	return Ctor{TypeName: a.TypeName, Name: a.Name, Args: args}
}

// collapseIfComplete promotes a Ctors set to AllOf once every sibling is
// present and each is itself fully covered in its own right.
func (l *Lattice) collapseIfComplete(cs Ctors) Pattern {
	sibs, known := l.siblings(cs.TypeName)
	if !known {
		return cs
	}
	for _, s := range sibs {
		v, ok := cs.Variants[s]
		if !ok {
			return cs
		}
		for _, arg := range v.Args {
			if _, isAll := arg.(AllOf); !isAll {
				if cArg, ok := arg.(Ctor); !ok || !l.isEffectivelyAll(cArg) {
					return cs
				}
			}
		}
	}
	return AllOf{TypeName: cs.TypeName}
}

func (l *Lattice) isEffectivelyAll(c Ctor) bool {
	sibs, known := l.siblings(c.TypeName)
	return known && len(sibs) == 1 && sibs[0] == c.Name && len(c.Args) == 0
}

// Intersect describes the shapes both a and b cover.
func (l *Lattice) Intersect(a, b Pattern) Pattern {
	if _, ok := a.(Nothing); ok {
		return Nothing{}
	}
	if _, ok := b.(Nothing); ok {
		return Nothing{}
	}
	if _, ok := a.(AllOf); ok {
		return b
	}
	if _, ok := b.(AllOf); ok {
		return a
	}
	switch av := a.(type) {
	case Ctor:
		switch bv := b.(type) {
		case Ctor:
			if av.Name != bv.Name || len(av.Args) != len(bv.Args) {
				return Nothing{}
			}
			args := make([]Pattern, len(av.Args))
			for i := range args {
				args[i] = l.Intersect(av.Args[i], bv.Args[i])
				if _, ok := args[i].(Nothing); ok {
					return Nothing{}
				}
			}
			return Ctor{TypeName: av.TypeName, Name: av.Name, Args: args}
		case Ctors:
			if v, ok := bv.Variants[av.Name]; ok {
				return l.Intersect(av, v)
			}
			return Nothing{}
		}
	case Ctors:
		switch bv := b.(type) {
		case Ctor:
			return l.Intersect(bv, av)
		case Ctors:
			out := Ctors{TypeName: av.TypeName, Variants: map[string]Ctor{}}
			for name, v := range av.Variants {
				if other, ok := bv.Variants[name]; ok {
					if r := l.Intersect(v, other); !l.IsNothing(r) {
						if c, ok := r.(Ctor); ok {
							out.Variants[name] = c
						}
					}
				}
			}
			if len(out.Variants) == 0 {
				return Nothing{}
			}
			return out
		}
	}
	return Nothing{}
}

// Difference describes what a covers that b does not: the residual
// coverage still needed after a set of earlier arms (b) has already
// claimed b's shapes. A non-Nothing result for an arm's own coverage
// minus everything before it means that arm is reachable; a non-Nothing
// result for AllOf minus the whole arm list means the match is not
// exhaustive.
func (l *Lattice) Difference(a, b Pattern) Pattern {
	if _, ok := a.(Nothing); ok {
		return Nothing{}
	}
	if _, ok := b.(Nothing); ok {
		return a
	}
	if _, ok := b.(AllOf); ok {
		return Nothing{}
	}
	switch av := a.(type) {
	case AllOf:
		sibs, known := l.siblings(av.TypeName)
		if !known {
			return av
		}
		covered, ok := b.(Ctors)
		if !ok {
			if c, isCtor := b.(Ctor); isCtor {
				covered = Ctors{TypeName: av.TypeName, Variants: map[string]Ctor{c.Name: c}}
			} else {
				return av
			}
		}
		remaining := Ctors{TypeName: av.TypeName, Variants: map[string]Ctor{}}
		for _, s := range sibs {
			v, done := covered.Variants[s]
			for _, arg := range v.Args {
				if _, isAll := arg.(AllOf); !isAll {
					if cArg, ok := arg.(Ctor); !ok || !l.isEffectivelyAll(cArg) {
						done = false
					}
				}
			}
			if !done {
				remaining.Variants[s] = Ctor{TypeName: av.TypeName, Name: s}
			}
		}
		if len(remaining.Variants) == 0 {
			return Nothing{}
		}
		return remaining

	case Ctor:
		switch bv := b.(type) {
		case Ctor:
			if av.Name != bv.Name {
				return av
			}
			args := make([]Pattern, len(av.Args))
			anyLeft := false
			for i := range args {
				if i < len(bv.Args) {
					args[i] = l.Difference(av.Args[i], bv.Args[i])
				} else {
					args[i] = av.Args[i]
				}
				if _, ok := args[i].(Nothing); !ok {
					anyLeft = true
				}
			}
			if !anyLeft {
				return Nothing{}
			}
			return av
		case Ctors:
			if other, ok := bv.Variants[av.Name]; ok {
				return l.Difference(av, other)
			}
			return av
		}
	case Ctors:
		out := Ctors{TypeName: av.TypeName, Variants: map[string]Ctor{}}
		for name, v := range av.Variants {
			switch bv := b.(type) {
			case Ctor:
				if bv.Name == name {
					if r := l.Difference(Pattern(v), Pattern(bv)); !l.IsNothing(r) {
						out.Variants[name] = v
					}
				} else {
					out.Variants[name] = v
				}
			case Ctors:
				if other, ok := bv.Variants[name]; ok {
					if r := l.Difference(Pattern(v), Pattern(other)); !l.IsNothing(r) {
						out.Variants[name] = v
					}
				} else {
					out.Variants[name] = v
				}
			}
		}
		if len(out.Variants) == 0 {
			return Nothing{}
		}
		return out
	}
	return a
}

// IsNothing reports whether p is the empty lattice element.
func (l *Lattice) IsNothing(p Pattern) bool {
	_, ok := p.(Nothing)
	return ok
}

// Witnesses renders an uncovered lattice element as example patterns a
// diagnostic can print, one per top-level alternative still missing.
func (l *Lattice) Witnesses(p Pattern) []string {
	switch v := p.(type) {
	case Nothing:
		return nil
	case AllOf:
		return []string{"_"}
	case Ctor:
		return []string{v.String()}
	case Ctors:
		names := make([]string, 0, len(v.Variants))
		for n := range v.Variants {
			names = append(names, n)
		}
		sort.Strings(names)
		out := make([]string, len(names))
		for i, n := range names {
			out[i] = v.Variants[n].String()
		}
		return out
	}
	return nil
}
