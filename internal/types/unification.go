package types

import "fmt"

// Unify computes the most general unifier of a and b, or returns a
// *TypeCheckError describing why no unifier exists. The returned
// substitution, composed with any substitution already in scope, yields a
// substitution under which a and b become syntactically identical.
//
// Unification proceeds structurally over the four type-expression
// variants, after passing both sides through Eval. A TyLambda unifies
// only with another TyLambda of the same arity, by renaming the second
// one's parameters to the first one's and unifying the bodies.
func Unify(a, b Type, pos string) (Substitution, error) {
	a, b = Eval(a), Eval(b)

	if va, ok := a.(*TyVar); ok {
		return bindVar(va, b, pos)
	}
	if vb, ok := b.(*TyVar); ok {
		return bindVar(vb, a, pos)
	}

	switch na := a.(type) {
	case *TyId:
		nb, ok := b.(*TyId)
		if !ok || na.Name != nb.Name {
			return nil, NewTypeMismatchError(pos, a, b)
		}
		return Substitution{}, nil

	case *TyApp:
		nb, ok := b.(*TyApp)
		if !ok || na.Operator != nb.Operator || len(na.Args) != len(nb.Args) {
			return nil, NewTypeMismatchError(pos, a, b)
		}
		sub := Substitution{}
		for i := range na.Args {
			s, err := Unify(na.Args[i].Substitute(sub), nb.Args[i].Substitute(sub), pos)
			if err != nil {
				return nil, err
			}
			sub = ComposeSubs(s, sub)
		}
		return sub, nil

	case *TyLambda:
		nb, ok := b.(*TyLambda)
		if !ok || len(na.Params) != len(nb.Params) {
			return nil, NewTypeMismatchError(pos, a, b)
		}
		rename := make(Substitution, len(na.Params))
		for i, p := range nb.Params {
			rename[p] = &TyVar{Name: na.Params[i]}
		}
		return Unify(na.Body, nb.Body.Substitute(rename), pos)

	default:
		return nil, NewTypeMismatchError(pos, a, b)
	}
}

// bindVar unifies type variable v with t, performing the occurs check and
// propagating v's class predicates onto the result.
func bindVar(v *TyVar, t Type, pos string) (Substitution, error) {
	if other, ok := t.(*TyVar); ok && other.Name == v.Name {
		return Substitution{}, nil
	}
	if occurs(v.Name, t) {
		return nil, NewOccursCheckError(pos, v, t)
	}
	s := Substitution{v.Name: t}
	if len(v.Predicates) > 0 {
		result := attachPredicates(t, v.Predicates, Substitution{})
		s[v.Name] = result
	}
	return s, nil
}

func occurs(name string, t Type) bool {
	_, found := t.FreeVars()[name]
	return found
}

// UnifyAll unifies two equal-length slices pairwise left to right,
// composing the resulting substitutions and applying each one to the
// remaining pairs before proceeding, exactly as the constraint solver's
// top-level loop does.
func UnifyAll(as, bs []Type, pos string) (Substitution, error) {
	if len(as) != len(bs) {
		return nil, fmt.Errorf("%s: arity mismatch: %d vs %d", pos, len(as), len(bs))
	}
	sub := Substitution{}
	for i := range as {
		s, err := Unify(as[i].Substitute(sub), bs[i].Substitute(sub), pos)
		if err != nil {
			return nil, err
		}
		sub = ComposeSubs(s, sub)
	}
	return sub, nil
}
