package types

import "fmt"

// Scheme is a type scheme ∀ᾱ. P ⇒ τ: a type quantified over a set of
// type variables, qualified by the class predicates owed on those
// variables.
type Scheme struct {
	Vars       []string
	Predicates []ClassPredicate
	Type       Type
}

func (s *Scheme) String() string {
	if len(s.Vars) == 0 && len(s.Predicates) == 0 {
		return s.Type.String()
	}
	out := ""
	if len(s.Vars) > 0 {
		vars := ""
		for i, v := range s.Vars {
			if i > 0 {
				vars += " "
			}
			vars += v
		}
		out = fmt.Sprintf("forall %s. ", vars)
	}
	if len(s.Predicates) > 0 {
		preds := ""
		for i, p := range s.Predicates {
			if i > 0 {
				preds += ", "
			}
			preds += p.String()
		}
		out += fmt.Sprintf("(%s) => ", preds)
	}
	return out + s.Type.String()
}

// FreeVars returns the scheme's free variables: those appearing in Type
// or Predicates that are not bound by Vars.
func (s *Scheme) FreeVars() map[string]bool {
	bound := make(map[string]bool, len(s.Vars))
	for _, v := range s.Vars {
		bound[v] = true
	}
	free := map[string]bool{}
	for v := range s.Type.FreeVars() {
		if !bound[v] {
			free[v] = true
		}
	}
	for _, p := range s.Predicates {
		for v := range p.FreeVars() {
			if !bound[v] {
				free[v] = true
			}
		}
	}
	return free
}

// FreshFunc produces a fresh type-variable name on every call; it is
// satisfied by internal/fresh's counter so schemes never need their own
// global mutable state.
type FreshFunc func() string

// Instantiate replaces every quantified variable in the scheme with a
// fresh variable, returning the resulting monomorphic-shaped type and the
// predicates now owed on those fresh variables.
func (s *Scheme) Instantiate(fresh FreshFunc) (Type, []ClassPredicate) {
	sub := make(Substitution, len(s.Vars))
	for _, v := range s.Vars {
		sub[v] = &TyVar{Name: fresh()}
	}
	preds := make([]ClassPredicate, len(s.Predicates))
	for i, p := range s.Predicates {
		preds[i] = p.Substitute(sub)
	}
	return s.Type.Substitute(sub), preds
}

// Generalize closes over every free variable of t (and the predicates
// attached to it) that is not also free in env, producing a Scheme. A
// predicate is kept in the scheme when at least one of its variables is
// free in t; any other predicate is left out of the returned scheme, and
// Generalize neither returns nor reports it.
func Generalize(env *Env, t Type, preds []ClassPredicate) *Scheme {
	envFree := env.FreeVars()
	tFree := t.FreeVars()

	var vars []string
	quantified := map[string]bool{}
	for _, v := range SortedFreeVars(t) {
		if !envFree[v] {
			vars = append(vars, v)
			quantified[v] = true
		}
	}

	var schemePreds []ClassPredicate
	for _, p := range preds {
		include := false
		for v := range p.FreeVars() {
			if quantified[v] || tFree[v] {
				include = true
				break
			}
		}
		if include {
			schemePreds = append(schemePreds, p)
		}
	}

	return &Scheme{Vars: vars, Predicates: schemePreds, Type: t}
}
