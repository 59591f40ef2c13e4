package types

import "testing"

func freshCounter() FreshFunc {
	n := 0
	return func() string {
		n++
		return "t" + string(rune('0'+n))
	}
}

func TestGeneralizeQuantifiesOnlyUnboundVars(t *testing.T) {
	env := NewEnv()
	bound := &TyVar{Name: "outer"}
	env = env.Extend("x", &Scheme{Type: bound})

	free := &TyVar{Name: "a"}
	fnType := Arrow(free, bound)

	scheme := Generalize(env, fnType, nil)
	if len(scheme.Vars) != 1 || scheme.Vars[0] != "a" {
		t.Fatalf("expected only 'a' quantified, got %v", scheme.Vars)
	}
}

func TestInstantiateProducesFreshVars(t *testing.T) {
	scheme := &Scheme{
		Vars: []string{"a"},
		Type: Arrow(&TyVar{Name: "a"}, &TyVar{Name: "a"}),
	}
	fresh := freshCounter()
	t1, _ := scheme.Instantiate(fresh)
	t2, _ := scheme.Instantiate(fresh)
	if t1.Equals(t2) {
		t.Fatalf("expected two instantiations to use distinct fresh variables")
	}
}

func TestGeneralizeThenInstantiateRoundTrips(t *testing.T) {
	env := NewEnv()
	v := &TyVar{Name: "a"}
	identity := Arrow(v, v)
	scheme := Generalize(env, identity, nil)

	fresh := freshCounter()
	instantiated, _ := scheme.Instantiate(fresh)
	app, ok := instantiated.(*TyApp)
	if !ok || app.Operator != OpArrow {
		t.Fatalf("expected instantiated scheme to still be an arrow type, got %s", instantiated)
	}
	if !app.Args[0].Equals(app.Args[1]) {
		t.Fatalf("expected both arrow sides to share the same fresh variable, got %s -> %s", app.Args[0], app.Args[1])
	}
}

func TestGeneralizeDropsPredicateNotReferencingQuantifiedVar(t *testing.T) {
	env := NewEnv()
	bound := &TyVar{Name: "outer"}
	env = env.Extend("ctx", &Scheme{Type: bound})

	pred := ClassPredicate{ClassName: "Num", Args: []Type{bound}}
	scheme := Generalize(env, TyInt, []ClassPredicate{pred})
	if len(scheme.Predicates) != 0 {
		t.Fatalf("expected predicate over a non-quantified var to be dropped, got %v", scheme.Predicates)
	}
}
