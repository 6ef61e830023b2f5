package types

import (
	"fmt"
	"reflect"
)

// UnifyError reports two types that could not be made equal.
type UnifyError struct {
	Left, Right Type
	Reason      string
}

func (e *UnifyError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("cannot unify %s with %s", e.Left, e.Right)
	}
	return fmt.Sprintf("cannot unify %s with %s: %s", e.Left, e.Right, e.Reason)
}

type typePair struct{ a, b Type }

// Unify finds the most general substitution making t1 and t2 equal,
// expanding type aliases and checking the occurs condition on TVar binds.
func Unify(t1, t2 Type) (Subst, error) {
	return unify(t1, t2, nil)
}

func unify(t1, t2 Type, seen []typePair) (Subst, error) {
	for _, p := range seen {
		if reflect.DeepEqual(p.a, t1) && reflect.DeepEqual(p.b, t2) {
			return Subst{}, nil
		}
	}
	seen = append(seen, typePair{t1, t2})

	if reflect.DeepEqual(t1, t2) {
		return Subst{}, nil
	}

	if v, ok := t1.(TVar); ok {
		return bind(v, t2)
	}
	if v, ok := t2.(TVar); ok {
		return bind(v, t1)
	}

	if con, ok := t1.(TCon); ok {
		if expanded, did := ExpandTypeAlias(con, nil); did {
			return unify(expanded, t2, seen)
		}
	}
	if con, ok := t2.(TCon); ok {
		if expanded, did := ExpandTypeAlias(con, nil); did {
			return unify(t1, expanded, seen)
		}
	}

	switch a := t1.(type) {
	case TApp:
		b, ok := t2.(TApp)
		if !ok {
			return nil, &UnifyError{t1, t2, ""}
		}
		if len(a.Args) != len(b.Args) {
			return nil, &UnifyError{t1, t2, "argument count mismatch"}
		}
		s, err := unify(a.Constructor, b.Constructor, seen)
		if err != nil {
			return nil, err
		}
		for i := range a.Args {
			s2, err := unify(a.Args[i].Apply(s), b.Args[i].Apply(s), seen)
			if err != nil {
				return nil, err
			}
			s = Compose(s, s2)
		}
		return s, nil

	case TTuple:
		b, ok := t2.(TTuple)
		if !ok || len(a.Elements) != len(b.Elements) {
			return nil, &UnifyError{t1, t2, "tuple arity mismatch"}
		}
		s := Subst{}
		for i := range a.Elements {
			s2, err := unify(a.Elements[i].Apply(s), b.Elements[i].Apply(s), seen)
			if err != nil {
				return nil, err
			}
			s = Compose(s, s2)
		}
		return s, nil

	case TFunc:
		b, ok := t2.(TFunc)
		if !ok {
			return nil, &UnifyError{t1, t2, ""}
		}
		if len(a.Params) != len(b.Params) && !a.IsVariadic && !b.IsVariadic {
			return nil, &UnifyError{t1, t2, "parameter count mismatch"}
		}
		s := Subst{}
		n := len(a.Params)
		if len(b.Params) < n {
			n = len(b.Params)
		}
		for i := 0; i < n; i++ {
			s2, err := unify(a.Params[i].Apply(s), b.Params[i].Apply(s), seen)
			if err != nil {
				return nil, err
			}
			s = Compose(s, s2)
		}
		s2, err := unify(a.ReturnType.Apply(s), b.ReturnType.Apply(s), seen)
		if err != nil {
			return nil, err
		}
		return Compose(s, s2), nil

	case TCon:
		b, ok := t2.(TCon)
		if !ok || a.Name != b.Name {
			return nil, &UnifyError{t1, t2, ""}
		}
		return Subst{}, nil
	}

	return nil, &UnifyError{t1, t2, "incompatible type shapes"}
}

// bind creates the singleton substitution {v -> t}, rejecting the
// self-referential case (v occurring free inside t) that would otherwise
// produce an infinite type.
func bind(v TVar, t Type) (Subst, error) {
	if tv, ok := t.(TVar); ok && tv.Name == v.Name {
		return Subst{}, nil
	}
	for _, free := range t.FreeTypeVariables() {
		if free == v.Name {
			return nil, &UnifyError{v, t, "occurs check failed"}
		}
	}
	return Subst{v.Name: t}, nil
}
