package term

import (
	"github.com/Conceptual-Machines/setsinmotion-go/internal/explain"
)

// asFraction normalizes Integer/Fraction terms to a common Fraction
// representation so arithmetic has one code path, per spec.md §4.A
// ("Comparison between Integer and Fraction: the Fraction must have
// non-zero denominator; Integer v compares as (v, 0, 1)").
func (t *Term) asFraction() (Fraction, bool) {
	switch t.Kind {
	case KindInteger:
		return Fraction{Whole: t.Int, Num: 0, Denom: 1}, true
	case KindFraction:
		return t.Frac, true
	default:
		return Fraction{}, false
	}
}

func wrapFraction(f Fraction, wasInteger bool) *Term {
	n := f.Normalize()
	if wasInteger && n.Num == 0 {
		return NewInteger(n.Whole)
	}
	return &Term{Kind: KindFraction, Frac: n, spelling: n.String()}
}

func bothInteger(a, b *Term) bool { return a.Kind == KindInteger && b.Kind == KindInteger }

// Negate implements unary minus.
func (t *Term) Negate() (*Term, error) {
	switch t.Kind {
	case KindInteger:
		return NewInteger(-t.Int), nil
	case KindFraction:
		n, err := t.Frac.Negate()
		if err != nil {
			return nil, explain.New(explain.DefinitionError, "cannot negate %s", t.spelling)
		}
		return wrapFraction(n, false), nil
	default:
		return nil, explain.New(explain.DefinitionError, "cannot negate a %s", t.Kind)
	}
}

// Not implements unary boolean negation: integer 0/non-zero, or Anyone.
func (t *Term) Not() (*Term, error) {
	switch t.Kind {
	case KindInteger:
		if t.Int == 0 {
			return NewInteger(1), nil
		}
		return NewInteger(0), nil
	case KindAnyone:
		return NewAnyoneTerm(t.Anyone.Not()), nil
	default:
		return nil, explain.New(explain.DefinitionError, "cannot negate a %s", t.Kind)
	}
}

// Positive implements unary plus (a no-op for numerics, a type check
// elsewhere).
func (t *Term) Positive() (*Term, error) {
	switch t.Kind {
	case KindInteger, KindFraction:
		return t, nil
	default:
		return nil, explain.New(explain.DefinitionError, "cannot apply unary + to a %s", t.Kind)
	}
}

func (t *Term) binaryNumeric(op func(a, b Fraction) (Fraction, error), o *Term, name string) (*Term, error) {
	fa, ok1 := t.asFraction()
	fb, ok2 := o.asFraction()
	if !ok1 || !ok2 {
		return nil, explain.New(explain.DefinitionError, "cannot %s a %s and a %s", name, t.Kind, o.Kind)
	}
	result, err := op(fa, fb)
	if err != nil {
		return nil, explain.New(explain.DefinitionError, "%s failed: %v", name, err)
	}
	return wrapFraction(result, bothInteger(t, o)), nil
}

func (t *Term) Add(o *Term) (*Term, error) {
	return t.binaryNumeric(Fraction.Add, o, "add")
}

func (t *Term) Sub(o *Term) (*Term, error) {
	return t.binaryNumeric(Fraction.Sub, o, "subtract")
}

func (t *Term) Mul(o *Term) (*Term, error) {
	return t.binaryNumeric(Fraction.Mul, o, "multiply")
}

func (t *Term) Div(o *Term) (*Term, error) {
	return t.binaryNumeric(Fraction.Div, o, "divide")
}

// Mod implements integer remainder; unlike the other arithmetic ops it is
// defined only over whole integers (fractions have no canonical modulus).
func (t *Term) Mod(o *Term) (*Term, error) {
	if t.Kind != KindInteger || o.Kind != KindInteger {
		return nil, explain.New(explain.DefinitionError, "cannot take remainder of a %s and a %s", t.Kind, o.Kind)
	}
	if o.Int == 0 {
		return nil, explain.New(explain.DefinitionError, "remainder by zero")
	}
	return NewInteger(t.Int % o.Int), nil
}

// And/Or/Xor implement both the boolean-integer and the Anyone-combinator
// forms, per spec.md §4.A: "For Anyone, and/or/xor/not require both
// operands to be Anyone; they produce a combinator node."
func (t *Term) And(o *Term) (*Term, error) {
	if t.Kind == KindAnyone && o.Kind == KindAnyone {
		return NewAnyoneTerm(t.Anyone.And(o.Anyone)), nil
	}
	if t.Kind == KindInteger && o.Kind == KindInteger {
		if t.Int != 0 && o.Int != 0 {
			return NewInteger(1), nil
		}
		return NewInteger(0), nil
	}
	return nil, explain.New(explain.DefinitionError, "cannot 'and' a %s and a %s", t.Kind, o.Kind)
}

func (t *Term) Or(o *Term) (*Term, error) {
	if t.Kind == KindAnyone && o.Kind == KindAnyone {
		return NewAnyoneTerm(t.Anyone.Or(o.Anyone)), nil
	}
	if t.Kind == KindInteger && o.Kind == KindInteger {
		if t.Int != 0 || o.Int != 0 {
			return NewInteger(1), nil
		}
		return NewInteger(0), nil
	}
	return nil, explain.New(explain.DefinitionError, "cannot 'or' a %s and a %s", t.Kind, o.Kind)
}

func (t *Term) Xor(o *Term) (*Term, error) {
	if t.Kind == KindAnyone && o.Kind == KindAnyone {
		return NewAnyoneTerm(t.Anyone.Xor(o.Anyone)), nil
	}
	if t.Kind == KindInteger && o.Kind == KindInteger {
		a := t.Int != 0
		b := o.Int != 0
		if a != b {
			return NewInteger(1), nil
		}
		return NewInteger(0), nil
	}
	return nil, explain.New(explain.DefinitionError, "cannot 'xor' a %s and a %s", t.Kind, o.Kind)
}

// Compare returns -1/0/1, or ok=false ("incomparable") per spec.md §4.A.
func (t *Term) Compare(o *Term) (sign int, ok bool) {
	fa, ok1 := t.asFraction()
	fb, ok2 := o.asFraction()
	if ok1 && ok2 {
		return fa.Compare(fb)
	}
	return 0, false
}

// Equal implements the "unordered equal" rule: equal only if both terms
// share a typeid (Kind), with value-specific equality beneath that.
func (t *Term) Equal(o *Term) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindInteger:
		return t.Int == o.Int
	case KindFraction:
		return t.Frac == o.Frac
	case KindWord:
		return t.Str == o.Str
	case KindDirection:
		return t.Direction == o.Direction
	case KindPivot:
		return t.Pivot == o.Pivot
	case KindDancerName:
		return t.DancerIndex == o.DancerIndex
	default:
		if sign, ok := t.Compare(o); ok {
			return sign == 0
		}
		return t == o
	}
}
