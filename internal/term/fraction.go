package term

import "fmt"

// Fraction represents (whole, numerator, denominator) per spec.md §3/§4.A.
// Denominator 0 is a magic sentinel marking a non-numeric fraction used as
// an enumerated constant (e.g. $until_home) — arithmetic on it always
// fails, matching the original's "no home spots" treatment of such values.
type Fraction struct {
	Whole int
	Num   int
	Denom int
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

// Normalize returns a fraction with a positive denominator, a numerator
// reduced modulo the denominator into [0, denominator), and the whole part
// adjusted to absorb the removed multiples. Idempotent (testable property
// #2 in spec.md §8). The magic (denom == 0) sentinel normalizes to itself.
func (f Fraction) Normalize() Fraction {
	if f.Denom == 0 {
		return Fraction{Whole: f.Whole, Num: f.Num, Denom: 0}
	}
	denom := f.Denom
	num := f.Num
	if denom < 0 {
		denom = -denom
		num = -num
	}
	whole := f.Whole
	if num >= 0 {
		whole += num / denom
		num = num % denom
	} else {
		// Push num into [0, denom) by borrowing from whole.
		borrow := (-num + denom - 1) / denom
		whole -= borrow
		num += borrow * denom
	}
	g := gcd(num, denom)
	if g > 1 {
		num /= g
		denom /= g
	}
	if denom == 1 {
		whole += num
		num = 0
	}
	return Fraction{Whole: whole, Num: num, Denom: denom}
}

// IsMagic reports whether this is the denom==0 sentinel (e.g. $until_home).
func (f Fraction) IsMagic() bool { return f.Denom == 0 }

// IsZero reports whether the fraction denotes exactly zero.
func (f Fraction) IsZero() bool { return !f.IsMagic() && f.Whole == 0 && f.Num == 0 }

// commonDenominator returns both fractions' numerators over a shared
// denominator, folding the whole part into the numerator.
func commonDenominator(a, b Fraction) (numA, numB, denom int, ok bool) {
	if a.IsMagic() || b.IsMagic() {
		return 0, 0, 0, false
	}
	denom = a.Denom * b.Denom
	numA = (a.Whole*a.Denom+a.Num)*b.Denom
	numB = (b.Whole*b.Denom+b.Num)*a.Denom
	return numA, numB, denom, true
}

func fractionFromImproper(num, denom int) Fraction {
	return Fraction{Whole: 0, Num: num, Denom: denom}.Normalize()
}

// ImproperNumerator returns the numerator of this fraction expressed over
// denominator d (optionally multiplied by `mult` first), or ok=false if
// that is not a whole number of d-ths. Mirrors
// original_source/dance/dance.h's Fraction::improperNumerator, used by
// $fractionalize and $arc to convert a call fraction into whole turns.
func (f Fraction) ImproperNumerator(d int, mult *Fraction) (result int, ok bool) {
	if f.IsMagic() || d <= 0 {
		return 0, false
	}
	effective := f
	if mult != nil {
		m, merr := effective.Mul(*mult)
		if merr != nil {
			return 0, false
		}
		effective = m
	}
	// effective = whole + num/denom, expressed as improper/effective.Denom
	improperNum := effective.Whole*effective.Denom + effective.Num
	// Want improperNum/effective.Denom == result/d  =>  result = improperNum*d/effective.Denom
	scaled := improperNum * d
	if scaled%effective.Denom != 0 {
		return 0, false
	}
	return scaled / effective.Denom, true
}

func (f Fraction) String() string {
	if f.IsMagic() {
		return "until_home"
	}
	switch {
	case f.Num == 0:
		return fmt.Sprintf("%d", f.Whole)
	case f.Whole == 0:
		return fmt.Sprintf("%d/%d", f.Num, f.Denom)
	default:
		return fmt.Sprintf("%d and %d/%d", f.Whole, f.Num, f.Denom)
	}
}

func (f Fraction) Add(o Fraction) (Fraction, error) {
	numA, numB, denom, ok := commonDenominator(f, o)
	if !ok {
		return Fraction{}, errFractionOp("add", f, o)
	}
	return fractionFromImproper(numA+numB, denom), nil
}

func (f Fraction) Sub(o Fraction) (Fraction, error) {
	numA, numB, denom, ok := commonDenominator(f, o)
	if !ok {
		return Fraction{}, errFractionOp("subtract", f, o)
	}
	return fractionFromImproper(numA-numB, denom), nil
}

func (f Fraction) Mul(o Fraction) (Fraction, error) {
	if f.IsMagic() || o.IsMagic() {
		return Fraction{}, errFractionOp("multiply", f, o)
	}
	numA := f.Whole*f.Denom + f.Num
	numB := o.Whole*o.Denom + o.Num
	return fractionFromImproper(numA*numB, f.Denom*o.Denom), nil
}

func (f Fraction) Div(o Fraction) (Fraction, error) {
	if f.IsMagic() || o.IsMagic() {
		return Fraction{}, errFractionOp("divide", f, o)
	}
	numB := o.Whole*o.Denom + o.Num
	if numB == 0 {
		return Fraction{}, errFractionOp("divide by zero", f, o)
	}
	numA := f.Whole*f.Denom + f.Num
	return fractionFromImproper(numA*o.Denom, f.Denom*numB), nil
}

func (f Fraction) Negate() (Fraction, error) {
	if f.IsMagic() {
		return Fraction{}, errFractionOp("negate", f, f)
	}
	return Fraction{Whole: -f.Whole, Num: -f.Num, Denom: f.Denom}.Normalize(), nil
}

// Compare returns -1/0/1 comparing f and o, or ok=false if incomparable
// (either is the magic sentinel).
func (f Fraction) Compare(o Fraction) (sign int, ok bool) {
	numA, numB, _, cok := commonDenominator(f, o)
	if !cok {
		return 0, false
	}
	switch {
	case numA < numB:
		return -1, true
	case numA > numB:
		return 1, true
	default:
		return 0, true
	}
}

func errFractionOp(op string, a, b Fraction) error {
	return fmt.Errorf("fraction %s failed on %s and %s", op, a, b)
}
