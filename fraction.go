package symopt

import (
	"math"

	"github.com/pkg/errors"
)

// ============================================================
// Fraction — numerator over denominator
// ============================================================

// Fraction holds a unit numerator and a unit denominator; the ratio of
// their coefficients is the fraction's coefficient.
type Fraction struct {
	c     float64
	t     VarType
	num   Expr
	denom Expr
}

// NewFraction divides num by denom without cancelling common factors.
// Equal numerator and denominator collapse to a constant. It panics with
// ErrDivisionByZero on a zero denominator; use Div for an error return.
func NewFraction(num, denom Expr) Expr { return newFraction(num, denom) }

func newFraction(num, denom Expr) Expr {
	if isZero(denom) {
		raise(errors.Wrapf(ErrDivisionByZero, "%v / %v", num, denom))
	}
	if isZero(num) {
		return Zero()
	}
	c := num.Coeff() / denom.Coeff()
	if num.Equal(denom) {
		return C(c)
	}
	return &Fraction{
		c:     c,
		t:     minType(num.Type(), denom.Type()),
		num:   unit(num),
		denom: unit(denom),
	}
}

func (f *Fraction) Coeff() float64 { return f.c }
func (f *Fraction) Type() VarType  { return f.t }
func (f *Fraction) rank() int      { return 3 }

// Num returns the numerator carrying the fraction's coefficient.
func (f *Fraction) Num() Expr { return f.getNum() }

// Denom returns the unit denominator.
func (f *Fraction) Denom() Expr { return f.denom }

func (f *Fraction) getNum() Expr { return f.num.withCoeff(f.c) }

func (f *Fraction) inverse() Expr { return newFraction(f.denom, f.getNum()) }

func (f *Fraction) withCoeff(c float64) Expr {
	return &Fraction{c: c, t: f.t, num: f.num, denom: f.denom}
}

func (f *Fraction) Copy() Expr {
	return &Fraction{c: f.c, t: f.t, num: f.num.Copy(), denom: f.denom.Copy()}
}

func (f *Fraction) Members() []Expr { return []Expr{f.getNum().Copy(), f.denom.Copy()} }

func (f *Fraction) Equal(other Expr) bool {
	o, ok := other.(*Fraction)
	return ok && f.num.Equal(o.num) && f.denom.Equal(o.denom)
}

func (f *Fraction) Compare(other Expr) int {
	o, ok := other.(*Fraction)
	if !ok {
		return f.rank() - other.rank()
	}
	if !f.num.Equal(o.num) {
		return f.num.Compare(o.num)
	}
	if !f.denom.Equal(o.denom) {
		return f.denom.Compare(o.denom)
	}
	return 0
}

// Ops counts the division plus both sides. A constant numerator is folded
// into the printed coefficient, so it does not cost a multiplication.
func (f *Fraction) Ops() int {
	if f.c == 0 {
		return 0
	}
	r := recon(f)
	n, ok := r.(*Fraction)
	if !ok {
		return r.Ops()
	}
	ops := n.num.Ops() + n.denom.Ops() + 1
	if n.c < 0 {
		ops++
	}
	if n.c != 1 && n.c != -1 {
		ops++
		if n.num.Type() == Const {
			ops--
		}
	}
	return ops
}

func (f *Fraction) Render(fm *Format) string {
	if f.c == 0 {
		return fm.Float(0)
	}
	r := recon(f)
	n, ok := r.(*Fraction)
	if !ok {
		return r.Render(fm)
	}
	num := ""
	switch v := n.num.(type) {
	case *Fraction:
		num = fm.Grouping(v.Render(fm))
	case *Symbol:
		if v.t != Const {
			num = v.Render(fm)
		}
	default:
		num = v.Render(fm)
	}
	if num == "" {
		num = fm.Float(math.Abs(n.c))
	} else if n.c != 1 && n.c != -1 {
		num = fm.Multiply([]string{fm.Float(math.Abs(n.c)), num})
	}
	denom := n.denom.Render(fm)
	switch n.denom.(type) {
	case *Product, *Fraction:
		denom = fm.Grouping(denom)
	}
	s := num + fm.Division + denom
	if n.c < 0 {
		s = fm.Subtract([]string{"", s})
	}
	return s
}

func (f *Fraction) String() string { return f.Render(defaultFormat) }

// ============================================================
// Fraction arithmetic
// ============================================================

func (f *Fraction) mul(other Expr) Expr {
	if f.c == 0 || isZero(other) {
		return Zero()
	}
	num := f.getNum()
	if other.Equal(f.denom) {
		return scale(num, other.Coeff())
	}
	if o, ok := other.(*Fraction); ok {
		n := mul(num, o.getNum())
		d := mul(f.denom, o.denom)
		if n.Equal(d) {
			return C(n.Coeff() / d.Coeff())
		}
		return div(n, d)
	}
	return div(mul(num, other), f.denom)
}

func (f *Fraction) div(other Expr) Expr {
	if f.c == 0 {
		return Zero()
	}
	if o, ok := other.(*Fraction); ok {
		return mul(f, o.inverse())
	}
	q := div(f.getNum(), other)
	if qf, ok := q.(*Fraction); ok {
		return newFraction(qf.getNum(), removeNested(newProduct([]Expr{qf.denom, f.denom}, 1)))
	}
	return div(q, f.denom)
}

// add merges equal fractions and otherwise promotes both operands to a sum.
func (f *Fraction) add(other Expr) Expr {
	if f.Equal(other) {
		return f.withCoeff(f.c + other.Coeff())
	}
	if o, ok := other.(*Sum); ok {
		return newSum(append(o.Members(), f))
	}
	return newSum([]Expr{f, other})
}

// ============================================================
// Fraction normalization
// ============================================================

func (f *Fraction) recon() Expr {
	if f.c == 0 {
		return Zero()
	}
	num := scale(recon(f.num), f.c)
	denom := recon(f.denom)
	if isZero(denom) {
		raise(errors.Wrapf(ErrDivisionByZero, "%v / %v", num, f.denom))
	}
	if isConstSym(denom) {
		return scale(num, 1/denom.Coeff())
	}
	return newFraction(num, denom)
}

// removeNested rewrites nested fractions by cross multiplication.
func (f *Fraction) removeNested() Expr {
	num := scale(removeNested(f.num), f.c)
	denom := removeNested(f.denom)
	nf, numIsFrac := num.(*Fraction)
	df, denomIsFrac := denom.(*Fraction)
	switch {
	case numIsFrac && denomIsFrac:
		n := removeNested(newProduct([]Expr{nf.num, df.denom}, nf.c))
		d := removeNested(newProduct([]Expr{nf.denom, df.num}, df.c))
		return newFraction(n, d)
	case numIsFrac:
		d := removeNested(newProduct([]Expr{nf.denom, denom}, 1))
		return newFraction(nf.getNum(), d)
	case denomIsFrac:
		return removeNested(newProduct([]Expr{num, df.inverse()}, 1))
	}
	return newFraction(num, denom)
}

func (f *Fraction) expand() Expr {
	r := f.removeNested()
	n, ok := r.(*Fraction)
	if !ok {
		return expand(r)
	}
	num, denom := expand(n.getNum()), expand(n.denom)
	if nf, ok := num.(*Fraction); ok {
		return expand(newFraction(nf.getNum(), mul(nf.denom, denom)))
	}
	if df, ok := denom.(*Fraction); ok {
		return expand(newFraction(mul(num, df.denom), df.getNum()))
	}
	switch denom.(type) {
	case *Symbol, *Product:
		q := div(num, denom)
		qf, ok := q.(*Fraction)
		if !ok {
			return expand(q)
		}
		return div(expand(qf.getNum()), expand(qf.denom))
	}
	return div(num, denom)
}

// reduceVartype splits numerator and denominator separately. A sum in the
// denominator cannot be split, so it goes to the extracted part whenever it
// holds variables of class t.
func (f *Fraction) reduceVartype(t VarType) []Pair {
	var dFound, dRem Expr
	switch d := f.denom.(type) {
	case *Symbol:
		p := d.reduceVartype(t)
		dFound, dRem = p.Found, p.Remainder
	case *Product:
		p := d.reduceVartype(t)
		dFound, dRem = p.Found, p.Remainder
	default:
		if len(UniqueVars(d, t)) > 0 {
			dFound = d
		} else {
			dRem = d
		}
	}

	var pairs []Pair
	for _, p := range reduceVartype(f.getNum(), t) {
		found := p.Found
		if dFound != nil {
			if found == nil {
				found = C(1)
			}
			found = newFraction(found, dFound)
		}
		rem := p.Remainder
		if dRem != nil {
			if isConstSym(dRem) {
				rem = scale(rem, 1/dRem.Coeff())
			} else {
				rem = newFraction(rem, dRem)
			}
		}
		pairs = append(pairs, Pair{Found: found, Remainder: rem})
	}
	return pairs
}
