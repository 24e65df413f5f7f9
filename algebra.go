package symopt

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// ============================================================
// Arithmetic dispatch
// ============================================================

// Mul multiplies two expressions. Symbol and Product operands merge into a
// product; sums distribute; fractions multiply their numerator.
func Mul(a, b Expr) (r Expr, err error) {
	defer catch(&err)
	return mul(a, b), nil
}

// Div divides a by b. Symbol/Symbol gives a constant when equal; a product
// cancels a symbol or product it contains; anything divided by a Sum is a
// Fraction. Dividing by zero returns ErrDivisionByZero.
func Div(a, b Expr) (r Expr, err error) {
	defer catch(&err)
	return div(a, b), nil
}

// Add adds two expressions of equal shape. Sums and fractions also accept
// other operands by promoting both to a sum; any other combination returns
// ErrUnsupportedCombination.
func Add(a, b Expr) (r Expr, err error) {
	defer catch(&err)
	return add(a, b), nil
}

func unsupported(a, b Expr) error {
	return errors.Wrapf(ErrUnsupportedCombination, "cannot add %T %v and %T %v", a, a, b, b)
}

func mul(a, b Expr) Expr {
	switch v := a.(type) {
	case *Symbol:
		return v.mul(b)
	case *Product:
		return v.mul(b)
	case *Sum:
		return v.mul(b)
	case *Fraction:
		return v.mul(b)
	}
	if a == nil {
		return Zero()
	}
	raise(errors.Errorf("cannot multiply %T", a))
	return nil
}

func div(a, b Expr) Expr {
	if isZero(b) {
		raise(errors.Wrapf(ErrDivisionByZero, "%v / %v", a, b))
	}
	if isZero(a) {
		return Zero()
	}
	if isConstSym(b) {
		return scale(a, 1/b.Coeff())
	}
	var r Expr
	switch v := a.(type) {
	case *Symbol:
		r = v.div(b)
	case *Product:
		r = v.div(b)
	case *Sum:
		r = v.div(b)
	case *Fraction:
		r = v.div(b)
	}
	if r == nil {
		raise(errors.Errorf("cannot divide %T by %T", a, b))
	}
	return r
}

func add(a, b Expr) Expr {
	switch v := a.(type) {
	case *Symbol:
		return v.add(b)
	case *Product:
		return v.add(b)
	case *Sum:
		return v.add(b)
	case *Fraction:
		return v.add(b)
	}
	raise(unsupported(a, b))
	return nil
}

// ============================================================
// Normalizer
// ============================================================

// Recon reconstructs an expression: zero coefficients collapse to the zero
// Symbol, single-member products and sums unwrap, constant members fold into
// coefficients.
func Recon(e Expr) (r Expr, err error) {
	defer catch(&err)
	return recon(e), nil
}

func recon(e Expr) Expr {
	switch v := e.(type) {
	case *Symbol:
		if v.c == 0 {
			return Zero()
		}
		return v.Copy()
	case *Product:
		return v.recon()
	case *Sum:
		return v.recon()
	case *Fraction:
		return v.recon()
	}
	return Zero()
}

func removeNested(e Expr) Expr {
	switch v := e.(type) {
	case *Product:
		return v.removeNested()
	case *Sum:
		return v.removeNested()
	case *Fraction:
		return v.removeNested()
	}
	return recon(e)
}

// Expand flattens nested products, sums and fractions and distributes
// products over sums. The result is the zero Symbol, a single term, or a
// sum of products, symbols and fractions. Expand is idempotent. A
// denominator that expands to zero returns ErrDivisionByZero.
func Expand(e Expr) (r Expr, err error) {
	defer catch(&err)
	return expand(e), nil
}

func expand(e Expr) Expr {
	switch v := e.(type) {
	case *Product:
		return v.expand()
	case *Sum:
		return v.expand()
	case *Fraction:
		return v.expand()
	}
	return recon(e)
}

// ============================================================
// Variable classes
// ============================================================

// Pair is one group produced by ReduceVartype: Found holds the members of
// the requested class (nil when there are none) and Remainder the rest, so
// that the expression equals the sum over all pairs of Found*Remainder.
type Pair struct {
	Found     Expr
	Remainder Expr
}

// Product returns Found*Remainder, treating a missing Found as one.
func (p Pair) Product() Expr {
	if p.Found == nil {
		return p.Remainder
	}
	return mul(p.Found, p.Remainder)
}

func (s *Symbol) reduceVartype(t VarType) Pair {
	if s.t == t {
		return Pair{Found: unit(s), Remainder: C(s.c)}
	}
	return Pair{Remainder: s.Copy()}
}

// ReduceVartype splits e by the class t. Symbols, products and fractions
// yield a single pair; a sum yields one pair per distinct extracted part,
// with the remainders of equal parts summed. Input is expected to be
// expanded.
func ReduceVartype(e Expr, t VarType) (pairs []Pair, err error) {
	defer catch(&err)
	return reduceVartype(e, t), nil
}

func reduceVartype(e Expr, t VarType) []Pair {
	switch v := e.(type) {
	case *Symbol:
		return []Pair{v.reduceVartype(t)}
	case *Product:
		return []Pair{v.reduceVartype(t)}
	case *Sum:
		return v.reduceVartype(t)
	case *Fraction:
		return v.reduceVartype(t)
	}
	return nil
}

// UniqueVars returns the distinct symbols of class t in e, including those
// inside the base expression of wrapped symbols, in canonical order.
func UniqueVars(e Expr, t VarType) []*Symbol {
	seen := map[string]*Symbol{}
	collectVars(e, t, seen)
	out := make([]*Symbol, 0, len(seen))
	for _, s := range seen {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *Symbol) int { return a.Compare(b) })
	return out
}

func collectVars(e Expr, t VarType, out map[string]*Symbol) {
	switch v := e.(type) {
	case *Symbol:
		if v.t == t {
			out[v.name] = unit(v).(*Symbol)
		}
		if v.base != nil {
			collectVars(v.base, t, out)
		}
	case *Product:
		for _, m := range v.vs {
			collectVars(m, t, out)
		}
	case *Sum:
		for _, m := range v.Terms() {
			collectVars(m, t, out)
		}
	case *Fraction:
		collectVars(v.num, t, out)
		collectVars(v.denom, t, out)
	}
}
