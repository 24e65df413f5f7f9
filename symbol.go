package symopt

import "math"

// ============================================================
// Symbol — atomic value
// ============================================================

// Symbol is a named basis function, integration point value, geometry term
// or, with an empty name and class Const, a literal constant.
type Symbol struct {
	name string
	c    float64
	t    VarType

	// base is an opaque non-linear sub-expression folded into the symbol,
	// e.g. the argument of a transcendental call; baseOp is the cost of the
	// call itself.
	base   Expr
	baseOp int
}

// Sym returns a symbol with the given name, coefficient and class.
func Sym(name string, c float64, t VarType) *Symbol {
	return &Symbol{name: name, c: c, t: t}
}

// C returns the constant v.
func C(v float64) *Symbol { return &Symbol{c: v, t: Const} }

// Zero returns the canonical zero.
func Zero() *Symbol { return C(0) }

// WithBase returns a copy of s that wraps base with an additional call cost
// of baseOp operations.
func (s *Symbol) WithBase(base Expr, baseOp int) *Symbol {
	n := *s
	n.base = base
	n.baseOp = baseOp
	return &n
}

func (s *Symbol) Name() string   { return s.name }
func (s *Symbol) Coeff() float64 { return s.c }
func (s *Symbol) Type() VarType  { return s.t }
func (s *Symbol) Base() Expr     { return s.base }
func (s *Symbol) rank() int      { return 0 }

func (s *Symbol) withCoeff(c float64) Expr {
	n := *s
	n.c = c
	return &n
}

func (s *Symbol) Copy() Expr {
	n := *s
	if s.base != nil {
		n.base = s.base.Copy()
	}
	return &n
}

func (s *Symbol) Members() []Expr { return []Expr{s.Copy()} }

// Equal ignores the coefficient and the class: two symbols are the same
// shape when their names match.
func (s *Symbol) Equal(other Expr) bool {
	o, ok := other.(*Symbol)
	return ok && s.name == o.name
}

func (s *Symbol) Compare(other Expr) int {
	o, ok := other.(*Symbol)
	if !ok {
		return s.rank() - other.rank()
	}
	if s.name == o.name {
		return 0
	}
	if s.t != o.t {
		return int(s.t) - int(o.t)
	}
	if s.name < o.name {
		return -1
	}
	return 1
}

func (s *Symbol) Ops() int {
	if s.c == 0 {
		return 0
	}
	ops := s.baseOp
	if s.base != nil {
		ops += s.base.Ops()
	}
	if s.t != Const && s.c != 1 && s.c != -1 {
		ops++
	}
	if s.c < 0 {
		ops++
	}
	return ops
}

func (s *Symbol) Render(f *Format) string {
	if s.c == 0 {
		return f.Float(0)
	}
	if s.t == Const {
		str := f.Float(math.Abs(s.c))
		if s.c < 0 {
			str = f.Subtract([]string{"", str})
		}
		return str
	}
	return withSign(s.name, s.c, f)
}

func (s *Symbol) String() string { return s.Render(defaultFormat) }

// ============================================================
// Symbol arithmetic
// ============================================================

func (s *Symbol) mul(other Expr) Expr {
	if s.c == 0 || isZero(other) {
		return Zero()
	}
	if s.t == Const {
		return scale(other, s.c)
	}
	if isConstSym(other) {
		return scale(s, other.Coeff())
	}
	if o, ok := other.(*Symbol); ok {
		return newProduct([]Expr{s, o}, 1)
	}
	return mul(other, s)
}

func (s *Symbol) div(other Expr) Expr {
	if s.c == 0 {
		return Zero()
	}
	switch o := other.(type) {
	case *Symbol:
		if s.Equal(o) {
			return C(s.c / o.c)
		}
		return newFraction(s, o)
	case *Sum:
		return newFraction(s, o)
	case *Product:
		num := unit(s)
		c := s.c / o.c
		rest, found := removeMember(o.vs, num)
		if !found {
			return newFraction(s, o)
		}
		switch len(rest) {
		case 0:
			return C(c)
		case 1:
			return newFraction(C(c), rest[0])
		}
		return newFraction(C(c), newProduct(rest, 1))
	case *Fraction:
		return mul(s, o.inverse())
	}
	return nil
}

func (s *Symbol) add(other Expr) Expr {
	if !s.Equal(other) {
		raise(unsupported(s, other))
	}
	return s.withCoeff(s.c + other.Coeff())
}
