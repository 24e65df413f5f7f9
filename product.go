package symopt

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// ============================================================
// Product — product of unit members
// ============================================================

// Product is a canonically sorted list of unit-coefficient members with one
// aggregate coefficient.
type Product struct {
	c  float64
	t  VarType
	vs []Expr
}

// NewProduct multiplies members into a product. A zero member yields the
// zero Symbol. It panics with ErrMalformedProduct when members is empty; use
// Mul for an error return.
func NewProduct(members ...Expr) Expr {
	if len(members) == 0 {
		raise(errors.WithStack(ErrMalformedProduct))
	}
	p := newProduct(members, 1)
	if p.c == 0 {
		return Zero()
	}
	return p
}

// newProduct normalizes members to unit coefficients, folding their
// coefficients and c into the product coefficient. Constant symbols are
// absorbed; a product of constants only keeps a single unit constant member.
func newProduct(members []Expr, c float64) *Product {
	p := &Product{c: c, t: Const}
	for _, m := range members {
		if isZero(m) {
			return &Product{c: 0, t: Const, vs: []Expr{Zero()}}
		}
	}
	p.vs = make([]Expr, 0, len(members))
	for _, m := range members {
		p.c *= m.Coeff()
		if isConstSym(m) {
			continue
		}
		p.vs = append(p.vs, unit(m))
		p.t = minType(p.t, m.Type())
	}
	if len(p.vs) == 0 {
		p.vs = []Expr{C(1)}
		return p
	}
	sortExprs(p.vs)
	return p
}

func sortExprs(l []Expr) {
	slices.SortStableFunc(l, func(a, b Expr) int { return a.Compare(b) })
}

// removeMember returns list without the first member equal to e.
func removeMember(list []Expr, e Expr) ([]Expr, bool) {
	i := slices.IndexFunc(list, func(m Expr) bool { return m.Equal(e) })
	if i < 0 {
		return list, false
	}
	out := make([]Expr, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...), true
}

func (p *Product) Coeff() float64 { return p.c }
func (p *Product) Type() VarType  { return p.t }
func (p *Product) rank() int      { return 1 }

// Factors returns the unit members of the product.
func (p *Product) Factors() []Expr { return slices.Clone(p.vs) }

func (p *Product) withCoeff(c float64) Expr {
	return &Product{c: c, t: p.t, vs: p.vs}
}

func (p *Product) Copy() Expr {
	return &Product{c: p.c, t: p.t, vs: copyList(p.vs)}
}

// Members returns copies of the members with the product coefficient moved
// onto the first one.
func (p *Product) Members() []Expr {
	ms := copyList(p.vs)
	ms[0] = ms[0].withCoeff(p.c)
	return ms
}

func (p *Product) Equal(other Expr) bool {
	o, ok := other.(*Product)
	return ok && equalLists(p.vs, o.vs)
}

func (p *Product) Compare(other Expr) int {
	o, ok := other.(*Product)
	if !ok {
		return p.rank() - other.rank()
	}
	return compareLists(p.vs, o.vs)
}

// Ops counts n-1 multiplications for n members plus the member costs, one
// for a non-unit coefficient and one for a minus sign.
func (p *Product) Ops() int {
	if p.c == 0 {
		return 0
	}
	ops := len(p.vs) - 1
	for _, v := range p.vs {
		ops += v.Ops()
	}
	if p.c < 0 {
		ops++
	}
	if p.c != 1 && p.c != -1 {
		ops++
	}
	return ops
}

func (p *Product) Render(f *Format) string {
	if p.c == 0 {
		return f.Float(0)
	}
	return withSign(f.Multiply(renderList(p.vs, f)), p.c, f)
}

func (p *Product) String() string { return p.Render(defaultFormat) }

// ============================================================
// Product arithmetic
// ============================================================

func (p *Product) mul(other Expr) Expr {
	if p.c == 0 || isZero(other) {
		return Zero()
	}
	switch o := other.(type) {
	case *Symbol:
		return newProduct(append(slices.Clone(p.vs), o), p.c)
	case *Product:
		return newProduct(append(slices.Clone(p.vs), o.vs...), p.c*o.c)
	}
	return mul(other, p)
}

func (p *Product) div(other Expr) Expr {
	if p.c == 0 {
		return Zero()
	}
	switch o := other.(type) {
	case *Sum:
		return newFraction(p, o)
	case *Symbol:
		rest, found := removeMember(p.vs, o)
		if !found {
			return newFraction(p, o)
		}
		return productOrConst(rest, p.c/o.c)
	case *Product:
		if equalLists(p.vs, o.vs) {
			return C(p.c / o.c)
		}
		num := slices.Clone(p.vs)
		var denom []Expr
		for _, m := range o.vs {
			var found bool
			if num, found = removeMember(num, m); !found {
				denom = append(denom, m)
			}
		}
		n := productOrConst(num, p.c/o.c)
		if len(denom) == 0 {
			return n
		}
		return newFraction(n, productOrConst(denom, 1))
	case *Fraction:
		return mul(p, o.inverse())
	}
	return nil
}

// productOrConst collapses a member list of length 0 or 1.
func productOrConst(members []Expr, c float64) Expr {
	switch len(members) {
	case 0:
		return C(c)
	case 1:
		return scale(members[0], c)
	}
	return newProduct(members, c)
}

func (p *Product) add(other Expr) Expr {
	if !p.Equal(other) {
		raise(unsupported(p, other))
	}
	return p.withCoeff(p.c + other.Coeff())
}

// ============================================================
// Product normalization
// ============================================================

func (p *Product) recon() Expr {
	if p.c == 0 {
		return Zero()
	}
	c := p.c
	members := make([]Expr, 0, len(p.vs))
	for _, v := range p.vs {
		r := recon(v)
		if isZero(r) {
			return Zero()
		}
		c *= r.Coeff()
		if isConstSym(r) {
			continue
		}
		members = append(members, unit(r))
	}
	return productOrConst(members, c)
}

// removeNested absorbs the members of nested products.
func (p *Product) removeNested() Expr {
	c := p.c
	var members []Expr
	for _, m := range p.vs {
		n := removeNested(m)
		if np, ok := n.(*Product); ok {
			members = append(members, np.vs...)
			c *= np.c
			continue
		}
		members = append(members, n)
	}
	if len(members) == 0 {
		raise(errors.Wrap(ErrMalformedProduct, "no members left after removing nested products"))
	}
	if len(members) == 1 {
		return scale(members[0], c)
	}
	return newProduct(members, c)
}

func (p *Product) expand() Expr {
	n := p.removeNested()
	np, ok := n.(*Product)
	if !ok {
		return expand(n)
	}
	if np.c == 0 {
		return Zero()
	}
	expanded := make([]Expr, len(np.vs))
	for i, m := range np.vs {
		e := expand(m)
		if isZero(e) {
			return Zero()
		}
		expanded[i] = e
	}
	expanded[0] = scale(expanded[0], np.c)
	if len(expanded) == 1 {
		return expanded[0]
	}

	var syms, rest []Expr
	for _, e := range expanded {
		if _, ok := e.(*Symbol); ok {
			syms = append(syms, e)
		} else {
			rest = append(rest, e)
		}
	}
	var prod Expr
	switch len(syms) {
	case 0:
		return foldMul(rest)
	case 1:
		prod = syms[0]
	default:
		prod = newProduct(syms, 1)
	}
	if isZero(prod) {
		return Zero()
	}
	if len(rest) == 0 {
		return prod
	}
	return removeNested(foldMul(append(rest, prod)))
}

func foldMul(l []Expr) Expr {
	acc := l[0]
	for _, e := range l[1:] {
		acc = mul(acc, e)
	}
	return acc
}

func (p *Product) reduceVartype(t VarType) Pair {
	var found, rest []Expr
	for _, v := range p.vs {
		if v.Type() == t {
			found = append(found, v)
		} else {
			rest = append(rest, v)
		}
	}
	if len(found) == 0 {
		return Pair{Remainder: p.Copy()}
	}
	return Pair{Found: productOrConst(found, 1), Remainder: productOrConst(rest, p.c)}
}
