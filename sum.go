package symopt

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// ============================================================
// Sum — signed list of terms
// ============================================================

// Sum keeps its terms split by sign, each list canonically sorted. Terms of
// equal shape are merged on construction; when every term is negative the
// sign moves to the global coefficient.
type Sum struct {
	c   float64
	t   VarType
	pos []Expr
	neg []Expr
}

// NewSum adds terms. An empty or fully cancelling sum yields the zero Symbol.
func NewSum(terms ...Expr) Expr {
	s := newSum(terms)
	if s.c == 0 {
		return Zero()
	}
	return s
}

func newSum(terms []Expr) *Sum {
	s := &Sum{t: Const}
	merged := make([]Expr, 0, len(terms))
	for _, v := range terms {
		if isZero(v) {
			continue
		}
		i := slices.IndexFunc(merged, func(m Expr) bool { return m.Equal(v) })
		if i < 0 {
			merged = append(merged, v)
			continue
		}
		merged[i] = add(merged[i], v)
	}
	merged = slices.DeleteFunc(merged, isZero)
	if len(merged) == 0 {
		return s
	}

	s.c = 1
	allNeg := true
	for _, v := range merged {
		s.t = minType(s.t, v.Type())
		if v.Coeff() > 0 {
			allNeg = false
		}
	}
	for _, v := range merged {
		if allNeg {
			v = scale(v, -1)
		}
		if v.Coeff() > 0 {
			s.pos = append(s.pos, v)
		} else {
			s.neg = append(s.neg, v)
		}
	}
	if allNeg {
		s.c = -1
	}
	sortExprs(s.pos)
	sortExprs(s.neg)
	return s
}

func (s *Sum) Coeff() float64 { return s.c }
func (s *Sum) Type() VarType  { return s.t }
func (s *Sum) rank() int      { return 2 }

// Terms returns the positive followed by the negative terms, without the
// global coefficient.
func (s *Sum) Terms() []Expr {
	out := make([]Expr, 0, len(s.pos)+len(s.neg))
	out = append(out, s.pos...)
	return append(out, s.neg...)
}

func (s *Sum) withCoeff(c float64) Expr {
	return &Sum{c: c, t: s.t, pos: s.pos, neg: s.neg}
}

func (s *Sum) Copy() Expr {
	return &Sum{c: s.c, t: s.t, pos: copyList(s.pos), neg: copyList(s.neg)}
}

// Members returns copies of the terms multiplied by the global coefficient.
func (s *Sum) Members() []Expr {
	ms := copyList(s.Terms())
	for i, m := range ms {
		ms[i] = scale(m, s.c)
	}
	return ms
}

// Equal is sign sensitive: both term lists must match term by term,
// coefficients included.
func (s *Sum) Equal(other Expr) bool {
	o, ok := other.(*Sum)
	if !ok || len(s.pos) != len(o.pos) || len(s.neg) != len(o.neg) {
		return false
	}
	for i := range s.pos {
		if !identical(s.pos[i], o.pos[i]) {
			return false
		}
	}
	for i := range s.neg {
		if !identical(s.neg[i], o.neg[i]) {
			return false
		}
	}
	return true
}

func (s *Sum) Compare(other Expr) int {
	o, ok := other.(*Sum)
	if !ok {
		return s.rank() - other.rank()
	}
	a, b := s.Terms(), o.Terms()
	if c := compareLists(a, b); c != 0 {
		return c
	}
	for i := range a {
		if c := compareFloat(a[i].Coeff(), b[i].Coeff()); c != 0 {
			return c
		}
	}
	return 0
}

// Ops counts one addition per positive term (negative terms carry their
// subtraction in their own cost), minus one, plus the cost of a non-unit or
// negative global coefficient.
func (s *Sum) Ops() int {
	if s.c == 0 {
		return 0
	}
	ops := 0
	for _, v := range s.pos {
		ops += v.Ops() + 1
	}
	for _, v := range s.neg {
		ops += v.Ops()
	}
	ops--
	if s.c != 1 && s.c != -1 {
		ops++
	}
	if s.c < 0 {
		ops++
	}
	return ops
}

func (s *Sum) Render(f *Format) string {
	if s.c == 0 {
		return f.Float(0)
	}
	var b strings.Builder
	b.WriteString(f.Add(renderList(s.pos, f)))
	for _, v := range s.neg {
		b.WriteString(v.Render(f))
	}
	str := b.String()
	if len(s.pos)+len(s.neg) > 1 {
		str = f.Grouping(str)
	}
	return withSign(str, s.c, f)
}

func (s *Sum) String() string { return s.Render(defaultFormat) }

// ============================================================
// Sum arithmetic
// ============================================================

func (s *Sum) mul(other Expr) Expr {
	if s.c == 0 || isZero(other) {
		return Zero()
	}
	var prods []Expr
	switch o := other.(type) {
	case *Symbol, *Product:
		for _, m := range s.Terms() {
			prods = append(prods, scale(mul(m, o), s.c))
		}
	case *Sum:
		for _, m := range s.Terms() {
			for _, n := range o.Terms() {
				prods = append(prods, scale(mul(m, n), s.c*o.c))
			}
		}
	default:
		return mul(other, s)
	}
	return sumOf(prods)
}

// sumOf drops zero terms and collapses a single term.
func sumOf(terms []Expr) Expr {
	terms = slices.DeleteFunc(terms, isZero)
	switch len(terms) {
	case 0:
		return Zero()
	case 1:
		return terms[0]
	}
	return newSum(terms)
}

func (s *Sum) div(other Expr) Expr {
	if s.c == 0 {
		return Zero()
	}
	if s.Equal(other) {
		return C(s.c / other.Coeff())
	}
	switch o := other.(type) {
	case *Sum:
		return newFraction(s, o)
	case *Fraction:
		return mul(s, o.inverse())
	}
	var quots []Expr
	for _, m := range s.Terms() {
		quots = append(quots, scale(div(m, other), s.c))
	}
	return sumOf(quots)
}

// add merges equal sums and otherwise promotes both operands to one sum.
func (s *Sum) add(other Expr) Expr {
	if s.Equal(other) {
		return s.withCoeff(s.c + other.Coeff())
	}
	terms := s.Members()
	if o, ok := other.(*Sum); ok {
		terms = append(terms, o.Members()...)
	} else {
		terms = append(terms, other)
	}
	return newSum(terms)
}

// ============================================================
// Sum normalization
// ============================================================

func (s *Sum) recon() Expr {
	if s.c == 0 {
		return Zero()
	}
	terms := s.Terms()
	switch len(terms) {
	case 0:
		raise(errors.New("sum without terms"))
	case 1:
		return scale(recon(terms[0]), s.c)
	}
	rs := make([]Expr, len(terms))
	for i, v := range terms {
		rs[i] = scale(recon(v), s.c)
	}
	return newSum(rs)
}

// removeNested absorbs the terms of nested sums.
func (s *Sum) removeNested() Expr {
	var terms []Expr
	for _, m := range s.Terms() {
		n := scale(removeNested(m), s.c)
		if ns, ok := n.(*Sum); ok {
			terms = append(terms, ns.Members()...)
			continue
		}
		terms = append(terms, n)
	}
	switch len(terms) {
	case 0:
		raise(errors.New("sum without terms"))
	case 1:
		return terms[0]
	}
	return newSum(terms)
}

func (s *Sum) expand() Expr {
	n := s.removeNested()
	if isZero(n) {
		return Zero()
	}
	ns, ok := n.(*Sum)
	if !ok {
		return expand(n)
	}
	var terms []Expr
	for _, m := range ns.Terms() {
		e := scale(expand(m), ns.c)
		if isZero(e) {
			continue
		}
		if es, ok := e.(*Sum); ok {
			terms = append(terms, es.Members()...)
			continue
		}
		terms = append(terms, e)
	}
	return sumOf(terms)
}

// reduceVartype groups the terms by their extracted part of class t.
func (s *Sum) reduceVartype(t VarType) []Pair {
	type group struct {
		found Expr
		rems  []Expr
	}
	var groups []*group
	for _, v := range s.Terms() {
		for _, p := range reduceVartype(v, t) {
			i := slices.IndexFunc(groups, func(g *group) bool {
				if g.found == nil || p.Found == nil {
					return g.found == nil && p.Found == nil
				}
				return identical(g.found, p.Found)
			})
			if i < 0 {
				groups = append(groups, &group{found: p.Found})
				i = len(groups) - 1
			}
			groups[i].rems = append(groups[i].rems, p.Remainder)
		}
	}
	pairs := make([]Pair, 0, len(groups))
	for _, g := range groups {
		var r Expr
		if len(g.rems) == 1 {
			r = g.rems[0]
		} else {
			r = newSum(g.rems)
		}
		r = scale(r, s.c)
		if isZero(r) {
			continue
		}
		pairs = append(pairs, Pair{Found: g.found, Remainder: r})
	}
	return pairs
}
