package symopt

import (
	"golang.org/x/exp/slices"
)

// ============================================================
// Factor extraction
// ============================================================

// ReduceOps rewrites e to use fewer floating point operations by pulling
// factors shared between the terms of a sum out of that sum. It never
// returns an expression that costs more than the reconstructed input.
// Input is expected to be expanded.
func ReduceOps(e Expr) (r Expr, err error) {
	defer catch(&err)
	return reduceOps(e), nil
}

func reduceOps(e Expr) Expr {
	switch v := e.(type) {
	case *Symbol:
		return v.Copy()
	case *Product:
		return v.recon()
	case *Sum:
		return v.reduceOps()
	case *Fraction:
		return v.reduceOps()
	}
	return Zero()
}

// factorVars returns the non-constant symbols of a term that a common
// factor may be drawn from. Only the numerator of a fraction qualifies.
func factorVars(e Expr) []*Symbol {
	var out []*Symbol
	collect := func(m Expr) {
		if s, ok := m.(*Symbol); ok && s.t != Const {
			out = append(out, s)
		}
	}
	switch v := e.(type) {
	case *Symbol:
		collect(v)
	case *Product:
		for _, m := range v.vs {
			collect(m)
		}
	case *Fraction:
		switch n := v.num.(type) {
		case *Symbol:
			collect(n)
		case *Product:
			for _, m := range n.vs {
				collect(m)
			}
		}
	}
	return out
}

// multiplicity counts the occurrences of name among the factor symbols of e.
func multiplicity(e Expr, name string) int {
	n := 0
	for _, s := range factorVars(e) {
		if s.name == name {
			n++
		}
	}
	return n
}

// reduceVar divides term by the extracted factor. A fraction keeps its
// denominator untouched.
func reduceVar(term, by Expr) Expr {
	if f, ok := term.(*Fraction); ok {
		return newFraction(div(f.getNum(), by), f.denom)
	}
	return div(term, by)
}

func (s *Sum) reduceOps() Expr {
	r := s.recon()
	ns, ok := r.(*Sum)
	if !ok {
		return reduceOps(r)
	}
	terms := ns.Terms()

	// spread holds, per name, the indices of the terms containing it.
	spread := map[string][]int{}
	vars := map[string]*Symbol{}
	for i, term := range terms {
		for _, v := range factorVars(term) {
			idx := spread[v.name]
			if len(idx) == 0 || idx[len(idx)-1] != i {
				spread[v.name] = append(idx, i)
			}
			if _, ok := vars[v.name]; !ok {
				vars[v.name] = unit(v).(*Symbol)
			}
		}
	}
	maxSpread := 0
	for _, idx := range spread {
		if len(idx) > maxSpread {
			maxSpread = len(idx)
		}
	}
	if maxSpread <= 1 {
		return ns
	}

	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	slices.SortFunc(names, func(a, b string) int { return vars[a].Compare(vars[b]) })

	var chosen []*Symbol
	var covered []int
	power := 0
	for _, name := range names {
		idx := spread[name]
		if len(idx) != maxSpread {
			continue
		}
		occur := -1
		for _, i := range idx {
			if m := multiplicity(terms[i], name); occur < 0 || m < occur {
				occur = m
			}
		}
		switch {
		case occur > power:
			power, chosen, covered = occur, []*Symbol{vars[name]}, idx
		case occur == power && slices.Equal(idx, covered):
			chosen = append(chosen, vars[name])
		}
	}

	factors := make([]Expr, 0, power*len(chosen))
	for _, v := range chosen {
		for k := 0; k < power; k++ {
			factors = append(factors, v)
		}
	}
	var by Expr
	if len(factors) == 1 {
		by = factors[0]
	} else {
		by = newProduct(factors, 1)
	}

	var reduced, rest []Expr
	for i, term := range terms {
		if slices.Contains(covered, i) {
			reduced = append(reduced, reduceVar(term, by))
		} else {
			rest = append(rest, term)
		}
	}
	inner := reduceOps(sumOf(reduced))
	factored := Expr(newProduct([]Expr{by, inner}, ns.c))
	if len(rest) > 0 {
		other := scale(reduceOps(sumOf(rest)), ns.c)
		factored = newSum([]Expr{factored, other})
	}
	cand := removeNested(factored)
	if cand.Ops() >= ns.Ops() {
		return ns
	}
	return cand
}

func (f *Fraction) reduceOps() Expr {
	r := f.recon()
	rf, ok := r.(*Fraction)
	if !ok {
		return reduceOps(r)
	}
	num := reduceOps(rf.getNum())
	denom := reduceOps(rf.denom)
	var cand Expr
	if _, ok := num.(*Sum); ok {
		cand = newFraction(num, denom)
	} else {
		cand = div(num, denom)
	}
	if cand.Ops() > rf.Ops() {
		return rf
	}
	return cand
}
