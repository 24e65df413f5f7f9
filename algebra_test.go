package symopt_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/njchilds90/symopt"
)

// ============================================================
// Mul tests
// ============================================================

func TestMul_Symbols(t *testing.T) {
	p, err := symopt.Mul(x, y)
	if err != nil {
		t.Fatalf("Mul error: %v", err)
	}
	if _, ok := p.(*symopt.Product); !ok || p.String() != "x*y" {
		t.Errorf("want product x*y, got %v", p)
	}
}

func TestMul_DistributesOverSum(t *testing.T) {
	p, err := symopt.Mul(symopt.NewSum(x, y), a)
	if err != nil {
		t.Fatalf("Mul error: %v", err)
	}
	if p.String() != "(x*a + y*a)" {
		t.Errorf("want (x*a + y*a), got %s", p)
	}
}

func TestMul_ByZero(t *testing.T) {
	p, err := symopt.Mul(x, symopt.Zero())
	if err != nil {
		t.Fatalf("Mul error: %v", err)
	}
	if p.Coeff() != 0 {
		t.Errorf("want zero, got %v", p)
	}
}

func TestMul_CoefficientsMultiply(t *testing.T) {
	p, _ := symopt.Mul(symopt.Sym("x", 2, symopt.Basis), symopt.Sym("y", -3, symopt.Basis))
	if p.Coeff() != -6 {
		t.Errorf("want -6, got %v", p.Coeff())
	}
}

// ============================================================
// Div tests
// ============================================================

func TestDiv_EqualSymbols(t *testing.T) {
	q, err := symopt.Div(symopt.Sym("x", 6, symopt.Basis), symopt.Sym("x", 2, symopt.Basis))
	if err != nil {
		t.Fatalf("Div error: %v", err)
	}
	if q.Type() != symopt.Const || q.Coeff() != 3 {
		t.Errorf("want constant 3, got %v", q)
	}
}

func TestDiv_DistinctSymbols(t *testing.T) {
	q, _ := symopt.Div(x, y)
	if _, ok := q.(*symopt.Fraction); !ok || q.String() != "x/y" {
		t.Errorf("want fraction x/y, got %v", q)
	}
}

func TestDiv_ProductCancelsMember(t *testing.T) {
	q, err := symopt.Div(symopt.NewProduct(x, y, z), y)
	if err != nil {
		t.Fatalf("Div error: %v", err)
	}
	want := symopt.NewProduct(x, z)
	if !q.Equal(want) || q.String() != "x*z" {
		t.Errorf("want %v, got %v", want, q)
	}
}

func TestDiv_ProductWithoutMember(t *testing.T) {
	q, _ := symopt.Div(symopt.NewProduct(x, y), z)
	if _, ok := q.(*symopt.Fraction); !ok {
		t.Errorf("want fraction, got %v", q)
	}
}

func TestDiv_SymbolByProductContainingIt(t *testing.T) {
	q, _ := symopt.Div(x, symopt.NewProduct(x, y))
	if q.String() != "1/y" {
		t.Errorf("want 1/y, got %v", q)
	}
}

func TestDiv_BySumIsFraction(t *testing.T) {
	q, _ := symopt.Div(symopt.NewProduct(x, y), symopt.NewSum(a, b))
	f, ok := q.(*symopt.Fraction)
	if !ok {
		t.Fatalf("want fraction, got %v", q)
	}
	if !f.Denom().Equal(symopt.NewSum(a, b)) {
		t.Errorf("want denominator a + b, got %v", f.Denom())
	}
}

func TestDiv_ByConstant(t *testing.T) {
	q, _ := symopt.Div(symopt.Sym("x", 4, symopt.Basis), symopt.C(2))
	if !q.Equal(x) || q.Coeff() != 2 {
		t.Errorf("want 2*x, got %v", q)
	}
}

func TestDiv_ByFractionMultipliesInverse(t *testing.T) {
	q, err := symopt.Div(x, symopt.NewFraction(x, y))
	if err != nil {
		t.Fatalf("Div error: %v", err)
	}
	if !q.Equal(y) || q.Coeff() != 1 {
		t.Errorf("want y, got %v", q)
	}
}

func TestDiv_ByZero(t *testing.T) {
	_, err := symopt.Div(x, symopt.Zero())
	if !errors.Is(err, symopt.ErrDivisionByZero) {
		t.Errorf("want ErrDivisionByZero, got %v", err)
	}
	if errors.Cause(err) != symopt.ErrDivisionByZero {
		t.Errorf("want cause ErrDivisionByZero, got %v", errors.Cause(err))
	}
}

// ============================================================
// Add tests
// ============================================================

func TestAdd_EqualShapes(t *testing.T) {
	s, err := symopt.Add(x, symopt.Sym("x", 2, symopt.Basis))
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if !s.Equal(x) || s.Coeff() != 3 {
		t.Errorf("want 3*x, got %v", s)
	}
	p, err := symopt.Add(symopt.NewProduct(x, a), symopt.NewProduct(a, x))
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if p.Coeff() != 2 {
		t.Errorf("want 2*x*a, got %v", p)
	}
}

func TestAdd_Unsupported(t *testing.T) {
	for _, tc := range [][2]symopt.Expr{
		{x, y},
		{symopt.NewProduct(x, y), symopt.NewProduct(x, z)},
		{x, symopt.NewProduct(x, y)},
	} {
		_, err := symopt.Add(tc[0], tc[1])
		if !errors.Is(err, symopt.ErrUnsupportedCombination) {
			t.Errorf("%v + %v: want ErrUnsupportedCombination, got %v", tc[0], tc[1], err)
		}
	}
}

func TestAdd_SumPromotes(t *testing.T) {
	s, err := symopt.Add(symopt.NewSum(x, y), z)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if s.String() != "(x + y + z)" {
		t.Errorf("want (x + y + z), got %s", s)
	}
}

func TestAdd_FractionPromotes(t *testing.T) {
	s, err := symopt.Add(symopt.NewFraction(x, y), z)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if _, ok := s.(*symopt.Sum); !ok {
		t.Errorf("want sum, got %v", s)
	}
}

// ============================================================
// Expand tests
// ============================================================

func TestExpand_Distributes(t *testing.T) {
	e := symopt.NewProduct(symopt.NewSum(x, y), symopt.NewSum(a, symopt.Sym("b", 2, symopt.Geo)))
	got := expand(t, e).String()
	want := "(x*a + 2*x*b + y*a + 2*y*b)"
	if got != want {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestExpand_FlattensNesting(t *testing.T) {
	cases := []struct {
		e    symopt.Expr
		want string
	}{
		{symopt.NewProduct(symopt.NewProduct(x, y), z), "x*y*z"},
		{symopt.NewSum(symopt.NewSum(x, y), z), "(x + y + z)"},
		{symopt.NewFraction(symopt.NewFraction(x, y), z), "x/(y*z)"},
		{symopt.NewProduct(x), "x"},
	}
	for _, tc := range cases {
		if got := expand(t, tc.e).String(); got != tc.want {
			t.Errorf("want %s, got %s", tc.want, got)
		}
	}
}

func TestExpand_Zero(t *testing.T) {
	if e := expand(t, symopt.Zero()); e.Coeff() != 0 {
		t.Errorf("want zero, got %v", e)
	}
}

func TestExpand_Idempotent(t *testing.T) {
	for _, e := range sampleExprs() {
		once := expand(t, e)
		twice := expand(t, once)
		if !twice.Equal(once) || twice.String() != once.String() {
			t.Errorf("expand not idempotent: %v -> %v", once, twice)
		}
	}
}

func TestExpand_FractionInNumerator(t *testing.T) {
	s := symopt.NewSum(a, symopt.C(2))
	once := expand(t, symopt.NewFraction(symopt.NewProduct(w, symopt.NewFraction(a, s)), s))
	f, ok := once.(*symopt.Fraction)
	if !ok {
		t.Fatalf("want fraction, got %v", once)
	}
	if _, ok := f.Denom().(*symopt.Sum); !ok {
		t.Errorf("want an expanded sum as denominator, got %v", f.Denom())
	}
	if once.String() != "W*a/(4*a + 4 + a*a)" {
		t.Errorf("want W*a/(4*a + 4 + a*a), got %v", once)
	}
	twice := expand(t, once)
	if !twice.Equal(once) || twice.String() != once.String() {
		t.Errorf("expand not idempotent: %v -> %v", once, twice)
	}
}

func TestExpand_VanishingDenominator(t *testing.T) {
	_, err := symopt.Expand(symopt.NewFraction(x, vanishing(a)))
	if !errors.Is(err, symopt.ErrDivisionByZero) {
		t.Errorf("want ErrDivisionByZero, got %v", err)
	}
}

func TestExpand_PreservesValue(t *testing.T) {
	for _, e := range sampleExprs() {
		assertSameValue(t, e, expand(t, e))
	}
}

// ============================================================
// UniqueVars tests
// ============================================================

func TestUniqueVars(t *testing.T) {
	wrapped := symopt.Sym("cos_ab", 1, symopt.Geo).WithBase(symopt.NewSum(a, b), 1)
	e := symopt.NewSum(symopt.NewProduct(x, a, wrapped), symopt.NewFraction(y, c))
	var names []string
	for _, v := range symopt.UniqueVars(e, symopt.Geo) {
		names = append(names, v.Name())
	}
	want := []string{"a", "b", "c", "cos_ab"}
	if len(names) != len(want) {
		t.Fatalf("want %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("want %v, got %v", want, names)
			break
		}
	}
}

func TestRecon_UnwrapsSingleMember(t *testing.T) {
	r, err := symopt.Recon(symopt.NewSum(symopt.NewProduct(symopt.Sym("x", 2, symopt.Basis))))
	if err != nil {
		t.Fatalf("Recon error: %v", err)
	}
	s, ok := r.(*symopt.Symbol)
	if !ok || s.Name() != "x" || s.Coeff() != 2 {
		t.Errorf("want 2*x, got %v", r)
	}
}
