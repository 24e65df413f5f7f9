package symopt_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/njchilds90/symopt"
)

func TestEval(t *testing.T) {
	e := symopt.NewSum(
		symopt.NewProduct(symopt.Sym("x", 2, symopt.Basis), a),
		symopt.NewFraction(y, symopt.Sym("b", -1, symopt.Geo)),
		symopt.C(1),
	)
	got, err := symopt.Eval(e, map[string]float64{"x": 3, "a": 0.5, "y": 4, "b": 2})
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	if got != 2 {
		t.Errorf("want 2, got %v", got)
	}
}

func TestEval_MissingValue(t *testing.T) {
	if _, err := symopt.Eval(symopt.NewProduct(x, a), map[string]float64{"x": 1}); err == nil {
		t.Error("expected error for unbound symbol a")
	}
}

func TestEval_ZeroDenominator(t *testing.T) {
	_, err := symopt.Eval(symopt.NewFraction(x, a), map[string]float64{"x": 1, "a": 0})
	if !errors.Is(err, symopt.ErrDivisionByZero) {
		t.Errorf("want ErrDivisionByZero, got %v", err)
	}
}
