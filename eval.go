package symopt

import "github.com/pkg/errors"

// ============================================================
// Numeric evaluation
// ============================================================

// Eval evaluates e with the named symbols bound to values. Constants need
// no binding; a symbol without a value is an error.
func Eval(e Expr, values map[string]float64) (float64, error) {
	switch v := e.(type) {
	case *Symbol:
		if v.t == Const || v.c == 0 {
			return v.c, nil
		}
		x, ok := values[v.name]
		if !ok {
			return 0, errors.Errorf("no value for %q", v.name)
		}
		return v.c * x, nil
	case *Product:
		r := v.c
		for _, m := range v.vs {
			x, err := Eval(m, values)
			if err != nil {
				return 0, err
			}
			r *= x
		}
		return r, nil
	case *Sum:
		r := 0.0
		for _, m := range v.Terms() {
			x, err := Eval(m, values)
			if err != nil {
				return 0, err
			}
			r += x
		}
		return v.c * r, nil
	case *Fraction:
		n, err := Eval(v.num, values)
		if err != nil {
			return 0, err
		}
		d, err := Eval(v.denom, values)
		if err != nil {
			return 0, err
		}
		if d == 0 {
			return 0, errors.Wrapf(ErrDivisionByZero, "evaluating %v", v)
		}
		return v.c * n / d, nil
	}
	return 0, errors.Errorf("cannot evaluate %T", e)
}
