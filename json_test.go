package symopt_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/njchilds90/symopt"
)

// ============================================================
// JSON Serialization tests
// ============================================================

func TestToJSON_Symbol(t *testing.T) {
	j, err := symopt.ToJSON(symopt.Sym("x", 2, symopt.Basis))
	if err != nil {
		t.Fatalf("ToJSON error: %v", err)
	}
	for _, part := range []string{`"type":"symbol"`, `"name":"x"`, `"coeff":2`, `"class":"basis"`} {
		if !strings.Contains(j, part) {
			t.Errorf("want %s in %s", part, j)
		}
	}
}

func TestFromJSON_RoundTrip(t *testing.T) {
	exprs := append(sampleExprs(),
		symopt.NewSum(x, symopt.Sym("y", -2, symopt.Basis)),
		symopt.NewFraction(symopt.C(3), symopt.NewProduct(a, b)),
	)
	for _, want := range exprs {
		j, err := symopt.ToJSON(want)
		if err != nil {
			t.Fatalf("ToJSON error: %v", err)
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(j), &m); err != nil {
			t.Fatalf("unmarshal error: %v", err)
		}
		rebuilt, err := symopt.FromJSON(m)
		if err != nil {
			t.Fatalf("FromJSON(%s) error: %v", j, err)
		}
		if !rebuilt.Equal(want) || rebuilt.Coeff() != want.Coeff() {
			t.Errorf("want %v, got %v", want, rebuilt)
		}
		if rebuilt.Ops() != want.Ops() {
			t.Errorf("%v: want %d ops, got %d", want, want.Ops(), rebuilt.Ops())
		}
	}
}

func TestFromJSON_DefaultsToConstant(t *testing.T) {
	e, err := symopt.FromJSON(map[string]interface{}{"type": "symbol", "coeff": 4.0})
	if err != nil {
		t.Fatalf("FromJSON error: %v", err)
	}
	if e.Type() != symopt.Const || e.Coeff() != 4 {
		t.Errorf("want constant 4, got %v", e)
	}
}

func TestFromJSON_Errors(t *testing.T) {
	cases := []map[string]interface{}{
		nil,
		{},
		{"type": "matrix"},
		{"type": "symbol", "name": "x"},
		{"type": "symbol", "name": "x", "class": "volume"},
		{"type": "symbol", "name": "x", "class": "basis", "coeff": "two"},
		{"type": "sum", "members": "x"},
		{"type": "fraction", "num": map[string]interface{}{"type": "symbol", "name": "x", "class": "basis"}},
	}
	for _, m := range cases {
		if _, err := symopt.FromJSON(m); err == nil {
			t.Errorf("want error for %v", m)
		}
	}
}

func TestFromJSON_EmptyProduct(t *testing.T) {
	_, err := symopt.FromJSON(map[string]interface{}{"type": "product", "members": []interface{}{}})
	if !errors.Is(err, symopt.ErrMalformedProduct) {
		t.Errorf("want ErrMalformedProduct, got %v", err)
	}
}

func TestFromJSON_ZeroDenominator(t *testing.T) {
	_, err := symopt.FromJSON(map[string]interface{}{
		"type":  "fraction",
		"num":   map[string]interface{}{"type": "symbol", "name": "x", "class": "basis"},
		"denom": map[string]interface{}{"type": "symbol", "coeff": 0.0},
	})
	if !errors.Is(err, symopt.ErrDivisionByZero) {
		t.Errorf("want ErrDivisionByZero, got %v", err)
	}
}
