package symopt

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ============================================================
// JSON Serialization
// ============================================================

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(toJSON(e))
	return string(b), err
}

func toJSON(e Expr) map[string]interface{} {
	switch v := e.(type) {
	case *Symbol:
		m := map[string]interface{}{"type": "symbol", "name": v.name, "coeff": v.c, "class": v.t.String()}
		if v.base != nil {
			m["base"] = toJSON(v.base)
			m["base_ops"] = v.baseOp
		}
		return m
	case *Product:
		return map[string]interface{}{"type": "product", "coeff": v.c, "members": listJSON(v.vs)}
	case *Sum:
		return map[string]interface{}{"type": "sum", "coeff": v.c, "members": listJSON(v.Terms())}
	case *Fraction:
		return map[string]interface{}{"type": "fraction", "coeff": v.c, "num": toJSON(v.num), "denom": toJSON(v.denom)}
	}
	return nil
}

func listJSON(l []Expr) []interface{} {
	out := make([]interface{}, len(l))
	for i, e := range l {
		out[i] = toJSON(e)
	}
	return out
}

// FromJSON decodes the object form produced by ToJSON. A missing coeff
// defaults to 1; a symbol without a name is a constant.
func FromJSON(data map[string]interface{}) (e Expr, err error) {
	defer catch(&err)
	if data == nil {
		return nil, errors.New("expression must be an object")
	}
	typ, ok := data["type"].(string)
	if !ok || typ == "" {
		return nil, errors.New("field 'type' must be a non-empty string")
	}

	coeff := 1.0
	if v, ok := data["coeff"]; ok {
		if coeff, ok = v.(float64); !ok {
			return nil, errors.Errorf("%s: 'coeff' must be a number", typ)
		}
	}

	subObj := func(field string) (Expr, error) {
		m, ok := data[field].(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("%s: %q must be an object", typ, field)
		}
		e, err := FromJSON(m)
		return e, errors.Wrapf(err, "%s: %s", typ, field)
	}

	subObjArray := func(field string) ([]Expr, error) {
		raw, ok := data[field].([]interface{})
		if !ok {
			return nil, errors.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]Expr, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, errors.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			e, err := FromJSON(m)
			if err != nil {
				return nil, errors.Wrapf(err, "%s: %s[%d]", typ, field, i)
			}
			out[i] = e
		}
		return out, nil
	}

	switch typ {
	case "symbol":
		name, _ := data["name"].(string)
		t := Const
		if class, ok := data["class"].(string); ok {
			if t, err = ParseVarType(class); err != nil {
				return nil, err
			}
		} else if name != "" {
			return nil, errors.Errorf("symbol %s: missing 'class'", name)
		}
		s := Sym(name, coeff, t)
		if _, ok := data["base"]; ok {
			base, err := subObj("base")
			if err != nil {
				return nil, err
			}
			n, _ := data["base_ops"].(float64)
			s = s.WithBase(base, int(n))
		}
		return s, nil

	case "product":
		members, err := subObjArray("members")
		if err != nil {
			return nil, err
		}
		return scale(NewProduct(members...), coeff), nil

	case "sum":
		members, err := subObjArray("members")
		if err != nil {
			return nil, err
		}
		return scale(NewSum(members...), coeff), nil

	case "fraction":
		num, err := subObj("num")
		if err != nil {
			return nil, err
		}
		denom, err := subObj("denom")
		if err != nil {
			return nil, err
		}
		return scale(newFraction(num, denom), coeff), nil
	}
	return nil, errors.Errorf("unknown expression type: %s", typ)
}
