package symopt

import (
	"encoding/json"
	"fmt"

	"golang.org/x/exp/slices"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	Ops    *int        `json:"ops,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// OptimiseResult is the result of the optimise tool.
type OptimiseResult struct {
	Expr     interface{}       `json:"expr"`
	Ops      int               `json:"ops"`
	Geometry map[string]string `json:"geometry"`
	IP       map[string]string `json:"ip"`
	AuxOps   int               `json:"aux_ops"`
	Used     []string          `json:"used"`
}

func HandleToolCall(req ToolRequest) (resp ToolResponse) {
	var failed error
	defer func() {
		if failed != nil {
			resp = ToolResponse{Error: failed.Error()}
		}
	}()
	defer catch(&failed)

	getExpr := func(key string) (Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		val, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid type for param %s", key)
		}
		return FromJSON(val)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getValues := func(key string) (map[string]float64, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be an object", key)
		}
		out := make(map[string]float64, len(raw))
		for name, x := range raw {
			f, ok := x.(float64)
			if !ok {
				return nil, fmt.Errorf("param %s.%s must be a number", key, name)
			}
			out[name] = f
		}
		return out, nil
	}
	respond := func(e Expr) ToolResponse {
		ops := e.Ops()
		return ToolResponse{Result: toJSON(e), String: e.String(), Ops: &ops}
	}

	switch req.Tool {
	case "expand":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		r, err := Expand(e)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(r)

	case "reduce_ops":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		ex, err := Expand(e)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		r, err := ReduceOps(ex)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(r)

	case "reduce_vartype":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		class, err := getString("type")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		t, err := ParseVarType(class)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		ex, err := Expand(e)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		split, err := ReduceVartype(ex, t)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		var pairs []map[string]interface{}
		var strs []string
		for _, p := range split {
			pair := map[string]interface{}{"remainder": toJSON(p.Remainder)}
			found := "1"
			if p.Found != nil {
				pair["found"] = toJSON(p.Found)
				found = p.Found.String()
			}
			pairs = append(pairs, pair)
			strs = append(strs, found+" : "+p.Remainder.String())
		}
		return ToolResponse{Result: pairs, String: fmt.Sprint(strs)}

	case "ops":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(e)

	case "eval":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		values, err := getValues("values")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		x, err := Eval(e, values)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: x, String: fmt.Sprint(x)}

	case "optimise":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		precision := 0.0
		if v, ok := req.Params["precision"]; ok {
			if precision, ok = v.(float64); !ok {
				return ToolResponse{Error: "param precision must be a number"}
			}
		}
		return optimiseTool(e, NewFormat(int(precision)))

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

func optimiseTool(e Expr, f *Format) ToolResponse {
	o := NewOptimiser(f, nil)
	r, err := o.Optimise("", e)
	if err != nil {
		return ToolResponse{Error: err.Error()}
	}
	res := OptimiseResult{
		Expr:     toJSON(r),
		Ops:      r.Ops(),
		Geometry: map[string]string{},
		IP:       map[string]string{},
		Used:     o.Used.Slice(),
	}
	slices.Sort(res.Used)
	for _, t := range []struct {
		table  *ConstantTable
		prefix string
		out    map[string]string
	}{
		{o.GeoConsts, f.GeometryTensor, res.Geometry},
		{o.IPConsts, f.GeometryTensor + f.IntegrationPoints, res.IP},
	} {
		ops, decls, err := GenerateAuxConstants(t.table, t.prefix)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		res.AuxOps += ops
		for _, d := range decls {
			t.out[d.Name] = d.Expr.Render(f)
		}
	}
	return ToolResponse{Result: res, String: r.Render(f), Ops: &res.Ops}
}

// ============================================================
// MCP spec
// ============================================================

func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("expand", "Flatten and distribute an expression into a sum of products", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("reduce_ops", "Expand, then pull shared factors out of sums to reduce the operation count", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("reduce_vartype", "Split an expression by variable class (basis, ip, geo, const)", []string{"expr", "type"}, map[string]string{"expr": "object", "type": "string"}),
		ts("ops", "Count floating point operations", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("eval", "Evaluate numerically. values maps symbol names to numbers", []string{"expr", "values"}, map[string]string{"expr": "object", "values": "object"}),
		ts("optimise", "Optimise an integrand and return the geometry and ip declarations. Optional: precision", []string{"expr"}, map[string]string{"expr": "object", "precision": "integer"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
