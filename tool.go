package gograd

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

// ToolResponse is the result of one tool call. Nodes is the size of the
// largest expression graph the call built.
type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
	Nodes  int         `json:"nodes,omitempty"`
}

// Limits bounds the work a single tool call may do. A zero field is
// unbounded.
type Limits struct {
	MaxOrder  int
	MaxNodes  int
	MaxPoints int
}

// DefaultLimits is used by HandleToolCall.
var DefaultLimits = Limits{MaxOrder: 32, MaxNodes: 1 << 20, MaxPoints: 1024}

// HandleToolCall runs one tool call with DefaultLimits.
func HandleToolCall(req ToolRequest) ToolResponse {
	return HandleToolCallWithLimits(req, DefaultLimits)
}

// HandleToolCallWithLimits runs one tool call. Failures are reported in
// ToolResponse.Error.
func HandleToolCallWithLimits(req ToolRequest, lim Limits) ToolResponse {
	getFunc := func() (Func, error) {
		if v, ok := req.Params["source"]; ok {
			src, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("param source must be a string")
			}
			name := "x"
			if s, ok := req.Params["var"].(string); ok && s != "" {
				name = s
			}
			return Parse(src, name)
		}
		v, ok := req.Params["expr"]
		if !ok {
			return nil, fmt.Errorf("missing param: expr or source")
		}
		val, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid type for param expr")
		}
		return FromJSON(val)
	}
	getNumber := func(key string, def float64, required bool) (float64, error) {
		v, ok := req.Params[key]
		if !ok {
			if required {
				return 0, fmt.Errorf("missing param: %s", key)
			}
			return def, nil
		}
		f, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("param %s must be a number", key)
		}
		return f, nil
	}
	getOrder := func() (int, error) {
		f, err := getNumber("n", 1, false)
		if err != nil {
			return 0, err
		}
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("param n must be an integer")
		}
		n := int(f)
		if n < 0 {
			return 0, fmt.Errorf("n=%d: %w", n, ErrNegativeOrder)
		}
		if lim.MaxOrder > 0 && n > lim.MaxOrder {
			return 0, fmt.Errorf("n=%d, max %d: %w", n, lim.MaxOrder, ErrOrderTooHigh)
		}
		return n, nil
	}
	getNumbers := func(key string) ([]float64, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array", key)
		}
		out := make([]float64, len(raw))
		for i, r := range raw {
			f, ok := r.(float64)
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be a number", key, i)
			}
			out[i] = f
		}
		return out, nil
	}
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

	switch req.Tool {
	case "eval":
		f, err := getFunc()
		if err != nil {
			return fail(err)
		}
		x, err := getNumber("at", 0, true)
		if err != nil {
			return fail(err)
		}
		g := NewGraph()
		y := f(g.Variable("x", x))
		if lim.MaxNodes > 0 && g.Len() > lim.MaxNodes {
			return fail(fmt.Errorf("eval: %d nodes: %w", g.Len(), ErrGraphTooLarge))
		}
		return ToolResponse{Result: y.Value(), String: formatFloat(y.Value()), Nodes: g.Len()}

	case "derivatives", "nth_derivative":
		f, err := getFunc()
		if err != nil {
			return fail(err)
		}
		x, err := getNumber("at", 0, true)
		if err != nil {
			return fail(err)
		}
		n, err := getOrder()
		if err != nil {
			return fail(err)
		}
		ds, nodes, err := derivatives(f, x, n, lim.MaxNodes)
		if err != nil {
			resp := fail(err)
			resp.Nodes = nodes
			return resp
		}
		if req.Tool == "nth_derivative" {
			return ToolResponse{Result: ds[n], String: formatFloat(ds[n]), Nodes: nodes}
		}
		parts := make([]string, len(ds))
		for i, d := range ds {
			parts[i] = formatFloat(d)
		}
		return ToolResponse{Result: ds, String: "[" + strings.Join(parts, ", ") + "]", Nodes: nodes}

	case "check":
		f, err := getFunc()
		if err != nil {
			return fail(err)
		}
		points, err := getNumbers("points")
		if err != nil {
			return fail(err)
		}
		if lim.MaxPoints > 0 && len(points) > lim.MaxPoints {
			return fail(fmt.Errorf("check: %d points, max %d: %w", len(points), lim.MaxPoints, ErrTooManyPoints))
		}
		step, err := getNumber("step", 0, false)
		if err != nil {
			return fail(err)
		}
		rep, err := CheckDerivativeBounded(f, points, step, lim.MaxNodes)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: rep, String: fmt.Sprintf("max abs error %g", rep.MaxAbsError)}

	case "graph":
		f, err := getFunc()
		if err != nil {
			return fail(err)
		}
		x, err := getNumber("at", 0, true)
		if err != nil {
			return fail(err)
		}
		name := "x"
		if s, ok := req.Params["var"].(string); ok && s != "" {
			name = s
		}
		g := NewGraph()
		y := f(g.Variable(name, x))
		if b, _ := req.Params["backward"].(bool); b {
			y.Backward()
		}
		if lim.MaxNodes > 0 && g.Len() > lim.MaxNodes {
			return fail(fmt.Errorf("graph: %d nodes: %w", g.Len(), ErrGraphTooLarge))
		}
		return ToolResponse{Result: y.Dump(), String: y.String(), Nodes: g.Len()}

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ============================================================
// MCP spec
// ============================================================

func MCPToolSpec() string {
	fn := map[string]string{"expr": "object", "source": "string", "var": "string"}
	with := func(extra map[string]string) map[string]string {
		out := map[string]string{}
		for k, v := range fn {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}
	tools := []map[string]interface{}{
		ts("eval", "Evaluate f(at). f is an expression object (expr) or HCL text (source)", []string{"at"}, with(map[string]string{"at": "number"})),
		ts("derivatives", "Values [f, f', ..., f^(n)] at a point by reverse-mode AD", []string{"at"}, with(map[string]string{"at": "number", "n": "integer"})),
		ts("nth_derivative", "Value of f^(n) at a point", []string{"at", "n"}, with(map[string]string{"at": "number", "n": "integer"})),
		ts("check", "Compare f' with central finite differences at points", []string{"points"}, with(map[string]string{"points": "array", "step": "number"})),
		ts("graph", "Dump the expression graph of f at a point. Optional backward (bool)", []string{"at"}, with(map[string]string{"at": "number", "backward": "boolean"})),
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
