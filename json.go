package gograd

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ============================================================
// JSON Serialization
// ============================================================

// FromJSON compiles an expression object into a Func. The object format is:
//
//	{"type":"num","value":"3"}            constant (string or number)
//	{"type":"sym","name":"x"}             the variable
//	{"type":"add","terms":[...]}          sum of two or more terms
//	{"type":"mul","factors":[...]}        product of two or more factors
//	{"type":"pow","base":{},"exp":{}}     exp must be a num
//	{"type":"func","name":"sin","arg":{}} sin, cos or exp
//	{"type":"neg","arg":{}}
func FromJSON(data map[string]interface{}) (Func, error) {
	c, err := fromJSON(data)
	if err != nil {
		return nil, err
	}
	return Func(c), nil
}

func fromJSON(data map[string]interface{}) (compiled, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (compiled, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		c, err := fromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return c, nil
	}

	subObjArray := func(field string) ([]compiled, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		if len(raw) == 0 {
			return nil, fmt.Errorf("%s: %q must not be empty", typ, field)
		}
		out := make([]compiled, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			c, err := fromJSON(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = c
		}
		return out, nil
	}

	switch typ {
	case "num":
		v, err := numberField(data, "value")
		if err != nil {
			return nil, err
		}
		return func(x Node) Node { return x.g.Constant(v) }, nil

	case "sym":
		name, _ := data["name"].(string)
		// Expressions are functions of the single variable x.
		if name != "" && name != "x" {
			return nil, fmt.Errorf("sym: %q: %w", name, ErrUnknownVariable)
		}
		return func(x Node) Node { return x }, nil

	case "add", "mul":
		field := "terms"
		if typ == "mul" {
			field = "factors"
		}
		parts, err := subObjArray(field)
		if err != nil {
			return nil, err
		}
		isMul := typ == "mul"
		return func(x Node) Node {
			acc := parts[0](x)
			for _, p := range parts[1:] {
				if isMul {
					acc = acc.Mul(p(x))
				} else {
					acc = acc.Add(p(x))
				}
			}
			return acc
		}, nil

	case "pow":
		base, err := subObj("base")
		if err != nil {
			return nil, err
		}
		expM, ok := data["exp"].(map[string]interface{})
		if !ok || expM["type"] != "num" {
			return nil, fmt.Errorf("pow: exp: %w", ErrNonConstantExponent)
		}
		p, err := numberField(expM, "value")
		if err != nil {
			return nil, fmt.Errorf("pow: exp: %w", err)
		}
		return func(x Node) Node { return base(x).Pow(p) }, nil

	case "func":
		name, _ := data["name"].(string)
		arg, err := subObj("arg")
		if err != nil {
			return nil, err
		}
		switch name {
		case "sin":
			return func(x Node) Node { return arg(x).Sin() }, nil
		case "cos":
			return func(x Node) Node { return arg(x).Cos() }, nil
		case "exp":
			return func(x Node) Node { return arg(x).Exp() }, nil
		}
		return nil, fmt.Errorf("func: %q: %w", name, ErrUnknownFunction)

	case "neg":
		arg, err := subObj("arg")
		if err != nil {
			return nil, err
		}
		return func(x Node) Node { return arg(x).Neg() }, nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

func numberField(data map[string]interface{}, field string) (float64, error) {
	v, ok := data[field]
	if !ok {
		return 0, fmt.Errorf("num: missing %q", field)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid num value: %s", n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("num: %q must be a number or numeric string", field)
}

// GraphJSON is the dump of the sub-graph reachable from a root node.
type GraphJSON struct {
	Root  int        `json:"root"`
	Nodes []NodeJSON `json:"nodes"`
}

// NodeJSON describes one node of a GraphJSON. Grad is the id of the
// gradient expression, or nil for the additive identity.
type NodeJSON struct {
	ID       int     `json:"id"`
	Op       string  `json:"op"`
	Name     string  `json:"name,omitempty"`
	Value    float64 `json:"value"`
	Children []int   `json:"children,omitempty"`
	Grad     *int    `json:"grad,omitempty"`
}

// Dump lists the nodes reachable from n in topological order.
func (n Node) Dump() GraphJSON {
	order := n.Topo()
	out := GraphJSON{Root: n.ID(), Nodes: make([]NodeJSON, len(order))}
	for i, v := range order {
		nj := NodeJSON{ID: v.ID(), Op: v.Op().String(), Name: v.Name(), Value: v.Value()}
		for _, c := range v.Children() {
			nj.Children = append(nj.Children, c.ID())
		}
		if d, ok := v.Grad().Node(); ok {
			id := d.ID()
			nj.Grad = &id
		}
		out.Nodes[i] = nj
	}
	return out
}

// ToJSON encodes Dump as a JSON string.
func (n Node) ToJSON() (string, error) {
	b, err := json.Marshal(n.Dump())
	return string(b), err
}
