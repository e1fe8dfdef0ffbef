package gograd

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// ============================================================
// Expression text
// ============================================================

// Parse compiles an expression written in HCL expression syntax into a
// Func of the named variable, for example:
//
//	x * sin(x)
//	exp(sin(x)) - pow(x, 3) / 2
//
// Supported: numbers, the variable, + - * /, unary minus, parentheses and
// the calls sin, cos, exp, sqrt and pow(base, constant).
func Parse(src, varName string) (Func, error) {
	if varName == "" {
		varName = "x"
	}
	expr, diags := hclsyntax.ParseExpression([]byte(src), "expression", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %q: %w", src, diags)
	}
	c := &compiler{varName: varName}
	f, err := c.compile(expr)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", src, err)
	}
	return Func(f), nil
}

// MustParse is like Parse but panics on error.
func MustParse(src, varName string) Func {
	f, err := Parse(src, varName)
	if err != nil {
		panic("gograd: " + err.Error())
	}
	return f
}

type compiler struct {
	varName string
}

type compiled func(x Node) Node

func (c *compiler) compile(expr hclsyntax.Expression) (compiled, error) {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		v, err := numberOf(e.Val, e.Range())
		if err != nil {
			return nil, err
		}
		return func(x Node) Node { return x.g.Constant(v) }, nil

	case *hclsyntax.ScopeTraversalExpr:
		if len(e.Traversal) != 1 || e.Traversal.RootName() != c.varName {
			return nil, fmt.Errorf("%s: %q: %w", e.Range(), e.Traversal.RootName(), ErrUnknownVariable)
		}
		return func(x Node) Node { return x }, nil

	case *hclsyntax.ParenthesesExpr:
		return c.compile(e.Expression)

	case *hclsyntax.UnaryOpExpr:
		if e.Op != hclsyntax.OpNegate {
			return nil, fmt.Errorf("%s: unsupported unary operator", e.Range())
		}
		val, err := c.compile(e.Val)
		if err != nil {
			return nil, err
		}
		return func(x Node) Node { return val(x).Neg() }, nil

	case *hclsyntax.BinaryOpExpr:
		lhs, err := c.compile(e.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := c.compile(e.RHS)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case hclsyntax.OpAdd:
			return func(x Node) Node { return lhs(x).Add(rhs(x)) }, nil
		case hclsyntax.OpSubtract:
			return func(x Node) Node { return lhs(x).Sub(rhs(x)) }, nil
		case hclsyntax.OpMultiply:
			return func(x Node) Node { return lhs(x).Mul(rhs(x)) }, nil
		case hclsyntax.OpDivide:
			return func(x Node) Node { return lhs(x).Div(rhs(x)) }, nil
		}
		return nil, fmt.Errorf("%s: unsupported binary operator", e.Range())

	case *hclsyntax.FunctionCallExpr:
		return c.call(e)
	}
	return nil, fmt.Errorf("%s: unsupported expression %T", expr.Range(), expr)
}

func (c *compiler) call(e *hclsyntax.FunctionCallExpr) (compiled, error) {
	want := 1
	switch e.Name {
	case "sin", "cos", "exp", "sqrt":
	case "pow":
		want = 2
	default:
		return nil, fmt.Errorf("%s: %q: %w", e.NameRange, e.Name, ErrUnknownFunction)
	}
	if len(e.Args) != want {
		return nil, fmt.Errorf("%s: %s takes %d argument(s), got %d", e.Range(), e.Name, want, len(e.Args))
	}
	arg, err := c.compile(e.Args[0])
	if err != nil {
		return nil, err
	}
	switch e.Name {
	case "sin":
		return func(x Node) Node { return arg(x).Sin() }, nil
	case "cos":
		return func(x Node) Node { return arg(x).Cos() }, nil
	case "exp":
		return func(x Node) Node { return arg(x).Exp() }, nil
	case "sqrt":
		return func(x Node) Node { return arg(x).Pow(0.5) }, nil
	case "pow":
		p, ok := constantOf(e.Args[1])
		if !ok {
			return nil, fmt.Errorf("%s: pow: %w", e.Args[1].Range(), ErrNonConstantExponent)
		}
		return func(x Node) Node { return arg(x).Pow(p) }, nil
	}
	return nil, fmt.Errorf("%s: %q: %w", e.NameRange, e.Name, ErrUnknownFunction)
}

// constantOf folds a numeric literal, optionally negated or parenthesized.
func constantOf(expr hclsyntax.Expression) (float64, bool) {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		v, err := numberOf(e.Val, e.Range())
		return v, err == nil
	case *hclsyntax.ParenthesesExpr:
		return constantOf(e.Expression)
	case *hclsyntax.UnaryOpExpr:
		if e.Op == hclsyntax.OpNegate {
			v, ok := constantOf(e.Val)
			return -v, ok
		}
	}
	return 0, false
}

func numberOf(v cty.Value, rng hcl.Range) (float64, error) {
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.Number {
		return 0, fmt.Errorf("%s: expected a number, got %s", rng, v.Type().FriendlyName())
	}
	f, _ := v.AsBigFloat().Float64()
	return f, nil
}
