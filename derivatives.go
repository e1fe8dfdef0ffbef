package gograd

import "fmt"

// ============================================================
// Derivative extraction
// ============================================================

// Func is a scalar function written with the node operations. It must build
// its result only from x and from nodes derived from x.
type Func func(x Node) Node

// Derivatives evaluates f at x0 and returns [f(x0), f'(x0), ..., f⁽ⁿ⁾(x0)].
//
// Each order is one more backward pass: the gradient of the variable after
// pass k is an expression node, and it becomes the root of pass k+1.
func Derivatives(f Func, x0 float64, n int) ([]float64, error) {
	return DerivativesBounded(f, x0, n, 0)
}

// DerivativesBounded is Derivatives with a cap on the number of graph nodes.
// The gradient expression grows with every order; once the graph holds more
// than maxNodes nodes extraction stops with ErrGraphTooLarge. A maxNodes of
// 0 disables the cap.
func DerivativesBounded(f Func, x0 float64, n, maxNodes int) ([]float64, error) {
	ds, _, err := derivatives(f, x0, n, maxNodes)
	return ds, err
}

// derivatives also reports the final graph size.
func derivatives(f Func, x0 float64, n, maxNodes int) ([]float64, int, error) {
	if n < 0 {
		return nil, 0, fmt.Errorf("derivatives: n=%d: %w", n, ErrNegativeOrder)
	}
	g := NewGraph()
	x := g.Variable("x", x0)
	y := f(x)
	if y.g != g {
		return nil, 0, fmt.Errorf("derivatives: %w", ErrForeignNode)
	}

	// n comes from callers; the slice grows as orders are computed.
	out := make([]float64, 0, min(n, 64)+1)
	out = append(out, y.Value())
	cur := y
	for i := 0; i < n; i++ {
		cur.ResetGrad()
		x.ResetGrad()
		cur.Backward()
		d, ok := x.Grad().Node()
		if !ok {
			// x is not reachable from cur, every further derivative is 0.
			d = g.Constant(0)
		}
		cur = d
		out = append(out, cur.Value())
		if maxNodes > 0 && g.Len() > maxNodes {
			return nil, g.Len(), fmt.Errorf("derivatives: order %d: %d nodes: %w", i+1, g.Len(), ErrGraphTooLarge)
		}
	}
	return out, g.Len(), nil
}

// Function wraps a Func with convenience evaluators.
type Function struct {
	f Func
}

// NewFunction wraps f.
func NewFunction(f Func) *Function { return &Function{f: f} }

// Eval returns f(x).
func (fn *Function) Eval(x float64) float64 {
	g := NewGraph()
	return fn.f(g.Variable("x", x)).Value()
}

// DerivativesAt is Derivatives(f, x, n).
func (fn *Function) DerivativesAt(x float64, n int) ([]float64, error) {
	return Derivatives(fn.f, x, n)
}

// NthDerivative returns a function computing f⁽ⁿ⁾ at a point.
func (fn *Function) NthDerivative(n int) (func(x float64) float64, error) {
	if n < 0 {
		return nil, fmt.Errorf("nth derivative: n=%d: %w", n, ErrNegativeOrder)
	}
	return func(x float64) float64 {
		ds, err := Derivatives(fn.f, x, n)
		if err != nil {
			panic("gograd: " + err.Error())
		}
		return ds[n]
	}, nil
}
