package gograd_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gograd"
)

// ============================================================
// Forward evaluation
// ============================================================

func TestForward_Pow(t *testing.T) {
	g := gograd.NewGraph()
	x := g.Variable("x", 2)
	assert.Equal(t, 4.0, x.Pow(2).Value())
}

func TestForward_Elementary(t *testing.T) {
	g := gograd.NewGraph()
	x := g.Variable("x", 0.7)
	cases := []struct {
		name string
		got  gograd.Node
		want float64
	}{
		{"add", x.Add(gograd.Const(3)), 3.7},
		{"sub", x.Sub(gograd.Const(1)), -0.3},
		{"mul", x.Mul(x), 0.49},
		{"div", x.Div(gograd.Const(2)), 0.35},
		{"neg", x.Neg(), -0.7},
		{"pow", x.Pow(3), 0.343},
		{"sin", x.Sin(), math.Sin(0.7)},
		{"cos", x.Cos(), math.Cos(0.7)},
		{"exp", x.Exp(), math.Exp(0.7)},
		{"nested", x.Sin().Exp().Mul(x.Pow(2)), math.Exp(math.Sin(0.7)) * 0.49},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, tc.got.Value(), 1e-12)
		})
	}
}

func TestConst_IsPromoted(t *testing.T) {
	g := gograd.NewGraph()
	x := g.Variable("x", 1)
	y := x.Mul(gograd.Const(4))
	kids := y.Children()
	require.Len(t, kids, 2)
	assert.Equal(t, x, kids[0])
	assert.Equal(t, gograd.OpConst, kids[1].Op())
	assert.Equal(t, 4.0, kids[1].Value())
}

func TestNeg_IsMulByMinusOne(t *testing.T) {
	g := gograd.NewGraph()
	x := g.Variable("x", 1)
	n := x.Neg()
	assert.Equal(t, gograd.OpMul, n.Op())
	assert.Equal(t, -1.0, n.Children()[1].Value())
}

func TestPow_ExponentIsConstantChild(t *testing.T) {
	g := gograd.NewGraph()
	x := g.Variable("x", 3)
	p := x.Pow(2.5)
	kids := p.Children()
	require.Len(t, kids, 2)
	assert.Equal(t, gograd.OpConst, kids[1].Op())
	assert.Equal(t, 2.5, kids[1].Value())
}

func TestLeaves_HaveNoChildren(t *testing.T) {
	g := gograd.NewGraph()
	assert.Empty(t, g.Constant(1).Children())
	v := g.Variable("t", 2)
	assert.Empty(t, v.Children())
	assert.Equal(t, "t", v.Name())
	assert.Equal(t, gograd.OpVar, v.Op())
}

func TestOperations_DoNotMutateOperands(t *testing.T) {
	g := gograd.NewGraph()
	x := g.Variable("x", 2)
	y := x.Mul(gograd.Const(3))
	before := g.Len()
	_ = y.Add(x).Sin()
	assert.Equal(t, 2.0, x.Value())
	assert.Equal(t, 6.0, y.Value())
	assert.Equal(t, before+2, g.Len())
}

func TestForeignNode_Panics(t *testing.T) {
	a := gograd.NewGraph().Variable("x", 1)
	b := gograd.NewGraph().Variable("x", 2)
	assert.Panics(t, func() { a.Add(b) })
}

func TestZeroNode_Panics(t *testing.T) {
	var n gograd.Node
	assert.False(t, n.Valid())
	assert.Panics(t, func() { n.Value() })
	assert.Equal(t, "<nil>", n.String())
}

func TestGrad_StartsAtZero(t *testing.T) {
	g := gograd.NewGraph()
	x := g.Variable("x", 1)
	y := x.Mul(x).Sin()
	for _, n := range y.Topo() {
		d := n.Grad()
		assert.True(t, d.IsZero())
		assert.Equal(t, 0.0, d.Value())
		assert.Equal(t, "0", d.String())
	}
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "**", gograd.OpPow.String())
	assert.Equal(t, "const", gograd.OpConst.String())
	assert.Equal(t, "Op(200)", gograd.Op(200).String())
}

// ============================================================
// Display
// ============================================================

func TestString(t *testing.T) {
	g := gograd.NewGraph()
	x := g.Variable("x", 1)
	assert.Equal(t, "(x * sin(x))", x.Mul(x.Sin()).String())
	assert.Equal(t, "(x + 3)", x.Add(gograd.Const(3)).String())
	assert.Equal(t, "(x ** 2)", x.Pow(2).String())
	assert.Equal(t, "(x * -1)", x.Neg().String())
}
