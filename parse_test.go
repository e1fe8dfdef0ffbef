package gograd_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gograd"
)

// ============================================================
// Parse tests
// ============================================================

func TestParse_Values(t *testing.T) {
	const x0 = 1.3
	cases := map[string]float64{
		"x":                    x0,
		"2":                    2,
		"-x":                   -x0,
		"x - 1":                x0 - 1,
		"x / 2":                x0 / 2,
		"(x + 1) * 2":          (x0 + 1) * 2,
		"x * sin(x)":           x0 * math.Sin(x0),
		"exp(sin(x))":          math.Exp(math.Sin(x0)),
		"cos(x) + pow(x, 3)":   math.Cos(x0) + x0*x0*x0,
		"pow(x, -2)":           1 / (x0 * x0),
		"pow(x, (0.5))":        math.Sqrt(x0),
		"sqrt(x)":              math.Sqrt(x0),
		"1 - x * 2.5e-1":       1 - x0*0.25,
		"pow(sin(x) + 1, 2.0)": math.Pow(math.Sin(x0)+1, 2),
	}
	for src, want := range cases {
		t.Run(src, func(t *testing.T) {
			f, err := gograd.Parse(src, "x")
			require.NoError(t, err)
			assert.InDelta(t, want, gograd.NewFunction(f).Eval(x0), 1e-12)
		})
	}
}

func TestParse_Derivatives(t *testing.T) {
	f, err := gograd.Parse("pow(x, 3)", "")
	require.NoError(t, err)
	ds, err := gograd.Derivatives(f, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{8, 12, 12, 6}, ds)
}

func TestParse_CustomVariable(t *testing.T) {
	f, err := gograd.Parse("t * t", "t")
	require.NoError(t, err)
	ds, err := gograd.Derivatives(f, 4, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{16, 8}, ds)
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		src  string
		want error
	}{
		{"pow(x, x)", gograd.ErrNonConstantExponent},
		{"pow(x, 1 + 1)", gograd.ErrNonConstantExponent},
		{"tan(x)", gograd.ErrUnknownFunction},
		{"foo(x, y)", gograd.ErrUnknownFunction},
		{"log()", gograd.ErrUnknownFunction},
		{"y + 1", gograd.ErrUnknownVariable},
		{"x.a", gograd.ErrUnknownVariable},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			_, err := gograd.Parse(tc.src, "x")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, src := range []string{"x +", "pow(x)", "sin(x, x)", "x % 2", `"text"`, "true", "!x", ""} {
		t.Run(src, func(t *testing.T) {
			_, err := gograd.Parse(src, "x")
			assert.Error(t, err)
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { gograd.MustParse("tan(x)", "x") })
	assert.NotPanics(t, func() { gograd.MustParse("sin(x)", "x") })
}
