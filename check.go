package gograd

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// ============================================================
// Derivative check
// ============================================================

var cubeEps = math.Cbrt(math.Nextafter(1, 2) - 1)

// CheckPoint compares the reverse-mode first derivative at X with a central
// finite difference.
type CheckPoint struct {
	X          float64 `json:"x"`
	Autodiff   float64 `json:"autodiff"`
	Numeric    float64 `json:"numeric"`
	AbsError   float64 `json:"abs_error"`
	RelError   float64 `json:"rel_error"`
	StepLength float64 `json:"step"`
}

// CheckReport summarizes a CheckDerivative run.
type CheckReport struct {
	Points      []CheckPoint `json:"points"`
	MaxAbsError float64      `json:"max_abs_error"`
	MeanAbsErr  float64      `json:"mean_abs_error"`
	StdDevAbs   float64      `json:"stddev_abs_error"`
	MaxRelError float64      `json:"max_rel_error"`
}

// Within reports whether every point's relative error is at most tol.
func (r CheckReport) Within(tol float64) bool { return r.MaxRelError <= tol }

// CheckDerivative evaluates f' at each point by automatic differentiation
// and by the central difference (f(x+h) - f(x-h)) / 2h. A step of 0 picks
// h = cbrt(eps) * max(1, |x|).
func CheckDerivative(f Func, points []float64, step float64) (CheckReport, error) {
	return CheckDerivativeBounded(f, points, step, 0)
}

// CheckDerivativeBounded is CheckDerivative with the graph of every point
// capped at maxNodes nodes, as in DerivativesBounded.
func CheckDerivativeBounded(f Func, points []float64, step float64, maxNodes int) (CheckReport, error) {
	if len(points) == 0 {
		return CheckReport{}, errors.New("check: no points")
	}
	fn := NewFunction(f)
	rep := CheckReport{Points: make([]CheckPoint, len(points))}
	abs := make([]float64, len(points))
	rel := make([]float64, len(points))
	for i, x := range points {
		ds, err := DerivativesBounded(f, x, 1, maxNodes)
		if err != nil {
			return CheckReport{}, fmt.Errorf("check: x=%g: %w", x, err)
		}
		h := step
		if h == 0 {
			h = cubeEps * math.Max(1, math.Abs(x))
		}
		num := (fn.Eval(x+h) - fn.Eval(x-h)) / (2 * h)
		p := CheckPoint{X: x, Autodiff: ds[1], Numeric: num, StepLength: h}
		p.AbsError = math.Abs(p.Autodiff - p.Numeric)
		p.RelError = p.AbsError / math.Max(1, math.Abs(p.Numeric))
		rep.Points[i] = p
		abs[i], rel[i] = p.AbsError, p.RelError
	}

	var err error
	if rep.MaxAbsError, err = stats.Max(abs); err != nil {
		return CheckReport{}, fmt.Errorf("check: %w", err)
	}
	if rep.MeanAbsErr, err = stats.Mean(abs); err != nil {
		return CheckReport{}, fmt.Errorf("check: %w", err)
	}
	if rep.StdDevAbs, err = stats.StandardDeviation(abs); err != nil {
		return CheckReport{}, fmt.Errorf("check: %w", err)
	}
	if rep.MaxRelError, err = stats.Max(rel); err != nil {
		return CheckReport{}, fmt.Errorf("check: %w", err)
	}
	return rep, nil
}
