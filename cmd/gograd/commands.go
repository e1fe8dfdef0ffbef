package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gograd"
	"github.com/njchilds90/gograd/internal/ctxlog"
)

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return ctxlog.New(o.logLevel, o.logFormat, cmd.ErrOrStderr())
}

func (o *rootOptions) parse(src string) (gograd.Func, error) {
	return gograd.Parse(src, o.varName)
}

func (o *rootOptions) print(w io.Writer, v interface{}, text string) error {
	if o.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func newEvalCmd(opts *rootOptions) *cobra.Command {
	var at float64
	cmd := &cobra.Command{
		Use:   "eval EXPR",
		Short: "Evaluate f(at)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.parse(args[0])
			if err != nil {
				return err
			}
			y := gograd.NewFunction(f).Eval(at)
			return opts.print(cmd.OutOrStdout(), y, strconv.FormatFloat(y, 'g', -1, 64))
		},
	}
	cmd.Flags().Float64Var(&at, "at", 0, "Point to evaluate at")
	return cmd
}

func newDerivCmd(opts *rootOptions) *cobra.Command {
	var (
		at       float64
		n        int
		maxNodes int
	)
	cmd := &cobra.Command{
		Use:   "deriv EXPR",
		Short: "Print f, f', ..., f^(n) at a point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd)
			f, err := opts.parse(args[0])
			if err != nil {
				return err
			}
			ds, err := gograd.DerivativesBounded(f, at, n, maxNodes)
			if err != nil {
				return err
			}
			logger.Debug("derivatives computed", "expr", args[0], "at", at, "n", n)
			var sb strings.Builder
			for i, d := range ds {
				if i > 0 {
					sb.WriteByte('\n')
				}
				fmt.Fprintf(&sb, "f^(%d)(%g) = %s", i, at, strconv.FormatFloat(d, 'g', -1, 64))
			}
			return opts.print(cmd.OutOrStdout(), ds, sb.String())
		},
	}
	cmd.Flags().Float64Var(&at, "at", 0, "Point to differentiate at")
	cmd.Flags().IntVarP(&n, "order", "n", 1, "Highest derivative order")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", gograd.DefaultLimits.MaxNodes, "Maximum graph size, 0 for unbounded")
	return cmd
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var (
		points []float64
		step   float64
		tol    float64
	)
	cmd := &cobra.Command{
		Use:   "check EXPR",
		Short: "Compare f' with central finite differences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd)
			f, err := opts.parse(args[0])
			if err != nil {
				return err
			}
			rep, err := gograd.CheckDerivative(f, points, step)
			if err != nil {
				return err
			}
			var sb strings.Builder
			for _, p := range rep.Points {
				fmt.Fprintf(&sb, "x=%-10g ad=%-22g fd=%-22g err=%g\n", p.X, p.Autodiff, p.Numeric, p.AbsError)
			}
			fmt.Fprintf(&sb, "max abs error %g, mean %g, stddev %g", rep.MaxAbsError, rep.MeanAbsErr, rep.StdDevAbs)
			if err := opts.print(cmd.OutOrStdout(), rep, sb.String()); err != nil {
				return err
			}
			if !rep.Within(tol) {
				logger.Warn("derivative check above tolerance", "max_rel_error", rep.MaxRelError, "tol", tol)
				return fmt.Errorf("max relative error %g above %g", rep.MaxRelError, tol)
			}
			return nil
		},
	}
	cmd.Flags().Float64SliceVar(&points, "points", []float64{0, 0.5, 1}, "Points to check")
	cmd.Flags().Float64Var(&step, "step", 0, "Finite difference step, 0 for automatic")
	cmd.Flags().Float64Var(&tol, "tol", 1e-6, "Maximum accepted relative error")
	return cmd
}

func newGraphCmd(opts *rootOptions) *cobra.Command {
	var (
		at       float64
		backward bool
	)
	cmd := &cobra.Command{
		Use:   "graph EXPR",
		Short: "Dump the expression graph of f at a point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.parse(args[0])
			if err != nil {
				return err
			}
			g := gograd.NewGraph()
			y := f(g.Variable(opts.varName, at))
			if backward {
				y.Backward()
			}
			dump := y.Dump()
			var sb strings.Builder
			fmt.Fprintf(&sb, "%s = %g\n", y, y.Value())
			for _, nd := range dump.Nodes {
				fmt.Fprintf(&sb, "%4d %-5s value=%-12g children=%v", nd.ID, nd.Op, nd.Value, nd.Children)
				if nd.Grad != nil {
					fmt.Fprintf(&sb, " grad=#%d", *nd.Grad)
				}
				sb.WriteByte('\n')
			}
			return opts.print(cmd.OutOrStdout(), dump, strings.TrimRight(sb.String(), "\n"))
		},
	}
	cmd.Flags().Float64Var(&at, "at", 0, "Point to build the graph at")
	cmd.Flags().BoolVar(&backward, "backward", false, "Run a backward pass before dumping")
	return cmd
}
