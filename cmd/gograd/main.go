// cmd/gograd — command line front end for the gograd engine.
//
// Usage:
//
//	gograd eval  --at 2 "x * sin(x)"
//	gograd deriv --at 2 -n 3 "pow(x, 3)"
//	gograd check --points 0,0.5,1 "exp(sin(x))"
//	gograd graph --at 1 --backward "x * x"
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	logLevel  string
	logFormat string
	varName   string
	asJSON    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "gograd",
		Short:        "Evaluate functions and their derivatives by reverse-mode AD",
		SilenceUsage: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&opts.varName, "var", "x", "Name of the independent variable")
	pf.BoolVar(&opts.asJSON, "json", false, "Print results as JSON")

	cmd.AddCommand(
		newEvalCmd(opts),
		newDerivCmd(opts),
		newCheckCmd(opts),
		newGraphCmd(opts),
	)
	return cmd
}
