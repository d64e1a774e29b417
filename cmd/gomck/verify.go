package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gomck/checking"
	"gomck/framework"
	"gomck/property"
)

func newVerifyCmd(a *app) *cobra.Command {
	var flags systemFlags
	var dotPath string
	cmd := &cobra.Command{
		Use:   "verify [system] [property]",
		Short: "Verify a property of a system",
		Long: `Verifies the property, first verifying that the system never panics
unless assume_inherent is configured. Prints whether the property holds and
the statistics of the verification.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			system, err := newSystem(args[0], flags)
			if err != nil {
				return err
			}
			prop, err := property.Parse(args[1])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			fw := framework.New(system, a.cfg.FrameworkOptions(a.logger)...)
			holds, verifyErr := verify(ctx, fw, prop, a.cfg.Verification.MaxRefinements)

			if dotPath != "" {
				if err := writeDot(fw, dotPath); err != nil {
					return err
				}
				a.logger.Info("Wrote the state space", zap.String("path", dotPath))
			}
			if verifyErr != nil {
				return verifyErr
			}

			out := cmd.OutOrStdout()
			if holds {
				fmt.Fprintln(out, "Property holds")
			} else {
				fmt.Fprintln(out, "Property does not hold")
			}
			stats := fw.Stats()
			fmt.Fprintf(out, "Refinements: %v\n", stats.Refinements)
			fmt.Fprintf(out, "States: %v generated, %v final\n", stats.GeneratedStates, stats.FinalStates)
			fmt.Fprintf(out, "Transitions: %v generated, %v final\n", stats.GeneratedTransitions, stats.FinalTransitions)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&dotPath, "dot", "", "write the final state space to the file in the DOT language")
	return cmd
}

// Verifies the property, giving up after the maximum number of refinements
// unless it is negative. Bounded verification skips the inherent property.
func verify(ctx context.Context, fw *framework.Framework, prop property.Property, maxRefinements int) (bool, error) {
	if maxRefinements < 0 {
		return fw.Verify(ctx, prop)
	}
	refinements, conclusion, err := fw.Step(ctx, prop, maxRefinements)
	if err != nil {
		return false, err
	}
	known, ok := conclusion.(checking.Known)
	if !ok {
		_, response := conclusion.Response()
		return false, fmt.Errorf("no conclusion after %v refinements: %v", refinements, response)
	}
	return known.Value, nil
}

func writeDot(fw *framework.Framework, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fw.Space().WriteDot(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
