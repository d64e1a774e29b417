// Command gomck verifies properties of the example systems, locally or
// through the verification service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gomck/config"
	"gomck/logging"
)

// State shared by the commands, set up before any of them runs.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "gomck",
		Short: "Abstraction refinement model checker for bit-vector systems",
		Long: `gomck verifies CTL and mu-calculus properties of transition systems
over abstract bit-vectors. The state space is generated with unknown inputs and
refined along the culprit of each unknown result until the property is known.

Properties are written like
  AG![value <= 9]
  EU![a == 1, b != 0]
  lfp![Z, x == 1 || EX![Z]]`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.Logging.Level = a.logLevel
			}
			logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "gomck.yaml", "path of the yaml configuration")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level, overriding the configuration")

	root.AddCommand(
		newVerifyCmd(a),
		newServeCmd(a),
		newStepCmd(a),
		newStatusCmd(a),
		newSystemsCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
