package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ludo-technologies/ilscn/app"
	"github.com/ludo-technologies/ilscn/internal/version"
)

// Exit codes
const (
	exitFindings = 1
	exitFailure  = 2
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ilscn",
		Short: "Duplicate code locator for IL method bodies",
		Long: `ilscn finds duplicated code in compiled .NET method bodies.

Method bodies are read from assembly manifests (YAML, JSON or TOML listings of
types, methods and their IL instructions), folded into expression sequences
and compared pairwise.

Rules:
  • AvoidCodeDuplicatedInSameType: methods of one type
  • AvoidCodeDuplicatedInSiblingTypes: methods of types sharing a base type`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewScanCmd())
	rootCmd.AddCommand(NewExprCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// newLogger builds the CLI logger. Only warnings reach stderr unless
// --verbose is set.
func newLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func main() {
	os.Exit(run(newRootCmd()))
}

func run(rootCmd *cobra.Command) int {
	err := rootCmd.Execute()
	switch {
	case err == nil:
		return 0
	case app.IsFindingsReported(err):
		return exitFindings
	default:
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return exitFailure
	}
}
