package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/namedargs/cmd/namedargs/commands"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/logger"
)

var rootCmd = &cobra.Command{
	Use:   "namedargs",
	Short: "namedargs - Named-argument wrapper generator",
	Long: `namedargs - Named-argument wrapper generator.

For every public callable with parameters, namedargs emits an argument carrier
type whose fields mirror the parameters and a wrapper that takes the carrier and
forwards each field to the original callable by name.

Available commands:
  generate - Generate wrappers from manifests or annotated Go code
  check    - Verify generated wrappers are up to date
  watch    - Regenerate on every change
  history  - Show runs recorded in the generation ledger
  am       - Manage namedargs configuration ("I am")
  version  - Show version information

Examples:
  namedargs generate api.yaml             # Kotlin wrappers for a manifest
  namedargs check -l kotlin,typescript    # CI check against generated output
  namedargs am show                       # Show current configuration`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		if jsonLogs {
			pterm.DisableStyling()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON to stderr")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.HistoryCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Cleanup()

	if err != nil {
		pterm.Error.Println(err.Error())
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "  hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
