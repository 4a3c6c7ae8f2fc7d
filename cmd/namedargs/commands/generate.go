package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/logger"
	"github.com/teranos/namedargs/pipeline"
)

// GenerateCmd represents the generate command
var GenerateCmd = &cobra.Command{
	Use:   "generate [inputs...]",
	Short: "Generate named-argument wrappers",
	Long: `Collect declarations and write an argument carrier and a forwarding wrapper
for every eligible callable.

Inputs are manifest files (YAML, TOML or JSON) or, with --source go, Go package
patterns. Positional inputs replace generate.inputs from the configuration.

Examples:
  namedargs generate api.yaml                       # Kotlin wrappers for a manifest
  namedargs generate -l kotlin,typescript api.yaml  # Kotlin and TypeScript declarations
  namedargs generate -s go -l go ./pkg/...          # Go wrappers for annotated Go code
  namedargs generate --ledger                       # Record the run in the ledger`,
	RunE: runGenerate,
}

var genFlags generateFlags

func init() {
	addGenerateFlags(GenerateCmd, &genFlags)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := generateConfig(cmd, &genFlags, args)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	p, err := pipeline.New(cfg,
		pipeline.WithStore(store),
		pipeline.WithLogger(logger.ComponentLogger("generate")))
	if err != nil {
		return err
	}
	root, err := p.OutputRoot()
	if err != nil {
		return err
	}

	out, err := p.Generate(cmd.Context(), root)
	if out != nil {
		printOutcome(out, root)
	}
	if err != nil {
		return errors.Wrap(err, "generation failed")
	}
	return nil
}

// printOutcome prints a human summary of a pass to stdout.
func printOutcome(out *pipeline.Outcome, root string) {
	if out.Result == nil {
		return
	}
	res := out.Result

	pterm.Success.Printfln("Generated %d units (%d files) in %s",
		len(res.Written), len(out.Files), pipeline.Elapsed(res.Duration))
	pterm.Printfln("  Output:   %s", root)
	if len(res.Skips) > 0 || res.Ignored > 0 {
		pterm.Printfln("  Skipped:  %d ineligible, %d without parameters or not public", len(res.Skips), res.Ignored)
	}
	if out.RunID != "" {
		pterm.Printfln("  Run:      %s", out.RunID)
	}
	if n := res.Deferred.Len(); n > 0 {
		pterm.Warning.Printfln("%d declarations deferred (unresolved types):", n)
		for _, name := range pipeline.Names(res.Deferred) {
			pterm.Printfln("  %s", name)
		}
	}
}
