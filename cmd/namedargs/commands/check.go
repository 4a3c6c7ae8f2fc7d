package commands

import (
	"context"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/namedargs/am"
	"github.com/teranos/namedargs/check"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/logger"
	"github.com/teranos/namedargs/pipeline"
	"github.com/teranos/namedargs/render"
)

// CheckCmd represents the check command
var CheckCmd = &cobra.Command{
	Use:   "check [inputs...]",
	Short: "Verify generated wrappers are up to date",
	Long: `Generate into a temporary directory and compare the result with the output
root. Missing, stale and extra files are reported; stale files with a unified
diff. Exits non-zero when anything differs, for use in CI.

Examples:
  namedargs check api.yaml            # Check Kotlin output for a manifest
  namedargs check --format json       # Machine-readable report`,
	RunE: runCheck,
}

var (
	checkFlags  generateFlags
	checkFormat string
	checkNoDiff bool
)

func init() {
	addGenerateFlags(CheckCmd, &checkFlags)
	CheckCmd.Flags().StringVar(&checkFormat, "format", "", "Report format: json or yaml (default: human)")
	CheckCmd.Flags().BoolVar(&checkNoDiff, "no-diff", false, "Do not print diffs of stale files")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := generateConfig(cmd, &checkFlags, args)
	if err != nil {
		return err
	}
	// The ledger only records real output
	cfg.Ledger.Enabled = false

	p, err := pipeline.New(cfg, pipeline.WithLogger(logger.ComponentLogger("check")))
	if err != nil {
		return err
	}
	root, err := p.OutputRoot()
	if err != nil {
		return err
	}

	generators, err := render.ForLanguages(cfg.Generate.Languages)
	if err != nil {
		return err
	}
	scopes := make([]string, 0, len(generators))
	for _, g := range generators {
		scopes = append(scopes, g.Language())
	}

	report, err := check.Run(cmd.Context(), root, func(ctx context.Context, tmp string) error {
		_, err := p.Generate(ctx, tmp)
		return err
	}, scopes...)
	if err != nil {
		return err
	}

	if checkFormat != "" {
		if err := am.Encode(os.Stdout, report, checkFormat); err != nil {
			return err
		}
	} else {
		printReport(report, !checkNoDiff)
	}

	if !report.UpToDate() {
		return errors.WithHint(
			errors.Newf("%d generated files are out of date", len(report.Differences)),
			"run namedargs generate to update them")
	}
	return nil
}

func printReport(report *check.Report, diffs bool) {
	if report.UpToDate() {
		pterm.Success.Printfln("%d generated files are up to date", report.Checked)
		return
	}

	for _, d := range report.Differences {
		switch d.Status {
		case check.StatusMissing:
			pterm.Error.Printfln("missing  %s", d.Path)
		case check.StatusStale:
			pterm.Warning.Printfln("stale    %s", d.Path)
			if diffs {
				pterm.Println(d.Diff)
			}
		case check.StatusExtra:
			pterm.Info.Printfln("extra    %s", d.Path)
		}
	}
	pterm.Println()
	pterm.Printfln("Checked %d files: %d missing, %d stale, %d extra",
		report.Checked,
		report.Count(check.StatusMissing),
		report.Count(check.StatusStale),
		report.Count(check.StatusExtra))
}
