package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/namedargs/am"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/ledger"
)

// HistoryCmd represents the history command
var HistoryCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recorded generation runs",
	Long: `List recent runs from the generation ledger, newest first. With a run ID,
list the units that run emitted.

Runs are recorded by generate when ledger.enabled is set or --ledger is passed.

Examples:
  namedargs history                   # Last 20 runs
  namedargs history -n 5 --format json
  namedargs history 3f0c...           # Units of one run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var (
	historyConfig string
	historyLimit  int
	historyFormat string
)

func init() {
	addConfigFlag(HistoryCmd, &historyConfig)
	HistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
	HistoryCmd.Flags().StringVar(&historyFormat, "format", "", "Output format: json or yaml (default: table)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(historyConfig)
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Ledger.Path); err != nil {
		return errors.WithHint(
			errors.Newf("no ledger at %s", cfg.Ledger.Path),
			"enable ledger.enabled or pass --ledger to generate to start recording runs")
	}
	cfg.Ledger.Enabled = true

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := cmd.Context()
	if len(args) == 1 {
		units, err := store.Units(ctx, args[0])
		if err != nil {
			return err
		}
		if historyFormat != "" {
			return am.Encode(os.Stdout, units, historyFormat)
		}
		return renderUnits(args[0], units)
	}

	runs, err := store.Runs(ctx, historyLimit)
	if err != nil {
		return err
	}
	if historyFormat != "" {
		return am.Encode(os.Stdout, runs, historyFormat)
	}
	return renderRuns(runs)
}

func renderRuns(runs []ledger.Run) error {
	if len(runs) == 0 {
		pterm.Info.Println("No runs recorded yet")
		return nil
	}

	data := pterm.TableData{{"Run", "Started", "Status", "Source", "Languages", "Written", "Skipped", "Deferred", "Duration"}}
	for _, r := range runs {
		duration := "-"
		if r.FinishedAt != nil {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		data = append(data, []string{
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			statusText(r.Status),
			r.Source,
			strings.Join(r.Languages, ","),
			fmt.Sprint(r.Written),
			fmt.Sprint(r.Skipped + r.Ignored),
			fmt.Sprint(r.Deferred),
			duration,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderUnits(runID string, units []ledger.UnitRecord) error {
	if len(units) == 0 {
		pterm.Info.Printfln("Run %s emitted no units", runID)
		return nil
	}

	data := pterm.TableData{{"#", "Package", "Carrier", "Wrapper", "Kind", "Origin"}}
	for _, u := range units {
		data = append(data, []string{fmt.Sprint(u.Seq), u.Package, u.Carrier, u.Wrapper, u.Kind, u.Origin})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func statusText(s ledger.Status) string {
	switch s {
	case ledger.StatusSucceeded:
		return pterm.FgGreen.Sprint(string(s))
	case ledger.StatusFailed:
		return pterm.FgRed.Sprint(string(s))
	default:
		return pterm.FgYellow.Sprint(string(s))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
