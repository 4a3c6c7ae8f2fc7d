package commands

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/namedargs/am"
	"github.com/teranos/namedargs/logger"
	"github.com/teranos/namedargs/pipeline"
	"github.com/teranos/namedargs/watch"
)

// WatchCmd represents the watch command
var WatchCmd = &cobra.Command{
	Use:   "watch [inputs...]",
	Short: "Regenerate wrappers when inputs change",
	Long: `Generate once, then watch the inputs and regenerate after every change.

Manifest files are watched directly; for Go sources every package directory
matched by the patterns is watched. Changes to the project namedargs.toml reload
the configuration. Stop with Ctrl-C.`,
	RunE: runWatch,
}

var watchFlags generateFlags

func init() {
	addGenerateFlags(WatchCmd, &watchFlags)
}

// watchSession regenerates with the current pipeline and swaps it when the
// configuration file changes.
type watchSession struct {
	cmd        *cobra.Command
	args       []string
	configFile string

	mu sync.Mutex
	p  *pipeline.Pipeline
}

func runWatch(cmd *cobra.Command, args []string) error {
	s := &watchSession{cmd: cmd, args: args, configFile: watchFlags.config}
	if s.configFile == "" {
		s.configFile = am.GetViper().ConfigFileUsed()
	}

	p, err := s.build()
	if err != nil {
		return err
	}
	s.p = p

	root, err := p.OutputRoot()
	if err != nil {
		return err
	}
	paths, match, err := p.WatchPaths(cmd.Context())
	if err != nil {
		return err
	}
	if s.configFile != "" {
		abs, err := filepath.Abs(s.configFile)
		if err == nil {
			s.configFile = abs
			paths = append(paths, abs)
		}
	}

	// Initial pass; failures are reported and watching continues
	s.regenerate(cmd.Context(), nil)

	cfg := p.Config()
	w, err := watch.New(paths, s.regenerate,
		watch.WithDebounce(cfg.Watch.Debounce()),
		watch.WithMatch(match),
		watch.WithIgnore(root),
		watch.WithLogger(logger.ComponentLogger("watch")))
	if err != nil {
		return err
	}
	defer w.Stop()

	pterm.Info.Printfln("Watching %d paths, press Ctrl-C to stop", len(paths))
	return w.Run(cmd.Context())
}

// build loads the configuration and returns a pipeline for it.
func (s *watchSession) build() (*pipeline.Pipeline, error) {
	cfg, err := generateConfig(s.cmd, &watchFlags, s.args)
	if err != nil {
		return nil, err
	}
	// A long-running watch would hold the ledger open; runs are not recorded
	cfg.Ledger.Enabled = false
	return pipeline.New(cfg, pipeline.WithLogger(logger.ComponentLogger("generate")))
}

func (s *watchSession) regenerate(ctx context.Context, changed []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range changed {
		if path != s.configFile {
			continue
		}
		am.Reset()
		p, err := s.build()
		if err != nil {
			pterm.Error.Printfln("Config reload failed, keeping previous configuration: %v", err)
			break
		}
		pterm.Info.Printfln("Reloaded %s", s.configFile)
		s.p = p
		break
	}

	root, err := s.p.OutputRoot()
	if err != nil {
		return err
	}
	out, err := s.p.Generate(ctx, root)
	if out != nil {
		printOutcome(out, root)
	}
	if err != nil {
		pterm.Error.Printfln("Generation failed: %v", err)
		return err
	}
	return nil
}
