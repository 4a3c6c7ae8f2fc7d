package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/namedargs/am"
	"github.com/teranos/namedargs/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage namedargs configuration",
	Long: `am: Manage namedargs configuration ("I am")

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (NAMEDARGS_* prefix, e.g. NAMEDARGS_GENERATE_OUTPUT)
3. Project config (nearest namedargs.toml walking up from the working directory)
4. User config (~/.namedargs/namedargs.toml)
5. Default values

Examples:
  namedargs am show                   # Show effective configuration as TOML
  namedargs am show --format yaml     # ... as YAML
  namedargs am show --sources         # Where every value comes from
  namedargs am init                   # Write a namedargs.toml with defaults
  namedargs am validate               # Validate current configuration`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective namedargs configuration from all sources",
	RunE:  runAmShow,
}

var amInitCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a namedargs.toml with default values",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAmInit,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var (
	amConfig     string
	configFormat string
	showSources  bool
	initForce    bool
)

func init() {
	addConfigFlag(amShowCmd, &amConfig)
	amShowCmd.Flags().StringVar(&configFormat, "format", am.FormatTOML, "Output format: toml, json, yaml")
	amShowCmd.Flags().BoolVar(&showSources, "sources", false, "Show the source of every setting")

	amInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file (a backup is kept)")

	addConfigFlag(amValidateCmd, &amConfig)

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amInitCmd)
	AmCmd.AddCommand(amValidateCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	if showSources {
		intro := am.GetConfigIntrospection()
		if configFormat != am.FormatTOML {
			return am.Encode(cmd.OutOrStdout(), intro, configFormat)
		}
		file := intro.ConfigFile
		if file == "" {
			file = "(none)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# config file: %s\n", file)
		for _, s := range intro.Settings {
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v  # %s %s\n", s.Key, s.Value, s.Source, s.SourcePath)
		}
		return nil
	}

	cfg, err := loadConfig(amConfig)
	if err != nil {
		return err
	}
	if configFormat == am.FormatTOML {
		fmt.Fprintln(cmd.OutOrStdout(), "# namedargs configuration")
	}
	return am.Encode(cmd.OutOrStdout(), cfg, configFormat)
}

func runAmInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	path := filepath.Join(dir, am.ConfigFileName)

	if _, err := os.Stat(path); err == nil && !initForce {
		return errors.WithHint(
			errors.Newf("%s already exists", path),
			"pass --force to overwrite it; the current file is kept as .back1")
	}

	if err := am.WriteConfig(path, am.DefaultConfig()); err != nil {
		return err
	}
	pterm.Success.Printfln("Wrote %s", path)
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(amConfig)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	pterm.Success.Println("Configuration is valid")
	return nil
}
