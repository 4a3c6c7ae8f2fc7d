package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/namedargs/am"
	"github.com/teranos/namedargs/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show namedargs version information",
	Long:  `Display version, build time, commit hash, and platform information for the namedargs binary.`,
	RunE:  runVersion,
}

var (
	versionJSON   bool
	versionFormat string
)

func init() {
	VersionCmd.Flags().BoolVarP(&versionJSON, "json", "j", false, "Output version info as JSON")
	VersionCmd.Flags().StringVar(&versionFormat, "format", "", "Output format: json, yaml or toml")
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()
	out := cmd.OutOrStdout()

	format := versionFormat
	if versionJSON {
		format = am.FormatJSON
	}
	if format != "" {
		return am.Encode(out, info, format)
	}

	fmt.Fprintln(out, info.String())
	fmt.Fprintf(out, "Platform: %s\n", info.Platform)
	fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
	if info.Modified {
		fmt.Fprintln(out, "Built from a modified working tree")
	}
	return nil
}
