package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nsattr/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "nsattr",
	Short: "Namespace-attribute resolution engine",
	Long:  `nsattr resolves namespace-level attributes and attribute aliases for translation-unit descriptions and checks whole-program consistency`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per translation unit")
	rootCmd.PersistentFlags().Int("jobs", 0, "parallel unit resolutions (0 = one per CPU)")
	rootCmd.PersistentFlags().String("policy", "", "path to a policy TOML file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
