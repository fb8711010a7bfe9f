package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nsattr/internal/driver"
	"nsattr/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check <unit.toml ...>",
	Short: "Check whole-program namespace attribute consistency",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Bool("json", false, "emit diagnostics as JSON")
	checkCmd.Flags().Bool("no-cache", false, "bypass the per-unit disk cache")
	checkCmd.Flags().Bool("clear-cache", false, "drop cached unit results before checking")
}

func runCheck(cmd *cobra.Command, args []string) error {
	pol, err := effectivePolicy(cmd)
	if err != nil {
		return err
	}
	fs := source.NewFileSet()
	in := source.NewInterner()
	units := loadUnits(fs, in, args, pol.MaxDiagnostics)

	var cache *driver.DiskCache
	if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache {
		// Cache failures degrade to a cold run, never to a build failure.
		cache, _ = driver.OpenDiskCache("nsattr")
	}
	if clear, _ := cmd.Flags().GetBool("clear-cache"); clear && cache != nil {
		if err := cache.Clear(); err != nil {
			return err
		}
	}

	res, err := driver.ResolveProgram(cmd.Context(), units, driver.Options{
		Policy: pol,
		Cache:  cache,
	})
	if err != nil {
		return err
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	if err := printDiagnostics(cmd, fs, res, jsonOut); err != nil {
		return err
	}
	if !jsonOut {
		fmt.Fprintf(cmd.OutOrStdout(), "%d unit(s), %d consistency violation(s)\n",
			len(res.Units), len(res.Violations))
	}
	if !res.OK() {
		return fmt.Errorf("program is ill-formed")
	}
	return nil
}
