package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"nsattr/internal/alias"
	"nsattr/internal/diag"
	"nsattr/internal/diagfmt"
	"nsattr/internal/driver"
	"nsattr/internal/policy"
	"nsattr/internal/scope"
	"nsattr/internal/source"
	"nsattr/internal/unitfile"
)

// effectivePolicy loads --policy (when given) and layers explicit flag
// values on top.
func effectivePolicy(cmd *cobra.Command) (policy.Policy, error) {
	pol := policy.Default()
	if path, _ := cmd.Flags().GetString("policy"); path != "" {
		loaded, err := policy.Load(path)
		if err != nil {
			return policy.Policy{}, err
		}
		pol = loaded
	}
	if cmd.Flags().Changed("max-diagnostics") {
		pol.MaxDiagnostics, _ = cmd.Flags().GetInt("max-diagnostics")
	}
	if cmd.Flags().Changed("jobs") {
		pol.Jobs, _ = cmd.Flags().GetInt("jobs")
	}
	return pol, pol.Validate()
}

func colorEnabled(cmd *cobra.Command) bool {
	mode, _ := cmd.Flags().GetString("color")
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

// loadUnits parses every unit description into a driver input. A file
// that fails to load or parse becomes an empty unit carrying only the
// I/O diagnostic, so the remaining units still resolve and report.
func loadUnits(fs *source.FileSet, in *source.Interner, paths []string, maxDiagnostics int) []driver.UnitInput {
	units := make([]driver.UnitInput, 0, len(paths))
	for _, path := range paths {
		bag := diag.NewBag(maxDiagnostics)
		unit, err := unitfile.Load(fs, in, path, diag.BagReporter{Bag: bag})
		if err != nil {
			code := diag.IOLoadFileError
			if errors.Is(err, unitfile.ErrParse) {
				code = diag.IOUnitParseError
			}
			bag.Add(diag.NewError(code, source.Span{}, err.Error()))
			units = append(units, driver.UnitInput{
				Name:     path,
				Tree:     scope.NewBuilder(in).Finish(),
				Registry: alias.NewRegistry(in),
				Bag:      bag,
			})
			continue
		}
		units = append(units, driver.UnitInput{
			Name:     unit.Name,
			Tree:     unit.Tree,
			Registry: unit.Registry,
			Bag:      bag,
			Digest:   fs.Get(unit.FileID).Hash,
		})
	}
	return units
}

// printDiagnostics renders every unit bag and the program bag.
func printDiagnostics(cmd *cobra.Command, fs *source.FileSet, res *driver.Result, jsonOut bool) error {
	merged := diag.NewBag(1)
	for i := range res.Units {
		merged.Merge(res.Units[i].Bag)
	}
	merged.Merge(res.Program)
	merged.Sort()
	merged.Dedup()

	if jsonOut {
		return diagfmt.JSON(cmd.OutOrStdout(), merged, fs)
	}
	diagfmt.Pretty(cmd.OutOrStdout(), merged, fs, diagfmt.PrettyOpts{
		Color:   colorEnabled(cmd),
		Context: true,
	})
	return nil
}
