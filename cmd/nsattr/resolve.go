package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nsattr/internal/driver"
	"nsattr/internal/scope"
	"nsattr/internal/source"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <unit.toml ...>",
	Short: "Resolve effective attribute sets for translation units",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().Bool("json", false, "emit diagnostics as JSON")
	resolveCmd.Flags().Bool("decls", true, "print per-declaration effective attribute sets")
}

func runResolve(cmd *cobra.Command, args []string) error {
	pol, err := effectivePolicy(cmd)
	if err != nil {
		return err
	}
	fs := source.NewFileSet()
	in := source.NewInterner()
	units := loadUnits(fs, in, args, pol.MaxDiagnostics)

	res, err := driver.ResolveProgram(cmd.Context(), units, driver.Options{Policy: pol})
	if err != nil {
		return err
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	showDecls, _ := cmd.Flags().GetBool("decls")
	if showDecls && !jsonOut {
		printDeclSets(cmd, res)
	}
	if err := printDiagnostics(cmd, fs, res, jsonOut); err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("resolution failed")
	}
	return nil
}

func printDeclSets(cmd *cobra.Command, res *driver.Result) {
	out := cmd.OutOrStdout()
	for i := range res.Units {
		unit := &res.Units[i]
		if unit.Resolution == nil {
			continue
		}
		fmt.Fprintf(out, "unit %s\n", unit.Name)
		tree := unit.Resolution.Tree()
		in := tree.Interner()
		tree.EachDecl(func(id scope.DeclID) {
			decl := tree.Decl(id)
			qualified := in.MustLookup(decl.Name)
			if decl.Owner.IsValid() {
				qualified = tree.PathOf(decl.Owner) + "::" + qualified
			}
			keys := unit.Resolution.DeclSet(id).SortedKeys()
			if len(keys) == 0 {
				fmt.Fprintf(out, "  %s [[]]\n", qualified)
				return
			}
			fmt.Fprintf(out, "  %s [[", qualified)
			for j, key := range keys {
				if j > 0 {
					fmt.Fprint(out, ", ")
				}
				fmt.Fprint(out, key)
			}
			fmt.Fprintln(out, "]]")
		})
	}
}
