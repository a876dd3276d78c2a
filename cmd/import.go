package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func importCommand(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Run one import batch over _import and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				return a.planImport(cmd)
			}

			imp, store, err := a.newImporter()
			if err != nil {
				return err
			}
			defer store.Close()

			b, err := imp.ImportPending(cmd.Context())

			out := cmd.OutOrStdout()
			for _, rec := range b.Imported() {
				fmt.Fprintf(out, "✓ %s -> %s\n", rec.Name, rec.Category)
			}
			for _, o := range b.Failed() {
				fmt.Fprintf(out, "✗ %s (%s in %s)\n", o.Source, o.Kind(), o.FailedIn)
			}
			fmt.Fprintf(out, "\nImported %d, quarantined %d\n", len(b.Imported()), len(b.Failed()))
			return err
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show where each pending photo would go without moving anything")
	return cmd
}

// planImport prints the destination of every pending photo.
func (a *app) planImport(cmd *cobra.Command) error {
	plan, err := a.newPlanner().Plan(cmd.Context())

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "[DRY RUN MODE - nothing is moved]")
	failed := 0
	for _, p := range plan {
		if p.Err != nil {
			failed++
			fmt.Fprintf(out, "✗ %s -> %s (%v)\n", p.Source, p.Destination, p.Err)
			continue
		}
		fmt.Fprintf(out, "→ %s -> %s\n", p.Source, p.Destination)
	}
	fmt.Fprintf(out, "\n[DRY RUN] Would import %d, quarantine %d\n", len(plan)-failed, failed)
	return err
}
