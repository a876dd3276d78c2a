package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"photo-curator/internal/keywords"
)

func processCommand(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "List photos in _process that still need keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			part, err := a.newStage().Scan(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range part.Unannotated {
				fmt.Fprintln(out, f.Path)
			}
			if all {
				for _, f := range part.Annotated {
					fmt.Fprintf(out, "%s\t%v\n", f.Path, keywords.FromName(f.Base))
				}
			}
			fmt.Fprintf(out, "\n%d awaiting annotation, %d ready to promote\n", len(part.Unannotated), len(part.Annotated))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Also list annotated photos with their keywords")
	return cmd
}

func promoteCommand(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Move annotated photos from _process to _import",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stage := a.newStage()
			out := cmd.OutOrStdout()

			if dryRun {
				res, err := stage.PlanPromotion(cmd.Context())
				fmt.Fprintln(out, "[DRY RUN MODE - nothing is moved]")
				for _, p := range res.Promoted {
					fmt.Fprintf(out, "→ %s\n", p)
				}
				for _, e := range res.Failed {
					fmt.Fprintf(out, "✗ %v\n", e)
				}
				fmt.Fprintf(out, "\n[DRY RUN] Would promote %d, fail %d\n", len(res.Promoted), len(res.Failed))
				return err
			}

			res, err := stage.MoveProcessedToImport(cmd.Context())
			for _, p := range res.Promoted {
				fmt.Fprintf(out, "✓ %s\n", filepath.Base(p))
			}
			for _, e := range res.Failed {
				fmt.Fprintf(out, "✗ %v\n", e)
			}
			fmt.Fprintf(out, "\nPromoted %d, failed %d\n", len(res.Promoted), len(res.Failed))
			if res.Removed > 0 {
				fmt.Fprintf(out, "Cleaned up %d empty folders\n", res.Removed)
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "List the photos that would be promoted without moving them")
	return cmd
}

func renameCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rename <photo> <keyword>...",
		Short:   "Rename a photo in _process to carry keywords",
		Example: `  photo-curator rename _process/IMG_0042.jpg sunset "golden gate"`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			dst, err := a.newStage().Annotate(src, args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", filepath.Base(src), filepath.Base(dst))
			return nil
		},
	}
}
