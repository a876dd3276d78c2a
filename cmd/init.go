package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"photo-curator/internal/conf"
	"photo-curator/internal/paths"
)

func initCommand(a *app) *cobra.Command {
	var noConfig bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create the managed directories and a starter config",
		Long:  "Create _process, _import, _failed and _thumbs under the media root (the argument, --root, or the current directory) and write photo-curator.yaml next to them.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := a.v.GetString("media_root")
			if len(args) == 1 {
				root = args[0]
			}
			if root == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("error getting current directory: %w", err)
				}
				root = wd
			}
			root, err := filepath.Abs(root)
			if err != nil {
				return err
			}
			return initLibrary(cmd, root, !noConfig)
		},
	}
	cmd.Flags().BoolVar(&noConfig, "no-config", false, "Do not write photo-curator.yaml")
	return cmd
}

// initLibrary creates the library layout and reports what it did.
func initLibrary(cmd *cobra.Command, root string, writeConfig bool) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initializing photo library at: %s\n\n", root)

	res, err := paths.NewLayout(root).Init()
	for _, d := range res.Skipped {
		fmt.Fprintf(out, "⊘ %s (already exists)\n", filepath.Base(d.Path))
	}
	for _, d := range res.Created {
		fmt.Fprintf(out, "✓ %s/ - %s\n", filepath.Base(d.Path), d.Desc)
	}
	if err != nil {
		return err
	}

	if writeConfig {
		cfgPath := filepath.Join(root, conf.ConfigName+".yaml")
		s := conf.Default()
		s.MediaRoot = root
		switch err := conf.WriteDefault(cfgPath, s); {
		case err == nil:
			fmt.Fprintf(out, "✓ %s - starter configuration\n", filepath.Base(cfgPath))
		case errors.Is(err, os.ErrExist):
			fmt.Fprintf(out, "⊘ %s (already exists)\n", filepath.Base(cfgPath))
		default:
			return err
		}
	}

	fmt.Fprintln(out)
	if n := len(res.Created); n > 0 {
		fmt.Fprintf(out, "Created %d directories\n", n)
	}
	if n := len(res.Skipped); n > 0 {
		fmt.Fprintf(out, "Skipped %d existing directories\n", n)
	}

	fmt.Fprintln(out, "\nPhoto library is ready!")
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintf(out, "  1. Copy photos to %s/\n", paths.ProcessDir)
	fmt.Fprintln(out, "  2. Run: photo-curator rename <photo> <keyword>...")
	fmt.Fprintln(out, "  3. Run: photo-curator watch")
	return nil
}
