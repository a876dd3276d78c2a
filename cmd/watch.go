package cmd

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"photo-curator/internal/logger"
	"photo-curator/internal/metrics"
	"photo-curator/internal/watch"
)

func watchCommand(a *app) *cobra.Command {
	var promote bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Import pending photos on every poll interval until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings
			if cmd.Flags().Changed("promote") {
				s.Watch.Promote = promote
			}

			imp, store, err := a.newImporter()
			if err != nil {
				return err
			}
			defer store.Close()

			reg := metrics.NewRegistry()
			m, err := metrics.NewPipelineMetrics(reg)
			if err != nil {
				return err
			}

			loop := watch.New(imp)
			loop.Interval = s.Interval()
			loop.Metrics = m
			loop.Log = logger.Module("watch")
			if s.Watch.Promote {
				loop.Promoter = a.newStage()
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return loop.Run(ctx) })
			if s.Metrics.Listen != "" {
				a.log.Info("serving metrics", "addr", s.Metrics.Listen)
				g.Go(func() error { return metrics.Serve(ctx, s.Metrics.Listen, reg) })
			}
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&promote, "promote", false, "Promote annotated photos from _process before each batch")
	return cmd
}
