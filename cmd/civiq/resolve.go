package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"civiq/internal/dq/metrics"
	"civiq/internal/dq/service/report"
	"civiq/internal/dq/service/resolver"
)

var resolveCmd = &cobra.Command{
	Use:          "resolve [jurisdiction...]",
	Short:        "Apply approved patches to live person records",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()
		ctx := cmd.Context()

		jurs, err := resolveJurisdictions(ctx, app, args)
		if err != nil {
			return err
		}

		svc, err := resolver.New(app.catalog, app.entities, app.issues, app.patches,
			resolver.WithLogger(app.logger),
			resolver.WithMetrics(metrics.New()),
		)
		if err != nil {
			return err
		}

		var reports *report.Service
		if app.redis != nil {
			reports, err = report.New(app.catalog, app.issues,
				report.WithLogger(app.logger),
				report.WithCache(app.redis, app.cfg.ReportCacheTTL),
			)
			if err != nil {
				return err
			}
		}

		for _, jur := range jurs {
			res, err := svc.ApplyApproved(ctx, jur.ID)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", jur.ID, err)
			}
			if reports != nil {
				reports.Invalidate(ctx, jur.ID)
			}
			fmt.Printf("%s: applied %d, deprecated %d, skipped %d\n",
				jur.Name, res.Applied, res.Deprecated, res.Skipped)
		}
		return nil
	},
}
