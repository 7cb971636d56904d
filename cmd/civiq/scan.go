package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"civiq/internal/dq/metrics"
	"civiq/internal/dq/service/materializer"
	"civiq/internal/dq/service/report"
	"civiq/internal/entity"
	"civiq/pkg/domain"
	"civiq/pkg/platform/sentinel"
)

var scanFlags struct {
	people        bool
	organizations bool
	bills         bool
	voteEvents    bool
}

var scanCmd = &cobra.Command{
	Use:   "scan [jurisdiction...]",
	Short: "Rescan jurisdictions and materialize data-quality issues",
	Long: `Rescan jurisdictions and materialize data-quality issues.

Jurisdictions are named by full OCD id or by the short token inside it
("nc" for ocd-jurisdiction/country:us/state:nc/government). With no
arguments every jurisdiction is scanned; with no kind flags every kind is.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()
		return runScan(cmd.Context(), app, args)
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanFlags.people, "people", false, "scan people, memberships and posts")
	scanCmd.Flags().BoolVar(&scanFlags.organizations, "organizations", false, "scan organizations")
	scanCmd.Flags().BoolVar(&scanFlags.bills, "bills", false, "scan bills")
	scanCmd.Flags().BoolVar(&scanFlags.voteEvents, "vote-events", false, "scan vote events")
}

// scanKinds maps the kind flags to subject kinds. The people flag covers
// memberships and posts too: their issues describe people data.
func scanKinds() []domain.SubjectKind {
	var kinds []domain.SubjectKind
	if scanFlags.people {
		kinds = append(kinds, domain.KindPerson, domain.KindMembership, domain.KindPost)
	}
	if scanFlags.organizations {
		kinds = append(kinds, domain.KindOrganization)
	}
	if scanFlags.bills {
		kinds = append(kinds, domain.KindBill)
	}
	if scanFlags.voteEvents {
		kinds = append(kinds, domain.KindVoteEvent)
	}
	if len(kinds) == 0 {
		kinds = domain.Kinds()
	}
	return kinds
}

func runScan(ctx context.Context, app *app, args []string) error {
	jurs, err := resolveJurisdictions(ctx, app, args)
	if err != nil {
		return err
	}

	svc, err := materializer.New(app.catalog, app.scanners, app.issues, app.issueTx,
		materializer.WithLogger(app.logger),
		materializer.WithMetrics(metrics.New()),
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

	kinds := scanKinds()
	total := 0
	for _, jur := range jurs {
		n, err := svc.MaterializeKinds(ctx, jur.ID, kinds)
		if err != nil {
			return fmt.Errorf("scan %s: %w", jur.ID, err)
		}
		if reports != nil {
			reports.Invalidate(ctx, jur.ID)
		}
		fmt.Printf("%s: %d issues\n", jur.Name, n)
		total += n
	}
	fmt.Printf("done: %d issues across %d jurisdictions\n", total, len(jurs))
	return nil
}

func resolveJurisdictions(ctx context.Context, app *app, tokens []string) ([]*entity.Jurisdiction, error) {
	if len(tokens) == 0 {
		jurs, err := app.entities.Jurisdictions(ctx)
		if err != nil {
			return nil, fmt.Errorf("list jurisdictions: %w", err)
		}
		return jurs, nil
	}
	var out []*entity.Jurisdiction
	for _, token := range tokens {
		jur, err := app.entities.FindJurisdiction(ctx, token)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, fmt.Errorf("no jurisdiction matches %q", token)
		}
		if err != nil {
			return nil, fmt.Errorf("find jurisdiction %q: %w", token, err)
		}
		out = append(out, jur)
	}
	return out, nil
}
