package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"civiq/internal/dq/handler"
	"civiq/internal/dq/service/exceptions"
	"civiq/internal/dq/service/report"
	"civiq/internal/dq/service/submission"
	"civiq/internal/platform/httpserver"
	platformmetrics "civiq/internal/platform/metrics"
)

var serveCmd = &cobra.Command{
	Use:          "serve",
	Short:        "Serve the data-quality HTTP API",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()
		return runServe(cmd.Context(), app)
	},
}

func runServe(ctx context.Context, app *app) error {
	exceptionSvc, err := exceptions.New(app.issues, exceptions.WithLogger(app.logger))
	if err != nil {
		return err
	}
	submissionSvc, err := submission.New(app.entities, app.patches, submission.WithLogger(app.logger))
	if err != nil {
		return err
	}
	reportOpts := []report.Option{report.WithLogger(app.logger)}
	if app.redis != nil {
		reportOpts = append(reportOpts, report.WithCache(app.redis, app.cfg.ReportCacheTTL))
	}
	reportSvc, err := report.New(app.catalog, app.issues, reportOpts...)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(platformmetrics.NewHTTP().Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := app.db.PingContext(req.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())
	handler.New(app.issues, app.catalog, exceptionSvc, submissionSvc, reportSvc, app.logger).Register(r)

	srv := httpserver.New(app.cfg.Addr, r)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.logger.Info("serving", "addr", app.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
