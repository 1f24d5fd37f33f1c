// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/content-engine/internal/api"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run the resource trigger loop",
	Long: `Serve starts the HTTP API. When scheduler.interval is set, it also runs
the resource trigger loop in the same process: one batch immediately, then one
every interval. SIGINT or SIGTERM shuts both down gracefully.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("address", "", "listen address (default \":8080\")")
	serveCmd.Flags().Duration("interval", 0, "resource trigger interval; 0 disables the loop")
	serveCmd.Flags().Bool("no-request-logs", false, "disable per-request logging")

	_ = viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
	_ = viper.BindPFlag("scheduler.interval", serveCmd.Flags().Lookup("interval"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	noReqLogs, _ := cmd.Flags().GetBool("no-request-logs")
	srv := api.NewServer(&api.Options{
		Address:        a.cfg.Server.Address,
		Debug:          a.cfg.Server.Debug,
		DisableReqLogs: noReqLogs,
		CronSecret:     a.cfg.Server.CronSecret,
		Store:          a.store,
		Articles:       a.pipeline,
		Assessments:    a.assessments,
		Planner:        a.planner,
		Runner:         a.runner,
		Logger:         logger,
	})
	if a.cfg.Server.CronSecret == "" {
		logger.Warn("no cron secret configured; the resource trigger route rejects every call")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Stop(shutdownCtx)
	})
	if interval := a.cfg.Scheduler.Interval; interval > 0 {
		logger.Info("resource trigger loop enabled", zap.Duration("interval", interval))
		g.Go(func() error { return a.runner.Loop(gctx, interval) })
	}
	return g.Wait()
}
