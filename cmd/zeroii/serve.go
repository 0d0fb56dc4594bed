package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/itohio/gozeroii/pkg/metrics"
)

var (
	metricsAddr   string
	sweepInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sweep periodically and expose prometheus metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sweepInterval <= 0 {
			return fmt.Errorf("--interval must be positive, got %s", sweepInterval)
		}
		mt := metrics.New()
		s, err := newSession(cmd, true, mt)
		if err != nil {
			return err
		}
		defer s.Close()

		addr := metricsAddr
		if addr == "" {
			addr = s.cfg.Metrics.Addr
		}
		if addr == "" {
			addr = ":9100"
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", mt.Handler())
		server := &http.Server{Addr: addr, Handler: mux}

		go func() {
			s.log.Info("metrics listening", "addr", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("metrics server failed", "err", err)
			}
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			if err := s.ctx.RunSweep(); err != nil {
				s.log.Warn("sweep failed", "err", err)
			}
			select {
			case <-ctx.Done():
				s.log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			case <-ticker.C:
			}
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&metricsAddr, "metrics", "", "metrics listen address (default from config or :9100)")
	serveCmd.Flags().DurationVar(&sweepInterval, "interval", 10*time.Second, "time between sweeps")
}
