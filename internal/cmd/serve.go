package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/audit"
	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/config"
	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/extract"
	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/server"
	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/web"
)

var (
	serveAddr      string
	serveDashboard bool
	serveNoAudit   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the privacy assistant HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().BoolVar(&serveDashboard, "dashboard", true, "Serve embedded dashboard at / and /dashboard")
	serveCmd.Flags().BoolVar(&serveNoAudit, "no-audit", false, "Disable the SQLite audit log")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	pipeline, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	extractor := extract.NewExtractor(cfg.MaxUploadMB)

	opts := []server.Option{
		server.WithRateLimiter(server.NewRateLimiter(cfg.GlobalRPM, cfg.PerClientRPM)),
	}

	var auditStore *audit.Store
	if !serveNoAudit {
		auditStore, err = audit.NewStore(cfg.AuditDBPath())
		if err != nil {
			return fmt.Errorf("initializing audit store: %w", err)
		}
		defer auditStore.Close()
		opts = append(opts, server.WithAuditStore(auditStore))
	}

	if serveDashboard {
		opts = append(opts, server.WithDashboard(web.DashboardHTML))
	}

	scheduler := cron.New()
	if auditStore != nil {
		retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour
		_, err := scheduler.AddFunc("@daily", func() {
			pruneCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			n, err := auditStore.PruneOlderThan(pruneCtx, retention)
			if err != nil {
				log.Warn().Err(err).Msg("audit_prune_failed")
				return
			}
			log.Info().Int64("pruned", n).Msg("audit_prune_done")
		})
		if err != nil {
			return fmt.Errorf("registering retention job: %w", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := server.NewServer(pipeline, extractor, opts...)

	addr := cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().
		Str("addr", addr).
		Bool("audit", auditStore != nil).
		Bool("dashboard", serveDashboard).
		Msg("privassist_serve_started")

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown_signal_received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server_stopped")
	return nil
}
