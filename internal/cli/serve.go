package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/config"
	"github.com/projectdesk/projectdesk/internal/handlers"
	"github.com/projectdesk/projectdesk/internal/monitors"
	"github.com/projectdesk/projectdesk/internal/router"
	"github.com/projectdesk/projectdesk/internal/scheduler"
	"github.com/projectdesk/projectdesk/internal/types"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
	probeTimeout    = 5 * time.Second
)

type ServeOptions struct {
	CheckInterval time.Duration
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web interface and REST API",
		Long: `Run the HTTP server. Configuration comes from the environment
(PORT, DB_DRIVER, DATABASE_URL, JWT_SECRET, ...), optionally loaded from .env.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.CheckInterval, "check-interval", 30*time.Second, "how often the database health check runs")

	return cmd
}

// configure applies cfg to the process-wide settings the handlers read.
func configure(cfg *config.Config) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	if err := auth.InitJWT(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL); err != nil {
		return err
	}

	types.SetAllowedOrigins(cfg.AllowedOrigins)
	handlers.ConfigureCookies(cfg.Domain, cfg.CookieSecure)

	return nil
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if opts.CheckInterval <= 0 {
		return fmt.Errorf("invalid check interval %v: must be positive", opts.CheckInterval)
	}

	if err := configure(cfg); err != nil {
		return err
	}

	if _, err := openDatabase(); err != nil {
		return err
	}

	jobs := scheduler.Initialize()
	defer scheduler.Shutdown()

	jobs.AddJob("database", opts.CheckInterval, func(ctx context.Context) error {
		return monitors.CheckDatabase(ctx, db.DB, probeTimeout)
	})

	r, err := router.NewRouter()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("ProjectDesk listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
