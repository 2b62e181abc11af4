package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"datadash/adapters/excel"
	"datadash/internal/chart"
	"datadash/internal/config"
	"datadash/internal/dashboard"
	"datadash/internal/logging"
	"datadash/internal/metrics"
	"datadash/internal/session"
	"datadash/ui"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Serve-specific flag values.
var (
	servePort string
)

// serveCmd runs the dashboard web server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard web server",
	Long: `Run the dashboard on http://localhost:<port>. Settings come from the
config file, DATADASH_* environment variables and .env, in that order of
increasing precedence. With DATADASH_OPS_ENABLED=true a second listener
serves Prometheus metrics and pprof on DATADASH_OPS_PORT.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (overrides config)")
}

// loadConfig applies command-line overrides on top of the loaded config
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.NewLogger(logging.ParseLevel(cfg.Log.Level))
	log := logger.Component("Serve")

	store := session.NewStore(cfg.Session.TTL, logger)
	m := metrics.New(store.Len)

	readerConfig := excel.DefaultExcelConfig()
	readerConfig.MaxBytes = cfg.Upload.MaxBytes()
	renderer := chart.NewRenderer(chart.Options{Width: cfg.Chart.Width, Height: cfg.Chart.Height})

	server, err := ui.NewServer(
		ui.Config{GinMode: cfg.Server.GinMode, CookieName: cfg.Session.CookieName, MaxBytes: readerConfig.MaxBytes},
		excel.NewDataReader(readerConfig, logger),
		dashboard.NewController(renderer, m, logger),
		store, m, logger,
	)
	if err != nil {
		return err
	}

	errorWriter := logger.Component("HTTPServer").Writer()
	defer errorWriter.Close()
	errorLog := stdlog.New(errorWriter, "", 0)

	servers := []*http.Server{{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.Handler(),
		ErrorLog:          errorLog,
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.Ops.Enabled {
		servers = append(servers, &http.Server{
			Addr:              ":" + cfg.Ops.Port,
			Handler:           ui.NewOpsRouter(m),
			ErrorLog:          errorLog,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		store.Start()
		return nil
	})
	for _, srv := range servers {
		g.Go(func() error {
			log.Info("Listening on http://localhost%s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		store.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
