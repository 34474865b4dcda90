package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-epa-compare/internal/server"
)

var (
	serveAddr       string
	serveRPS        float64
	serveTrustProxy bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the comparison API for a browser front end",
	Long: `Starts the HTTP API:

  GET /health
  GET /api/v1/seasons
  GET /api/v1/teams
  GET /api/v1/metrics/{position}
  GET /api/v1/players?season=&position=&weeks=
  GET /api/v1/compare?season=&position=&weeks=&players=NAME@TEAM,...
  GET /api/v1/compare.csv?...same as compare
  GET /debug/vars            expvar request metrics

Allowed CORS origins come from EPA_CORS_ORIGINS (comma separated). The rate
limit is keyed on the connection's address unless --trust-proxy is set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", cfg.Server.Addr, "listen address")
	serveCmd.Flags().Float64Var(&serveRPS, "rate-limit", cfg.Server.RateLimitRPS, "API requests per second per client IP (0 disables)")
	serveCmd.Flags().BoolVar(&serveTrustProxy, "trust-proxy", cfg.Server.TrustProxy, "take client IPs from X-Forwarded-For/X-Real-IP (only behind a proxy that sets them)")
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	srv := &http.Server{
		Addr: serveAddr,
		Handler: server.NewRouter(server.NewHandler(e.svc, e.loader), server.Options{
			AllowedOrigins: cfg.Server.CORSOrigins,
			RateLimitRPS:   serveRPS,
			RateLimitBurst: cfg.Server.RateLimitBurst,
			TrustProxy:     serveTrustProxy,
		}),
		ReadTimeout: 10 * time.Second,
		// Cold requests download a full season.
		WriteTimeout: server.RequestTimeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("epacompare API listening on %s", serveAddr)
		log.Printf("  cache: %s  ttl: %s", cacheBackend(), cacheTTL)
		log.Printf("  cors:  %s", strings.Join(cfg.Server.CORSOrigins, ", "))
		log.Printf("  rate:  %.2f req/s burst %d", serveRPS, cfg.Server.RateLimitBurst)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	}

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func cacheBackend() string {
	if redisURL != "" {
		return "redis"
	}
	return dbPath
}
