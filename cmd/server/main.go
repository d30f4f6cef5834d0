// Package main initializes and starts the GreenCart storefront API server,
// setting up configuration, logging, database connections, repositories,
// services and handlers.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/GreenCart/internal/catalog"
	"github.com/atinyakov/GreenCart/internal/certgen"
	"github.com/atinyakov/GreenCart/internal/config"
	"github.com/atinyakov/GreenCart/internal/db"
	"github.com/atinyakov/GreenCart/internal/logger"
	"github.com/atinyakov/GreenCart/internal/recommend"
	"github.com/atinyakov/GreenCart/internal/repository"
	"github.com/atinyakov/GreenCart/internal/server/handler/http"
	"github.com/atinyakov/GreenCart/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(2)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	db.StartSessionCleaner(ctx, postgresDB, options.CleanupInterval, zapLogger)

	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	productRepo := repository.NewPostgresProductRepository(postgresDB)

	authService := service.NewAuthService(authRepo, options.SessionTTL, options.Admins()...)
	menuService := service.NewMenuService(catalog.Default, productRepo)

	if options.CompletionURL == "" {
		zapLogger.Warn("no completion endpoint configured, recommendations will fail")
	}
	recommender := recommend.NewClient(options.CompletionURL, options.CompletionAPIKey, options.CompletionModel, zapLogger)

	router := http.NewRouter(http.Handlers{
		Auth:      &http.AuthHandler{AuthService: authService},
		Catalog:   &http.CatalogHandler{MenuService: menuService, Log: zapLogger},
		Recommend: &http.RecommendHandler{Recommender: recommender},
		Sitemap:   &http.SitemapHandler{BaseURL: options.BaseURL, Directory: catalog.Default},
	}, authService, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	useTLS := options.TLSCert != "" && options.TLSKey != ""
	if useTLS {
		generated, err := certgen.EnsureServerCertificate(options.TLSCert, options.TLSKey, tlsHosts(options.Port))
		if err != nil {
			zapLogger.Fatal("failed to prepare TLS certificate", zap.Error(err))
		}
		if generated {
			zapLogger.Warn("generated self-signed TLS certificate", zap.String("cert", options.TLSCert))
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if useTLS {
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
			errCh <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}

// tlsHosts names the hosts a generated certificate is valid for.
func tlsHosts(addr string) []string {
	hosts := []string{"localhost", "127.0.0.1"}
	if h, _, err := net.SplitHostPort(addr); err == nil && h != "" && h != "localhost" && h != "127.0.0.1" && h != "0.0.0.0" {
		hosts = append(hosts, h)
	}
	return hosts
}
