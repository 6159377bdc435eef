// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/dreamride/internal/config"
	"codeberg.org/oliverandrich/dreamride/internal/database"
	"codeberg.org/oliverandrich/dreamride/internal/handlers"
	authmw "codeberg.org/oliverandrich/dreamride/internal/middleware"
	"codeberg.org/oliverandrich/dreamride/internal/repository"
	"codeberg.org/oliverandrich/dreamride/internal/services/auth"
	"codeberg.org/oliverandrich/dreamride/internal/services/email"
	"codeberg.org/oliverandrich/dreamride/internal/services/password"
	"codeberg.org/oliverandrich/dreamride/internal/services/pending"
	"codeberg.org/oliverandrich/dreamride/internal/services/token"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/bcrypt"
)

// sweepInterval is how often expired pending registrations are pruned.
// Expiry is also enforced lazily on every access, so this only bounds memory.
const sweepInterval = time.Minute

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database (runs migrations)
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	repo := repository.New(db)

	// Services
	mailer, err := email.NewService(&cfg.SMTP)
	if err != nil {
		return fmt.Errorf("failed to create email service: %w", err)
	}
	tokens, err := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}
	pendingStore := pending.NewStore(cfg.Auth.CodeTTL)
	authService := auth.NewService(repo, pendingStore, password.NewHasher(bcrypt.DefaultCost), mailer, tokens)

	// Periodic sweep of expired pending registrations
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepLoop(sweepCtx, pendingStore)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg)
	setupRoutes(e, repo, authService)

	return startWithGracefulShutdown(e, cfg)
}

func setupRoutes(e *echo.Echo, repo *repository.Repository, authService *auth.Service) {
	h := handlers.New(repo)
	ah := handlers.NewAuth(authService)
	ch := handlers.NewConfig(repo)

	e.GET("/health", h.Health)

	ag := e.Group("/auth")
	ag.POST("/register", ah.Register)
	ag.POST("/verify", ah.Verify)
	ag.POST("/set-password", ah.SetPassword)
	ag.POST("/create-pin", ah.CreatePIN) // legacy alias for set-password
	ag.POST("/login", ah.Login)

	cg := e.Group("/config", authmw.RequireAuth(authService))
	cg.POST("/save", ch.Save)
	cg.GET("/user", ch.List)
	cg.PUT("/:id", ch.Update)
	cg.DELETE("/:id", ch.Delete)
}

func sweepLoop(ctx context.Context, store *pending.Store) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.Sweep()
		}
	}
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	tlsResult, err := SetupTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	errChan := make(chan error, 1)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		var startErr error
		if tlsResult.Mode == TLSModeOff {
			startErr = e.Start(addr)
		} else {
			startErr = startTLSServer(e, addr, tlsResult.TLSConfig)
		}
		if startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
			errChan <- startErr
		}
	}()

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.Server.Serve(e.TLSListener)
}
