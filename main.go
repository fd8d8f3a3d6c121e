package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"cognito-login/pkg/auth"
	"cognito-login/pkg/config"
	"cognito-login/pkg/logger"
	"cognito-login/pkg/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log = logger.Init(cfg.LogLevel)

	cognitoClient, err := auth.NewBootstrap().Configure(ctx, cfg.AuthOptions())
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "identity provider configured",
		"user_pool_id", cfg.UserPoolID,
		"region", cognitoClient.Options().Region)

	cookies := web.SessionCookies{Secure: cfg.SecureCookies, MaxAge: cfg.SessionMaxAge}
	r, err := web.NewRouter(ctx, web.Deps{
		Provider:      cognitoClient,
		Authenticator: cognitoClient,
		Widget:        web.DefaultWidgetConfig(),
		Cookies:       cookies,
		Logger:        log,
		LoginRate:     web.PerMinute(cfg.LoginRatePerMinute),
		LoginBurst:    cfg.LoginRateBurst,
		TrustProxy:    cfg.TrustProxy,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server!", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
