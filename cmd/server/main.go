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

	creditapp "github.com/vbs-0/bomber/internal/credit/app"
	creditpg "github.com/vbs-0/bomber/internal/credit/repository/postgres"
	"github.com/vbs-0/bomber/internal/httpapi"
	otpapp "github.com/vbs-0/bomber/internal/otp/app"
	otppg "github.com/vbs-0/bomber/internal/otp/repository/postgres"
	"github.com/vbs-0/bomber/internal/platform/config"
	"github.com/vbs-0/bomber/internal/platform/database"
	"github.com/vbs-0/bomber/internal/platform/logger"
	protectionapp "github.com/vbs-0/bomber/internal/protection/app"
	protectionpg "github.com/vbs-0/bomber/internal/protection/repository/postgres"
	smsapp "github.com/vbs-0/bomber/internal/sms/app"
	"github.com/vbs-0/bomber/internal/sms/provider"
	smspg "github.com/vbs-0/bomber/internal/sms/repository/postgres"
	userapp "github.com/vbs-0/bomber/internal/user/app"
	userpg "github.com/vbs-0/bomber/internal/user/repository/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Server starting", "port", cfg.ServerPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("Connected to PostgreSQL")

	// Repositories
	userRepo := userpg.NewPgUserRepository(dbPool, appLogger)
	otpRepo := otppg.NewPgOTPRepository(dbPool, appLogger)
	messageRepo := smspg.NewPgMessageRepository(dbPool, appLogger)
	protectionRepo := protectionpg.NewPgProtectedNumberRepository(dbPool, appLogger)
	creditReqRepo := creditpg.NewPgCreditRequestRepository(dbPool, appLogger)

	// Services
	authService := userapp.NewAuthService(userRepo, userapp.SessionConfig{
		Secret:   cfg.SessionSecret,
		TTLHours: cfg.SessionTTLHours,
	}, cfg.InitialCredits, appLogger)
	otpService := otpapp.NewService(otpRepo, time.Duration(cfg.OTPTTLMinutes)*time.Minute, appLogger)
	creditService := creditapp.NewService(userRepo, creditReqRepo, messageRepo, appLogger)
	protectionService := protectionapp.NewService(protectionRepo, appLogger)
	gateway := provider.NewClient(appLogger, cfg.GatewayCustomSMSURL, cfg.GatewayBomberURL, cfg.GatewayInsecureTLS, nil)
	dispatchService := smsapp.NewDispatchService(gateway, messageRepo, creditService, protectionService, appLogger)

	router := httpapi.NewRouter(httpapi.Deps{
		Auth:       authService,
		OTP:        otpService,
		Dispatch:   dispatchService,
		Credit:     creditService,
		Protection: protectionService,
		Users:      userRepo,
		Messages:   messageRepo,
		Logger:     appLogger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		appLogger.Error("HTTP server failed", "error", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Graceful shutdown failed", "error", err)
	}
}
