package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/helpmesh/helpmesh/internal/auth"
	"github.com/helpmesh/helpmesh/internal/chat"
	"github.com/helpmesh/helpmesh/internal/config"
	"github.com/helpmesh/helpmesh/internal/handlers"
	"github.com/helpmesh/helpmesh/internal/help"
	"github.com/helpmesh/helpmesh/internal/observability"
	"github.com/helpmesh/helpmesh/internal/repository"
	"github.com/helpmesh/helpmesh/internal/router"
	"github.com/helpmesh/helpmesh/internal/volunteer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	observability.InitLogger(cfg.ServiceName)
	defer observability.Log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	client, err := repository.Connect(connectCtx, cfg.MongoURI)
	cancel()
	if err != nil {
		observability.Log.Fatal("mongodb connection failed", zap.Error(err))
	}
	db := client.Database(cfg.MongoDatabase)

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	volunteerRepo := repository.NewVolunteerRepository(db)

	idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := messageRepo.EnsureIndexes(idxCtx); err != nil {
		observability.Log.Warn("index creation failed", zap.Error(err))
	}
	cancel()

	authSvc := auth.NewService(userRepo, auth.NewGoogleVerifier(cfg.GoogleAudience), auth.Config{
		JWTSecret:      cfg.JWTSecret,
		JWTIssuer:      cfg.JWTIssuer,
		AccessTokenTTL: cfg.AccessTokenTTL,
		AdminEmail:     cfg.AdminEmail,
		AdminPassword:  cfg.AdminPassword,
	})
	volunteerSvc := volunteer.NewService(volunteerRepo, authSvc)
	helpSvc := help.NewService()

	registry := chat.NewRegistry()
	chatSvc := chat.NewService(messageRepo, cfg.StoreTimeout)
	delivery := chat.NewDelivery(messageRepo, registry, cfg.StoreTimeout)
	wsHandler := chat.NewHandler(registry, delivery, chatSvc, cfg.JWTSecret)

	handler := router.New(cfg, router.Deps{
		Auth:      handlers.NewAuthHandler(authSvc),
		Chat:      handlers.NewChatHandler(chatSvc, delivery, authSvc),
		Volunteer: handlers.NewVolunteerHandler(volunteerSvc),
		Help:      handlers.NewHelpHandler(helpSvc),
		WS:        wsHandler,
		Ready: observability.HealthReadyHandler(func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		}),
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	obsMux := http.NewServeMux()
	obsMux.Handle("/metrics", promhttp.Handler())
	obsMux.HandleFunc("/health/live", observability.HealthLiveHandler)
	obsSrv := &http.Server{Addr: cfg.ObsHTTPAddr, Handler: obsMux}

	go func() {
		observability.Log.Info("observability server listening", zap.String("addr", cfg.ObsHTTPAddr))
		if err := obsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Log.Error("observability server failed", zap.Error(err))
		}
	}()

	go func() {
		observability.Log.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	observability.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	registry.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		observability.Log.Error("server shutdown failed", zap.Error(err))
	}
	if err := obsSrv.Shutdown(shutdownCtx); err != nil {
		observability.Log.Error("observability server shutdown failed", zap.Error(err))
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		observability.Log.Error("mongodb disconnect failed", zap.Error(err))
	}

	observability.Log.Info("shutdown complete")
}
