package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appcfg "github.com/park285/chess-rooms/internal/config"
	"github.com/park285/chess-rooms/internal/gateway"
	"github.com/park285/chess-rooms/internal/msgcat"
	"github.com/park285/chess-rooms/internal/obslog"
	"github.com/park285/chess-rooms/internal/position"
	"github.com/park285/chess-rooms/internal/room"
	"github.com/park285/chess-rooms/internal/roomfeed"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	msgs, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("message catalog init error", zap.Error(err))
	}

	var feed roomfeed.Feed = roomfeed.Nop{}
	if cfg.RedisURL != "" {
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rf, err := roomfeed.Dial(cctx, cfg.RedisURL, cfg.FeedChannel, cfg.FeedTTL())
		cancel()
		if err != nil {
			logger.Fatal("room feed init error", zap.Error(err))
		}
		feed = rf
		logger.Info("room_feed_enabled", zap.String("channel", cfg.FeedChannel))
	}

	svc := room.NewService(room.NewDirectory(position.NewStandard()))
	hub := gateway.NewHub(svc, feed, msgs, logger.Named("gateway"), gateway.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		SendBuffer:     cfg.WSSendBuffer,
		PingInterval:   cfg.PingInterval(),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           gateway.NewRouter(hub, cfg.GinMode),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http_listen", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown_start")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Warn("http shutdown error", zap.Error(err))
	}
	_ = feed.Close()
	logger.Info("shutdown_done")
}
