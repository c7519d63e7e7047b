package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/viper"

	"github.com/Shauryasoni262/BusinessOps-Suite-sub001/server/adaptor"
	"github.com/Shauryasoni262/BusinessOps-Suite-sub001/server/domain"
	"github.com/Shauryasoni262/BusinessOps-Suite-sub001/server/repository"
	"github.com/Shauryasoni262/BusinessOps-Suite-sub001/server/usecase"
)

const (
	listenAddrKey   = "listen_addr"
	databasePathKey = "database_path"
	historyLimitKey = "history_limit"
)

func loadConfig() domain.Config {
	viper.SetDefault(listenAddrKey, ":8090")
	viper.SetDefault(databasePathKey, "./realtime.db")
	viper.SetDefault(historyLimitKey, domain.DefaultHistoryLimit)

	viper.SetEnvPrefix("realtime")
	viper.AutomaticEnv()

	viper.SetConfigName("realtime")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	}

	return domain.NewConfig(
		viper.GetString(listenAddrKey),
		viper.GetString(databasePathKey),
		viper.GetInt(historyLimitKey),
	)
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := loadConfig()

	db, err := sql.Open("sqlite3", cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store, err := repository.NewRepository(db)
	if err != nil {
		log.Error("failed to prepare message store", "error", err)
		os.Exit(1)
	}

	registry := domain.NewRegistry()
	projects := usecase.NewProjectUsecase(registry, log)
	chat := usecase.NewChatUsecase(store, registry, projects, cfg.HistoryLimit, log)
	ws := adaptor.NewAdaptor(chat, nil, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ws.ServeWS)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	go func() {
		log.Info("gateway listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	stats := chat.Stats()
	log.Info("shutting down", "active_sessions", stats.ActiveSessions, "active_rooms", stats.ActiveRooms, "delivered", stats.Delivered)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Warn("shutdown did not complete cleanly", "error", err)
	}
}
