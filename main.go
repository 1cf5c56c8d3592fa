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

	_ "modernc.org/sqlite"

	"github.com/FausT-VX/tasklog-server/handlers"
	"github.com/FausT-VX/tasklog-server/service/tasklog"
	"github.com/FausT-VX/tasklog-server/settings"
)

func main() {
	log.SetFlags(log.LstdFlags)
	log.SetPrefix("tasklog-server: ")
	log.Println("Starting application...")

	cfg, err := settings.Load()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Хранилище журнала задач
	store, closer, err := tasklog.OpenStore(ctx, cfg)
	if err != nil {
		log.Println(err)
		return
	}
	defer closer.Close()
	log.Printf("Using %s storage", cfg.StorageType)

	router := handlers.NewRouter(handlers.New(store, cfg), cfg.WebDir, cfg.IsDebug())
	server := &http.Server{Addr: cfg.Port, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("Starting server on port %s...\n", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("Start server error: %s", err.Error())
		return
	}
	log.Println("Server stopped")
}
