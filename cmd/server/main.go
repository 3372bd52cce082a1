// Command server runs the Tetris Arena authoritative game server: it
// wires the in-memory room Registry, the WebSocket transport Hub, the
// optional Postgres ScoreStore, and an HTTP router, then serves until
// an interrupt signal triggers a graceful shutdown — mirroring
// cmd/api/main.go's wiring and shutdown sequence.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tetris-arena/backend/internal/api"
	"github.com/tetris-arena/backend/internal/scorestore"
	"github.com/tetris-arena/backend/internal/tetris"
	"github.com/tetris-arena/backend/internal/transport"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("[main] no .env file loaded: %v", err)
		}
	}

	host := os.Getenv("HOST")
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := host + ":" + port

	var store scorestore.ScoreStore
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		pg, err := scorestore.NewPostgresStore(dsn)
		if err != nil {
			log.Printf("[main] score store disabled, connection failed: %v", err)
		} else {
			store = pg
			defer pg.Close()
		}
	}

	hub := transport.NewHub()
	registry := tetris.NewRegistry(hub)

	router := api.NewRouter(registry, hub, store)

	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
	registry.Shutdown()
	log.Println("[main] shutdown complete")
}
