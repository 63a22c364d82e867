package main

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"chat-client/internal/api"
	"chat-client/internal/config"
	"chat-client/internal/debug"
	"chat-client/internal/store"
	"chat-client/internal/telemetry"
	"chat-client/internal/ui"
	"chat-client/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// The terminal owns stdout, so logs go to a file under the state dir.
	closeLog, err := redirectLogs(cfg)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer closeLog()

	shutdown, err := telemetry.Setup(context.Background(), cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	sessions := store.NewSessionStore(cfg.StateDir)
	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, sessions.Token)

	cache := store.NewConversations()
	presence := store.NewPresence()
	manager := ws.NewManager(cfg.WSURL, cfg.ReconnectDelay, cfg.MaxReconnectAttempts)

	app := ui.NewApp(*cfg, client, sessions, cache, presence, manager)

	if cfg.DebugAddr != "" {
		debug.Serve(cfg.DebugAddr, app.DebugState)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("ui exited: %v", err)
	}
	manager.Close()
}

// redirectLogs points the standard logger at a file so background
// goroutines cannot scribble over the tview screen.
func redirectLogs(cfg *config.Config) (func(), error) {
	if cfg.Verbose {
		return func() {}, nil
	}
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(cfg.StateDir, "client.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(io.Discard)
		f.Close()
	}, nil
}
