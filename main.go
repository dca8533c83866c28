package main

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/karlisv/fplbrief/api"
	"github.com/karlisv/fplbrief/logger"
	"github.com/karlisv/fplbrief/portal"
	"github.com/karlisv/fplbrief/session"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		// Not an error in production, where the environment is real.
		slog.Debug("no .env file loaded")
	}

	logger.Init(os.Getenv("LOG_FILE"), os.Getenv("DEBUG") == "1")

	baseURL := os.Getenv("PORTAL_BASE_URL")
	if baseURL == "" {
		slog.Error("PORTAL_BASE_URL is required")
		os.Exit(1)
	}

	// Outbound portal calls get a hard timeout (default 30 seconds); the
	// portal itself enforces none.
	timeout := 30 * time.Second
	if v := os.Getenv("PORTAL_TIMEOUT_SECONDS"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			timeout = time.Duration(seconds) * time.Second
		}
	}

	client, err := portal.NewClient(baseURL, timeout)
	if err != nil {
		slog.Error("failed to create portal client", "err", err)
		os.Exit(1)
	}

	store := session.NewStore()
	store.StartSweeper()
	defer store.Close()

	router := api.NewRouter(client, store)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port
	slog.Info("starting server", "addr", addr, "portal", baseURL)
	if err := http.ListenAndServe(addr, router); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
