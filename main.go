package main

import (
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"eve-atlas/internal/api"
	"eve-atlas/internal/db"
	"eve-atlas/internal/engine"
	"eve-atlas/internal/esi"
	"eve-atlas/internal/graph"
	"eve-atlas/internal/logger"
	"eve-atlas/internal/sde"
	"eve-atlas/internal/zkillboard"
)

var version = "dev"

//go:embed web
var webFS embed.FS

func main() {
	port := flag.Int("port", 13380, "HTTP server port")
	flag.Parse()

	logger.Banner(version)

	wd, _ := os.Getwd()
	dataDir := envOrDefault("ATLAS_DATA_DIR", filepath.Join(wd, "data"))
	os.MkdirAll(dataDir, 0755)

	// Open SQLite database
	database, err := db.Open("")
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	// Load config from SQLite
	cfg := database.LoadConfig()

	planner := engine.NewPlanner()
	planner.SetWeights(graph.Weights{
		SecurityPenalty: cfg.SecurityPenalty,
		Shortcut:        cfg.ShortcutWeight,
	})

	esiClient := esi.NewClient()

	// Hazard feeds run for the life of the process.
	stop := make(chan struct{})
	incursions := esi.NewIncursionFeed(esiClient)
	planner.AddHazardSource(incursions)
	go incursions.Run(stop)

	if cfg.EnableKillFeed {
		kills := zkillboard.NewKillstream(
			time.Duration(cfg.KillWindowMinutes)*time.Minute, cfg.KillThreshold)
		planner.AddHazardSource(kills)
		go kills.Run(stop)
	}

	srv := api.NewServer(cfg, esiClient, database, planner, version)

	// Load SDE in background
	go func() {
		data, err := sde.Load(dataDir)
		if err != nil {
			logger.Error("SDE", fmt.Sprintf("Load failed: %v", err))
			return
		}
		srv.SetSDE(data)
		logger.Success("SDE", "Route planner ready")
	}()

	// Combine API + embedded frontend into a single handler
	apiHandler := srv.Handler()
	webContent, _ := fs.Sub(webFS, "web")
	fileServer := http.FileServer(http.FS(webContent))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// API routes
		if strings.HasPrefix(r.URL.Path, "/api/") {
			apiHandler.ServeHTTP(w, r)
			return
		}
		// Try static file, fall back to index.html (SPA)
		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" {
			path = "index.html"
		}
		if _, err := fs.Stat(webContent, path); err == nil {
			fileServer.ServeHTTP(w, r)
			return
		}
		// SPA fallback
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})

	addr := fmt.Sprintf("127.0.0.1:%d", *port)
	logger.Server(addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
