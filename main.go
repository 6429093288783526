package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"code-inserter/api"
	"code-inserter/config"
	"code-inserter/editor"
	"code-inserter/inserter"
	"code-inserter/logging"
	"code-inserter/panel"
	"code-inserter/settings"
	"code-inserter/snippet"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	log := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	var backend settings.Settings
	switch cfg.Settings.Backend {
	case config.BackendBolt:
		db, err := settings.NewBoltSettings(cfg.Settings.DBPath)
		if err != nil {
			log.Error(ctx, "failed to open settings database", "path", cfg.Settings.DBPath, "err", err)
			os.Exit(1)
		}
		defer db.Close()
		backend = db
	default:
		backend = settings.NewFileSettings(cfg.Settings.ProjectFile, cfg.Settings.UserFile)
	}
	snippets := snippet.NewStore(backend, log)

	if cfg.Dump {
		fmt.Println(snippet.Dump(snippets.Load(ctx)))
		return
	}

	ws, err := editor.NewWorkspace(cfg.ProjectRoot, cfg.CacheSize)
	if err != nil {
		log.Error(ctx, "failed to open workspace", "root", cfg.ProjectRoot, "err", err)
		os.Exit(1)
	}
	engine := inserter.New(ws, log)
	ctrl := panel.New(ctx, snippets, engine, ws, log)
	router := api.RegisterRoutes(ctrl, ws, staticFiles, log)

	log.Info(ctx, "code-inserter listening", "addr", cfg.Port, "root", cfg.ProjectRoot, "settings", cfg.Settings.Backend)
	if err := http.ListenAndServe(cfg.Port, router); err != nil {
		log.Error(ctx, "server error", "err", err)
		os.Exit(1)
	}
}
