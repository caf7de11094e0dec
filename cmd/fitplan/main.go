package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tailscale.com/tsnet"

	"github.com/claude/fitplan/internal/catalog"
	"github.com/claude/fitplan/internal/client"
	"github.com/claude/fitplan/internal/config"
	"github.com/claude/fitplan/internal/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	staticDir := flag.String("static", "", "directory with the built frontend to serve")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	log.Info("FitPlan starting", "version", Version, "service", cfg.Service.BaseURL)

	svc, err := client.New(cfg.Service.BaseURL, cfg.Service.SessionID, cfg.Service.Timeout)
	if err != nil {
		log.Error("failed to create program service client", "error", err)
		os.Exit(1)
	}

	// Catalog cache is optional
	var cache *catalog.Cache
	if cfg.Catalog.CacheDir != "" && cfg.Catalog.TTL > 0 {
		cache, err = catalog.OpenCache(cfg.Catalog.CacheDir, cfg.Catalog.TTL)
		if err != nil {
			log.Error("failed to open catalog cache", "dir", cfg.Catalog.CacheDir, "error", err)
			os.Exit(1)
		}
		defer cache.Close()
		if n, err := cache.Prune(); err != nil {
			log.Warn("catalog cache prune failed", "error", err)
		} else {
			log.Info("catalog cache opened", "dir", cfg.Catalog.CacheDir, "pruned", n)
		}
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	sessions := server.NewSessionStore(cfg.Sessions.IdleTimeout, log)
	go sessions.Run(ctx, time.Minute)

	srv := server.New(svc, cache, sessions, log)

	if *staticDir != "" {
		srv.SetFrontend(os.DirFS(*staticDir))
		log.Info("serving frontend", "dir", *staticDir)
	}

	// Start server: tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped", "open_drafts", sessions.Len())
}
