// Command feedloom augments a live social-feed page with comment-drafting
// affordances: it watches the page through Chrome, places a generate button
// next to each eligible post, and drives the drafting panel and the page's
// own comment composer.
//
// Usage:
//
//	feedloom -config feedloom.yaml             # run the augmenter
//	feedloom -config feedloom.yaml -mcp        # additionally serve MCP on stdio
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/feedloom/browser"
	"github.com/hazyhaar/feedloom/control"
	"github.com/hazyhaar/feedloom/engine"
	"github.com/hazyhaar/feedloom/generate"
	"github.com/hazyhaar/feedloom/profilecache"
)

const version = "0.3.0"

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "feedloom.yaml", "path to feedloom.yaml config file")
	serveMCP := flag.Bool("mcp", false, "serve MCP tools on stdio")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *serveMCP); err != nil {
		logger.Error("feedloom: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath string, serveMCP bool) error {
	cfg, err := engine.LoadConfigFile(configPath)
	if err != nil {
		return err
	}
	sig, err := cfg.LoadSignatures()
	if err != nil {
		return fmt.Errorf("load signatures: %w", err)
	}

	mgr := browser.NewManager(browser.Config{
		RemoteURL:   cfg.Browser.Remote,
		Headless:    cfg.Browser.Headless,
		UserDataDir: cfg.Browser.UserDataDir,
		Logger:      logger,
	})
	if _, err := mgr.Start(); err != nil {
		return err
	}
	defer mgr.Close()

	tab, err := browser.OpenTab(ctx, mgr, cfg.Page.URL)
	if err != nil {
		return err
	}
	defer tab.Close()

	store, err := profilecache.Open(cfg.Cache.Path, logger)
	if err != nil {
		// Advisory cache: run without it.
		logger.Warn("feedloom: profile cache unavailable", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	applier := browser.NewApplier(tab, logger)
	deps := engine.Deps{
		Page:    tab,
		Surface: applier,
		Poster:  browser.NewComposer(tab, sig, logger),
		Drafter: generate.NewClient(cfg.Generate.Endpoint,
			generate.WithTimeout(cfg.Generate.Timeout),
			generate.WithRetries(cfg.Generate.Retries),
			generate.WithInitialDelay(cfg.Generate.InitialDelay),
			generate.WithLogger(logger),
		),
		Signatures: sig,
		Logger:     logger,
	}
	if store != nil {
		deps.Profiles = store
	}
	eng := engine.New(cfg, deps)

	signals := browser.NewSignals(tab, eng.Signal, eng.HandleAction, logger)
	if err := signals.Start(ctx, sig.Items); err != nil {
		return err
	}

	if cfg.Control.Listen != "" {
		ctl := control.NewServer(eng, logger)
		go func() {
			if err := ctl.Run(ctx, cfg.Control.Listen); err != nil {
				logger.Error("feedloom: control server stopped", "error", err)
			}
		}()
	}

	if serveMCP {
		srv := mcp.NewServer(
			&mcp.Implementation{Name: "feedloom", Version: version},
			&mcp.ServerOptions{
				Instructions: "Inspect and steer the feedloom page augmenter: list tracked feed items, read their extracted content, and set the drafting tone.",
			},
		)
		eng.RegisterMCP(srv)
		go func() {
			if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				logger.Error("feedloom: mcp server stopped", "error", err)
			}
		}()
	}

	logger.Info("feedloom: running", "page", cfg.Page.URL)
	eng.Run(ctx)
	return nil
}
