// Command nlpd serves the NLP plugin API: chat, completion, vision,
// image and speech endpoints plus assistant thread and run management,
// all forwarded to an OpenAI-compatible provider.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/obahamonde/cms-nlp-plugins/config"
	"github.com/obahamonde/cms-nlp-plugins/functions"
	nlpdlogger "github.com/obahamonde/cms-nlp-plugins/logger"
	"github.com/obahamonde/cms-nlp-plugins/server"
)

const defaultAddr = ":8080"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		addr      = flag.String("addr", defaultAddr, "HTTP listen address")
		logFile   = flag.String("logfile", "", "Path to log file. If not set, logs to stdout/stderr")
		pretty    = flag.Bool("pretty", false, "Use pretty console output (only valid when logfile is not set)")
		staticDir = flag.String("static", "", "Directory of static files served at /")
	)
	flag.Parse()

	if *logFile != "" && *pretty {
		return fmt.Errorf("--logfile and --pretty are mutually exclusive")
	}

	logger, err := nlpdlogger.InitWithOptions(*logFile, *pretty)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	configPath := config.GetServerConfigPath()
	appConfig, err := config.LoadServerConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info().Str("config", configPath).Msg("Loaded configuration")

	if *addr != defaultAddr {
		appConfig.Server.Addr = *addr
	}
	if *staticDir != "" {
		appConfig.Server.StaticDir = *staticDir
	}

	ai, err := config.NewOpenAIClient(appConfig, logger)
	if err != nil {
		return fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	registry := functions.NewRegistry(logger)
	if err := functions.RegisterBuiltins(registry, ai); err != nil {
		return fmt.Errorf("failed to register functions: %w", err)
	}

	srv := server.New(server.Config{
		Addr:      appConfig.Server.Addr,
		StaticDir: appConfig.Server.StaticDir,
		Poll:      appConfig.Poll.PollerConfig(),
		Logger:    logger,
	}, ai, registry)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info().Str("addr", appConfig.Server.Addr).Msg("nlpd started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
