package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-formbind/pkg/binder"
	"github.com/goliatone/go-formbind/pkg/config"
	"github.com/goliatone/go-formbind/pkg/metrics"
	"github.com/goliatone/go-formbind/pkg/openapi"
	"github.com/goliatone/go-formbind/pkg/renderers/terminal"
	"github.com/goliatone/go-formbind/pkg/renderers/tui"
)

func main() {
	opID := flag.String("operation", "", "operation ID to bind")
	source := flag.String("source", "", "OpenAPI document path or URL")
	configPath := flag.String("config", "", "binding config file (toml, json or yaml)")
	watch := flag.Bool("watch", false, "reload the config file while the form is open")
	format := flag.String("format", string(tui.OutputFormatJSON), "output format: json, form or pretty")
	ui := flag.String("ui", "prompt", "interface: prompt or screen")
	output := flag.String("output", "", "output file (stdout if empty)")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address")
	verbose := flag.Bool("v", false, "debug logging on stderr")
	flag.Parse()

	if *opID == "" || *source == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	src, err := parseSource(*source)
	if err != nil {
		log.Fatalf("invalid source: %v", err)
	}

	cfg := config.DefaultConfig()
	var loader *config.Loader
	if *configPath != "" {
		loader = config.NewLoader(*configPath, config.WithLogger(logger))
		if cfg, err = loader.Load(); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		defer loader.Close()
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	opts := []binder.Option{
		binder.WithLogger(logger),
		binder.WithConfig(cfg),
		binder.WithMetrics(m),
	}

	var payload []byte
	switch *ui {
	case "prompt":
		payload, err = runPrompt(ctx, src, *opID, opts, loader, *watch, tui.OutputFormat(*format), logger)
	case "screen":
		payload, err = runScreen(ctx, src, *opID, opts, loader, *watch, tui.OutputFormat(*format), logger)
	default:
		log.Fatalf("unknown ui %q", *ui)
	}
	if err != nil {
		log.Fatalf("Failed to collect form: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, payload, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Payload written to %s\n", *output)
		return
	}
	fmt.Println(string(payload))
}

func runPrompt(ctx context.Context, src openapi.Source, opID string, opts []binder.Option, loader *config.Loader, watch bool, format tui.OutputFormat, logger *slog.Logger) ([]byte, error) {
	session, err := binder.New(opts...).BindOperation(ctx, src, opID)
	if err != nil {
		return nil, err
	}
	defer session.Close()
	if err := watchConfig(session, loader, watch, logger); err != nil {
		return nil, err
	}

	runner := tui.New(
		tui.WithOutputFormat(format),
		tui.WithLogger(logger),
		tui.WithTheme(tui.Theme{ErrorPrefix: "✗ "}),
	)
	return runner.Run(ctx, session)
}

func runScreen(ctx context.Context, src openapi.Source, opID string, opts []binder.Option, loader *config.Loader, watch bool, format tui.OutputFormat, logger *slog.Logger) ([]byte, error) {
	view := terminal.NewView()
	session, err := binder.New(append(opts, binder.WithRenderer(view))...).BindOperation(ctx, src, opID)
	if err != nil {
		return nil, err
	}
	defer session.Close()
	session.Drain()
	if err := watchConfig(session, loader, watch, logger); err != nil {
		return nil, err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnablePaste()

	app, err := terminal.NewApp(screen, session, view, terminal.WithAppLogger(logger))
	if err != nil {
		screen.Fini()
		return nil, err
	}
	values, err := app.Run(ctx)
	screen.Fini()
	if err != nil {
		return nil, err
	}
	return tui.Encode(format, values)
}

func watchConfig(session *binder.Session, loader *config.Loader, watch bool, logger *slog.Logger) error {
	if loader == nil || !watch {
		return nil
	}
	session.Watch(loader)
	if err := loader.Watch(); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	go func() {
		for err := range loader.Errors() {
			logger.Warn("config reload failed", "error", err)
		}
	}()
	return nil
}

func parseSource(raw string) (openapi.Source, error) {
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil, errors.New("source is empty")
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return openapi.SourceFromURL(path)
	}
	return openapi.SourceFromFile(path), nil
}
