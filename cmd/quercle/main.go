package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"quercle-tools/internal/adapter/mcpserver"
	"quercle-tools/internal/adapter/tool"
	"quercle-tools/internal/domain"
	"quercle-tools/internal/infra/config"
	"quercle-tools/internal/infra/logger"
	"quercle-tools/internal/infra/tracer"
	"quercle-tools/internal/quercle"
)

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "--help", "-h", "help":
		showUsage()
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "serve: %v\n", err)
			os.Exit(1)
		}
	case "call":
		if err := runCall(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "call: %v\n", err)
			os.Exit(1)
		}
	case "tools":
		if err := runTools(); err != nil {
			fmt.Fprintf(os.Stderr, "tools: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		showUsage()
		os.Exit(2)
	}
}

func showUsage() {
	fmt.Print(`quercle - Quercle web search and fetch tools for agent frameworks

Usage:
  quercle serve              Serve the tools over MCP (stdio or sse)
  quercle call <tool> <json> Invoke one tool with JSON arguments
  quercle tools              List tool schemas as JSON

Configuration is read from quercle.yaml (override with QUERCLE_CONFIG) and
QUERCLE_* environment variables; the API key comes from api.api_key or
QUERCLE_API_KEY.
`)
}

// setup loads configuration and builds the logger, registry, and tracing.
// Environment lookup happens here, once, never mid-call.
func setup(ctx context.Context) (*config.Config, *slog.Logger, *tool.Registry, func(), error) {
	path := os.Getenv("QUERCLE_CONFIG")
	if path == "" {
		path = "quercle.yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, nil, domain.WrapOp("load config", err)
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, nil, nil, domain.WrapOp("init logger", err)
	}

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		closeLog()
		return nil, nil, nil, nil, domain.WrapOp("init tracer", err)
	}

	client := quercle.NewClient(cfg.API, log)
	reg := tool.NewRegistry(log)
	for _, a := range tool.NewAdapters(client, log) {
		if err := reg.Register(a); err != nil {
			closeLog()
			return nil, nil, nil, nil, domain.WrapOp("register tool", err)
		}
	}

	cleanup := func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
		closeLog()
	}
	return cfg, log, reg, cleanup, nil
}

func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, reg, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := mcpserver.New(cfg.Server, reg, log)
	return srv.Serve(ctx)
}

func runCall(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: quercle call <tool> [json-arguments]")
	}
	name := args[0]
	params := json.RawMessage(`{}`)
	if len(args) > 1 {
		params = json.RawMessage(args[1])
	}

	ctx := context.Background()
	_, _, reg, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	t, err := reg.Get(name)
	if err != nil {
		return err
	}

	result, err := t.Execute(ctx, params)
	if err != nil {
		return err
	}
	if result.IsError {
		return fmt.Errorf("%s", result.Content)
	}
	fmt.Println(result.Content)
	return nil
}

func runTools() error {
	ctx := context.Background()
	_, _, reg, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	out, err := json.MarshalIndent(reg.Schemas(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
