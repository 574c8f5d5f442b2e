package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirasaad/currency-converter/infra/initializer"
	"github.com/amirasaad/currency-converter/internal/cli"
	"github.com/amirasaad/currency-converter/pkg/app"
	"github.com/amirasaad/currency-converter/pkg/config"
	"github.com/fatih/color"
	"golang.org/x/term"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load(".env")
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "failed to load configuration: %v\n", err) //nolint:errcheck
		return cli.ExitFailure
	}

	deps, err := initializer.InitializeDependencies(cfg, os.Stderr)
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "failed to initialize dependencies: %v\n", err) //nolint:errcheck
		return cli.ExitFailure
	}

	a := app.New(deps, cfg)
	defer func() {
		if err := a.Close(); err != nil {
			deps.Logger.Warn("Failed to close store", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	useColor := term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""
	return cli.New(a, os.Stdout, os.Stderr, useColor).Run(ctx, args)
}
