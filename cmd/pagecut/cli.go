package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/pagecut"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Service pagecut.ReadingService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Pipeline PipelineFlags `embed:""`
	Verbose  bool          `short:"v" help:"Log debug output"`

	Extract ExtractCmd `cmd:"" help:"Read a page and write its outputs to a directory"`
	Serve   ServeCmd   `cmd:"" help:"Serve the web UI"`
}

// PipelineFlags configure the fetch, extract and export pipeline shared by
// every command.
type PipelineFlags struct {
	Browser      string        `default:"rod" enum:"rod,chromedp,http" help:"Page fetcher (${enum})"`
	Timeout      time.Duration `default:"60s" help:"Timeout for one fetch, gateway included"`
	Gateway      string        `default:"${default_gateway}" env:"PAGECUT_GATEWAY" help:"Page visited before every target, empty to skip (${default})"`
	GatewayPause time.Duration `default:"3s" help:"Time spent on the gateway page"`
	Rules        string        `type:"existingfile" help:"YAML file overriding the extraction rules"`
	Font         string        `type:"existingfile" env:"PAGECUT_FONT" help:"TrueType font embedded in PDF output"`
	Fallback     string        `default:"none" enum:"none,readability,trafilatura" help:"Extractor used when no content block is found (${enum})"`
	Format       []string      `default:"docx,pdf,md" enum:"docx,pdf,md" help:"Download formats"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL string `arg:"" help:"Article URL"`
	Out string `short:"o" default:"." type:"path" help:"Output directory"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:"127.0.0.1:8080" help:"Listen address"`
}
