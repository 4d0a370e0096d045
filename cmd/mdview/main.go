// Command mdview renders Markdown documents in the terminal.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gdamore/tcell/v2"
	"gopkg.in/yaml.v3"

	"github.com/kk-code-lab/mdview/internal/imagefetch"
	"github.com/kk-code-lab/mdview/internal/logging"
	"github.com/kk-code-lab/mdview/internal/markdown"
	"github.com/kk-code-lab/mdview/internal/render"
	"github.com/kk-code-lab/mdview/internal/source"
	"github.com/kk-code-lab/mdview/internal/viewer"
)

// CLI defines the command-line interface for mdview.
type CLI struct {
	Globals

	View   ViewCmd   `cmd:"" default:"withargs" help:"Open a document in the terminal viewer"`
	Render RenderCmd `cmd:"" help:"Print a document as wrapped plain text"`
	Dump   DumpCmd   `cmd:"" help:"Print the segmented block structure"`
}

// Globals are flags shared by every command.
type Globals struct {
	LogLevel  logging.Level  `name:"log-level" enum:"debug,info,warn,error" default:"warn" env:"MDVIEW_LOG_LEVEL" help:"Log level (${enum})"`
	LogFormat logging.Format `name:"log-format" enum:"text,json" default:"text" env:"MDVIEW_LOG_FORMAT" help:"Log format (${enum})"`
	LogFile   string         `name:"log-file" type:"path" env:"MDVIEW_LOG_FILE" help:"Write logs to this file instead of stderr"`
	MaxSize   int64          `name:"max-size" default:"8388608" env:"MDVIEW_MAX_SIZE" help:"Largest accepted document in bytes"`
}

// cmdEnv carries process-level collaborators into command Run methods.
type cmdEnv struct {
	ctx        context.Context
	stdout     io.Writer
	logger     *slog.Logger
	openScreen func() (tcell.Screen, error)
}

func (g *Globals) load(ctx context.Context, rt *cmdEnv, location string) (source.Source, error) {
	return source.Load(ctx, location, source.Options{MaxSize: g.MaxSize, Logger: rt.logger})
}

// ViewCmd opens the interactive viewer.
type ViewCmd struct {
	Location     string        `arg:"" help:"File path or http(s) URL of the document"`
	NoImages     bool          `name:"no-images" env:"MDVIEW_NO_IMAGES" help:"Do not fetch images"`
	ImageWorkers int           `name:"image-workers" default:"4" env:"MDVIEW_IMAGE_WORKERS" help:"Concurrent image fetches"`
	ImageTimeout time.Duration `name:"image-timeout" default:"10s" env:"MDVIEW_IMAGE_TIMEOUT" help:"Timeout for a single image fetch"`
	HideURLs     bool          `name:"hide-urls" help:"Do not print link targets after link text"`
}

func (c *ViewCmd) Run(g *Globals, rt *cmdEnv) error {
	src, err := g.load(rt.ctx, rt, c.Location)
	if err != nil {
		return err
	}
	if c.ImageWorkers < 1 {
		return fmt.Errorf("--image-workers must be at least 1, got %d", c.ImageWorkers)
	}

	cfg := viewer.Config{
		HideLinkURLs: c.HideURLs,
		Commands:     viewer.DetectCommands(),
		Logger:       rt.logger,
		Reload: func(ctx context.Context) (source.Source, error) {
			return g.load(ctx, rt, c.Location)
		},
	}
	if !c.NoImages {
		cfg.Fetcher = imagefetch.New(imagefetch.Config{
			Workers: c.ImageWorkers,
			Timeout: c.ImageTimeout,
			Logger:  rt.logger,
		})
	}

	screen, err := rt.openScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer screen.Fini()

	err = viewer.New(screen, src, cfg).Run(rt.ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// RenderCmd prints the rendered document without styling.
type RenderCmd struct {
	Location string `arg:"" help:"File path or http(s) URL of the document"`
	Width    int    `default:"80" env:"MDVIEW_WIDTH" help:"Wrap width in cells, 0 disables wrapping"`
	HideURLs bool   `name:"hide-urls" help:"Do not print link targets after link text"`
}

func (c *RenderCmd) Run(g *Globals, rt *cmdEnv) error {
	if c.Width < 0 {
		return fmt.Errorf("--width must not be negative, got %d", c.Width)
	}
	src, err := g.load(rt.ctx, rt, c.Location)
	if err != nil {
		return err
	}
	lines := render.Lines(markdown.Segment(src.Text), render.Options{
		Width:        c.Width,
		HideLinkURLs: c.HideURLs,
	})
	for _, line := range render.PlainText(lines) {
		if _, err := fmt.Fprintln(rt.stdout, line); err != nil {
			return err
		}
	}
	return nil
}

// DumpCmd prints the block records of a document.
type DumpCmd struct {
	Location string `arg:"" help:"File path or http(s) URL of the document"`
	Format   string `short:"f" enum:"json,yaml" default:"json" help:"Output format (${enum})"`
}

func (c *DumpCmd) Run(g *Globals, rt *cmdEnv) error {
	src, err := g.load(rt.ctx, rt, c.Location)
	if err != nil {
		return err
	}
	doc := markdown.Segment(src.Text)

	switch c.Format {
	case "yaml":
		enc := yaml.NewEncoder(rt.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(doc.Records()); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(rt.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

func openTerminal() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}

type exitStatus int

// run parses args and executes the selected command. It returns the process
// exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, openScreen func() (tcell.Screen, error)) (code int) {
	defer func() {
		if r := recover(); r != nil {
			status, ok := r.(exitStatus)
			if !ok {
				panic(r)
			}
			code = int(status)
		}
	}()

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("mdview"),
		kong.Description("Terminal Markdown viewer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Writers(stdout, stderr),
		kong.Exit(func(status int) { panic(exitStatus(status)) }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "mdview: %v\n", err)
		return 2
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		return 2
	}

	logOut := stderr
	if cli.LogFile != "" {
		f, err := os.OpenFile(cli.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(stderr, "mdview: open log file: %v\n", err)
			return 1
		}
		defer f.Close()
		logOut = f
	}

	rt := &cmdEnv{
		ctx:        ctx,
		stdout:     stdout,
		logger:     logging.New(logOut, cli.LogLevel, cli.LogFormat),
		openScreen: openScreen,
	}
	if err := kctx.Run(&cli.Globals, rt); err != nil {
		rt.logger.Debug("command failed", "command", kctx.Command(), "err", err)
		fmt.Fprintf(stderr, "mdview: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	// UTF-8 fallback keeps non-ASCII text intact on terminals without a charset.
	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, openTerminal)
	stop()
	os.Exit(code)
}
