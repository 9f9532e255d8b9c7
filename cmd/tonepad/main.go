package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jeanpaul/tonepad/internal/config"
	"github.com/jeanpaul/tonepad/internal/headless"
	"github.com/jeanpaul/tonepad/internal/health"
	"github.com/jeanpaul/tonepad/internal/history"
	"github.com/jeanpaul/tonepad/internal/session"
	"github.com/jeanpaul/tonepad/internal/store"
	"github.com/jeanpaul/tonepad/internal/tone"
	"github.com/jeanpaul/tonepad/internal/tui"
)

// set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configFlag := flag.String("config", "", "Path to config file")
	backendFlag := flag.String("backend", "", "Tone backend (http, openai, anthropic)")
	storeFlag := flag.String("store", "", "Store backend (file, redis, postgres, memory)")
	ephemeralFlag := flag.Bool("ephemeral", false, "Keep the buffer in memory only")
	versionFlag := flag.Bool("version", false, "Print version")
	helpFlag := flag.Bool("help", false, "Show help")
	flag.BoolVar(helpFlag, "h", false, "Show help")

	flag.Usage = showHelp
	flag.Parse()

	if *helpFlag {
		showHelp()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("tonepad %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) > 0 {
		switch args[0] {
		case "help":
			showHelp()
			return
		case "init":
			cmdInit(*configFlag, len(args) > 1 && args[1] == "--force")
			return
		}
	}

	cfg, err := loadConfig(*configFlag, *backendFlag, *storeFlag, *ephemeralFlag)
	if err != nil {
		fatal("%s", err)
	}

	if len(args) > 0 && args[0] == "doctor" {
		cmdDoctor(cfg, *configFlag)
		return
	}
	if len(args) > 0 && !headless.IsCommand(args[0]) {
		fatal("unknown command %q (run 'tonepad help')", args[0])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, closeLog := openLog(cfg.LogFile)
	defer closeLog()

	d, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		fatal("store: %s", err)
	}
	defer d.Close()

	ss := store.NewSessionStore(d, cfg.History.MaxDepth)
	m := history.New(ss.LoadState(), ss, history.WithMaxDepth(cfg.History.MaxDepth))

	tr, err := tone.New(cfg.Tone)
	if err != nil {
		fatal("%s", err)
	}
	sess := session.Open(m, tr, logger)

	if len(args) > 0 {
		r := &headless.Runner{Session: sess, Out: os.Stdout, In: os.Stdin}
		if err := r.Run(ctx, args); err != nil {
			if errors.Is(err, headless.ErrUsage) {
				fmt.Fprintln(os.Stderr, tui.HelpStyle.Render(err.Error()))
				os.Exit(2)
			}
			fatal("%s", err)
		}
		return
	}

	if err := tui.Run(sess, cfg.Tone.Backend); err != nil {
		fatal("%s", err)
	}
}

// loadConfig reads the config file then applies the command-line overrides.
func loadConfig(path, backend, storeBackend string, ephemeral bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if backend != "" {
		cfg.Tone.Backend = backend
	}
	if storeBackend != "" {
		cfg.Store.Backend = storeBackend
	}
	if ephemeral {
		cfg.Store.Backend = config.StoreMemory
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openLog appends to path. Logging is best effort: if the file cannot be
// opened the logger writes nowhere.
func openLog(path string) (*log.Logger, func()) {
	if path == "" {
		return log.New(io.Discard, "", 0), func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return log.New(io.Discard, "", 0), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return log.New(io.Discard, "", 0), func() {}
	}
	return log.New(f, "tonepad: ", log.LstdFlags), func() { f.Close() }
}

func cmdInit(path string, force bool) {
	if path == "" {
		path = config.Path()
	}
	if err := config.Save(path, config.DefaultConfig(), force); err != nil {
		fatal("%s", err)
	}
	fmt.Println(tui.BannerStyle.Render("✓ Wrote " + path))
}

func cmdDoctor(cfg *config.Config, path string) {
	fmt.Println(tui.GradientTitle(0) + "  " + tui.BannerStyle.Render("health check"))
	fmt.Println()

	ctx := context.Background()
	toneOK := true

	fmt.Printf("  %s %s ... ", tui.KeyStyle.Render("●"), tui.LabelStyle.Render("tone ("+cfg.Tone.Backend+")"))
	status := health.Check(ctx, cfg.Tone)
	if status.Reachable {
		models := ""
		if len(status.Models) > 0 {
			models = fmt.Sprintf(" (%d models)", len(status.Models))
		}
		fmt.Printf("%s%s %s\n",
			tui.BannerStyle.Render("✓ OK"),
			tui.HelpStyle.Render(models),
			tui.HelpStyle.Render(status.Latency.Round(time.Millisecond).String()),
		)
	} else {
		toneOK = false
		fmt.Println(tui.ErrorStyle.Render("✗ " + status.Error))
	}

	fmt.Printf("  %s %s ... ", tui.KeyStyle.Render("●"), tui.LabelStyle.Render("store ("+cfg.Store.Backend+")"))
	ss := health.CheckStore(ctx, cfg.Store)
	if ss.OK {
		fmt.Printf("%s %s\n", tui.BannerStyle.Render("✓ OK"), tui.HelpStyle.Render(ss.Latency.Round(time.Millisecond).String()))
	} else {
		// the editor still runs with a broken store, it just forgets on exit
		fmt.Println(tui.HelpStyle.Render("- " + ss.Error + " (buffer will not persist)"))
	}

	fmt.Printf("  %s %s ... ", tui.KeyStyle.Render("●"), tui.LabelStyle.Render("config"))
	if path == "" {
		path = config.Path()
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Println(tui.BannerStyle.Render("✓ " + path))
	} else {
		fmt.Println(tui.HelpStyle.Render("- Using defaults (run 'tonepad init' to create " + path + ")"))
	}

	fmt.Println()
	if toneOK {
		fmt.Println(tui.BannerStyle.Render("  Ready to rewrite."))
		return
	}
	fmt.Println(tui.ErrorStyle.Render("  Tone backend is unreachable."))
	if cfg.Tone.Backend == config.ToneHTTP {
		fmt.Println(tui.HelpStyle.Render("  Start the tone service at " + cfg.Tone.BaseURL + " or pick another backend with --backend"))
	}
	os.Exit(1)
}

func fatal(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("error: "+msg))
	os.Exit(1)
}

func showHelp() {
	help := `
` + tui.BannerStyle.Render("tonepad") + ` - rewrite text in another tone, with undo

` + tui.LabelStyle.Render("USAGE:") + `
  tonepad [flags]                   Open the editor
  tonepad [flags] <command> [args]  Run one command and exit

` + tui.LabelStyle.Render("COMMANDS:") + `
  show [--render]                   Print the buffer
  set <text|->                      Replace the buffer (undoable)
  type <text|->                     Replace the buffer without a checkpoint
  undo                              Step back and print the buffer
  redo                              Step forward and print the buffer
  reset                             Clear the buffer and its history
  adjust <tone>                     Rewrite the buffer (formal_concise, formal_elaborate,
                                    casual_concise, casual_elaborate)
  adjust --formality F --verbosity V
  diff                              Show what the last change did
  status                            Show buffer size and history depth
  open <path|url>                   Load text, Markdown, HTML, PDF, Excel or a web page
  export <path>                     Write a JSON snapshot of buffer and history
  import <path>                     Restore a snapshot
  doctor                            Check the tone backend and the store
  init [--force]                    Write a default config file
  help                              Show this help

` + tui.LabelStyle.Render("FLAGS:") + `
  --config <path>                   Use a specific config file
  --backend <name>                  Tone backend (http, openai, anthropic)
  --store <name>                    Store backend (file, redis, postgres, memory)
  --ephemeral                       Do not persist the buffer
  --version                         Show version
  --help, -h                        Show this help

` + tui.LabelStyle.Render("KEYS:") + `
  F1-F4                             Rewrite with a tone preset
  Ctrl+T                            Pick a tone from a list
  Ctrl+Z / Ctrl+Y                   Undo / redo
  Ctrl+R                            Reset buffer and history
  Ctrl+P                            Toggle Markdown preview
  Esc                               Dismiss an error
  Ctrl+C                            Quit
`
	fmt.Println(help)
}
