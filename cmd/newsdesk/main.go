package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/umputun/newsdesk/pkg/config"
	"github.com/umputun/newsdesk/pkg/generate"
	"github.com/umputun/newsdesk/pkg/journal"
	"github.com/umputun/newsdesk/pkg/remote"
	"github.com/umputun/newsdesk/server"
)

// Opts with all CLI options
type Opts struct {
	Config    string `short:"c" long:"config" env:"CONFIG" description:"path to yaml config file"`
	Listen    string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`
	Remote    string `short:"r" long:"remote" env:"REMOTE_URL" description:"news store url, overrides config"`
	Webhook   string `long:"webhook" env:"WEBHOOK_URL" description:"generation webhook url, overrides config"`
	DB        string `long:"db" env:"DB" description:"activity journal dsn, overrides config"`
	NoJournal bool   `long:"no-journal" env:"NO_JOURNAL" description:"disable activity journal"`

	Log struct {
		File       string `long:"file" env:"FILE" description:"log file, stdout only if empty"`
		MaxSize    int    `long:"max-size" env:"MAX_SIZE" default:"100" description:"max log file size in MB"`
		MaxBackups int    `long:"max-backups" env:"MAX_BACKUPS" default:"7" description:"max number of rotated log files"`
		MaxAge     int    `long:"max-age" env:"MAX_AGE" default:"30" description:"max age of rotated log files in days"`
	} `group:"log" namespace:"log" env-namespace:"LOG"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	closeLog := SetupLog(opts)
	defer closeLog()
	log.Printf("[INFO] starting newsdesk version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		closeLog()
		os.Exit(1) //nolint:gocritic // closeLog called explicitly
	}
	log.Print("[INFO] shutdown complete")
}

// run wires the store client, generator, journal and server, and blocks until ctx is canceled
func run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store := remote.NewClient(cfg.Remote.URL, cfg.Remote.Timeout)
	deps := server.Deps{Config: cfg, Store: store, Version: revision, Debug: opts.Debug}

	if cfg.Generator.WebhookURL != "" {
		deps.Generator = generate.NewWebhook(cfg.Generator.WebhookURL, cfg.Generator.Timeout)
	} else {
		log.Printf("[INFO] generation webhook is not configured, generate is disabled")
	}

	if !opts.NoJournal {
		jrnl, err := journal.New(ctx, journal.Config{DSN: cfg.Journal.DSN, Keep: cfg.Journal.Keep})
		if err != nil {
			return fmt.Errorf("failed to open activity journal: %w", err)
		}
		defer func() {
			if err := jrnl.Close(); err != nil {
				log.Printf("[WARN] can't close activity journal: %v", err)
			}
		}()
		if n, err := jrnl.Prune(ctx, cfg.Journal.Keep); err != nil {
			log.Printf("[WARN] can't prune activity journal: %v", err)
		} else if n > 0 {
			log.Printf("[DEBUG] pruned %d journal entries", n)
		}
		deps.Journal = jrnl
	}

	srv, err := server.New(deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	log.Printf("[INFO] news store %s, page %q", cfg.Remote.URL, cfg.Server.PageTitle)
	return srv.Run(ctx)
}

// loadConfig reads the config file, or makes the default one from the remote url, then applies cli overrides
func loadConfig(opts Opts) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.Config != "" {
		cfg, err = config.Load(opts.Config)
	} else {
		cfg, err = config.Default(opts.Remote)
	}
	if err != nil {
		return nil, err
	}

	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	if opts.Remote != "" {
		cfg.Remote.URL = opts.Remote
	}
	if opts.Webhook != "" {
		cfg.Generator.WebhookURL = opts.Webhook
	}
	if opts.DB != "" {
		cfg.Journal.DSN = opts.DB
	}
	return cfg, nil
}

// SetupLog configures lgr and the std logger, logs are also written to a rotated file if set.
// The returned func closes the file.
func SetupLog(opts Opts, secs ...string) func() {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	if opts.Debug {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	closer := func() {}
	if opts.Log.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   opts.Log.File,
			MaxSize:    opts.Log.MaxSize,
			MaxBackups: opts.Log.MaxBackups,
			MaxAge:     opts.Log.MaxAge,
			Compress:   true,
		}
		closer = func() { _ = fileWriter.Close() }
		logOpts = append(logOpts, lgr.Out(io.MultiWriter(os.Stdout, fileWriter)), lgr.Err(io.MultiWriter(os.Stderr, fileWriter)))
	}

	// no escape codes in the log file
	if opts.NoColor || opts.Log.File != "" {
		color.NoColor = true
	} else {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}

	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
	return closer
}
