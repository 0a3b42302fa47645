package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/erroneousboat/slackarchive-term/components"
	"github.com/erroneousboat/slackarchive-term/config"
	"github.com/erroneousboat/slackarchive-term/context"
)

const VERSION = "v0.6.0"

const USAGE = `NAME:
    slackarchive-term - browse a Slack archive in your terminal

USAGE:
    slackarchive-term [-config path] [-url url] [-team domain] [-open path-or-url]

VERSION:
    %s

GLOBAL OPTIONS:
`

var (
	flgConfig  string
	flgURL     string
	flgTeam    string
	flgOpen    string
	flgDebug   bool
	flgVersion bool
)

func init() {
	flag.StringVar(&flgConfig, "config", config.DefaultPath(), "location of config file")
	flag.StringVar(&flgURL, "url", "", "archive server url, overrides the config file")
	flag.StringVar(&flgTeam, "team", "", "team domain, overrides the config file")
	flag.StringVar(&flgOpen, "open", "", "archive path or front-end URL to open, e.g. /general/page-2/ts-1490000000.000100")
	flag.BoolVar(&flgDebug, "debug", false, "turn on debugging")
	flag.BoolVar(&flgVersion, "version", false, "print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, USAGE, VERSION)
		flag.PrintDefaults()
	}
}

// initLogging sends the global logger to a file in the cache directory, and
// to the debug pane when debugging.
func initLogging(debug bool, pane io.Writer) (io.Closer, error) {
	dir, err := config.CacheDir()
	if err != nil {
		return nil, err
	}

	// Truncate on startup
	logFile, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// The TUI owns stdout and stderr.
	var w io.Writer = logFile
	if debug && pane != nil {
		w = zerolog.MultiLevelWriter(logFile, zerolog.ConsoleWriter{
			Out:        pane,
			NoColor:    true,
			TimeFormat: "15:04:05",
		})
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()

	return logFile, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flgConfig)
	if err != nil {
		return nil, err
	}
	if flgURL != "" {
		cfg.Archive.URL = flgURL
	}
	if flgTeam != "" {
		cfg.Archive.Team = flgTeam
	}
	return cfg, cfg.Validate()
}

func main() {
	flag.Parse()

	if flgVersion {
		fmt.Println(VERSION)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	debug := components.NewDebug(1, 1)
	logFile, err := initLogging(flgDebug, debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}
	defer logFile.Close()

	log.Info().Str("version", VERSION).Str("url", cfg.Archive.URL).Msg("starting slackarchive-term")

	ctx, err := context.CreateAppContext(cfg, debug, flgDebug)
	if err != nil {
		log.Error().Err(err).Msg("failed to create app context")
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	m, err := initialModel(ctx, flgOpen)
	if err != nil {
		ctx.Close()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	ctx.Start()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	ctx.Close()

	if err != nil {
		log.Error().Err(err).Msg("program exited with error")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
