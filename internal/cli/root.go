// Package cli implements the ai-chat commands.
package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"aichat/internal/chat"
	"aichat/internal/config"
	"aichat/internal/credentials"
	"aichat/internal/metrics"
	"aichat/internal/prompt"
	"aichat/internal/ui"
)

// App carries the collaborators shared by every command. Zero fields are
// filled with the terminal defaults by NewRootCommand.
type App struct {
	Prompter prompt.Prompter
	Out      io.Writer
	ErrOut   io.Writer
	Theme    *ui.Theme
	Metrics  *metrics.Metrics

	// OpenStore replaces the backend selected by store.backend.
	OpenStore func(ctx context.Context, cfg *config.Config) (credentials.Store, func() error, error)
	// NewSender replaces the HTTP chat adapter.
	NewSender func(cfg *config.Config, provider, apiKey, model string) chat.Sender

	cfg    *config.Config
	logger zerolog.Logger
}

var persistentFlags = map[string]string{
	"log-level":    "log.level",
	"log-format":   "log.format",
	"settings":     "settings",
	"store":        "store.backend",
	"store-path":   "store.path",
	"store-dsn":    "store.dsn",
	"metrics-file": "metrics.file",
}

func NewRootCommand(app *App) *cobra.Command {
	if app.Prompter == nil {
		app.Prompter = prompt.Terminal{}
	}
	if app.Out == nil {
		app.Out = os.Stdout
	}
	if app.ErrOut == nil {
		app.ErrOut = os.Stderr
	}
	if app.Theme == nil {
		th := ui.Default()
		app.Theme = &th
	}
	if app.Metrics == nil {
		app.Metrics = metrics.Global()
	}
	if app.OpenStore == nil {
		app.OpenStore = openStore
	}
	if app.NewSender == nil {
		app.NewSender = app.newAdapter
	}

	v := config.NewViper()
	root := &cobra.Command{
		Use:           "ai-chat",
		Short:         "Chat with LLM providers from the terminal",
		Long:          "ai-chat stores API credentials for several LLM providers and runs an interactive chat with a chosen provider and model.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(v)
		},
	}
	root.SetOut(app.Out)
	root.SetErr(app.ErrOut)

	pf := root.PersistentFlags()
	pf.String("log-level", "", "log level: debug, info, warn, error (default warn)")
	pf.String("log-format", "", "log format: console or json")
	pf.String("settings", "", "settings file (default <config dir>/ai-chat/settings.yaml)")
	pf.String("store", "", "credential store backend: file, sqlite, postgres, redis")
	pf.String("store-path", "", "credential file path for the file backend")
	pf.String("store-dsn", "", "database DSN for the sqlite and postgres backends")
	pf.String("metrics-file", "", "write prometheus metrics to this textfile on exit")
	for flag, key := range persistentFlags {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(newConfigCommand(app))
	root.AddCommand(newChatCommand(app))
	root.AddCommand(newProvidersCommand(app))
	return root
}

func (a *App) init(v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(a.ErrOut, cfg.Log)
	log.Logger = a.logger
	a.logger.Debug().
		Str("store", cfg.Store.Backend).
		Bool("sealed", cfg.Crypto.Enabled()).
		Msg("configuration loaded")
	return nil
}

// flushMetrics writes the textfile when metrics.file is set. Failures are
// logged, never returned.
func (a *App) flushMetrics() {
	if a.cfg == nil || a.cfg.Metrics.File == "" {
		return
	}
	if err := a.Metrics.WriteTextfile(a.cfg.Metrics.File); err != nil {
		a.logger.Error().Err(err).Str("path", a.cfg.Metrics.File).Msg("failed to write metrics")
	}
}

func newLogger(w io.Writer, cfg config.LogConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(parseLogLevel(cfg.Level))
	if cfg.Format == config.LogFormatJSON {
		return zerolog.New(w).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
}

func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}
