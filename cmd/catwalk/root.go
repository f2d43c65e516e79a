package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"

	"github.com/thebtf/catwalk/internal/config"
	dbgorm "github.com/thebtf/catwalk/internal/db/gorm"
	"github.com/thebtf/catwalk/internal/walker"
)

type rootOptions struct {
	dbPath string
	debug  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "catwalk",
		Short: "Track when your cats are out for a walk",
		Long: `catwalk records cats and their walks in a local SQLite database.
Use "serve" for the web form, "tui" for the terminal UI, or the one-shot
subcommands for scripting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), opts.debug)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to the SQLite database (default: ~/.catwalk/catwalk.db)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		newServeCmd(opts),
		newTUICmd(opts),
		newAddCmd(opts),
		newStartCmd(opts),
		newStopCmd(opts),
		newStatusCmd(opts),
		newHistoryCmd(opts),
		newResetCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func setupLogging(w io.Writer, debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, NoColor: true})
}

// app bundles the open store and the service built on it.
type app struct {
	cfg   *config.Config
	store *dbgorm.Store
	svc   *walker.Service
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close store")
	}
}

// openApp loads configuration and opens the store. A store that cannot be
// opened is fatal.
func openApp(opts *rootOptions) *app {
	if err := config.EnsureAll(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure data directories")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load settings")
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}

	level := logger.Silent
	if cfg.Debug && !opts.debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if opts.debug || cfg.Debug {
		level = logger.Info
	}
	store, err := dbgorm.NewStore(dbgorm.Config{
		Path:     cfg.DBPath,
		MaxConns: cfg.MaxConns,
		LogLevel: level,
	})
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open store")
	}
	log.Debug().Str("path", cfg.DBPath).Msg("Store opened")

	return &app{cfg: cfg, store: store, svc: walker.NewService(store)}
}

// userError replaces domain errors with their user-facing sentence.
func userError(err error) error {
	if msg, ok := walker.ErrorMessage(err); ok {
		return errors.New(msg)
	}
	return err
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
