package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thebtf/catwalk/internal/watcher"
	"github.com/thebtf/catwalk/internal/web"
)

var errStoreLost = errors.New("database file was removed")

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web form and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := openApp(opts)
			defer a.Close()

			if addr == "" {
				addr = a.cfg.HTTPAddr
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from settings, 127.0.0.1:38111)")
	return cmd
}

// serve runs the web server until ctx ends or the database file disappears.
func serve(ctx context.Context, a *app, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var lost atomic.Bool
	w, err := watcher.New(a.cfg.DBPath, func(path string) {
		log.Error().Str("path", path).Msg("Database file removed, shutting down")
		lost.Store(true)
		cancel()
	})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		log.Warn().Err(err).Str("path", a.cfg.DBPath).Msg("Failed to watch database file")
	}
	defer func() { _ = w.Stop() }()

	srv := web.NewServer(a.svc, a.store, Version)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return err
	}
	if lost.Load() {
		return errStoreLost
	}
	log.Info().Msg("Server stopped")
	return nil
}
