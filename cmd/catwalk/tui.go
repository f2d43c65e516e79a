package main

import (
	"errors"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thebtf/catwalk/internal/config"
	"github.com/thebtf/catwalk/internal/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := openApp(opts)
			defer a.Close()

			// The alternate screen owns the terminal, so logs go to a file.
			logFile, err := os.OpenFile(filepath.Join(config.DataDir(), "tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err == nil {
				defer logFile.Close()
				log.Logger = log.Output(zerolog.ConsoleWriter{Out: logFile, NoColor: true})
			} else {
				zerolog.SetGlobalLevel(zerolog.Disabled)
			}

			err = tui.Run(commandContext(cmd), a.svc)
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}
}
