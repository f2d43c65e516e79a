package main

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thebtf/catwalk/internal/walker"
)

func newResetCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all cats and walks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd, "Delete all cats and walks? [y/N] ") {
				printf(cmd, "Aborted.\n")
				return nil
			}

			a := openApp(opts)
			defer a.Close()

			if err := a.svc.Reset(commandContext(cmd)); err != nil {
				return err
			}
			printf(cmd, "%s\n", walker.MsgReset)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func confirm(cmd *cobra.Command, prompt string) bool {
	printf(cmd, "%s", prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
