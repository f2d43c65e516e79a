package main

import (
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the catwalk version",
		Run: func(cmd *cobra.Command, args []string) {
			printf(cmd, "catwalk version %s\n", Version)
		},
	}
}
