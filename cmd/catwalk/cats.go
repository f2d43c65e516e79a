package main

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thebtf/catwalk/internal/walker"
	"github.com/thebtf/catwalk/pkg/models"
)

func newAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Register a new cat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := openApp(opts)
			defer a.Close()

			cat, err := a.svc.RegisterCat(commandContext(cmd), args[0])
			if errors.Is(err, models.ErrDuplicateName) {
				printf(cmd, "%s\n", walker.MsgDuplicate)
				return nil
			}
			if err != nil {
				return userError(err)
			}
			printf(cmd, "%s\n", walker.AddedMessage(cat.Name))
			return nil
		},
	}
}

func newStartCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "start <name|id>",
		Short: "Mark a cat as out walking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setWalking(cmd, opts, args[0], true)
		},
	}
}

func newStopCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <name|id>",
		Short: "Mark a cat as back home",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setWalking(cmd, opts, args[0], false)
		},
	}
}

func setWalking(cmd *cobra.Command, opts *rootOptions, ref string, walking bool) error {
	a := openApp(opts)
	defer a.Close()
	ctx := commandContext(cmd)

	cat, err := a.svc.Lookup(ctx, ref)
	if err != nil {
		return userError(err)
	}
	tr, err := a.svc.ToggleWalk(ctx, cat.ID, walking)
	if err != nil {
		return userError(err)
	}

	if tr == models.TransitionNone {
		log.Debug().Str("name", cat.Name).Bool("walking", walking).Msg("Walk state unchanged")
		printf(cmd, "%s\n", walker.StateLabel(models.CatState{ID: cat.ID, Name: cat.Name, Walking: walking}))
		return nil
	}
	printf(cmd, "%s\n", walker.TransitionMessage(cat.Name, tr))
	return nil
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether each cat is walking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := openApp(opts)
			defer a.Close()

			cats, err := a.svc.Snapshot(commandContext(cmd))
			if err != nil {
				return err
			}
			if len(cats) == 0 {
				printf(cmd, "%s\n", walker.MsgNoCats)
				return nil
			}
			for _, c := range cats {
				printf(cmd, "%d\t%s\n", c.ID, walker.StateLabel(c))
			}
			return nil
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List all walks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := openApp(opts)
			defer a.Close()

			history, err := a.svc.History(commandContext(cmd))
			if err != nil {
				return err
			}
			if len(history) == 0 {
				printf(cmd, "%s\n", walker.MsgNoWalks)
				return nil
			}
			for _, e := range history {
				printf(cmd, "%s\n", walker.FormatHistoryLine(e))
			}
			return nil
		},
	}
}
