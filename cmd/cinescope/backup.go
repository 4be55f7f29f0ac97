package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBackupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Write a snapshot of all stored state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(s *session) error {
				path, err := s.backups.Backup()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
				return nil
			})
		},
	}
}

func newRestoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restore [file]",
		Short: "Replace all stored state with a snapshot (newest when no file is given)",
		Long: "Replace all stored state with a snapshot. Keys missing from the snapshot are removed.\n" +
			"A running server keeps its in-memory state; use POST /api/restore there instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(s *session) error {
				path := ""
				if len(args) == 1 {
					path = args[0]
				} else {
					latest, err := s.backups.Latest()
					if err != nil {
						return err
					}
					path = latest
				}
				if err := s.backups.Restore(path); err != nil {
					return err
				}
				s.store.Reload()
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %s (%d profiles, theme %s)\n",
					path, len(s.store.Profiles()), s.store.Theme())
				return nil
			})
		},
	}
}
