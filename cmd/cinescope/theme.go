package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newThemeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show the theme preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(s *session) error {
				fmt.Fprintln(cmd.OutOrStdout(), s.store.Theme())
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between dark and light",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(s *session) error {
				fmt.Fprintln(cmd.OutOrStdout(), s.store.ToggleTheme())
				return nil
			})
		},
	})
	return cmd
}
