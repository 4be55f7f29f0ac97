package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cinescope/internal/models"
)

func newProfilesCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List and manage viewer profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listProfiles(cmd, ctx, jsonOut)
		},
	}
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print JSON instead of a table")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listProfiles(cmd, ctx, jsonOut)
		},
	}

	var color string
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(s *session) error {
				p := s.store.AddProfile(args[0], color)
				fmt.Fprintf(cmd.OutOrStdout(), "Added profile %d (%s)\n", p.ID, p.Name)
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&color, "color", "bg-gray-500", "Avatar color class")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a profile; the last one cannot be deleted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withSession(func(s *session) error {
				if !s.store.DeleteProfile(id) {
					return fmt.Errorf("profile %d not deleted: unknown id or last profile", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile %d; active profile is %d\n", id, s.store.CurrentProfileID())
				return nil
			})
		},
	}

	switchCmd := &cobra.Command{
		Use:   "switch <id>",
		Short: "Make a profile active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withSession(func(s *session) error {
				for _, p := range s.store.Profiles() {
					if p.ID == id {
						s.store.SwitchProfile(id)
						fmt.Fprintf(cmd.OutOrStdout(), "Switched to %s\n", p.Name)
						return nil
					}
				}
				return fmt.Errorf("profile %d not found", id)
			})
		},
	}

	cmd.AddCommand(listCmd, addCmd, deleteCmd, switchCmd)
	return cmd
}

func listProfiles(cmd *cobra.Command, ctx *commandContext, jsonOut bool) error {
	return ctx.withSession(func(s *session) error {
		profiles := s.store.Profiles()
		current := s.store.CurrentProfileID()
		if jsonOut {
			return writeJSON(cmd, struct {
				Profiles  []models.Profile `json:"profiles"`
				CurrentID int              `json:"currentId"`
			}{profiles, current})
		}

		rows := make([][]string, 0, len(profiles))
		for _, p := range profiles {
			active := ""
			if p.ID == current {
				active = "*"
			}
			rows = append(rows, []string{strconv.Itoa(p.ID), p.Initial, p.Name, p.Color, active})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"ID", "Initial", "Name", "Color", "Active"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
		))
		return nil
	})
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
