package main

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"cinescope/internal/models"
)

func newContinueCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOut bool
		recent  bool
	)

	cmd := &cobra.Command{
		Use:   "continue",
		Short: "List titles with playback progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(func(s *session) error {
				var entries []models.ContinueEntry
				if recent {
					entries = s.store.ContinueWatchingByRecency()
				} else {
					entries = slices.Collect(s.store.ContinueWatching())
				}
				if jsonOut {
					if entries == nil {
						entries = []models.ContinueEntry{}
					}
					return writeJSON(cmd, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to continue")
					return nil
				}

				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						e.Key.String(),
						formatSeconds(e.Time),
						formatSeconds(e.Duration),
						strconv.FormatFloat(e.Percent()*100, 'f', 0, 64) + "%",
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Key", "Position", "Duration", "Watched"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print JSON instead of a table")
	cmd.Flags().BoolVar(&recent, "recent", false, "Order by last update instead of first play")
	return cmd
}

// formatSeconds renders seconds as h:mm:ss, or m:ss under an hour.
func formatSeconds(sec float64) string {
	total := int(sec)
	h, m, s := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
