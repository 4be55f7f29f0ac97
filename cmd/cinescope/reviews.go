package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cinescope/internal/models"
)

func newReviewsCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOut bool
		add     bool
		name    string
		rating  string
		text    string
	)

	cmd := &cobra.Command{
		Use:   "reviews <contentId>",
		Short: "Show (or with --add, write) the reviews of a title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withSession(func(s *session) error {
				if add {
					r := s.store.AddReview(id, models.ReviewInput{Name: name, Rating: rating, Text: text})
					fmt.Fprintf(cmd.OutOrStdout(), "Added review %s by %s (%.1f)\n", r.ID, r.AuthorName, r.Rating)
					return nil
				}

				reviews := s.store.Reviews(id)
				avg, ok := s.store.AverageRating(id)
				if jsonOut {
					out := struct {
						Reviews []models.Review `json:"reviews"`
						Count   int             `json:"count"`
						Average *float64        `json:"average"`
					}{Reviews: reviews, Count: len(reviews)}
					if ok {
						out.Average = &avg
					}
					return writeJSON(cmd, out)
				}

				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "No reviews for %d\n", id)
					return nil
				}
				rows := make([][]string, 0, len(reviews))
				for _, r := range reviews {
					rows = append(rows, []string{
						r.CreatedAt.Format("2006-01-02"),
						r.AuthorName,
						strconv.FormatFloat(r.Rating, 'f', -1, 64),
						r.Text,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Date", "Author", "Rating", "Review"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				))
				fmt.Fprintf(cmd.OutOrStdout(), "%d reviews, average %.1f\n", len(reviews), avg)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print JSON instead of a table")
	cmd.Flags().BoolVar(&add, "add", false, "Add a review instead of listing")
	cmd.Flags().StringVar(&name, "name", "", "Author name (default Anonymous)")
	cmd.Flags().StringVar(&rating, "rating", "0", "Rating from 0 to 10")
	cmd.Flags().StringVar(&text, "text", "", "Review text")
	return cmd
}
