package main

import (
	"context"
	"fmt"
	"io"

	"github.com/maasin/byahenow/internal/api/dto"
	"github.com/spf13/cobra"
)

var faresCmd = &cobra.Command{
	Use:   "fares",
	Short: "Show the Maasin City fare table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout(cmd))
		defer cancel()

		catalog, err := newClient(cmd).Fares(ctx)
		if err != nil {
			return err
		}
		return render(cmd, catalog, func(w io.Writer) { fareTable(w, catalog) })
	},
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Rate a trip from 1 to 5",
	RunE: func(cmd *cobra.Command, args []string) error {
		rating, _ := cmd.Flags().GetInt("rating")
		comment, _ := cmd.Flags().GetString("comment")
		driverID, _ := cmd.Flags().GetString("driver-id")
		plate, _ := cmd.Flags().GetString("plate")

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout(cmd))
		defer cancel()

		fb, err := newClient(cmd).SubmitFeedback(ctx, dto.FeedbackRequest{
			DriverID:    driverID,
			Rating:      rating,
			Comment:     comment,
			PlateNumber: plate,
		})
		if err != nil {
			return fmt.Errorf("feedback failed: %w", err)
		}
		return render(cmd, fb, func(w io.Writer) {
			fmt.Fprintln(w, "✓ Thank you for your feedback!")
		})
	},
}

func init() {
	feedbackCmd.Flags().Int("rating", 0, "Rating from 1 to 5")
	feedbackCmd.Flags().String("comment", "", "Comment")
	feedbackCmd.Flags().String("driver-id", "", "Driver user id")
	feedbackCmd.Flags().String("plate", "", "Plate number")
	feedbackCmd.MarkFlagRequired("rating")
}
