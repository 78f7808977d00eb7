package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tempizhere/dealhub/internal/models"
)

func newViewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "view <deal-id>",
		Short: "Record a deal view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().RecordView(cmd.Context(), args[0]); err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), models.SuccessResponse{Success: true}, "view recorded")
		},
	}
}

func newClickCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "click <deal-id>",
		Short: "Record a purchase click",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			counted, err := opts.client().RecordPurchaseClick(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(),
				models.PurchaseClickResponse{Success: true, Counted: counted},
				fmt.Sprintf("purchase click recorded (counted: %t)", counted))
		},
	}
}

func newLikeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "like <deal-id>",
		Short: "Toggle a like on a deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client().ToggleLike(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state := "unliked"
			if res.Liked {
				state = "liked"
			}
			return opts.print(cmd.OutOrStdout(), res, fmt.Sprintf("%s (likes: %d)", state, res.Likes))
		},
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <deal-id>",
		Short: "Show deal statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := opts.client().GetStats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			likedBy := "-"
			if len(stats.LikedBy) > 0 {
				likedBy = strings.Join(stats.LikedBy, ", ")
			}
			text := fmt.Sprintf("views: %d\nlikes: %d\npurchase clicks: %d\ncomments: %d\nliked by: %s",
				stats.Views, stats.Likes, stats.PurchaseClicks, stats.Comments, likedBy)
			return opts.print(cmd.OutOrStdout(), stats, text)
		},
	}
}
