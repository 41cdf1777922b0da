package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"legalforge/internal/domain"
)

var (
	feedbackRunID   string
	feedbackRaterID string
	feedbackRating  int
	feedbackComment string
	feedbackTags    []string
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Submit or inspect feedback against a terminated run",
}

var feedbackSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Record a rating against a terminated run",
	RunE:  feedbackSubmit,
}

var feedbackShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the aggregated feedback summary for a run",
	Args:  cobra.ExactArgs(1),
	RunE:  feedbackShow,
}

func init() {
	feedbackSubmitCmd.Flags().StringVar(&feedbackRunID, "run", "", "run id (required)")
	feedbackSubmitCmd.Flags().StringVar(&feedbackRaterID, "rater", "", "rater id (required)")
	feedbackSubmitCmd.Flags().IntVar(&feedbackRating, "rating", 0, "-1 (bad), 0 (neutral), or 1 (good)")
	feedbackSubmitCmd.Flags().StringVar(&feedbackComment, "comment", "", "free-text comment")
	feedbackSubmitCmd.Flags().StringSliceVar(&feedbackTags, "tag", nil, "tag to attach (repeatable)")
	feedbackSubmitCmd.MarkFlagRequired("run")
	feedbackSubmitCmd.MarkFlagRequired("rater")

	feedbackCmd.AddCommand(feedbackSubmitCmd, feedbackShowCmd)
}

func feedbackSubmit(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	event := domain.FeedbackEvent{
		RunID:   feedbackRunID,
		RaterID: feedbackRaterID,
		Rating:  feedbackRating,
		Comment: feedbackComment,
		Tags:    feedbackTags,
	}
	if err := current.feedbackStore.Submit(ctx, event); err != nil {
		return err
	}
	fmt.Printf("feedback recorded for run %s\n", feedbackRunID)
	return nil
}

func feedbackShow(cmd *cobra.Command, args []string) error {
	runID := args[0]
	summary := current.feedbackStore.Summary(runID)
	fmt.Printf("run %s: %d event(s), mean rating %.2f\n", summary.RunID, summary.EventCount, summary.MeanRating)
	fmt.Printf("error spans: %d, distinct missing-source hints: %d\n", summary.TotalErrorSpans, summary.DistinctMissingSourceHints)
	if len(summary.Tags) > 0 {
		fmt.Printf("tags: %s\n", strings.Join(summary.Tags, ", "))
	}
	return nil
}
