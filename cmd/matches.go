package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/match-responder/internal/logger"
)

var stdout io.Writer = os.Stdout

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Load, compute and refine job matches",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show a page of already computed matches",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		s := newSession(ctx)

		page, _ := cmd.Flags().GetInt("page")
		if _, err := s.controller.LoadPage(ctx, page); err != nil {
			s.fail("loading matches", err)
		}

		s.print()
	},
}

var runMatchingCmd = &cobra.Command{
	Use:   "run",
	Short: "Recompute matches for the current profile and show the first page",
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		s := newSession(ctx)

		s.logger.Info("running matching")

		if _, err := s.controller.RunMatching(ctx); err != nil {
			s.fail("running matching", err)
		}

		s.print()
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reshuffle matches with lower requirements",
	Long: `Loads the first page of existing matches and then refreshes it --count times.
Every refresh lowers the minimum score by 10 points, down to 0.`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		s := newSession(ctx)

		if _, err := s.controller.LoadPage(ctx, 1); err != nil {
			s.fail("loading matches", err)
		}

		count, _ := cmd.Flags().GetInt("count")
		for i := 0; i < count; i++ {
			if _, err := s.controller.Refresh(ctx); err != nil {
				s.fail("refreshing matches", err)
			}

			snap := s.controller.Snapshot()
			s.logger.Info("refreshed matches",
				zap.Int(logger.FieldRefreshCount, snap.RefreshCount),
				zap.Int(logger.FieldMinScore, snap.Query.MinScore),
				zap.Int("total_matches", snap.Page.TotalMatches),
			)
		}

		s.print()
	},
}

func init() {
	rootCmd.AddCommand(matchesCmd)
	matchesCmd.AddCommand(listCmd, runMatchingCmd, refreshCmd)

	matchesCmd.PersistentFlags().Int("page-size", 0, "page size: 5, 10, 15 or 20 (default from config)")
	viper.BindPFlag("query.page-size", matchesCmd.PersistentFlags().Lookup("page-size"))

	listCmd.Flags().IntP("page", "p", 1, "page to show")
	refreshCmd.Flags().IntP("count", "n", 1, "how many times to refresh")
}
