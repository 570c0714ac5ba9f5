package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/trendy-repos/internal/domain"
	"github.com/naka-gawa/trendy-repos/internal/usecase"
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Shows the most starred new repositories for several windows",
	Long: `Fetches the most starred repositories created within each look-back window
(day, week, month) concurrently and outputs a JSON report per window,
including star statistics.`,
	Run: func(cmd *cobra.Command, args []string) {
		if code := runTrending(cmd); code != 0 {
			os.Exit(code)
		}
	},
}

func runTrending(cmd *cobra.Command) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	stderr := cmd.ErrOrStderr()

	windowsStr, _ := cmd.Flags().GetString("windows")
	page, _ := cmd.Flags().GetInt("page")

	windows, err := domain.ParseWindows(windowsStr)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid --windows: %v\n", err)
		return exitFatal
	}

	gw, logger, err := newGateway()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}
	defer gw.Close()
	defer logger.Sync() //nolint:errcheck

	reports, err := usecase.NewTrending(gw, logger).Snapshot(ctx, windows, page)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to build trending snapshot: %v\n", err)
		return exitFatal
	}

	if err := writeJSON(cmd.OutOrStdout(), reports); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitFatal
	}
	return 0
}

func init() {
	rootCmd.AddCommand(trendingCmd)
	trendingCmd.Flags().StringP("windows", "w", "day,week,month", "Comma-separated look-back windows")
	trendingCmd.Flags().IntP("page", "p", 1, "Result page to fetch for every window, starting at 1")
}
