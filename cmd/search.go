package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/trendy-repos/internal/domain"
	"github.com/naka-gawa/trendy-repos/internal/usecase"
)

const (
	dateLayout       = "2006-01-02"
	defaultSinceDays = 30
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Lists the most starred repositories created after a date",
	Long: `Lists repositories created after --since, sorted by stars in descending order,
and outputs them in JSON format. Exits with status 2 when GitHub reports a
recoverable condition such as a rate limit.`,
	Run: func(cmd *cobra.Command, args []string) {
		if code := runSearch(cmd); code != 0 {
			os.Exit(code)
		}
	},
}

func runSearch(cmd *cobra.Command) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	stderr := cmd.ErrOrStderr()

	sinceStr, _ := cmd.Flags().GetString("since")
	page, _ := cmd.Flags().GetInt("page")

	since := time.Now().UTC().AddDate(0, 0, -defaultSinceDays)
	if sinceStr != "" {
		var err error
		since, err = time.Parse(dateLayout, sinceStr)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid --since date format. Please use YYYY-MM-DD. Error: %v\n", err)
			return exitFatal
		}
	}

	// Inject dependencies and run the main business logic.
	gw, logger, err := newGateway()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}
	defer gw.Close()
	defer logger.Sync() //nolint:errcheck

	result, err := usecase.NewTrending(gw, logger).Search(ctx, since, page)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to search repositories: %v\n", err)
		return exitFatal
	}

	switch r := result.(type) {
	case domain.Ok:
		if err := writeJSON(cmd.OutOrStdout(), r.Repos); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return exitFatal
		}
	case domain.Failure:
		fmt.Fprintf(stderr, "Search failed: %v. Try again later.\n", r.Reason)
		return exitRecoverable
	}
	return 0
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().String("since", "", "Only repositories created after this date (YYYY-MM-DD, default 30 days ago)")
	searchCmd.Flags().IntP("page", "p", 1, "Result page to fetch, starting at 1")
}
