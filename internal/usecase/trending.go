// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/trendy-repos/internal/domain"
	"github.com/naka-gawa/trendy-repos/internal/gateway"
)

const dateLayout = "2006-01-02"

// Trending is the use case for listing the most starred recent repositories.
// It orchestrates gateway calls for one or more look-back windows.
type Trending struct {
	searcher gateway.RepoSearcher
	logger   *zap.Logger
	now      func() time.Time
}

// NewTrending creates a new Trending instance.
func NewTrending(searcher gateway.RepoSearcher, logger *zap.Logger) *Trending {
	return &Trending{
		searcher: searcher,
		logger:   logger,
		now:      time.Now,
	}
}

// Search runs a single search for repositories created after since.
func (t *Trending) Search(ctx context.Context, since time.Time, page int) (domain.Result, error) {
	return t.searcher.FetchMostStarredReposSince(ctx, since, page)
}

// Snapshot fetches the given page for every window concurrently.
// Reports keep the order of windows. A recoverable failure is recorded on
// its report; a fatal error from any window cancels the rest and is returned.
func (t *Trending) Snapshot(ctx context.Context, windows []domain.Window, page int) ([]*domain.WindowReport, error) {
	t.logger.Debug("usecase: starting trending snapshot", zap.Int("windows", len(windows)), zap.Int("page", page))

	today := t.now().UTC().Truncate(24 * time.Hour)
	reports := make([]*domain.WindowReport, len(windows))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, w := range windows {
		since := today.AddDate(0, 0, -w.Days)
		report := &domain.WindowReport{Window: w, Since: since.Format(dateLayout)}
		reports[i] = report

		eg.Go(func() error {
			result, err := t.searcher.FetchMostStarredReposSince(egCtx, since, page)
			if err != nil {
				return fmt.Errorf("window %s: %w", w.Name, err)
			}
			switch r := result.(type) {
			case domain.Ok:
				report.Repos = r.Repos
				report.Summary = Summarize(r.Repos)
			case domain.Failure:
				report.Failure = r.Reason.Error()
			}
			t.logger.Debug("usecase: window fetched", zap.String("window", w.Name), zap.Int("repos", len(report.Repos)))
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	t.logger.Debug("usecase: trending snapshot complete")
	return reports, nil
}

// Summarize computes star statistics for repos. An empty input yields a zero summary.
func Summarize(repos []domain.Repo) *domain.StarSummary {
	summary := &domain.StarSummary{Count: len(repos)}
	if len(repos) == 0 {
		return summary
	}

	data := make(stats.Float64Data, 0, len(repos))
	for _, r := range repos {
		data = append(data, float64(r.StarsCount))
	}

	// Errors only occur on empty input, which is handled above.
	total, _ := stats.Sum(data)
	maxStars, _ := stats.Max(data)
	summary.Total = int(total)
	summary.Max = int(maxStars)
	summary.Mean, _ = stats.Mean(data)
	summary.Median, _ = stats.Median(data)
	return summary
}
