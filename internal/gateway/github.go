// Package gateway provides a gateway to the GitHub repository search API,
// mapping HTTP and transport failures into domain results.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/trendy-repos/internal/domain"
)

const (
	// DefaultBaseURL is the root of the public GitHub REST API.
	DefaultBaseURL = "https://api.github.com"
	// DefaultTimeout bounds a whole request, including reading the body.
	DefaultTimeout = 30 * time.Second

	searchReposAPI = "/search/repositories"
	dateLayout     = "2006-01-02"
)

// RepoSearcher defines the behavior of a gateway for searching repositories.
type RepoSearcher interface {
	FetchMostStarredReposSince(ctx context.Context, date time.Time, page int) (domain.Result, error)
}

// Options configures a RepoSearchGateway.
type Options struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// Token is an optional personal access token. Ignored when HTTPClient is set.
	Token string
	// Timeout defaults to DefaultTimeout. Zero or negative keeps the default. Ignored when HTTPClient is set.
	Timeout time.Duration
	// HTTPClient replaces the default client. The gateway takes ownership of it.
	HTTPClient *http.Client
}

// RepoSearchGateway is the concrete implementation of the RepoSearcher interface.
// It is safe for concurrent use.
type RepoSearchGateway struct {
	baseURL    string
	client     *github.Client
	httpClient *http.Client
	transport  *http.Transport
	logger     *zap.Logger
	closed     atomic.Bool
}

// NewRepoSearchGateway is a constructor that creates a new instance of RepoSearchGateway.
func NewRepoSearchGateway(opts Options, logger *zap.Logger) (*RepoSearchGateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	parsed, err := url.Parse(baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("base URL must be an absolute http(s) URL, got %q", opts.BaseURL)
	}

	g := &RepoSearchGateway{
		baseURL: baseURL,
		logger:  logger,
	}

	g.httpClient = opts.HTTPClient
	if g.httpClient == nil {
		g.httpClient, g.transport, err = newDefaultHTTPClient(opts, logger)
		if err != nil {
			return nil, err
		}
	}

	g.client = github.NewClient(g.httpClient)
	g.client.BaseURL = parsed
	return g, nil
}

// newDefaultHTTPClient builds a client with its own connection pool, so that
// Close releases only the connections this gateway opened.
func newDefaultHTTPClient(opts Options, logger *zap.Logger) (*http.Client, *http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	// A single sleep limit of zero means secondary limits are detected and
	// reported, but the waiter never sleeps on them. The waiter still
	// re-issues a request whose limit has already expired, so it is fenced
	// by singleSendTransport and sendOnceTransport.
	limitDetector, err := github_ratelimit.NewRateLimitWaiter(&sendOnceTransport{base: transport},
		github_ratelimit.WithSingleSleepLimit(0, func(*github_ratelimit.CallbackContext) {
			logger.Warn("secondary rate limit detected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create rate limit detector: %w", err)
	}

	var rt http.RoundTripper = &singleSendTransport{next: limitDetector}
	if opts.Token != "" {
		rt = &oauth2.Transport{
			Base:   rt,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Transport: rt, Timeout: timeout}, transport, nil
}

// SearchURL builds the URL listing repositories created after formattedDate
// (YYYY-MM-DD), most starred first.
func SearchURL(baseURL, formattedDate string, page int) string {
	return fmt.Sprintf("%s%s?q=created:>%s&sort=stars&order=desc&page=%d",
		strings.TrimSuffix(baseURL, "/"), searchReposAPI, formattedDate, page)
}

// MostStarredReposSinceURL returns the search URL for date against the gateway's base URL.
func (g *RepoSearchGateway) MostStarredReposSinceURL(date time.Time, page int) string {
	return SearchURL(g.baseURL, date.Format(dateLayout), page)
}

// FetchMostStarredReposSince searches for repositories created after date,
// sorted by stars in descending order.
//
// Recoverable failures are returned as a domain.Failure with a nil error.
// A non-nil error is fatal: an *UnexpectedStatusError for statuses other
// than 403 and 422, a context error, or any other transport failure.
func (g *RepoSearchGateway) FetchMostStarredReposSince(ctx context.Context, date time.Time, page int) (domain.Result, error) {
	if g.closed.Load() {
		return nil, ErrGatewayClosed
	}
	if page < 1 {
		return nil, fmt.Errorf("page must be 1 or greater, got %d", page)
	}

	searchURL := g.MostStarredReposSinceURL(date, page)
	g.logger.Debug("searching repositories", zap.String("url", searchURL), zap.Int("page", page))

	req, err := g.client.NewRequest(http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	var body bytes.Buffer
	resp, err := g.client.Do(ctx, req, &body)
	if err != nil {
		return g.classify(searchURL, resp, err)
	}

	repos, err := DecodeSearchResponse(body.Bytes())
	if err != nil {
		return g.fail(domain.MalformedResponse, err), nil
	}
	g.logger.Debug("search completed", zap.String("url", searchURL), zap.Int("repos", len(repos)))
	return domain.Ok{Repos: repos}, nil
}

// classify is the single place where request errors become results.
func (g *RepoSearchGateway) classify(searchURL string, resp *github.Response, err error) (domain.Result, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return g.fail(domain.NoConnectivity, err), nil
	}

	if resp != nil && resp.Response != nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		switch resp.StatusCode {
		case http.StatusForbidden:
			return g.fail(domain.RateLimitExceeded, err), nil
		case http.StatusUnprocessableEntity:
			return g.fail(domain.DataLimitReached, err), nil
		default:
			g.logger.Error("unexpected status from search API",
				zap.String("url", searchURL), zap.Int("status", resp.StatusCode))
			return nil, &UnexpectedStatusError{StatusCode: resp.StatusCode, URL: searchURL}
		}
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return g.fail(domain.RateLimitExceeded, err), nil
	}

	return nil, fmt.Errorf("failed to search repositories: %w", err)
}

func (g *RepoSearchGateway) fail(reason domain.GatewayError, cause error) domain.Failure {
	g.logger.Warn("search failed", zap.String("reason", reason.Error()), zap.Error(cause))
	return domain.Failure{Reason: reason, Cause: cause}
}

// Close releases idle connections held by the gateway. It is safe to call
// more than once. Callers must not Close while requests are in flight:
// those requests are neither drained nor aborted, and their connections
// are released only when they finish.
func (g *RepoSearchGateway) Close() {
	if g.closed.Swap(true) {
		return
	}
	g.httpClient.CloseIdleConnections()
	if g.transport != nil {
		g.transport.CloseIdleConnections()
	}
}
