// Package domain contains the core data structures and domain logic for the application.
package domain

// Repo is a single repository returned by the search API.
// It is the core domain entity of this application.
type Repo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Author      string `json:"author"`
	AvatarURL   string `json:"avatar_url"`
	StarsCount  int    `json:"stars_count"`
}

// GatewayError is the closed set of recoverable failures a search can report.
type GatewayError int

const (
	RateLimitExceeded GatewayError = iota + 1
	DataLimitReached
	NoConnectivity
	MalformedResponse
)

func (e GatewayError) Error() string {
	switch e {
	case RateLimitExceeded:
		return "rate limit exceeded"
	case DataLimitReached:
		return "data limit reached"
	case NoConnectivity:
		return "no connectivity"
	case MalformedResponse:
		return "malformed response"
	default:
		return "unknown gateway error"
	}
}

// Result is the outcome of a single search call: either Ok or Failure.
// The set of implementations is closed to this package.
type Result interface {
	isResult()
}

// Ok carries the repositories of a successful search.
type Ok struct {
	Repos []Repo
}

// Failure carries a recoverable error. Cause holds the underlying error, if any.
type Failure struct {
	Reason GatewayError
	Cause  error
}

func (Ok) isResult()      {}
func (Failure) isResult() {}
