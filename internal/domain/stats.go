package domain

import (
	"fmt"
	"strings"
)

// Window is a named look-back period for a trending query.
type Window struct {
	Name string `json:"name"`
	Days int    `json:"days"`
}

var (
	Day   = Window{Name: "day", Days: 1}
	Week  = Window{Name: "week", Days: 7}
	Month = Window{Name: "month", Days: 30}
)

// ParseWindows converts a comma-separated list such as "day,week" into windows.
// Duplicates are kept in the order given.
func ParseWindows(s string) ([]Window, error) {
	known := map[string]Window{Day.Name: Day, Week.Name: Week, Month.Name: Month}
	var windows []Window
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		w, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unknown window %q (want day, week or month)", part)
		}
		windows = append(windows, w)
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("no windows given")
	}
	return windows, nil
}

// StarSummary holds aggregate star statistics for a set of repositories.
type StarSummary struct {
	Count  int     `json:"count"`
	Total  int     `json:"total"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    int     `json:"max"`
}

// WindowReport is the outcome of a trending query for one window.
// Failure is set instead of Repos when the search reported a recoverable error.
type WindowReport struct {
	Window  Window       `json:"window"`
	Since   string       `json:"since"`
	Repos   []Repo       `json:"repos,omitempty"`
	Failure string       `json:"failure,omitempty"`
	Summary *StarSummary `json:"summary,omitempty"`
}
