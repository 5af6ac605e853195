// Package standings collects contest results from the coding platforms and
// maintains the club leaderboard.
package standings

import (
	"context"
	"errors"
)

// ErrNotFound signals that the platform does not know the handle, or that
// the handle did not appear in the contest's standings.
var ErrNotFound = errors.New("no result found for this handle")

// Result is one member's outcome in one contest.
type Result struct {
	Participated bool
	Solved       int
}

// Fetcher asks a coding platform whether a handle took part in a contest and
// how many problems it solved. One implementation per platform.
type Fetcher interface {
	FetchResult(ctx context.Context, handle, contestKey string) (Result, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, handle, contestKey string) (Result, error)

func (f FetcherFunc) FetchResult(ctx context.Context, handle, contestKey string) (Result, error) {
	return f(ctx, handle, contestKey)
}
