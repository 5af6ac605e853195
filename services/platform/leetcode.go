package platformsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/klabu/core/standings"
)

const lcRankingHistoryQuery = `
query userContestRankingHistory($username: String!) {
  userContestRankingHistory(username: $username) {
    attended
    problemsSolved
    contest {
      title
      startTime
    }
  }
}`

type (
	lcFetcher struct {
		client  *http.Client
		baseURL string
	}

	lcRequest struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}

	lcResponse struct {
		Data struct {
			UserContestRankingHistory []struct {
				Attended       bool `json:"attended"`
				ProblemsSolved int  `json:"problemsSolved"`
				Contest        struct {
					Title string `json:"title"`
				} `json:"contest"`
			} `json:"userContestRankingHistory"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
)

var _ standings.Fetcher = (*lcFetcher)(nil)

func NewLeetCodeFetcher() standings.Fetcher {
	return &lcFetcher{
		client:  newHTTPClient(),
		baseURL: "https://leetcode.com/graphql",
	}
}

// FetchResult looks the handle's contest history up and matches the contest
// by its slug (contestKey is a LeetCode slug, e.g. "weekly-contest-375").
func (f *lcFetcher) FetchResult(ctx context.Context, handle, contestKey string) (standings.Result, error) {
	body, err := json.Marshal(lcRequest{
		Query:     lcRankingHistoryQuery,
		Variables: map[string]interface{}{"username": handle},
	})
	if err != nil {
		return standings.Result{}, errors.Wrap(err, "leetcode: encoding query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL, bytes.NewReader(body))
	if err != nil {
		return standings.Result{}, errors.Wrap(err, "leetcode: building request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := f.client.Do(req)
	if err != nil {
		return standings.Result{}, errors.Wrap(err, "leetcode: calling API")
	}

	var data lcResponse
	if err := decodeJSON(res, &data); err != nil {
		return standings.Result{}, errors.Wrap(err, "leetcode")
	}
	if len(data.Errors) > 0 {
		// GraphQL reports unknown users as errors rather than empty data
		return standings.Result{}, standings.ErrNotFound
	}

	for _, h := range data.Data.UserContestRankingHistory {
		if slugify(h.Contest.Title) == contestKey {
			return standings.Result{Participated: h.Attended, Solved: h.ProblemsSolved}, nil
		}
	}
	return standings.Result{}, standings.ErrNotFound
}

// slugify converts a contest title ("Weekly Contest 375") to its URL slug
// ("weekly-contest-375").
func slugify(title string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "-")
}
