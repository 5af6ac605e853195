package platformsvc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/klabu/core/standings"
)

type (
	ccFetcher struct {
		client  *http.Client
		baseURL string
	}

	ccRankingsResponse struct {
		Status string `json:"status"`
		List   []struct {
			UserHandle    string             `json:"user_handle"`
			TotalScore    float64            `json:"total_score"`
			ProblemScores map[string]float64 `json:"problem_scores"`
		} `json:"list"`
	}
)

var _ standings.Fetcher = (*ccFetcher)(nil)

func NewCodeChefFetcher() standings.Fetcher {
	return &ccFetcher{
		client:  newHTTPClient(),
		baseURL: "https://www.codechef.com/api/rankings",
	}
}

// FetchResult searches the contest rankings for the handle (contestKey is a
// CodeChef contest code, e.g. "START115"). A problem counts as solved when
// it scored any points.
func (f *ccFetcher) FetchResult(ctx context.Context, handle, contestKey string) (standings.Result, error) {
	q := make(url.Values)
	q.Set("search", handle)
	q.Set("itemsPerPage", "25")

	endpoint := fmt.Sprintf("%s/%s?%s", f.baseURL, strings.ToUpper(contestKey), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return standings.Result{}, errors.Wrap(err, "codechef: building request")
	}

	res, err := f.client.Do(req)
	if err != nil {
		return standings.Result{}, errors.Wrap(err, "codechef: calling API")
	}

	var data ccRankingsResponse
	if err := decodeJSON(res, &data); err != nil {
		return standings.Result{}, errors.Wrap(err, "codechef")
	}
	if data.Status != "success" {
		return standings.Result{}, fmt.Errorf("codechef: rankings lookup failed for %q", contestKey)
	}

	// the search is fuzzy; match the handle exactly
	for _, row := range data.List {
		if !strings.EqualFold(row.UserHandle, handle) {
			continue
		}
		var solved int
		for _, score := range row.ProblemScores {
			if score > 0 {
				solved++
			}
		}
		return standings.Result{Participated: true, Solved: solved}, nil
	}
	return standings.Result{}, standings.ErrNotFound
}
