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
	cfFetcher struct {
		client  *http.Client
		baseURL string
	}

	cfStandingsResponse struct {
		Status  string `json:"status"` // OK | FAILED
		Comment string `json:"comment"`
		Result  struct {
			Rows []struct {
				ProblemResults []struct {
					Points float64 `json:"points"`
				} `json:"problemResults"`
			} `json:"rows"`
		} `json:"result"`
	}
)

var _ standings.Fetcher = (*cfFetcher)(nil)

func NewCodeforcesFetcher() standings.Fetcher {
	return &cfFetcher{
		client:  newHTTPClient(),
		baseURL: "https://codeforces.com/api",
	}
}

// FetchResult queries contest.standings for the handle (contestKey is a
// numeric Codeforces contest id). A problem counts as solved when it scored
// any points.
func (f *cfFetcher) FetchResult(ctx context.Context, handle, contestKey string) (standings.Result, error) {
	q := make(url.Values)
	q.Set("contestId", contestKey)
	q.Set("handles", handle)
	q.Set("showUnofficial", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/contest.standings?"+q.Encode(), nil)
	if err != nil {
		return standings.Result{}, errors.Wrap(err, "codeforces: building request")
	}

	res, err := f.client.Do(req)
	if err != nil {
		return standings.Result{}, errors.Wrap(err, "codeforces: calling API")
	}

	var data cfStandingsResponse
	if err := decodeJSON(res, &data); err != nil {
		// the API reports unknown handles with a 400 + FAILED payload; the
		// payload is gone at this point, treat any 4xx as not-found
		if res.StatusCode >= 400 && res.StatusCode < 500 {
			return standings.Result{}, standings.ErrNotFound
		}
		return standings.Result{}, errors.Wrap(err, "codeforces")
	}
	if data.Status != "OK" {
		if strings.Contains(data.Comment, "not found") {
			return standings.Result{}, standings.ErrNotFound
		}
		return standings.Result{}, fmt.Errorf("codeforces: %s", data.Comment)
	}
	if len(data.Result.Rows) == 0 {
		// the handle exists but did not take part in this contest
		return standings.Result{}, standings.ErrNotFound
	}

	var solved int
	for _, pr := range data.Result.Rows[0].ProblemResults {
		if pr.Points > 0 {
			solved++
		}
	}
	return standings.Result{Participated: true, Solved: solved}, nil
}
