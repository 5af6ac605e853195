package platformsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/trezcool/klabu/core/event"
	"github.com/trezcool/klabu/core/standings"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{title: "Weekly Contest 460", want: "weekly-contest-460"},
		{title: "  Biweekly Contest 140  ", want: "biweekly-contest-140"},
		{title: "already-a-slug", want: "already-a-slug"},
	}
	for _, tt := range tests {
		if got := slugify(tt.title); got != tt.want {
			t.Errorf("slugify(%q) = %q; want %q", tt.title, got, tt.want)
		}
	}
}

func TestFetchersCoverAllPlatforms(t *testing.T) {
	for _, registry := range []map[string]standings.Fetcher{Fetchers(), DummyFetchers()} {
		for _, p := range event.AllPlatforms {
			if _, ok := registry[p]; !ok {
				t.Errorf("no fetcher registered for platform %q", p)
			}
		}
	}
}

func TestDummyFetcher(t *testing.T) {
	f := NewDummyFetcher()
	ctx := context.Background()

	f.SetResult("winner", standings.Result{Participated: true, Solved: 4})
	boom := errors.New("boom")
	f.SetError("flaky", boom)

	res, err := f.FetchResult(ctx, "winner", "any-contest")
	if err != nil {
		t.Fatalf("FetchResult(winner) failed: %v", err)
	}
	if !res.Participated || res.Solved != 4 {
		t.Errorf("FetchResult(winner) = %+v; want participated with 4 solved", res)
	}

	if _, err = f.FetchResult(ctx, "flaky", "any-contest"); err != boom {
		t.Errorf("FetchResult(flaky) error = %v; want %v", err, boom)
	}
	if _, err = f.FetchResult(ctx, "stranger", "any-contest"); err != standings.ErrNotFound {
		t.Errorf("FetchResult(stranger) error = %v; want ErrNotFound", err)
	}
}
