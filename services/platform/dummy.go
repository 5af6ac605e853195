package platformsvc

import (
	"context"
	"sync"

	"github.com/trezcool/klabu/core/event"
	"github.com/trezcool/klabu/core/standings"
)

// DummyFetcher serves canned results keyed by handle; DEV/test use.
type DummyFetcher struct {
	mu      sync.RWMutex
	results map[string]standings.Result
	errs    map[string]error
}

var _ standings.Fetcher = (*DummyFetcher)(nil)

func NewDummyFetcher() *DummyFetcher {
	return &DummyFetcher{
		results: make(map[string]standings.Result),
		errs:    make(map[string]error),
	}
}

// DummyFetchers returns a registry serving the same dummy fetcher for every
// platform.
func DummyFetchers() map[string]standings.Fetcher {
	f := NewDummyFetcher()
	return map[string]standings.Fetcher{
		event.PlatformLeetCode:   f,
		event.PlatformCodeChef:   f,
		event.PlatformCodeforces: f,
	}
}

func (f *DummyFetcher) SetResult(handle string, res standings.Result) {
	f.mu.Lock()
	f.results[handle] = res
	f.mu.Unlock()
}

func (f *DummyFetcher) SetError(handle string, err error) {
	f.mu.Lock()
	f.errs[handle] = err
	f.mu.Unlock()
}

func (f *DummyFetcher) FetchResult(_ context.Context, handle, _ string) (standings.Result, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if err, ok := f.errs[handle]; ok {
		return standings.Result{}, err
	}
	if res, ok := f.results[handle]; ok {
		return res, nil
	}
	return standings.Result{}, standings.ErrNotFound
}
