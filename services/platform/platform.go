// Package platformsvc implements the coding-platform result fetchers.
//
// Each platform exposes standings differently; every fetcher maps its
// platform's response to a standings.Result and the shared "unknown
// handle / absent from standings" case to standings.ErrNotFound.
package platformsvc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/klabu/core/event"
	"github.com/trezcool/klabu/core/standings"
)

const defaultTimeout = 15 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// Fetchers returns the production fetcher registry, one per tracked platform.
func Fetchers() map[string]standings.Fetcher {
	return map[string]standings.Fetcher{
		event.PlatformLeetCode:   NewLeetCodeFetcher(),
		event.PlatformCodeChef:   NewCodeChefFetcher(),
		event.PlatformCodeforces: NewCodeforcesFetcher(),
	}
}

// decodeJSON reads a response body into v, mapping non-2xx statuses to errors.
func decodeJSON(res *http.Response, v interface{}) error {
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return errors.Wrap(err, "decoding response")
	}
	return nil
}
