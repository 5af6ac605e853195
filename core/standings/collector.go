package standings

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/klabu/core"
	"github.com/trezcool/klabu/core/event"
	"github.com/trezcool/klabu/core/schedule"
	"github.com/trezcool/klabu/core/user"
)

// Collector dispatches due result-collection items: for every active member
// with a handle on the contest's platform it fetches that member's result,
// accumulates the solved count into the member's running total, then
// re-ranks the leaderboard once.
//
// One member's failure (platform error, unknown handle) never aborts the
// remaining members; it is logged and the loop continues.
type Collector struct {
	events   event.Repository
	users    *user.Service
	fetchers map[string]Fetcher
	mail     core.EmailService
	conf     *core.Config
	log      core.Logger

	// pause spaces consecutive platform calls; hooked for testing.
	pause func(time.Duration)
}

var _ schedule.Dispatcher = (*Collector)(nil)

func NewCollector(
	events event.Repository,
	users *user.Service,
	fetchers map[string]Fetcher,
	mailSvc core.EmailService,
	conf *core.Config,
	logger core.Logger,
) *Collector {
	return &Collector{
		events:   events,
		users:    users,
		fetchers: fetchers,
		mail:     mailSvc,
		conf:     conf,
		log:      logger,
		pause:    time.Sleep,
	}
}

func (c *Collector) Dispatch(ctx context.Context, it schedule.Item) error {
	if it.Kind != schedule.KindContest {
		return fmt.Errorf("unexpected item kind %q", it.Kind)
	}

	cst, err := c.events.GetContestByID(ctx, it.ID)
	if err == event.ErrContestNotFound {
		c.log.Warn(fmt.Sprintf("standings: contest %q no longer exists, skipping", it.ID))
		return nil
	} else if err != nil {
		return errors.Wrap(err, "fetching contest")
	}

	fetcher, ok := c.fetchers[cst.Platform]
	if !ok {
		return fmt.Errorf("no result fetcher for platform %q", cst.Platform)
	}

	members, err := c.users.QueryAll(ctx)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}

	var updated, skipped int
	first := true
	for _, usr := range members {
		if !usr.IsActive {
			continue
		}
		handle := usr.Handle(cst.Platform)
		if handle == "" {
			continue
		}

		if !first {
			c.pause(c.conf.Schedule.CourtesyDelay)
		}
		first = false

		res, err := fetcher.FetchResult(ctx, handle, cst.Key)
		if err == ErrNotFound {
			c.log.Warn(fmt.Sprintf("standings: %s: no %s result for %q in %q", cst.Name, cst.Platform, handle, cst.Key))
			skipped++
			continue
		} else if err != nil {
			c.log.Error(fmt.Sprintf("standings: %s: fetching %s result for %q: %v", cst.Name, cst.Platform, handle, err), err)
			skipped++
			continue
		}
		if !res.Participated || res.Solved <= 0 {
			continue
		}

		if _, err := c.users.AddSolved(ctx, usr.ID, res.Solved); err != nil {
			c.log.Error(fmt.Sprintf("standings: %s: updating solved total for user %d: %v", cst.Name, usr.ID, err), err)
			skipped++
			continue
		}
		updated++
	}

	// re-rank once, even when some members were skipped
	if err := c.users.Rerank(ctx); err != nil {
		return errors.Wrap(err, "re-ranking leaderboard")
	}

	c.log.Info(fmt.Sprintf("standings: %s: collected results (%d updated, %d skipped)", cst.Name, updated, skipped))
	c.notifyCore(ctx, cst, updated, skipped)
	return nil
}

// collectionSummaryTemplate ships under assets/templates/email.
const collectionSummaryTemplate = "collection-summary"

type collectionSummaryData struct {
	Name     string
	Platform string
	Updated  int
	Skipped  int
}

// notifyCore emails the core team a short collection summary.
func (c *Collector) notifyCore(ctx context.Context, cst event.Contest, updated, skipped int) {
	addrs, err := c.users.ResolveAudience(ctx, user.AudienceCoreMember)
	if err != nil {
		c.log.Error(fmt.Sprintf("standings: resolving core audience: %v", err), err)
		return
	}
	if len(addrs) == 0 {
		return
	}
	c.mail.SendMessages(&core.EmailMessage{
		Bcc:          addrs,
		Subject:      fmt.Sprintf("Results collected: %s", cst.Name),
		TemplateName: collectionSummaryTemplate,
		TemplateData: collectionSummaryData{
			Name:     cst.Name,
			Platform: cst.Platform,
			Updated:  updated,
			Skipped:  skipped,
		},
	})
}
