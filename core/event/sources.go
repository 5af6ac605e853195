package event

import (
	"context"
	"time"

	"github.com/trezcool/klabu/core"
	"github.com/trezcool/klabu/core/schedule"
)

// ReminderSource projects upcoming meetings and contests into the reminder
// scheduler's pending set. A record already inside its lead window yields a
// past trigger, which the driver fires immediately instead of dropping.
type ReminderSource struct {
	repo Repository
	conf *core.Config
	log  core.Logger
}

var _ schedule.Loader = (*ReminderSource)(nil)

func NewReminderSource(repo Repository, conf *core.Config, logger core.Logger) *ReminderSource {
	return &ReminderSource{repo: repo, conf: conf, log: logger}
}

func (src *ReminderSource) LoadPending(ctx context.Context) ([]schedule.Item, error) {
	now := time.Now().UTC()

	meetings, err := src.repo.QueryMeetingsStartingAfter(ctx, now)
	if err != nil {
		return nil, err
	}
	contests, err := src.repo.QueryContestsStartingAfter(ctx, now)
	if err != nil {
		return nil, err
	}

	items := make([]schedule.Item, 0, len(meetings)+len(contests))
	for _, mtg := range meetings {
		items = append(items, schedule.Item{
			ID:        mtg.ID,
			Kind:      schedule.KindMeeting,
			TriggerAt: reminderTrigger(mtg.StartAt, src.conf, src.log, "meeting "+mtg.ID),
		})
	}
	for _, cst := range contests {
		items = append(items, schedule.Item{
			ID:        cst.ID,
			Kind:      schedule.KindContest,
			Platform:  cst.Platform,
			TriggerAt: reminderTrigger(cst.StartAt, src.conf, src.log, "contest "+cst.ID),
		})
	}
	return items, nil
}

// ResultSource projects contests that have not ended yet into the
// result-collection scheduler's pending set.
type ResultSource struct {
	repo Repository
	conf *core.Config
	log  core.Logger
}

var _ schedule.Loader = (*ResultSource)(nil)

func NewResultSource(repo Repository, conf *core.Config, logger core.Logger) *ResultSource {
	return &ResultSource{repo: repo, conf: conf, log: logger}
}

func (src *ResultSource) LoadPending(ctx context.Context) ([]schedule.Item, error) {
	contests, err := src.repo.QueryContestsEndingAfter(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	items := make([]schedule.Item, 0, len(contests))
	for _, cst := range contests {
		items = append(items, schedule.Item{
			ID:        cst.ID,
			Kind:      schedule.KindContest,
			Platform:  cst.Platform,
			TriggerAt: resultTrigger(cst.EndAt, src.conf, src.log, "contest "+cst.ID),
		})
	}
	return items, nil
}
