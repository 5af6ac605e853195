package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/klabu/core"
	"github.com/trezcool/klabu/core/schedule"
)

var (
	// errors
	ErrMeetingNotFound = errors.New("meeting not found")
	ErrContestNotFound = errors.New("contest not found")
)

type (
	Repository interface {
		CreateMeeting(ctx context.Context, mtg Meeting) (Meeting, error)
		GetMeetingByID(ctx context.Context, id string) (Meeting, error)
		// QueryMeetingsStartingAfter returns meetings with StartAt strictly
		// after t, ordered by StartAt.
		QueryMeetingsStartingAfter(ctx context.Context, t time.Time) ([]Meeting, error)
		DeleteMeetingsByID(ctx context.Context, ids ...string) error

		CreateContest(ctx context.Context, cst Contest) (Contest, error)
		GetContestByID(ctx context.Context, id string) (Contest, error)
		QueryContestsStartingAfter(ctx context.Context, t time.Time) ([]Contest, error)
		// QueryContestsEndingAfter returns contests with EndAt strictly after
		// t, ordered by EndAt; used to rebuild the result-collection queue.
		QueryContestsEndingAfter(ctx context.Context, t time.Time) ([]Contest, error)
		DeleteContestsByID(ctx context.Context, ids ...string) error
	}

	// Service owns the contests/meetings calendar and keeps the two live
	// schedulers in sync with it: creating a record queues its pending
	// item(s), deleting a record cancels them.
	Service struct {
		repo      Repository
		conf      *core.Config
		log       core.Logger
		reminders *schedule.Driver
		results   *schedule.Driver
	}
)

func NewService(repo Repository, conf *core.Config, logger core.Logger, reminders, results *schedule.Driver) *Service {
	return &Service{
		repo:      repo,
		conf:      conf,
		log:       logger,
		reminders: reminders,
		results:   results,
	}
}

func (svc *Service) CreateMeeting(ctx context.Context, nm NewMeeting) (Meeting, error) {
	now := time.Now().UTC()
	mtg := Meeting{
		ID:        uuid.New().String(),
		Title:     nm.Title,
		Agenda:    nm.Agenda,
		Audience:  nm.Audience,
		StartAt:   nm.StartAt.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	mtg, err := svc.repo.CreateMeeting(ctx, mtg)
	if err != nil {
		return Meeting{}, err
	}

	svc.reminders.Add(schedule.Item{
		ID:        mtg.ID,
		Kind:      schedule.KindMeeting,
		TriggerAt: reminderTrigger(mtg.StartAt, svc.conf, svc.log, "meeting "+mtg.ID),
	})
	return mtg, nil
}

func (svc *Service) GetMeeting(ctx context.Context, id string) (Meeting, error) {
	return svc.repo.GetMeetingByID(ctx, id)
}

func (svc *Service) DeleteMeeting(ctx context.Context, id string) error {
	if err := svc.repo.DeleteMeetingsByID(ctx, id); err != nil {
		return err
	}
	svc.reminders.Cancel(id)
	return nil
}

func (svc *Service) CreateContest(ctx context.Context, nc NewContest) (Contest, error) {
	now := time.Now().UTC()
	cst := Contest{
		ID:        uuid.New().String(),
		Name:      nc.Name,
		Platform:  nc.Platform,
		Key:       nc.Key,
		StartAt:   nc.StartAt.UTC(),
		EndAt:     nc.EndAt.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	cst, err := svc.repo.CreateContest(ctx, cst)
	if err != nil {
		return Contest{}, err
	}

	svc.reminders.Add(schedule.Item{
		ID:        cst.ID,
		Kind:      schedule.KindContest,
		Platform:  cst.Platform,
		TriggerAt: reminderTrigger(cst.StartAt, svc.conf, svc.log, "contest "+cst.ID),
	})
	svc.results.Add(schedule.Item{
		ID:        cst.ID,
		Kind:      schedule.KindContest,
		Platform:  cst.Platform,
		TriggerAt: resultTrigger(cst.EndAt, svc.conf, svc.log, "contest "+cst.ID),
	})
	return cst, nil
}

func (svc *Service) GetContest(ctx context.Context, id string) (Contest, error) {
	return svc.repo.GetContestByID(ctx, id)
}

func (svc *Service) DeleteContest(ctx context.Context, id string) error {
	if err := svc.repo.DeleteContestsByID(ctx, id); err != nil {
		return err
	}
	svc.reminders.Cancel(id)
	svc.results.Cancel(id)
	return nil
}

func (svc *Service) UpcomingMeetings(ctx context.Context) ([]Meeting, error) {
	return svc.repo.QueryMeetingsStartingAfter(ctx, time.Now().UTC())
}

func (svc *Service) UpcomingContests(ctx context.Context) ([]Contest, error) {
	return svc.repo.QueryContestsStartingAfter(ctx, time.Now().UTC())
}

// reminderTrigger computes when the reminder for an item starting at start
// fires: the configured lead interval before the start.
func reminderTrigger(start time.Time, conf *core.Config, logger core.Logger, what string) time.Time {
	return triggerOrFallback(start, -conf.Schedule.ReminderLead, conf, logger, what)
}

// resultTrigger computes when result collection for a contest ending at end
// starts: the configured grace interval after the end.
func resultTrigger(end time.Time, conf *core.Config, logger core.Logger, what string) time.Time {
	return triggerOrFallback(end, conf.Schedule.ResultGrace, conf, logger, what)
}

// triggerOrFallback guards against records with a missing timing field:
// rather than dropping (or crashing on) such a record, it is scheduled a
// fallback interval from now.
func triggerOrFallback(t time.Time, offset time.Duration, conf *core.Config, logger core.Logger, what string) time.Time {
	if t.IsZero() {
		fallback := time.Now().UTC().Add(conf.Schedule.FallbackInterval)
		logger.Warn(fmt.Sprintf("event: %s has no timing field, scheduling for %s", what, fallback.Format(time.RFC3339)))
		return fallback
	}
	return t.UTC().Add(offset)
}
