package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/klabu/core/event"
)

type eventRepository struct {
	meetings *meetingTable
	contests *contestTable
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB) event.Repository {
	return &eventRepository{meetings: db.meeting, contests: db.contest}
}

func (repo *eventRepository) CreateMeeting(_ context.Context, mtg event.Meeting) (event.Meeting, error) {
	repo.meetings.Lock()
	defer repo.meetings.Unlock()

	repo.meetings.table[mtg.ID] = &mtg
	return mtg, nil
}

func (repo *eventRepository) GetMeetingByID(_ context.Context, id string) (event.Meeting, error) {
	repo.meetings.RLock()
	defer repo.meetings.RUnlock()

	if mtg, ok := repo.meetings.table[id]; ok {
		return *mtg, nil
	}
	return event.Meeting{}, event.ErrMeetingNotFound
}

func (repo *eventRepository) QueryMeetingsStartingAfter(_ context.Context, t time.Time) ([]event.Meeting, error) {
	repo.meetings.RLock()
	defer repo.meetings.RUnlock()

	meetings := make([]event.Meeting, 0)
	for _, mtg := range repo.meetings.table {
		if mtg.StartAt.After(t) {
			meetings = append(meetings, *mtg)
		}
	}
	sort.Slice(meetings, func(i, j int) bool { return meetings[i].StartAt.Before(meetings[j].StartAt) })
	return meetings, nil
}

func (repo *eventRepository) DeleteMeetingsByID(_ context.Context, ids ...string) error {
	repo.meetings.Lock()
	defer repo.meetings.Unlock()

	for _, id := range ids {
		delete(repo.meetings.table, id)
	}
	return nil
}

func (repo *eventRepository) CreateContest(_ context.Context, cst event.Contest) (event.Contest, error) {
	repo.contests.Lock()
	defer repo.contests.Unlock()

	repo.contests.table[cst.ID] = &cst
	return cst, nil
}

func (repo *eventRepository) GetContestByID(_ context.Context, id string) (event.Contest, error) {
	repo.contests.RLock()
	defer repo.contests.RUnlock()

	if cst, ok := repo.contests.table[id]; ok {
		return *cst, nil
	}
	return event.Contest{}, event.ErrContestNotFound
}

func (repo *eventRepository) QueryContestsStartingAfter(_ context.Context, t time.Time) ([]event.Contest, error) {
	repo.contests.RLock()
	defer repo.contests.RUnlock()

	contests := make([]event.Contest, 0)
	for _, cst := range repo.contests.table {
		if cst.StartAt.After(t) {
			contests = append(contests, *cst)
		}
	}
	sort.Slice(contests, func(i, j int) bool { return contests[i].StartAt.Before(contests[j].StartAt) })
	return contests, nil
}

func (repo *eventRepository) QueryContestsEndingAfter(_ context.Context, t time.Time) ([]event.Contest, error) {
	repo.contests.RLock()
	defer repo.contests.RUnlock()

	contests := make([]event.Contest, 0)
	for _, cst := range repo.contests.table {
		if cst.EndAt.After(t) {
			contests = append(contests, *cst)
		}
	}
	sort.Slice(contests, func(i, j int) bool { return contests[i].EndAt.Before(contests[j].EndAt) })
	return contests, nil
}

func (repo *eventRepository) DeleteContestsByID(_ context.Context, ids ...string) error {
	repo.contests.Lock()
	defer repo.contests.Unlock()

	for _, id := range ids {
		delete(repo.contests.table, id)
	}
	return nil
}
