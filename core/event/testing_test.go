package event

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/trezcool/klabu/core"
	"github.com/trezcool/klabu/core/user"
)

// testLogger counts log calls by level.
type testLogger struct {
	mu            sync.Mutex
	warns, errors []string
}

func (l *testLogger) Debug(msg string, args ...interface{}) {}
func (l *testLogger) Info(msg string, args ...interface{})  {}
func (l *testLogger) Warn(msg string, args ...interface{}) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}
func (l *testLogger) Error(msg string, args ...interface{}) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}
func (l *testLogger) Fatal(msg string, args ...interface{}) { panic(msg) }

func (l *testLogger) warnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warns)
}

// mailRecorder captures outgoing messages synchronously.
type mailRecorder struct {
	mu   sync.Mutex
	msgs []core.EmailMessage
}

func (m *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	for _, msg := range messages {
		m.msgs = append(m.msgs, *msg)
	}
	m.mu.Unlock()
}

func (m *mailRecorder) sent() []core.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.EmailMessage, len(m.msgs))
	copy(out, m.msgs)
	return out
}

// fakeRepo is an in-memory event Repository.
type fakeRepo struct {
	mu       sync.Mutex
	meetings map[string]Meeting
	contests map[string]Contest
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		meetings: make(map[string]Meeting),
		contests: make(map[string]Contest),
	}
}

func (r *fakeRepo) CreateMeeting(ctx context.Context, mtg Meeting) (Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meetings[mtg.ID] = mtg
	return mtg, nil
}

func (r *fakeRepo) GetMeetingByID(ctx context.Context, id string) (Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mtg, ok := r.meetings[id]; ok {
		return mtg, nil
	}
	return Meeting{}, ErrMeetingNotFound
}

func (r *fakeRepo) QueryMeetingsStartingAfter(ctx context.Context, t time.Time) ([]Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Meeting
	for _, mtg := range r.meetings {
		if mtg.StartAt.After(t) {
			out = append(out, mtg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (r *fakeRepo) DeleteMeetingsByID(ctx context.Context, ids ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.meetings, id)
	}
	return nil
}

func (r *fakeRepo) CreateContest(ctx context.Context, cst Contest) (Contest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contests[cst.ID] = cst
	return cst, nil
}

func (r *fakeRepo) GetContestByID(ctx context.Context, id string) (Contest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cst, ok := r.contests[id]; ok {
		return cst, nil
	}
	return Contest{}, ErrContestNotFound
}

func (r *fakeRepo) QueryContestsStartingAfter(ctx context.Context, t time.Time) ([]Contest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Contest
	for _, cst := range r.contests {
		if cst.StartAt.After(t) {
			out = append(out, cst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (r *fakeRepo) QueryContestsEndingAfter(ctx context.Context, t time.Time) ([]Contest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Contest
	for _, cst := range r.contests {
		if cst.EndAt.After(t) {
			out = append(out, cst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndAt.Before(out[j].EndAt) })
	return out, nil
}

func (r *fakeRepo) DeleteContestsByID(ctx context.Context, ids ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.contests, id)
	}
	return nil
}

// fakeUserRepo backs a user.Service for audience resolution in tests.
type fakeUserRepo struct {
	users map[int]*user.User
	pk    int
}

var _ user.Repository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*user.User)}
}

func (r *fakeUserRepo) add(name string, roles []string, subscribed bool) user.User {
	r.pk++
	usr := &user.User{
		ID:         r.pk,
		Name:       name,
		Username:   name,
		Email:      name + "@club.test",
		IsActive:   true,
		Subscribed: subscribed,
		Roles:      roles,
	}
	r.users[usr.ID] = usr
	return *usr
}

func (r *fakeUserRepo) CheckUsernameUniqueness(ctx context.Context, username, email string, excl ...user.User) error {
	return nil
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	r.pk++
	usr.ID = r.pk
	r.users[usr.ID] = &usr
	return usr, nil
}

func (r *fakeUserRepo) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	all := make([]user.User, 0, len(r.users))
	for _, usr := range r.users {
		all = append(all, *usr)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, id int) (user.User, error) {
	if usr, ok := r.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (r *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return user.User{}, user.ErrNotFound
}

func (r *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return user.User{}, user.ErrNotFound
}

func (r *fakeUserRepo) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	return r.QueryAllUsers(ctx)
}

func (r *fakeUserRepo) UpdateUser(ctx context.Context, usr user.User, isActive, subscribed *bool) (user.User, error) {
	return usr, nil
}

func (r *fakeUserRepo) DeleteUsersByID(ctx context.Context, ids ...int) error { return nil }

func (r *fakeUserRepo) AddUserSolved(ctx context.Context, id, delta int) (user.User, error) {
	usr, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	usr.TotalSolved += delta
	return *usr, nil
}

func (r *fakeUserRepo) SetUserRank(ctx context.Context, id, rank int) error {
	if usr, ok := r.users[id]; ok {
		usr.Rank = rank
	}
	return nil
}
