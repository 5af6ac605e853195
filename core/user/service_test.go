package user

import (
	"context"
	"sort"
	"testing"

	"github.com/trezcool/klabu/core"
)

// fakeRepo is an in-memory Repository keyed by ID; enough for service tests.
type fakeRepo struct {
	users map[int]*User
	pk    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[int]*User)}
}

func (r *fakeRepo) CheckUsernameUniqueness(ctx context.Context, username, email string, excl ...User) error {
	for _, usr := range r.users {
		if usr.Username == username {
			return ErrUsernameExists
		}
		if usr.Email == email {
			return ErrEmailExists
		}
	}
	return nil
}

func (r *fakeRepo) CreateUser(ctx context.Context, usr User) (User, error) {
	r.pk++
	usr.ID = r.pk
	r.users[usr.ID] = &usr
	return usr, nil
}

func (r *fakeRepo) QueryAllUsers(ctx context.Context) ([]User, error) {
	all := make([]User, 0, len(r.users))
	for _, usr := range r.users {
		all = append(all, *usr)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (r *fakeRepo) GetUserByID(ctx context.Context, id int) (User, error) {
	if usr, ok := r.users[id]; ok {
		return *usr, nil
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) GetUserByUsername(ctx context.Context, username string) (User, error) {
	for _, usr := range r.users {
		if usr.Username == username {
			return *usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) GetUserByEmail(ctx context.Context, email string) (User, error) {
	for _, usr := range r.users {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *fakeRepo) FilterUsers(ctx context.Context, filter QueryFilter) ([]User, error) {
	return r.QueryAllUsers(ctx)
}

func (r *fakeRepo) UpdateUser(ctx context.Context, usr User, isActive, subscribed *bool) (User, error) {
	existing, ok := r.users[usr.ID]
	if !ok {
		return User{}, ErrNotFound
	}
	if usr.Name != "" {
		existing.Name = usr.Name
	}
	if isActive != nil {
		existing.IsActive = *isActive
	}
	if subscribed != nil {
		existing.Subscribed = *subscribed
	}
	return *existing, nil
}

func (r *fakeRepo) DeleteUsersByID(ctx context.Context, ids ...int) error {
	for _, id := range ids {
		delete(r.users, id)
	}
	return nil
}

func (r *fakeRepo) AddUserSolved(ctx context.Context, id, delta int) (User, error) {
	usr, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	usr.TotalSolved += delta
	return *usr, nil
}

func (r *fakeRepo) SetUserRank(ctx context.Context, id, rank int) error {
	usr, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	usr.Rank = rank
	return nil
}

var _ Repository = (*fakeRepo)(nil)

type noopMail struct{}

func (noopMail) SendMessages(messages ...*core.EmailMessage) {}

func addUser(t *testing.T, repo *fakeRepo, name string, roles []string, active, subscribed bool, solved int) User {
	t.Helper()
	usr, err := repo.CreateUser(context.Background(), User{
		Name:        name,
		Username:    name,
		Email:       name + "@club.test",
		IsActive:    active,
		Subscribed:  subscribed,
		Roles:       roles,
		TotalSolved: solved,
	})
	if err != nil {
		t.Fatalf("addUser(%s) failed: %v", name, err)
	}
	return usr
}

func TestService_ResolveAudience(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, noopMail{}, core.NewConfig())
	ctx := context.Background()

	addUser(t, repo, "member", []string{RoleMember}, true, true, 0)
	addUser(t, repo, "corey", []string{RoleCore}, true, true, 0)
	addUser(t, repo, "boss", []string{RoleAdminHead}, true, true, 0)
	addUser(t, repo, "ghost", []string{RoleMember}, false, true, 0)     // inactive
	addUser(t, repo, "muted", []string{RoleCore}, true, false, 0)       // unsubscribed
	addUser(t, repo, "mixed", []string{RoleMember, RoleCore}, true, true, 0)

	tests := []struct {
		tier string
		want []string
	}{
		{tier: AudienceAll, want: []string{"member", "corey", "boss", "mixed"}},
		{tier: AudienceMember, want: []string{"member", "corey", "boss", "mixed"}},
		{tier: AudienceCoreMember, want: []string{"corey", "boss", "mixed"}},
	}
	for _, tt := range tests {
		t.Run(tt.tier, func(t *testing.T) {
			addrs, err := svc.ResolveAudience(ctx, tt.tier)
			if err != nil {
				t.Fatalf("ResolveAudience(%s) failed: %v", tt.tier, err)
			}
			got := make([]string, len(addrs))
			for i, a := range addrs {
				got[i] = a.Name
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ResolveAudience(%s) = %v; want %v", tt.tier, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("ResolveAudience(%s)[%d] = %q; want %q", tt.tier, i, got[i], tt.want[i])
				}
			}
		})
	}

	if _, err := svc.ResolveAudience(ctx, "VIP"); err == nil {
		t.Error("ResolveAudience(VIP) did not fail on unknown tier")
	}
}

func TestService_Rerank(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, noopMail{}, core.NewConfig())
	ctx := context.Background()

	a := addUser(t, repo, "a", []string{RoleMember}, true, true, 5)
	b := addUser(t, repo, "b", []string{RoleMember}, true, true, 12)
	c := addUser(t, repo, "c", []string{RoleMember}, true, true, 5) // tied with a
	d := addUser(t, repo, "d", []string{RoleMember}, true, true, 0)

	if err := svc.Rerank(ctx); err != nil {
		t.Fatalf("Rerank() failed: %v", err)
	}

	wantRanks := map[int]int{
		b.ID: 1,
		a.ID: 2, // ties keep insertion order: a before c
		c.ID: 3,
		d.ID: 4,
	}
	for id, want := range wantRanks {
		usr, err := repo.GetUserByID(ctx, id)
		if err != nil {
			t.Fatalf("GetUserByID(%d) failed: %v", id, err)
		}
		if usr.Rank != want {
			t.Errorf("user %q rank = %d; want %d", usr.Name, usr.Rank, want)
		}
	}
}

func TestService_RerankIsStableAcrossRuns(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, noopMail{}, core.NewConfig())
	ctx := context.Background()

	addUser(t, repo, "a", []string{RoleMember}, true, true, 7)
	addUser(t, repo, "b", []string{RoleMember}, true, true, 7)

	if err := svc.Rerank(ctx); err != nil {
		t.Fatalf("Rerank() failed: %v", err)
	}
	first, _ := svc.Leaderboard(ctx)
	if err := svc.Rerank(ctx); err != nil {
		t.Fatalf("second Rerank() failed: %v", err)
	}
	second, _ := svc.Leaderboard(ctx)

	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("leaderboard[%d] changed between identical reranks: %d vs %d", i, first[i].ID, second[i].ID)
		}
	}
}

func TestService_Leaderboard(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, noopMail{}, core.NewConfig())
	ctx := context.Background()

	addUser(t, repo, "low", []string{RoleMember}, true, true, 1)
	addUser(t, repo, "high", []string{RoleMember}, true, true, 9)
	addUser(t, repo, "gone", []string{RoleMember}, false, true, 99) // inactive, excluded

	board, err := svc.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("Leaderboard() failed: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("Leaderboard() returned %d users; want 2", len(board))
	}
	if board[0].Name != "high" || board[1].Name != "low" {
		t.Errorf("Leaderboard() order = [%s %s]; want [high low]", board[0].Name, board[1].Name)
	}
}

func TestService_AddSolved(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, noopMail{}, core.NewConfig())
	ctx := context.Background()

	usr := addUser(t, repo, "solver", []string{RoleMember}, true, true, 3)

	got, err := svc.AddSolved(ctx, usr.ID, 4)
	if err != nil {
		t.Fatalf("AddSolved() failed: %v", err)
	}
	if got.TotalSolved != 7 {
		t.Errorf("TotalSolved = %d; want 7", got.TotalSolved)
	}

	if _, err = svc.AddSolved(ctx, 999, 1); err != ErrNotFound {
		t.Errorf("AddSolved(unknown) error = %v; want ErrNotFound", err)
	}
}

func TestService_CreateDefaultsToMemberRole(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, noopMail{}, core.NewConfig())

	usr, err := svc.Create(context.Background(), NewUser{
		Name:     "Newbie",
		Username: "newbie",
		Email:    "newbie@club.test",
		Password: "s3cr3t!pass",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if len(usr.Roles) != 1 || usr.Roles[0] != RoleMember {
		t.Errorf("Roles = %v; want [%s]", usr.Roles, RoleMember)
	}
	if !usr.IsActive || !usr.Subscribed {
		t.Errorf("IsActive = %v, Subscribed = %v; want both true", usr.IsActive, usr.Subscribed)
	}
	if err := usr.CheckPassword("s3cr3t!pass"); err != nil {
		t.Errorf("CheckPassword() failed on the set password: %v", err)
	}
}
