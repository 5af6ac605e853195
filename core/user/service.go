package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"time"

	"github.com/trezcool/klabu/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
)

// Audience tiers; the minimum role required to receive a notification.
// A tier is superset-inclusive: COREMEMBER also reaches admins, MEMBER also
// reaches core members and admins.
const (
	AudienceAll        = "ALL"
	AudienceMember     = "MEMBER"
	AudienceCoreMember = "COREMEMBER"
)

var (
	AllAudiences = []string{AudienceAll, AudienceMember, AudienceCoreMember}

	audienceMinPriority = map[string]int{
		AudienceAll:        0,
		AudienceMember:     rolePriorities[RoleMember],
		AudienceCoreMember: rolePriorities[RoleCore],
	}
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name, User.Username or User.Email.
		FilterUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, usr User, isActive, subscribed *bool) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...int) error
		// AddUserSolved atomically increments a user's running solved total.
		AddUserSolved(ctx context.Context, id, delta int) (User, error)
		SetUserRank(ctx context.Context, id, rank int) error
	}

	Service struct {
		repo Repository
		mail core.EmailService
		conf *core.Config
	}
)

func NewService(repo Repository, mail core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mail: mail, conf: conf}
}

func (svc *Service) checkUniqueness(uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(context.Background(), uname, email, exclUsers...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	roles := nu.Roles
	if len(roles) == 0 {
		roles = []string{RoleMember}
	}
	usr := User{
		Name:       nu.Name,
		Username:   nu.Username,
		Email:      nu.Email,
		IsActive:   true,
		Subscribed: true,
		Roles:      roles,
		Handles:    nu.Handles,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}

	svc.mail.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Welcome!",
		BodyStr: fmt.Sprintf("Hi %s,\n\nYour %s account is ready. Link your coding-platform handles to appear on the leaderboard.", usr.Name, svc.conf.AppName),
	})
	return usr, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]User, error) {
	filter.Clean()
	return svc.repo.FilterUsers(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id int, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		Name:      uu.Name,
		Username:  uu.Username,
		Email:     uu.Email,
		Roles:     uu.Roles,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Handles != nil {
		usr.Handles = *uu.Handles
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive, uu.Subscribed)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

// AddSolved accumulates a contest's solved count into the user's running total.
func (svc *Service) AddSolved(ctx context.Context, id, delta int) (User, error) {
	return svc.repo.AddUserSolved(ctx, id, delta)
}

// ResolveAudience returns the addresses of all active, subscribed users whose
// highest role meets the given tier.
func (svc *Service) ResolveAudience(ctx context.Context, tier string) ([]mail.Address, error) {
	minPriority, ok := audienceMinPriority[tier]
	if !ok {
		return nil, fmt.Errorf("unknown audience tier %q", tier)
	}

	users, err := svc.repo.QueryAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	addrs := make([]mail.Address, 0, len(users))
	for _, usr := range users {
		if !usr.IsActive || !usr.Subscribed {
			continue
		}
		if MaxRolePriority(usr.Roles) < minPriority {
			continue
		}
		addrs = append(addrs, mail.Address{Name: usr.Name, Address: usr.Email})
	}
	return addrs, nil
}

// Rerank recomputes the leaderboard: rank 1 has the most solved problems.
// The sort is stable so users with equal totals keep their relative order.
func (svc *Service) Rerank(ctx context.Context) error {
	users, err := svc.repo.QueryAllUsers(ctx)
	if err != nil {
		return err
	}

	sort.SliceStable(users, func(i, j int) bool { return users[i].TotalSolved > users[j].TotalSolved })

	for i, usr := range users {
		rank := i + 1
		if usr.Rank == rank {
			continue
		}
		if err := svc.repo.SetUserRank(ctx, usr.ID, rank); err != nil {
			return err
		}
	}
	return nil
}

// Leaderboard returns all active users ordered by rank.
func (svc *Service) Leaderboard(ctx context.Context) ([]User, error) {
	users, err := svc.repo.QueryAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	ranked := make([]User, 0, len(users))
	for _, usr := range users {
		if usr.IsActive {
			ranked = append(ranked, usr)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].TotalSolved > ranked[j].TotalSolved })
	return ranked, nil
}
