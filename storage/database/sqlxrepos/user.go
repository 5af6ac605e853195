package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/klabu/core/user"
)

type userRow struct {
	ID           int       `db:"id"`
	Name         string    `db:"name"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	IsActive     bool      `db:"is_active"`
	Subscribed   bool      `db:"subscribed"`
	Roles        string    `db:"roles"` // comma-separated
	LCHandle     string    `db:"lc_handle"`
	CCHandle     string    `db:"cc_handle"`
	CFHandle     string    `db:"cf_handle"`
	GFGHandle    string    `db:"gfg_handle"`
	TotalSolved  int       `db:"total_solved"`
	Rank         int       `db:"rank"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toUser() user.User {
	var roles []string
	if r.Roles != "" {
		roles = strings.Split(r.Roles, ",")
	}
	return user.User{
		ID:         r.ID,
		Name:       r.Name,
		Username:   r.Username,
		Email:      r.Email,
		IsActive:   r.IsActive,
		Subscribed: r.Subscribed,
		Roles:      roles,
		Handles: user.Handles{
			LeetCode:      r.LCHandle,
			CodeChef:      r.CCHandle,
			Codeforces:    r.CFHandle,
			GeeksforGeeks: r.GFGHandle,
		},
		TotalSolved:  r.TotalSolved,
		Rank:         r.Rank,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	exclIDs := make([]int, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}
	if len(exclIDs) == 0 {
		exclIDs = append(exclIDs, 0) // empty IN () is invalid SQL
	}

	q, args, err := sqlx.In(
		`SELECT username, email FROM "user" WHERE (username = ? OR email = ?) AND id NOT IN (?)`,
		username, email, exclIDs,
	)
	if err != nil {
		return errors.Wrap(err, "building uniqueness query")
	}

	var rows []userRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "checking uniqueness")
	}
	for _, row := range rows {
		if row.Username == username {
			return user.ErrUsernameExists
		}
		if row.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	const q = `
		INSERT INTO "user" (name, username, email, is_active, subscribed, roles,
			lc_handle, cc_handle, cf_handle, gfg_handle, total_solved, rank,
			password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, q,
		usr.Name, usr.Username, usr.Email, usr.IsActive, usr.Subscribed, strings.Join(usr.Roles, ","),
		usr.Handles.LeetCode, usr.Handles.CodeChef, usr.Handles.Codeforces, usr.Handles.GeeksforGeeks,
		usr.TotalSolved, usr.Rank, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	).Scan(&usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM "user" ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return toUsers(rows), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	return repo.getUser(ctx, `SELECT * FROM "user" WHERE id = $1`, id)
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, `SELECT * FROM "user" WHERE username = $1`, username)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, `SELECT * FROM "user" WHERE email = $1`, email)
}

func (repo *userRepository) getUser(ctx context.Context, q string, args ...interface{}) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	q := `SELECT * FROM "user" WHERE 1=1`
	args := make([]interface{}, 0)

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		q += ` AND (LOWER(name) LIKE ? OR LOWER(username) LIKE ? OR LOWER(email) LIKE ?)`
		args = append(args, search, search, search)
	}
	if filter.Roles != nil {
		clauses := make([]string, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			clauses = append(clauses, "roles LIKE ?")
			args = append(args, "%"+role+"%")
		}
		q += ` AND (` + strings.Join(clauses, " OR ") + `)`
	}
	if filter.IsActive != nil {
		q += ` AND is_active = ?`
		args = append(args, *filter.IsActive)
	}
	if !filter.CreatedFrom.IsZero() {
		q += ` AND created_at >= ?`
		args = append(args, filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		q += ` AND created_at <= ?`
		args = append(args, filter.CreatedTo)
	}
	q += ` ORDER BY id`

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return toUsers(rows), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive, subscribed *bool) (user.User, error) {
	orig, err := repo.GetUserByID(ctx, usr.ID)
	if err != nil {
		return user.User{}, err
	}

	if usr.Name == "" {
		usr.Name = orig.Name
	}
	if usr.Username == "" {
		usr.Username = orig.Username
	}
	if usr.Email == "" {
		usr.Email = orig.Email
	}
	if usr.Roles == nil {
		usr.Roles = orig.Roles
	}
	if (usr.Handles == user.Handles{}) {
		usr.Handles = orig.Handles
	}
	if usr.PasswordHash == nil {
		usr.PasswordHash = orig.PasswordHash
	}
	active := orig.IsActive
	if isActive != nil {
		active = *isActive
	}
	subs := orig.Subscribed
	if subscribed != nil {
		subs = *subscribed
	}

	const q = `
		UPDATE "user" SET name = $1, username = $2, email = $3, is_active = $4,
			subscribed = $5, roles = $6, lc_handle = $7, cc_handle = $8,
			cf_handle = $9, gfg_handle = $10, password_hash = $11, updated_at = $12
		WHERE id = $13`
	if _, err := repo.db.ExecContext(ctx, q,
		usr.Name, usr.Username, usr.Email, active, subs, strings.Join(usr.Roles, ","),
		usr.Handles.LeetCode, usr.Handles.CodeChef, usr.Handles.Codeforces, usr.Handles.GeeksforGeeks,
		usr.PasswordHash, usr.UpdatedAt, usr.ID,
	); err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}

func (repo *userRepository) AddUserSolved(ctx context.Context, id, delta int) (user.User, error) {
	const q = `UPDATE "user" SET total_solved = total_solved + $1, updated_at = $2 WHERE id = $3`
	res, err := repo.db.ExecContext(ctx, q, delta, time.Now().UTC(), id)
	if err != nil {
		return user.User{}, errors.Wrap(err, "incrementing solved total")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, id)
}

func (repo *userRepository) SetUserRank(ctx context.Context, id, rank int) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE "user" SET rank = $1 WHERE id = $2`, rank, id)
	if err != nil {
		return errors.Wrap(err, "setting rank")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func toUsers(rows []userRow) []user.User {
	users := make([]user.User, len(rows))
	for i, row := range rows {
		users[i] = row.toUser()
	}
	return users
}
