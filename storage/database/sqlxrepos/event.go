package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/klabu/core/event"
)

type (
	meetingRow struct {
		ID        string    `db:"id"`
		Title     string    `db:"title"`
		Agenda    string    `db:"agenda"`
		Audience  string    `db:"audience"`
		StartAt   time.Time `db:"start_at"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}

	contestRow struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		Platform  string    `db:"platform"`
		Key       string    `db:"key"`
		StartAt   time.Time `db:"start_at"`
		EndAt     time.Time `db:"end_at"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
)

func (r meetingRow) toMeeting() event.Meeting {
	return event.Meeting(r)
}

func (r contestRow) toContest() event.Contest {
	return event.Contest(r)
}

type eventRepository struct {
	db *sqlx.DB
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *sqlx.DB) event.Repository {
	return &eventRepository{db: db}
}

func (repo *eventRepository) CreateMeeting(ctx context.Context, mtg event.Meeting) (event.Meeting, error) {
	const q = `
		INSERT INTO meeting (id, title, agenda, audience, start_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := repo.db.ExecContext(ctx, q,
		mtg.ID, mtg.Title, mtg.Agenda, mtg.Audience, mtg.StartAt, mtg.CreatedAt, mtg.UpdatedAt,
	); err != nil {
		return event.Meeting{}, errors.Wrap(err, "creating meeting")
	}
	return mtg, nil
}

func (repo *eventRepository) GetMeetingByID(ctx context.Context, id string) (event.Meeting, error) {
	var row meetingRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM meeting WHERE id = $1`, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return event.Meeting{}, event.ErrMeetingNotFound
		}
		return event.Meeting{}, errors.Wrap(err, "getting meeting")
	}
	return row.toMeeting(), nil
}

func (repo *eventRepository) QueryMeetingsStartingAfter(ctx context.Context, t time.Time) ([]event.Meeting, error) {
	var rows []meetingRow
	if err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM meeting WHERE start_at > $1 ORDER BY start_at`, t,
	); err != nil {
		return nil, errors.Wrap(err, "querying meetings")
	}

	meetings := make([]event.Meeting, len(rows))
	for i, row := range rows {
		meetings[i] = row.toMeeting()
	}
	return meetings, nil
}

func (repo *eventRepository) DeleteMeetingsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM meeting WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting meetings")
	}
	return nil
}

func (repo *eventRepository) CreateContest(ctx context.Context, cst event.Contest) (event.Contest, error) {
	const q = `
		INSERT INTO contest (id, name, platform, key, start_at, end_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := repo.db.ExecContext(ctx, q,
		cst.ID, cst.Name, cst.Platform, cst.Key, cst.StartAt, cst.EndAt, cst.CreatedAt, cst.UpdatedAt,
	); err != nil {
		return event.Contest{}, errors.Wrap(err, "creating contest")
	}
	return cst, nil
}

func (repo *eventRepository) GetContestByID(ctx context.Context, id string) (event.Contest, error) {
	var row contestRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM contest WHERE id = $1`, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return event.Contest{}, event.ErrContestNotFound
		}
		return event.Contest{}, errors.Wrap(err, "getting contest")
	}
	return row.toContest(), nil
}

func (repo *eventRepository) QueryContestsStartingAfter(ctx context.Context, t time.Time) ([]event.Contest, error) {
	return repo.queryContests(ctx, `SELECT * FROM contest WHERE start_at > $1 ORDER BY start_at`, t)
}

func (repo *eventRepository) QueryContestsEndingAfter(ctx context.Context, t time.Time) ([]event.Contest, error) {
	return repo.queryContests(ctx, `SELECT * FROM contest WHERE end_at > $1 ORDER BY end_at`, t)
}

func (repo *eventRepository) queryContests(ctx context.Context, q string, args ...interface{}) ([]event.Contest, error) {
	var rows []contestRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying contests")
	}

	contests := make([]event.Contest, len(rows))
	for i, row := range rows {
		contests[i] = row.toContest()
	}
	return contests, nil
}

func (repo *eventRepository) DeleteContestsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`DELETE FROM contest WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting contests")
	}
	return nil
}
