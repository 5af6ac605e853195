package event

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/klabu/core"
	"github.com/trezcool/klabu/core/schedule"
	"github.com/trezcool/klabu/core/user"
)

// Reminders dispatches due reminder items: it re-fetches the record by ID,
// resolves the audience and emails each recipient.
//
// A record that was deleted after being queued is logged and skipped; the
// driver keeps going.
type Reminders struct {
	repo  Repository
	users *user.Service
	mail  core.EmailService
	conf  *core.Config
	log   core.Logger

	// pause spaces consecutive outbound emails; hooked for testing.
	pause func(time.Duration)
}

var _ schedule.Dispatcher = (*Reminders)(nil)

func NewReminders(repo Repository, users *user.Service, mailSvc core.EmailService, conf *core.Config, logger core.Logger) *Reminders {
	return &Reminders{
		repo:  repo,
		users: users,
		mail:  mailSvc,
		conf:  conf,
		log:   logger,
		pause: time.Sleep,
	}
}

func (r *Reminders) Dispatch(ctx context.Context, it schedule.Item) error {
	switch it.Kind {
	case schedule.KindMeeting:
		return r.remindMeeting(ctx, it.ID)
	case schedule.KindContest:
		return r.remindContest(ctx, it.ID)
	default:
		return fmt.Errorf("unknown item kind %q", it.Kind)
	}
}

func (r *Reminders) remindMeeting(ctx context.Context, id string) error {
	mtg, err := r.repo.GetMeetingByID(ctx, id)
	if err == ErrMeetingNotFound {
		r.log.Warn(fmt.Sprintf("reminders: meeting %q no longer exists, skipping", id))
		return nil
	} else if err != nil {
		return errors.Wrap(err, "fetching meeting")
	}

	addrs, err := r.users.ResolveAudience(ctx, mtg.Audience)
	if err != nil {
		return errors.Wrap(err, "resolving audience")
	}

	subject := fmt.Sprintf("Reminder: %s", mtg.Title)
	r.sendAll(addrs, subject, meetingReminderTemplate, meetingReminderData{
		Title:   mtg.Title,
		StartAt: mtg.StartAt.Format(time.RFC1123),
		Agenda:  mtg.Agenda,
	})
	return nil
}

func (r *Reminders) remindContest(ctx context.Context, id string) error {
	cst, err := r.repo.GetContestByID(ctx, id)
	if err == ErrContestNotFound {
		r.log.Warn(fmt.Sprintf("reminders: contest %q no longer exists, skipping", id))
		return nil
	} else if err != nil {
		return errors.Wrap(err, "fetching contest")
	}

	// contests are open to the whole club
	addrs, err := r.users.ResolveAudience(ctx, user.AudienceAll)
	if err != nil {
		return errors.Wrap(err, "resolving audience")
	}

	subject := fmt.Sprintf("Contest starting soon: %s", cst.Name)
	r.sendAll(addrs, subject, contestReminderTemplate, contestReminderData{
		Name:     cst.Name,
		Platform: cst.Platform,
		StartAt:  cst.StartAt.Format(time.RFC1123),
	})
	return nil
}

// Email templates shipped under assets/templates/email.
const (
	meetingReminderTemplate = "meeting-reminder"
	contestReminderTemplate = "contest-reminder"
)

type (
	meetingReminderData struct {
		Title   string
		StartAt string
		Agenda  string
	}

	contestReminderData struct {
		Name     string
		Platform string
		StartAt  string
	}
)

// sendAll emails each recipient individually, spacing consecutive sends so
// the mail provider does not flag us for burst traffic.
func (r *Reminders) sendAll(addrs []mail.Address, subject, tmplName string, data interface{}) {
	for i, addr := range addrs {
		if i > 0 {
			r.pause(r.conf.Schedule.CourtesyDelay)
		}
		r.mail.SendMessages(&core.EmailMessage{
			To:           []mail.Address{addr},
			Subject:      subject,
			TemplateName: tmplName,
			TemplateData: data,
		})
	}
}
