package event

import (
	"time"

	"github.com/trezcool/klabu/core"
)

// Platforms we collect contest results from.
const (
	PlatformLeetCode   = "leetcode"
	PlatformCodeChef   = "codechef"
	PlatformCodeforces = "codeforces"
)

var AllPlatforms = []string{PlatformLeetCode, PlatformCodeChef, PlatformCodeforces}

// Meeting is a club meeting; subscribers in its audience tier are reminded
// shortly before it starts.
type Meeting struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Agenda    string    `json:"agenda"`
	Audience  string    `json:"audience"`
	StartAt   time.Time `json:"start_at"` // UTC
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contest is a coding contest on one of the tracked platforms. Members are
// reminded before it starts; results are collected shortly after it ends.
type Contest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Platform  string    `json:"platform"`
	Key       string    `json:"key"` // platform-side contest identifier/slug
	StartAt   time.Time `json:"start_at"` // UTC
	EndAt     time.Time `json:"end_at"`   // UTC
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMeeting contains information needed to schedule a new Meeting.
type NewMeeting struct {
	Title    string    `json:"title" validate:"required"`
	Agenda   string    `json:"agenda"`
	Audience string    `json:"audience" validate:"required,audience"`
	StartAt  time.Time `json:"start_at" validate:"required"`
}

func (nm *NewMeeting) Validate() error {
	nm.Title = core.CleanString(nm.Title)
	nm.Agenda = core.CleanString(nm.Agenda)
	return core.Validate.Struct(nm)
}

// NewContest contains information needed to schedule a new Contest.
type NewContest struct {
	Name     string    `json:"name" validate:"required"`
	Platform string    `json:"platform" validate:"required,platform"`
	Key      string    `json:"key" validate:"required"`
	StartAt  time.Time `json:"start_at" validate:"required"`
	EndAt    time.Time `json:"end_at" validate:"required"`
}

func (nc *NewContest) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Key = core.CleanString(nc.Key, true /* lower */)
	return core.Validate.Struct(nc)
}
