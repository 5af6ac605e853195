package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/klabu/core/schedule"
)

type scheduleApi struct {
	reminders *schedule.Driver
	results   *schedule.Driver
}

// pendingSchedule lists both queues' pending items in firing order.
type pendingSchedule struct {
	Reminders []schedule.Item `json:"reminders"`
	Results   []schedule.Item `json:"results"`
}

func registerScheduleAPI(g *echo.Group, reminders, results *schedule.Driver) {
	api := scheduleApi{reminders: reminders, results: results}
	g.GET("/schedule", api.schedulePending)
}

func (api *scheduleApi) schedulePending(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, pendingSchedule{
		Reminders: api.reminders.Pending(),
		Results:   api.results.Pending(),
	})
}
