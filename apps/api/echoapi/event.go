package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/klabu/core/event"
)

type eventApi struct {
	service *event.Service
}

func registerEventAPI(g *echo.Group, svc *event.Service) {
	api := eventApi{service: svc}

	mg := g.Group("/meetings")
	mg.POST("", api.meetingCreate)
	mg.GET("/upcoming", api.meetingQueryUpcoming)
	mg.GET("/:id", api.meetingRetrieve)
	mg.DELETE("/:id", api.meetingDestroy)

	cg := g.Group("/contests")
	cg.POST("", api.contestCreate)
	cg.GET("/upcoming", api.contestQueryUpcoming)
	cg.GET("/:id", api.contestRetrieve)
	cg.DELETE("/:id", api.contestDestroy)
}

// Handlers

func (api *eventApi) meetingCreate(ctx echo.Context) error {
	data := new(event.NewMeeting)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	mtg, err := api.service.CreateMeeting(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, mtg)
}

func (api *eventApi) meetingQueryUpcoming(ctx echo.Context) error {
	meetings, err := api.service.UpcomingMeetings(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, meetings)
}

func (api *eventApi) meetingRetrieve(ctx echo.Context) error {
	mtg, err := api.service.GetMeeting(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mtg)
}

func (api *eventApi) meetingDestroy(ctx echo.Context) error {
	if err := api.service.DeleteMeeting(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *eventApi) contestCreate(ctx echo.Context) error {
	data := new(event.NewContest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	cst, err := api.service.CreateContest(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cst)
}

func (api *eventApi) contestQueryUpcoming(ctx echo.Context) error {
	contests, err := api.service.UpcomingContests(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, contests)
}

func (api *eventApi) contestRetrieve(ctx echo.Context) error {
	cst, err := api.service.GetContest(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cst)
}

func (api *eventApi) contestDestroy(ctx echo.Context) error {
	if err := api.service.DeleteContest(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
