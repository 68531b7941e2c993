package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/joyinliving/academy/core/attendance"
)

type attendanceApi struct {
	svc      attendance.ServiceInterface
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := attendanceApi{
		svc:      deps.AttendanceSvc,
		validate: deps.Validate,
	}

	ag := g.Group("/attendance", jwt)
	ag.POST("/mark", api.mark)
	ag.POST("/bulk", api.bulkMark)
	ag.GET("/session/:id", api.queryBySession)
	ag.GET("/student/:id", api.queryByStudent)
	ag.GET("/student/:id/summary", api.summarize)
}

// Handlers

func (api *attendanceApi) mark(ctx echo.Context) error {
	var data attendance.Mark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Mark")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.Mark(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) bulkMark(ctx echo.Context) error {
	var data attendance.BulkMarks
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkMarks")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	recs, err := api.svc.BulkMark(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "marking attendance in bulk")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) queryBySession(ctx echo.Context) error {
	recs, err := api.svc.QueryBySession(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying attendance by session")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) queryByStudent(ctx echo.Context) error {
	recs, err := api.svc.QueryByStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying attendance by student")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) summarize(ctx echo.Context) error {
	sum, err := api.svc.Summarize(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "summarizing attendance")
	}
	return ctx.JSON(http.StatusOK, sum)
}
