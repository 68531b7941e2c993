package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/joyinliving/academy/core/report"
)

type reportApi struct {
	svc report.ServiceInterface
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := reportApi{svc: deps.ReportSvc}

	rg := g.Group("/reports", jwt)
	rg.GET("/dashboard", api.dashboard)
	rg.GET("/attendance.csv", api.attendanceCSV)
}

// Handlers

func (api *reportApi) dashboard(ctx echo.Context) error {
	stats, err := api.svc.Dashboard(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing dashboard stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *reportApi) attendanceCSV(ctx echo.Context) error {
	data, err := api.svc.AttendanceCSV(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "exporting attendance CSV")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="attendance.csv"`)
	return ctx.Blob(http.StatusOK, "text/csv", data)
}
