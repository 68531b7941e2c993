package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/joyinliving/academy/core/recording"
)

type recordingApi struct {
	svc      recording.ServiceInterface
	validate *validator.Validate
}

func registerRecordingAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := recordingApi{
		svc:      deps.RecordingSvc,
		validate: deps.Validate,
	}

	rg := g.Group("/recordings", jwt)
	rg.POST("", api.create)
	rg.GET("", api.query)
	rg.DELETE("", api.destroyMultiple)
	rg.GET("/:id", api.retrieve)
}

// Handlers

func (api *recordingApi) create(ctx echo.Context) error {
	var data recording.NewRecording
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecording")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering recording")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *recordingApi) query(ctx echo.Context) error {
	filter := new(recording.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []recording.Recording{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	recordings, err := api.svc.Filter(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying recordings")
	}
	if recordings == nil {
		recordings = []recording.Recording{}
	}
	return ctx.JSON(http.StatusOK, recordings)
}

func (api *recordingApi) retrieve(ctx echo.Context) error {
	rec, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == recording.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding recording by ID")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *recordingApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting recordings")
	}
	return ctx.NoContent(http.StatusNoContent)
}
