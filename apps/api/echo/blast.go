package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/joyinliving/academy/core/blast"
)

type blastApi struct {
	svc      blast.ServiceInterface
	validate *validator.Validate
}

func registerBlastAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := blastApi{
		svc:      deps.BlastSvc,
		validate: deps.Validate,
	}

	bg := g.Group("/blasts", jwt)
	bg.POST("", api.send)
	bg.POST("/preview", api.preview)
	bg.GET("", api.query)
	bg.GET("/:id", api.retrieve)
}

// Handlers

func (api *blastApi) send(ctx echo.Context) error {
	var data blast.NewBlast
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBlast")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	b, err := api.svc.Send(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "sending blast")
	}
	return ctx.JSON(http.StatusCreated, b)
}

func (api *blastApi) preview(ctx echo.Context) error {
	var data blast.NewBlast
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBlast")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	recipients, err := api.svc.Preview(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "previewing blast")
	}
	if recipients == nil {
		recipients = []blast.Recipient{}
	}
	return ctx.JSON(http.StatusOK, recipients)
}

func (api *blastApi) query(ctx echo.Context) error {
	filter := new(blast.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []blast.Blast{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	blasts, err := api.svc.Filter(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying blasts")
	}
	if blasts == nil {
		blasts = []blast.Blast{}
	}
	return ctx.JSON(http.StatusOK, blasts)
}

func (api *blastApi) retrieve(ctx echo.Context) error {
	b, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == blast.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding blast by ID")
	}
	return ctx.JSON(http.StatusOK, b)
}
