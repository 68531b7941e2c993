package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/joyinliving/academy/core/cohort"
)

type cohortApi struct {
	svc      cohort.ServiceInterface
	validate *validator.Validate
}

func registerCohortAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := cohortApi{
		svc:      deps.CohortSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/cohorts", jwt)
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
}

// Handlers

func (api *cohortApi) create(ctx echo.Context) error {
	var data cohort.NewCohort
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCohort")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating cohort")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *cohortApi) query(ctx echo.Context) error {
	filter := new(cohort.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []cohort.Cohort{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	cohorts, err := api.svc.Filter(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying cohorts")
	}
	if cohorts == nil {
		cohorts = []cohort.Cohort{}
	}
	return ctx.JSON(http.StatusOK, cohorts)
}

func (api *cohortApi) retrieve(ctx echo.Context) error {
	c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == cohort.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding cohort by ID")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *cohortApi) update(ctx echo.Context) error {
	var data cohort.UpdateCohort
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCohort")
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == cohort.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding cohort by ID")
	}
	if err = data.Validate(orig, api.validate, api.svc); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating cohort")
	}
	return ctx.JSON(http.StatusOK, c)
}
