package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/attendance/core/attendance"
	"github.com/trezcool/attendance/core/course"
)

type courseApi struct {
	svc      *course.Service
	attSvc   *attendance.Service
	validate *validator.Validate
}

func registerCourseAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *course.Service,
	attSvc *attendance.Service,
	validate *validator.Validate,
) {
	api := courseApi{svc: svc, attSvc: attSvc, validate: validate}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create)

	// detail endpoints
	cg.GET("/:id", api.retrieve)
	cg.DELETE("/:id", api.destroy)
	cg.GET("/:id/classes", api.queryClasses)
	cg.GET("/:id/report", api.report)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	owner, err := ownerID(ctx)
	if err != nil {
		return err
	}
	courses, err := api.svc.Query(ctx.Request().Context(), owner)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) create(ctx echo.Context) error {
	owner, err := ownerID(ctx)
	if err != nil {
		return err
	}
	var data course.NewCourse
	if err = bind(ctx, &data, "NewCourse"); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), owner, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	owner, id, err := ownerAndPathID(ctx)
	if err != nil {
		return err
	}
	crs, err := api.svc.Get(ctx.Request().Context(), owner, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	owner, id, err := ownerAndPathID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), owner, id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Course deleted successfully"})
}

func (api *courseApi) queryClasses(ctx echo.Context) error {
	owner, id, err := ownerAndPathID(ctx)
	if err != nil {
		return err
	}
	classes, err := api.svc.QueryClasses(ctx.Request().Context(), owner, id)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *courseApi) report(ctx echo.Context) error {
	owner, id, err := ownerAndPathID(ctx)
	if err != nil {
		return err
	}
	rows, err := api.attSvc.Report(ctx.Request().Context(), owner, id)
	if err != nil {
		return errors.Wrap(err, "building attendance report")
	}
	return ctx.JSON(http.StatusOK, rows)
}
