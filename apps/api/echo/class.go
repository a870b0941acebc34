package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/attendance/core"
	"github.com/trezcool/attendance/core/attendance"
	"github.com/trezcool/attendance/core/course"
)

type classApi struct {
	courseSvc *course.Service
	attSvc    *attendance.Service
	logger    core.Logger
	validate  *validator.Validate
}

func registerClassAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	courseSvc *course.Service,
	attSvc *attendance.Service,
	logger core.Logger,
	validate *validator.Validate,
) {
	api := classApi{courseSvc: courseSvc, attSvc: attSvc, logger: logger, validate: validate}

	cg := g.Group("/classes/:id", jwt)
	cg.GET("", api.retrieve)
	cg.GET("/attendance", api.queryAttendance)
	cg.POST("/attendance", api.saveAttendance)
}

// Handlers

func (api *classApi) retrieve(ctx echo.Context) error {
	owner, id, err := ownerAndPathID(ctx)
	if err != nil {
		return err
	}
	cls, err := api.courseSvc.GetClass(ctx.Request().Context(), owner, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) queryAttendance(ctx echo.Context) error {
	owner, id, err := ownerAndPathID(ctx)
	if err != nil {
		return err
	}
	rows, err := api.attSvc.QueryByClass(ctx.Request().Context(), owner, id)
	if err != nil {
		return errors.Wrap(err, "querying class attendance")
	}
	return ctx.JSON(http.StatusOK, rows)
}

// saveAttendance upserts the attendance of several Students; each record succeeds or fails on its own.
func (api *classApi) saveAttendance(ctx echo.Context) error {
	owner, id, err := ownerAndPathID(ctx)
	if err != nil {
		return err
	}
	var data attendance.BatchRequest
	if err = bind(ctx, &data, "BatchRequest"); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	results := api.attSvc.UpsertBatch(ctx.Request().Context(), owner, id, data.Records)
	for _, res := range results {
		if res.Err != nil {
			api.logger.Error("saving attendance", res.Err)
		}
	}
	return ctx.JSON(http.StatusOK, results)
}
