package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/attendance/core/attendance"
)

type attendanceApi struct {
	svc      *attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service, validate *validator.Validate) {
	api := attendanceApi{svc: svc, validate: validate}

	g.POST("/attendance", api.upsert, jwt)
}

func (api *attendanceApi) upsert(ctx echo.Context) error {
	owner, err := ownerID(ctx)
	if err != nil {
		return err
	}
	var data attendance.NewRecord
	if err = bind(ctx, &data, "NewRecord"); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.Upsert(ctx.Request().Context(), owner, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}
