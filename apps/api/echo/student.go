package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/attendance/core/attendance"
	"github.com/trezcool/attendance/core/student"
)

type studentApi struct {
	svc    *student.Service
	attSvc *attendance.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *student.Service, attSvc *attendance.Service) {
	api := studentApi{svc: svc, attSvc: attSvc}

	sg := g.Group("/students/:id", jwt)
	sg.DELETE("", api.destroy)
	sg.GET("/attendance", api.history)
}

// Handlers

func (api *studentApi) destroy(ctx echo.Context) error {
	owner, id, err := ownerAndPathID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), owner, id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Student deleted successfully"})
}

func (api *studentApi) history(ctx echo.Context) error {
	owner, id, err := ownerAndPathID(ctx)
	if err != nil {
		return err
	}
	rows, err := api.attSvc.QueryByStudent(ctx.Request().Context(), owner, id)
	if err != nil {
		return errors.Wrap(err, "querying student attendance")
	}
	return ctx.JSON(http.StatusOK, rows)
}
