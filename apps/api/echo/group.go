package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/attendance/core/group"
	"github.com/trezcool/attendance/core/student"
)

type groupApi struct {
	svc        *group.Service
	studentSvc *student.Service
	validate   *validator.Validate
}

func registerGroupAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *group.Service,
	studentSvc *student.Service,
	validate *validator.Validate,
) {
	api := groupApi{svc: svc, studentSvc: studentSvc, validate: validate}

	g.GET("/courses/:id/groups", api.query, jwt)
	g.POST("/courses/:id/groups", api.create, jwt)

	gg := g.Group("/groups/:id", jwt)
	gg.GET("", api.retrieve)
	gg.DELETE("", api.destroy)
	gg.GET("/students", api.queryStudents)
	gg.POST("/students", api.createStudent)
}

// Handlers

func (api *groupApi) query(ctx echo.Context) error {
	owner, courseID, err := ownerAndPathID(ctx)
	if err != nil {
		return err
	}
	groups, err := api.svc.Query(ctx.Request().Context(), owner, courseID)
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) create(ctx echo.Context) error {
	owner, courseID, err := ownerAndPathID(ctx)
	if err != nil {
		return err
	}
	var data group.NewGroup
	if err = bind(ctx, &data, "NewGroup"); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	grp, err := api.svc.Create(ctx.Request().Context(), owner, courseID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	owner, id, err := ownerAndPathID(ctx)
	if err != nil {
		return err
	}
	grp, err := api.svc.Get(ctx.Request().Context(), owner, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) destroy(ctx echo.Context) error {
	owner, id, err := ownerAndPathID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), owner, id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Group deleted successfully"})
}

func (api *groupApi) queryStudents(ctx echo.Context) error {
	owner, id, err := ownerAndPathID(ctx)
	if err != nil {
		return err
	}
	students, err := api.studentSvc.Query(ctx.Request().Context(), owner, id)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *groupApi) createStudent(ctx echo.Context) error {
	owner, id, err := ownerAndPathID(ctx)
	if err != nil {
		return err
	}
	var data student.NewStudent
	if err = bind(ctx, &data, "NewStudent"); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.studentSvc.Create(ctx.Request().Context(), owner, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, std)
}
