package course

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/attendance/core"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("course not found")
	ErrClassNotFound = core.NewNotFoundError("class not found")
)

type (
	// Repository methods taking an ownerID only see rows of Courses owned by that User.
	Repository interface {
		CreateCourse(ctx context.Context, c Course, exec ...core.DBExecutor) (Course, error)
		QueryCourses(ctx context.Context, ownerID int64, exec ...core.DBExecutor) ([]Course, error)
		GetCourse(ctx context.Context, ownerID, id int64, exec ...core.DBExecutor) (Course, error)
		// DeleteCourse removes the Course row only; it returns ErrNotFound when no row was affected.
		DeleteCourse(ctx context.Context, ownerID, id int64, exec ...core.DBExecutor) error

		CourseExists(ctx context.Context, id int64, exec ...core.DBExecutor) (bool, error)

		// CreateClasses inserts the Classes of weeks 1..count that the Course does not have yet.
		CreateClasses(ctx context.Context, courseID int64, count int, createdAt time.Time, exec ...core.DBExecutor) error
		QueryClasses(ctx context.Context, ownerID, courseID int64, exec ...core.DBExecutor) ([]Class, error)
		GetClass(ctx context.Context, ownerID, id int64, exec ...core.DBExecutor) (Class, error)
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// Create inserts a Course owned by `ownerID` and provisions its Classes in the same transaction.
func (svc *Service) Create(ctx context.Context, ownerID int64, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	var crs Course
	err := core.InTx(ctx, svc.db, func(tx core.DBExecutor) error {
		var err error
		crs, err = svc.repo.CreateCourse(ctx, Course{
			Name:        nc.Name,
			Description: null.NewString(nc.Description, nc.Description != ""),
			UserID:      ownerID,
			CreatedAt:   now,
		}, tx)
		if err != nil {
			return err
		}
		return errors.Wrap(svc.repo.CreateClasses(ctx, crs.ID, ClassesPerCourse, now, tx), "provisioning classes")
	})
	if err != nil {
		return Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

// Provision inserts the missing Classes of a Course. It is safe to run more than once.
func (svc *Service) Provision(ctx context.Context, courseID int64) error {
	exists, err := svc.repo.CourseExists(ctx, courseID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return svc.repo.CreateClasses(ctx, courseID, ClassesPerCourse, time.Now().UTC())
}

func (svc *Service) Query(ctx context.Context, ownerID int64) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, ownerID)
}

func (svc *Service) Get(ctx context.Context, ownerID, id int64) (Course, error) {
	return svc.repo.GetCourse(ctx, ownerID, id)
}

func (svc *Service) Delete(ctx context.Context, ownerID, id int64) error {
	return svc.repo.DeleteCourse(ctx, ownerID, id)
}

func (svc *Service) QueryClasses(ctx context.Context, ownerID, courseID int64) ([]Class, error) {
	return svc.repo.QueryClasses(ctx, ownerID, courseID)
}

func (svc *Service) GetClass(ctx context.Context, ownerID, id int64) (Class, error) {
	return svc.repo.GetClass(ctx, ownerID, id)
}
