package group

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/attendance/core"
)

var ErrNotFound = core.NewNotFoundError("group not found")

type Group struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	CourseID     int64     `json:"course_id" db:"course_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	StudentCount int       `json:"student_count" db:"student_count"`
}

// NewGroup contains information needed to create a new Group.
type NewGroup struct {
	Name string `json:"name" validate:"notblank"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	return validate.Struct(ng)
}

type (
	// Repository methods only see Groups of Courses owned by `ownerID`.
	Repository interface {
		// CreateGroup returns course.ErrNotFound when the Course does not exist or is not owned.
		CreateGroup(ctx context.Context, ownerID int64, grp Group, exec ...core.DBExecutor) (Group, error)
		// QueryGroups lists the Groups of a Course, newest first, with their StudentCount.
		QueryGroups(ctx context.Context, ownerID, courseID int64, exec ...core.DBExecutor) ([]Group, error)
		GetGroup(ctx context.Context, ownerID, id int64, exec ...core.DBExecutor) (Group, error)
		// DeleteGroup removes the Group row only; its Students are kept.
		DeleteGroup(ctx context.Context, ownerID, id int64, exec ...core.DBExecutor) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ownerID, courseID int64, ng NewGroup) (Group, error) {
	return svc.repo.CreateGroup(ctx, ownerID, Group{
		Name:      ng.Name,
		CourseID:  courseID,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) Query(ctx context.Context, ownerID, courseID int64) ([]Group, error) {
	return svc.repo.QueryGroups(ctx, ownerID, courseID)
}

func (svc *Service) Get(ctx context.Context, ownerID, id int64) (Group, error) {
	return svc.repo.GetGroup(ctx, ownerID, id)
}

func (svc *Service) Delete(ctx context.Context, ownerID, id int64) error {
	return svc.repo.DeleteGroup(ctx, ownerID, id)
}
