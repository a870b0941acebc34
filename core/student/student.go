package student

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/attendance/core"
)

var ErrNotFound = core.NewNotFoundError("student not found")

type Student struct {
	ID        int64       `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Email     null.String `json:"email" db:"email"`
	GroupID   int64       `json:"group_id" db:"group_id"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"` // UTC
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"omitempty,email"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}

type (
	// Repository methods only see Students of Groups whose Course is owned by `ownerID`.
	Repository interface {
		// CreateStudent returns group.ErrNotFound when the Group does not exist or is not owned.
		CreateStudent(ctx context.Context, ownerID int64, std Student, exec ...core.DBExecutor) (Student, error)
		// QueryStudents lists the Students of a Group ordered by name.
		QueryStudents(ctx context.Context, ownerID, groupID int64, exec ...core.DBExecutor) ([]Student, error)
		DeleteStudent(ctx context.Context, ownerID, id int64, exec ...core.DBExecutor) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ownerID, groupID int64, ns NewStudent) (Student, error) {
	return svc.repo.CreateStudent(ctx, ownerID, Student{
		Name:      ns.Name,
		Email:     null.NewString(ns.Email, ns.Email != ""),
		GroupID:   groupID,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) Query(ctx context.Context, ownerID, groupID int64) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, ownerID, groupID)
}

func (svc *Service) Delete(ctx context.Context, ownerID, id int64) error {
	return svc.repo.DeleteStudent(ctx, ownerID, id)
}
