package course

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/attendance/core"
)

// ClassesPerCourse is the number of Classes provisioned for every Course.
const ClassesPerCourse = 18

type Course struct {
	ID          int64       `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Description null.String `json:"description" db:"description"`
	UserID      int64       `json:"user_id" db:"user_id"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // UTC
}

// Class is one scheduled meeting of a Course, identified by its week number.
type Class struct {
	ID         int64     `json:"id" db:"id"`
	WeekNumber int       `json:"week_number" db:"week_number"`
	Title      string    `json:"title" db:"title"`
	CourseID   int64     `json:"course_id" db:"course_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"` // UTC
}

// ClassTitle is the title given to the provisioned Class of week `week`.
func ClassTitle(week int) string {
	return "Class " + strconv.Itoa(week)
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}
