package attendance

import (
	"bytes"
	"math"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/attendance/core"
)

// Record is the presence of one Student at one Class.
type Record struct {
	ID        int64       `json:"id" db:"id"`
	StudentID int64       `json:"student_id" db:"student_id"`
	ClassID   int64       `json:"class_id" db:"class_id"`
	Present   bool        `json:"present" db:"present"`
	Comments  null.String `json:"comments" db:"comments"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

// ClassRow is the attendance of one Student of the Course at a Class.
// ID is null while nothing was recorded for the Student.
type ClassRow struct {
	ID          null.Int64  `json:"id" db:"id"`
	ClassID     int64       `json:"class_id" db:"class_id"`
	StudentID   int64       `json:"student_id" db:"student_id"`
	StudentName string      `json:"student_name" db:"student_name"`
	GroupID     int64       `json:"group_id" db:"group_id"`
	GroupName   string      `json:"group_name" db:"group_name"`
	Present     bool        `json:"present" db:"present"`
	Comments    null.String `json:"comments" db:"comments"`
	UpdatedAt   null.Time   `json:"updated_at" db:"updated_at"`
}

// HistoryRow is a Record of a Student along with its Class.
type HistoryRow struct {
	Record
	WeekNumber int    `json:"week_number" db:"week_number"`
	ClassTitle string `json:"class_title" db:"class_title"`
}

// ReportRow aggregates the attendance of one Student within one Course.
type ReportRow struct {
	StudentID            int64        `json:"student_id" db:"student_id"`
	StudentName          string       `json:"student_name" db:"student_name"`
	GroupID              int64        `json:"group_id" db:"group_id"`
	GroupName            string       `json:"group_name" db:"group_name"`
	TotalClasses         int          `json:"total_classes" db:"total_classes"`
	PresentCount         int          `json:"present_count" db:"present_count"`
	AttendancePercentage null.Float64 `json:"attendance_percentage" db:"-"`
}

// Percentage returns present/total as a percentage rounded to 2 decimal places.
// It is null when nothing was recorded (total == 0).
func Percentage(present, total int) null.Float64 {
	if total <= 0 {
		return null.Float64{}
	}
	pct := float64(present) / float64(total) * 100
	return null.Float64From(math.Round(pct*100) / 100)
}

// Flag is a bool that also accepts 0 and 1 when decoded from JSON.
type Flag bool

var errInvalidFlag = errors.New("must be a boolean")

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = false
		return nil
	}
	if n, err := strconv.ParseFloat(string(data), 64); err == nil {
		*f = n != 0
		return nil
	}
	b, err := strconv.ParseBool(string(data))
	if err != nil {
		return errInvalidFlag
	}
	*f = Flag(b)
	return nil
}

// NewRecord contains information needed to record the presence of a Student at a Class.
type NewRecord struct {
	StudentID int64  `json:"student_id" validate:"required,gt=0"`
	ClassID   int64  `json:"class_id" validate:"required,gt=0"`
	Present   Flag   `json:"present"`
	Comments  string `json:"comments"`
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.Comments = core.CleanString(nr.Comments)
	return validate.Struct(nr)
}

type (
	// BatchItem is one entry of a BatchRequest; the Class comes from the request path.
	BatchItem struct {
		StudentID int64  `json:"student_id" validate:"required,gt=0"`
		Present   Flag   `json:"present"`
		Comments  string `json:"comments"`
	}

	BatchRequest struct {
		Records []BatchItem `json:"records" validate:"required,dive"`
	}

	// BatchResult is the outcome of one BatchItem: either Record or Error is set.
	BatchResult struct {
		StudentID int64   `json:"student_id"`
		Record    *Record `json:"record,omitempty"`
		Error     string  `json:"error,omitempty"`
		Err       error   `json:"-"`
	}
)

func (br *BatchRequest) Validate(validate *validator.Validate) error {
	for i := range br.Records {
		br.Records[i].Comments = core.CleanString(br.Records[i].Comments)
	}
	return validate.Struct(br)
}
