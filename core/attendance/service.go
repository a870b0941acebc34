package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/attendance/core"
)

var (
	// ErrNotFound is returned when the Student or the Class is unknown to the Owner,
	// or when they do not belong to the same Course.
	ErrNotFound = core.NewNotFoundError("student or class not found")

	errSaveFailed = "could not save attendance"
)

type (
	// Repository methods only see rows of Courses owned by `ownerID`.
	Repository interface {
		// UpsertRecord inserts the Record or fully replaces the existing one of the same (student, class) pair.
		UpsertRecord(ctx context.Context, ownerID int64, rec Record, exec ...core.DBExecutor) (Record, error)
		// QueryClassRecords lists every Student of the Class's Course, with their Record if any, ordered by name.
		QueryClassRecords(ctx context.Context, ownerID, classID int64, exec ...core.DBExecutor) ([]ClassRow, error)
		// QueryStudentRecords lists the Records of a Student ordered by week number.
		QueryStudentRecords(ctx context.Context, ownerID, studentID int64, exec ...core.DBExecutor) ([]HistoryRow, error)
		// QueryReport counts, for every Student of the Course, the Records and the present ones
		// whose Class belongs to the Course. Rows are ordered by group name, then student name.
		QueryReport(ctx context.Context, ownerID, courseID int64, exec ...core.DBExecutor) ([]ReportRow, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Upsert(ctx context.Context, ownerID int64, nr NewRecord) (Record, error) {
	now := time.Now().UTC()
	return svc.repo.UpsertRecord(ctx, ownerID, Record{
		StudentID: nr.StudentID,
		ClassID:   nr.ClassID,
		Present:   bool(nr.Present),
		Comments:  null.NewString(nr.Comments, nr.Comments != ""),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// UpsertBatch upserts every item independently: a failing item does not undo the others.
func (svc *Service) UpsertBatch(ctx context.Context, ownerID, classID int64, items []BatchItem) []BatchResult {
	results := make([]BatchResult, 0, len(items))
	for _, item := range items {
		res := BatchResult{StudentID: item.StudentID}
		rec, err := svc.Upsert(ctx, ownerID, NewRecord{
			StudentID: item.StudentID,
			ClassID:   classID,
			Present:   item.Present,
			Comments:  item.Comments,
		})
		switch {
		case err == nil:
			res.Record = &rec
		case core.IsNotFound(err):
			res.Error = err.Error()
		default:
			res.Error = errSaveFailed
			res.Err = errors.Wrapf(err, "upserting attendance of student %d", item.StudentID)
		}
		results = append(results, res)
	}
	return results
}

func (svc *Service) QueryByClass(ctx context.Context, ownerID, classID int64) ([]ClassRow, error) {
	return svc.repo.QueryClassRecords(ctx, ownerID, classID)
}

func (svc *Service) QueryByStudent(ctx context.Context, ownerID, studentID int64) ([]HistoryRow, error) {
	return svc.repo.QueryStudentRecords(ctx, ownerID, studentID)
}

// Report returns the attendance summary of every Student of a Course.
func (svc *Service) Report(ctx context.Context, ownerID, courseID int64) ([]ReportRow, error) {
	rows, err := svc.repo.QueryReport(ctx, ownerID, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying report")
	}
	for i := range rows {
		rows[i].AttendancePercentage = Percentage(rows[i].PresentCount, rows[i].TotalClasses)
	}
	return rows, nil
}
