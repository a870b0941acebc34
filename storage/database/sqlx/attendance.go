package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/attendance/core"
	"github.com/trezcool/attendance/core/attendance"
)

const recordColumns = "a.id, a.student_id, a.class_id, a.present, a.comments, a.created_at, a.updated_at"

type attendanceRepository struct {
	repository
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(exec core.DBExecutor) *attendanceRepository {
	return &attendanceRepository{repository{exec: exec}}
}

func (repo attendanceRepository) UpsertRecord(ctx context.Context, ownerID int64, rec attendance.Record, exec ...core.DBExecutor) (attendance.Record, error) {
	exe := repo.getExec(exec)

	// the student and the class must belong to the same owned course, otherwise nothing is inserted
	ts := typedParam(exe, "TIMESTAMPTZ")
	id, err := insertReturningID(ctx, exe,
		"INSERT INTO attendance (student_id, class_id, present, comments, created_at, updated_at) "+
			"SELECT s.id, c.id, "+typedParam(exe, "BOOLEAN")+", ?, "+ts+", "+ts+" FROM students s "+
			"JOIN groups g ON g.id = s.group_id "+
			"JOIN classes c ON c.course_id = g.course_id "+
			"JOIN courses co ON co.id = c.course_id "+
			"WHERE s.id = ? AND c.id = ? AND co.user_id = ? "+
			"ON CONFLICT (student_id, class_id) DO UPDATE SET "+
			"present = excluded.present, comments = excluded.comments, updated_at = excluded.updated_at",
		rec.Present, rec.Comments, rec.CreatedAt, rec.UpdatedAt, rec.StudentID, rec.ClassID, ownerID)
	if err != nil {
		return attendance.Record{}, trapNoRowsErr(err, attendance.ErrNotFound, "upserting attendance")
	}

	// created_at is kept on conflict, so read the stored row back
	var saved attendance.Record
	if err = get(ctx, exe, &saved, "SELECT "+recordColumns+" FROM attendance a WHERE a.id = ?", id); err != nil {
		return attendance.Record{}, errors.Wrap(err, "finding attendance by ID")
	}
	return saved, nil
}

func (repo attendanceRepository) QueryClassRecords(ctx context.Context, ownerID, classID int64, exec ...core.DBExecutor) ([]attendance.ClassRow, error) {
	rows := make([]attendance.ClassRow, 0)
	err := selectAll(ctx, repo.getExec(exec), &rows,
		"SELECT a.id, c.id AS class_id, s.id AS student_id, s.name AS student_name, "+
			"g.id AS group_id, g.name AS group_name, COALESCE(a.present, FALSE) AS present, a.comments, a.updated_at "+
			"FROM classes c "+
			"JOIN courses co ON co.id = c.course_id "+
			"JOIN groups g ON g.course_id = c.course_id "+
			"JOIN students s ON s.group_id = g.id "+
			"LEFT JOIN attendance a ON a.student_id = s.id AND a.class_id = c.id "+
			"WHERE c.id = ? AND co.user_id = ? "+
			"ORDER BY s.name, s.id", classID, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying class attendance")
	}
	return rows, nil
}

func (repo attendanceRepository) QueryStudentRecords(ctx context.Context, ownerID, studentID int64, exec ...core.DBExecutor) ([]attendance.HistoryRow, error) {
	rows := make([]attendance.HistoryRow, 0)
	err := selectAll(ctx, repo.getExec(exec), &rows,
		"SELECT "+recordColumns+", c.week_number, c.title AS class_title "+
			"FROM attendance a "+
			"JOIN classes c ON c.id = a.class_id "+
			"JOIN courses co ON co.id = c.course_id "+
			"WHERE a.student_id = ? AND co.user_id = ? "+
			"ORDER BY c.week_number", studentID, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student attendance")
	}
	return rows, nil
}

func (repo attendanceRepository) QueryReport(ctx context.Context, ownerID, courseID int64, exec ...core.DBExecutor) ([]attendance.ReportRow, error) {
	rows := make([]attendance.ReportRow, 0)
	err := selectAll(ctx, repo.getExec(exec), &rows,
		"SELECT s.id AS student_id, s.name AS student_name, g.id AS group_id, g.name AS group_name, "+
			"COUNT(a.id) AS total_classes, "+
			"COALESCE(SUM(CASE WHEN a.present THEN 1 ELSE 0 END), 0) AS present_count "+
			"FROM students s "+
			"JOIN groups g ON g.id = s.group_id "+
			"JOIN courses co ON co.id = g.course_id "+
			"LEFT JOIN classes c ON c.course_id = co.id "+
			"LEFT JOIN attendance a ON a.student_id = s.id AND a.class_id = c.id "+
			"WHERE co.id = ? AND co.user_id = ? "+
			"GROUP BY s.id, s.name, g.id, g.name "+
			"ORDER BY g.name, s.name, s.id", courseID, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance report")
	}
	return rows, nil
}
