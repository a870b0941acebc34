package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/attendance/core"
	"github.com/trezcool/attendance/core/group"
	"github.com/trezcool/attendance/core/student"
)

type studentRepository struct {
	repository
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{repository{exec: exec}}
}

func (repo studentRepository) CreateStudent(ctx context.Context, ownerID int64, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	exe := repo.getExec(exec)
	id, err := insertReturningID(ctx, exe,
		"INSERT INTO students (name, email, group_id, created_at) "+
			"SELECT ?, ?, g.id, "+typedParam(exe, "TIMESTAMPTZ")+" FROM groups g "+
			"JOIN courses co ON co.id = g.course_id WHERE g.id = ? AND co.user_id = ?",
		std.Name, std.Email, std.CreatedAt, std.GroupID, ownerID)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, group.ErrNotFound, "inserting student")
	}
	std.ID = id
	return std, nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, ownerID, groupID int64, exec ...core.DBExecutor) ([]student.Student, error) {
	students := make([]student.Student, 0)
	err := selectAll(ctx, repo.getExec(exec), &students,
		"SELECT s.id, s.name, s.email, s.group_id, s.created_at FROM students s "+
			"JOIN groups g ON g.id = s.group_id JOIN courses co ON co.id = g.course_id "+
			"WHERE s.group_id = ? AND co.user_id = ? ORDER BY s.name, s.id", groupID, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo studentRepository) DeleteStudent(ctx context.Context, ownerID, id int64, exec ...core.DBExecutor) error {
	err := deleteRows(ctx, repo.getExec(exec), student.ErrNotFound,
		"DELETE FROM students WHERE id = ? AND group_id IN "+
			"(SELECT g.id FROM groups g JOIN courses co ON co.id = g.course_id WHERE co.user_id = ?)", id, ownerID)
	if err != nil && !core.IsNotFound(err) {
		return errors.Wrap(err, "deleting student")
	}
	return err
}
