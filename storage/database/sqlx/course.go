package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/attendance/core"
	"github.com/trezcool/attendance/core/course"
)

const (
	courseColumns = "co.id, co.name, co.description, co.user_id, co.created_at"
	classColumns  = "c.id, c.week_number, c.title, c.course_id, c.created_at"
)

type courseRepository struct {
	repository
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) *courseRepository {
	return &courseRepository{repository{exec: exec}}
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	id, err := insertReturningID(ctx, repo.getExec(exec),
		"INSERT INTO courses (name, description, user_id, created_at) VALUES (?, ?, ?, ?)",
		crs.Name, crs.Description, crs.UserID, crs.CreatedAt)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	crs.ID = id
	return crs, nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, ownerID int64, exec ...core.DBExecutor) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	err := selectAll(ctx, repo.getExec(exec), &courses,
		"SELECT "+courseColumns+" FROM courses co WHERE co.user_id = ? ORDER BY co.created_at DESC, co.id DESC", ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, ownerID, id int64, exec ...core.DBExecutor) (course.Course, error) {
	var crs course.Course
	err := get(ctx, repo.getExec(exec), &crs,
		"SELECT "+courseColumns+" FROM courses co WHERE co.id = ? AND co.user_id = ?", id, ownerID)
	if err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "finding course by ID")
	}
	return crs, nil
}

func (repo courseRepository) CourseExists(ctx context.Context, id int64, exec ...core.DBExecutor) (bool, error) {
	ok, err := exists(ctx, repo.getExec(exec), "SELECT 1 FROM courses WHERE id = ?", id)
	return ok, errors.Wrap(err, "checking course")
}

func (repo courseRepository) DeleteCourse(ctx context.Context, ownerID, id int64, exec ...core.DBExecutor) error {
	err := deleteRows(ctx, repo.getExec(exec), course.ErrNotFound,
		"DELETE FROM courses WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil && !core.IsNotFound(err) {
		return errors.Wrap(err, "deleting course")
	}
	return err
}

func (repo courseRepository) CreateClasses(ctx context.Context, courseID int64, count int, createdAt time.Time, exec ...core.DBExecutor) error {
	if count <= 0 {
		return nil
	}
	rows := make([]string, 0, count)
	args := make([]interface{}, 0, 4*count)
	for week := 1; week <= count; week++ {
		rows = append(rows, "(?, ?, ?, ?)")
		args = append(args, week, course.ClassTitle(week), courseID, createdAt)
	}
	exe := repo.getExec(exec)
	query := "INSERT INTO classes (week_number, title, course_id, created_at) VALUES " +
		strings.Join(rows, ", ") +
		" ON CONFLICT (course_id, week_number) DO NOTHING"
	if _, err := exe.ExecContext(ctx, exe.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "inserting classes")
	}
	return nil
}

func (repo courseRepository) QueryClasses(ctx context.Context, ownerID, courseID int64, exec ...core.DBExecutor) ([]course.Class, error) {
	classes := make([]course.Class, 0)
	err := selectAll(ctx, repo.getExec(exec), &classes,
		"SELECT "+classColumns+" FROM classes c JOIN courses co ON co.id = c.course_id "+
			"WHERE c.course_id = ? AND co.user_id = ? ORDER BY c.week_number", courseID, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	return classes, nil
}

func (repo courseRepository) GetClass(ctx context.Context, ownerID, id int64, exec ...core.DBExecutor) (course.Class, error) {
	var cls course.Class
	err := get(ctx, repo.getExec(exec), &cls,
		"SELECT "+classColumns+" FROM classes c JOIN courses co ON co.id = c.course_id "+
			"WHERE c.id = ? AND co.user_id = ?", id, ownerID)
	if err != nil {
		return course.Class{}, trapNoRowsErr(err, course.ErrClassNotFound, "finding class by ID")
	}
	return cls, nil
}
