package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/attendance/core"
	"github.com/trezcool/attendance/core/course"
	"github.com/trezcool/attendance/core/group"
)

const groupSelect = "SELECT g.id, g.name, g.course_id, g.created_at, " +
	"(SELECT COUNT(*) FROM students s WHERE s.group_id = g.id) AS student_count " +
	"FROM groups g JOIN courses co ON co.id = g.course_id "

type groupRepository struct {
	repository
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(exec core.DBExecutor) *groupRepository {
	return &groupRepository{repository{exec: exec}}
}

func (repo groupRepository) CreateGroup(ctx context.Context, ownerID int64, grp group.Group, exec ...core.DBExecutor) (group.Group, error) {
	// the SELECT yields no row unless the course is owned, so nothing is inserted
	exe := repo.getExec(exec)
	id, err := insertReturningID(ctx, exe,
		"INSERT INTO groups (name, course_id, created_at) "+
			"SELECT ?, co.id, "+typedParam(exe, "TIMESTAMPTZ")+" FROM courses co WHERE co.id = ? AND co.user_id = ?",
		grp.Name, grp.CreatedAt, grp.CourseID, ownerID)
	if err != nil {
		return group.Group{}, trapNoRowsErr(err, course.ErrNotFound, "inserting group")
	}
	grp.ID = id
	grp.StudentCount = 0
	return grp, nil
}

func (repo groupRepository) QueryGroups(ctx context.Context, ownerID, courseID int64, exec ...core.DBExecutor) ([]group.Group, error) {
	groups := make([]group.Group, 0)
	err := selectAll(ctx, repo.getExec(exec), &groups,
		groupSelect+"WHERE g.course_id = ? AND co.user_id = ? ORDER BY g.created_at DESC, g.id DESC", courseID, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	return groups, nil
}

func (repo groupRepository) GetGroup(ctx context.Context, ownerID, id int64, exec ...core.DBExecutor) (group.Group, error) {
	var grp group.Group
	err := get(ctx, repo.getExec(exec), &grp, groupSelect+"WHERE g.id = ? AND co.user_id = ?", id, ownerID)
	if err != nil {
		return group.Group{}, trapNoRowsErr(err, group.ErrNotFound, "finding group by ID")
	}
	return grp, nil
}

func (repo groupRepository) DeleteGroup(ctx context.Context, ownerID, id int64, exec ...core.DBExecutor) error {
	err := deleteRows(ctx, repo.getExec(exec), group.ErrNotFound,
		"DELETE FROM groups WHERE id = ? AND course_id IN (SELECT id FROM courses WHERE user_id = ?)", id, ownerID)
	if err != nil && !core.IsNotFound(err) {
		return errors.Wrap(err, "deleting group")
	}
	return err
}
