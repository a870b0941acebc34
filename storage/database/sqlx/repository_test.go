package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/attendance/core"
	"github.com/trezcool/attendance/core/attendance"
	"github.com/trezcool/attendance/core/course"
	"github.com/trezcool/attendance/core/group"
	"github.com/trezcool/attendance/core/student"
	"github.com/trezcool/attendance/core/user"
	sqlxrepos "github.com/trezcool/attendance/storage/database/sqlx"
	"github.com/trezcool/attendance/tests"
)

type repos struct {
	db         *sqlx.DB
	usrRepo    user.Repository
	courseRepo course.Repository
	groupRepo  group.Repository
	stdRepo    student.Repository
	attRepo    attendance.Repository
	courseSvc  *course.Service
}

func setup(t *testing.T) repos {
	db := testutil.PrepareDB(t)
	r := repos{
		db:         db,
		usrRepo:    sqlxrepos.NewUserRepository(db),
		courseRepo: sqlxrepos.NewCourseRepository(db),
		groupRepo:  sqlxrepos.NewGroupRepository(db),
		stdRepo:    sqlxrepos.NewStudentRepository(db),
		attRepo:    sqlxrepos.NewAttendanceRepository(db),
	}
	r.courseSvc = course.NewService(db, r.courseRepo)
	return r
}

func upsert(t *testing.T, r repos, owner user.User, std student.Student, cls course.Class, present bool, comments string) attendance.Record {
	t.Helper()
	now := time.Now().UTC()
	rec, err := r.attRepo.UpsertRecord(context.Background(), owner.ID, attendance.Record{
		StudentID: std.ID,
		ClassID:   cls.ID,
		Present:   present,
		Comments:  null.NewString(comments, comments != ""),
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	return rec
}

func TestUserRepository(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	usr := testutil.CreateOwner(t, r.usrRepo, "Admin", "admin", "admin@test.cd", "admin123")

	got, err := r.usrRepo.GetUserByUsernameOrEmail(ctx, "admin@test.cd")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)
	assert.NoError(t, got.CheckPassword("admin123"))

	_, err = r.usrRepo.GetUserByUsernameOrEmail(ctx, "nobody")
	assert.Equal(t, user.ErrNotFound, err)

	assert.Equal(t, user.ErrUsernameExists, r.usrRepo.CheckUsernameUniqueness(ctx, "admin", "other@test.cd"))
	assert.Equal(t, user.ErrEmailExists, r.usrRepo.CheckUsernameUniqueness(ctx, "other", "admin@test.cd"))
	assert.NoError(t, r.usrRepo.CheckUsernameUniqueness(ctx, "other", "other@test.cd"))

	require.NoError(t, got.SetPassword("changed"))
	require.NoError(t, r.usrRepo.UpdatePassword(ctx, usr.ID, got.PasswordHash))
	got, err = r.usrRepo.GetUserByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.NoError(t, got.CheckPassword("changed"))
}

func TestCourseCreateProvisionsClasses(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	owner := testutil.CreateOwner(t, r.usrRepo, "Owner", "owner", "owner@test.cd", "")
	crs := testutil.CreateCourse(t, r.courseSvc, owner, "Marketing")

	checkClasses := func() {
		classes, err := r.courseRepo.QueryClasses(ctx, owner.ID, crs.ID)
		require.NoError(t, err)
		require.Len(t, classes, course.ClassesPerCourse)
		for i, cls := range classes {
			assert.Equal(t, i+1, cls.WeekNumber)
			assert.Equal(t, course.ClassTitle(i+1), cls.Title)
			assert.Equal(t, crs.ID, cls.CourseID)
		}
	}
	checkClasses()

	// provisioning again is a no-op
	require.NoError(t, r.courseSvc.Provision(ctx, crs.ID))
	require.NoError(t, r.courseSvc.Provision(ctx, crs.ID))
	checkClasses()

	assert.Equal(t, course.ErrNotFound, r.courseSvc.Provision(ctx, crs.ID+100))
}

func TestProvisionRepairsMissingClasses(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	owner := testutil.CreateOwner(t, r.usrRepo, "Owner", "owner", "owner@test.cd", "")
	crs, err := r.courseRepo.CreateCourse(ctx, course.Course{Name: "Legacy", UserID: owner.ID, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	require.NoError(t, r.courseRepo.CreateClasses(ctx, crs.ID, 5, time.Now().UTC()))

	require.NoError(t, r.courseSvc.Provision(ctx, crs.ID))
	classes, err := r.courseRepo.QueryClasses(ctx, owner.ID, crs.ID)
	require.NoError(t, err)
	assert.Len(t, classes, course.ClassesPerCourse)
}

func TestCourseOwnerScope(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	owner := testutil.CreateOwner(t, r.usrRepo, "Owner", "owner", "owner@test.cd", "")
	other := testutil.CreateOwner(t, r.usrRepo, "Other", "other", "other@test.cd", "")
	crs1 := testutil.CreateCourse(t, r.courseSvc, owner, "First")
	crs2 := testutil.CreateCourse(t, r.courseSvc, owner, "Second")

	courses, err := r.courseRepo.QueryCourses(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, crs2.ID, courses[0].ID) // newest first
	assert.Equal(t, crs1.ID, courses[1].ID)

	courses, err = r.courseRepo.QueryCourses(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, courses)

	_, err = r.courseRepo.GetCourse(ctx, other.ID, crs1.ID)
	assert.Equal(t, course.ErrNotFound, err)
	assert.Equal(t, course.ErrNotFound, r.courseRepo.DeleteCourse(ctx, other.ID, crs1.ID))

	classes, err := r.courseRepo.QueryClasses(ctx, other.ID, crs1.ID)
	require.NoError(t, err)
	assert.Empty(t, classes)

	require.NoError(t, r.courseRepo.DeleteCourse(ctx, owner.ID, crs1.ID))
	assert.Equal(t, course.ErrNotFound, r.courseRepo.DeleteCourse(ctx, owner.ID, crs1.ID))
}

func TestGroupStudentCount(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	owner := testutil.CreateOwner(t, r.usrRepo, "Owner", "owner", "owner@test.cd", "")
	crs := testutil.CreateCourse(t, r.courseSvc, owner, "Marketing")
	empty := testutil.CreateGroup(t, r.groupRepo, owner, crs, "Empty")
	full := testutil.CreateGroup(t, r.groupRepo, owner, crs, "Full")
	for _, name := range []string{"Carla", "Ana", "Beto"} {
		testutil.CreateStudent(t, r.stdRepo, owner, full, name, "")
	}

	groups, err := r.groupRepo.QueryGroups(ctx, owner.ID, crs.ID)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, full.ID, groups[0].ID)
	assert.Equal(t, 3, groups[0].StudentCount)
	assert.Equal(t, empty.ID, groups[1].ID)
	assert.Equal(t, 0, groups[1].StudentCount)

	students, err := r.stdRepo.QueryStudents(ctx, owner.ID, full.ID)
	require.NoError(t, err)
	require.Len(t, students, 3)
	assert.Equal(t, "Ana", students[0].Name)
	assert.Equal(t, "Beto", students[1].Name)
	assert.Equal(t, "Carla", students[2].Name)
}

func TestDeleteKeepsChildren(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	owner := testutil.CreateOwner(t, r.usrRepo, "Owner", "owner", "owner@test.cd", "")
	crs := testutil.CreateCourse(t, r.courseSvc, owner, "Marketing")
	grp := testutil.CreateGroup(t, r.groupRepo, owner, crs, "A")
	std := testutil.CreateStudent(t, r.stdRepo, owner, grp, "Ana", "ana@test.cd")

	require.NoError(t, r.groupRepo.DeleteGroup(ctx, owner.ID, grp.ID))
	assert.Equal(t, group.ErrNotFound, r.groupRepo.DeleteGroup(ctx, owner.ID, grp.ID))

	var count int
	require.NoError(t, r.db.Get(&count, "SELECT COUNT(*) FROM students WHERE id = ? AND group_id IS NULL", std.ID))
	assert.Equal(t, 1, count)

	require.NoError(t, r.courseRepo.DeleteCourse(ctx, owner.ID, crs.ID))
	require.NoError(t, r.db.Get(&count, "SELECT COUNT(*) FROM classes WHERE course_id IS NULL"))
	assert.Equal(t, course.ClassesPerCourse, count)
}

func TestDeleteStudentKeepsAttendance(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	owner := testutil.CreateOwner(t, r.usrRepo, "Owner", "owner", "owner@test.cd", "")
	crs := testutil.CreateCourse(t, r.courseSvc, owner, "Marketing")
	grp := testutil.CreateGroup(t, r.groupRepo, owner, crs, "A")
	std := testutil.CreateStudent(t, r.stdRepo, owner, grp, "Ana", "")
	classes, err := r.courseRepo.QueryClasses(ctx, owner.ID, crs.ID)
	require.NoError(t, err)
	rec := upsert(t, r, owner, std, classes[0], true, "")

	require.NoError(t, r.stdRepo.DeleteStudent(ctx, owner.ID, std.ID))

	var count int
	require.NoError(t, r.db.Get(&count, "SELECT COUNT(*) FROM attendance WHERE id = ? AND student_id IS NULL", rec.ID))
	assert.Equal(t, 1, count)

	rows, err := r.attRepo.QueryClassRecords(ctx, owner.ID, classes[0].ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCreateUnderUnownedParent(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	owner := testutil.CreateOwner(t, r.usrRepo, "Owner", "owner", "owner@test.cd", "")
	other := testutil.CreateOwner(t, r.usrRepo, "Other", "other", "other@test.cd", "")
	crs := testutil.CreateCourse(t, r.courseSvc, owner, "Marketing")
	grp := testutil.CreateGroup(t, r.groupRepo, owner, crs, "A")

	_, err := r.groupRepo.CreateGroup(ctx, other.ID, group.Group{Name: "B", CourseID: crs.ID, CreatedAt: time.Now().UTC()})
	assert.Equal(t, course.ErrNotFound, err)

	_, err = r.stdRepo.CreateStudent(ctx, other.ID, student.Student{Name: "Eve", GroupID: grp.ID, CreatedAt: time.Now().UTC()})
	assert.Equal(t, group.ErrNotFound, err)
	assert.True(t, core.IsNotFound(err))
}

func TestCreateUnderOrphanedParent(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	owner := testutil.CreateOwner(t, r.usrRepo, "Owner", "owner", "owner@test.cd", "")
	crs := testutil.CreateCourse(t, r.courseSvc, owner, "Marketing")
	grp := testutil.CreateGroup(t, r.groupRepo, owner, crs, "A")
	ana := testutil.CreateStudent(t, r.stdRepo, owner, grp, "Ana", "")
	classes, err := r.courseRepo.QueryClasses(ctx, owner.ID, crs.ID)
	require.NoError(t, err)

	// the group row survives the deletion of its course with a NULL course_id
	require.NoError(t, r.courseRepo.DeleteCourse(ctx, owner.ID, crs.ID))

	_, err = r.stdRepo.CreateStudent(ctx, owner.ID, student.Student{Name: "Beto", GroupID: grp.ID, CreatedAt: time.Now().UTC()})
	assert.Equal(t, group.ErrNotFound, err)

	now := time.Now().UTC()
	_, err = r.attRepo.UpsertRecord(ctx, owner.ID, attendance.Record{
		StudentID: ana.ID,
		ClassID:   classes[0].ID,
		Present:   true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	assert.Equal(t, attendance.ErrNotFound, err)

	var count int
	require.NoError(t, r.db.Get(&count, "SELECT COUNT(*) FROM students WHERE group_id = ?", grp.ID))
	assert.Equal(t, 1, count)
	require.NoError(t, r.db.Get(&count, "SELECT COUNT(*) FROM attendance"))
	assert.Equal(t, 0, count)
}

func TestAttendanceUpsert(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	owner := testutil.CreateOwner(t, r.usrRepo, "Owner", "owner", "owner@test.cd", "")
	crs := testutil.CreateCourse(t, r.courseSvc, owner, "Marketing")
	grp := testutil.CreateGroup(t, r.groupRepo, owner, crs, "A")
	ana := testutil.CreateStudent(t, r.stdRepo, owner, grp, "Ana", "")
	beto := testutil.CreateStudent(t, r.stdRepo, owner, grp, "Beto", "")
	classes, err := r.courseRepo.QueryClasses(ctx, owner.ID, crs.ID)
	require.NoError(t, err)

	first := upsert(t, r, owner, ana, classes[0], true, "on time")
	second := upsert(t, r, owner, ana, classes[0], false, "")
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.Present)
	assert.False(t, second.Comments.Valid) // replaced, not merged

	rows, err := r.attRepo.QueryClassRecords(ctx, owner.ID, classes[0].ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ana", rows[0].StudentName)
	assert.True(t, rows[0].ID.Valid)
	assert.Equal(t, "Beto", rows[1].StudentName)
	assert.False(t, rows[1].ID.Valid)
	assert.Equal(t, beto.ID, rows[1].StudentID)

	upsert(t, r, owner, ana, classes[2], true, "")
	history, err := r.attRepo.QueryStudentRecords(ctx, owner.ID, ana.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 1, history[0].WeekNumber)
	assert.Equal(t, 3, history[1].WeekNumber)
	assert.Equal(t, "Class 3", history[1].ClassTitle)

	// class of another course
	crs2 := testutil.CreateCourse(t, r.courseSvc, owner, "Other")
	classes2, err := r.courseRepo.QueryClasses(ctx, owner.ID, crs2.ID)
	require.NoError(t, err)
	_, err = r.attRepo.UpsertRecord(ctx, owner.ID, attendance.Record{StudentID: ana.ID, ClassID: classes2[0].ID})
	assert.Equal(t, attendance.ErrNotFound, err)
}

func TestAttendanceReport(t *testing.T) {
	r := setup(t)
	ctx := context.Background()
	svc := attendance.NewService(r.attRepo)

	owner := testutil.CreateOwner(t, r.usrRepo, "Owner", "owner", "owner@test.cd", "")
	crs := testutil.CreateCourse(t, r.courseSvc, owner, "Marketing")
	grpB := testutil.CreateGroup(t, r.groupRepo, owner, crs, "B")
	grpA := testutil.CreateGroup(t, r.groupRepo, owner, crs, "A")
	zoe := testutil.CreateStudent(t, r.stdRepo, owner, grpA, "Zoe", "")
	ana := testutil.CreateStudent(t, r.stdRepo, owner, grpB, "Ana", "")
	classes, err := r.courseRepo.QueryClasses(ctx, owner.ID, crs.ID)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		upsert(t, r, owner, zoe, classes[i], i < 7, "")
	}

	rows, err := svc.Report(ctx, owner.ID, crs.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, zoe.ID, rows[0].StudentID) // group A first
	assert.Equal(t, "A", rows[0].GroupName)
	assert.Equal(t, 10, rows[0].TotalClasses)
	assert.Equal(t, 7, rows[0].PresentCount)
	assert.Equal(t, null.Float64From(70), rows[0].AttendancePercentage)

	assert.Equal(t, ana.ID, rows[1].StudentID)
	assert.Equal(t, 0, rows[1].TotalClasses)
	assert.Equal(t, 0, rows[1].PresentCount)
	assert.False(t, rows[1].AttendancePercentage.Valid)

	other := testutil.CreateOwner(t, r.usrRepo, "Other", "other", "other@test.cd", "")
	rows, err = svc.Report(ctx, other.ID, crs.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
