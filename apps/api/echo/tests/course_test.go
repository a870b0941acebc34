package tests

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/attendance/apps/api/echo"
	"github.com/trezcool/attendance/core/course"
	"github.com/trezcool/attendance/core/group"
	"github.com/trezcool/attendance/core/student"
	"github.com/trezcool/attendance/tests"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func Test_courseApi_flow(t *testing.T) {
	a := setup(t)
	owner := testutil.CreateOwner(t, a.usrRepo, "Owner", "owner", "owner@test.cd", "")
	token := getToken(t, a.conf, owner)

	// create
	rec := a.run(t, httpTest{
		method: http.MethodPost, path: "/api/courses", token: token,
		body: []byte(`{"name":"  Digital Marketing ","description":"Intro"}`),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var crs course.Course
	unmarshall(t, rec, &crs)
	assert.Equal(t, "Digital Marketing", crs.Name)
	assert.Equal(t, "Intro", crs.Description.String)
	assert.Equal(t, owner.ID, crs.UserID)

	// its classes were provisioned
	rec = a.run(t, httpTest{path: "/api/courses/" + itoa(crs.ID) + "/classes", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	var classes []course.Class
	unmarshall(t, rec, &classes)
	require.Len(t, classes, course.ClassesPerCourse)
	for i, cls := range classes {
		assert.Equal(t, i+1, cls.WeekNumber)
	}

	rec = a.run(t, httpTest{path: "/api/classes/" + itoa(classes[3].ID), token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	var cls course.Class
	unmarshall(t, rec, &cls)
	assert.Equal(t, "Class 4", cls.Title)

	// list & retrieve
	rec = a.run(t, httpTest{path: "/api/courses", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	var courses []course.Course
	unmarshall(t, rec, &courses)
	require.Len(t, courses, 1)
	assert.Equal(t, crs.ID, courses[0].ID)

	rec = a.run(t, httpTest{path: "/api/courses/" + itoa(crs.ID), token: token})
	assert.Equal(t, http.StatusOK, rec.Code)

	// groups
	rec = a.run(t, httpTest{
		method: http.MethodPost, path: "/api/courses/" + itoa(crs.ID) + "/groups", token: token,
		body: []byte(`{"name":"Group A"}`),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var grp group.Group
	unmarshall(t, rec, &grp)
	assert.Equal(t, crs.ID, grp.CourseID)
	assert.Equal(t, 0, grp.StudentCount)

	// students
	for _, name := range []string{"Beto", "Ana"} {
		rec = a.run(t, httpTest{
			method: http.MethodPost, path: "/api/groups/" + itoa(grp.ID) + "/students", token: token,
			body: marshallObj(t, student.NewStudent{Name: name, Email: name + "@Test.cd"}),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec = a.run(t, httpTest{path: "/api/groups/" + itoa(grp.ID) + "/students", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	var students []student.Student
	unmarshall(t, rec, &students)
	require.Len(t, students, 2)
	assert.Equal(t, "Ana", students[0].Name)
	assert.Equal(t, "ana@test.cd", students[0].Email.String)

	rec = a.run(t, httpTest{path: "/api/courses/" + itoa(crs.ID) + "/groups", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	var groups []group.Group
	unmarshall(t, rec, &groups)
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].StudentCount)

	// deletes
	runHTTPTests(t, a, []httpTest{
		{
			name: "delete student", method: http.MethodDelete, path: "/api/students/" + itoa(students[0].ID), token: token,
			wantCode: http.StatusOK, wantData: marshallObj(t, MessageResponse{Message: "Student deleted successfully"}),
		},
		{
			name: "delete student again", method: http.MethodDelete, path: "/api/students/" + itoa(students[0].ID), token: token,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "student not found"}),
		},
		{
			name: "delete group", method: http.MethodDelete, path: "/api/groups/" + itoa(grp.ID), token: token,
			wantCode: http.StatusOK, wantData: marshallObj(t, MessageResponse{Message: "Group deleted successfully"}),
		},
		{
			name: "delete course", method: http.MethodDelete, path: "/api/courses/" + itoa(crs.ID), token: token,
			wantCode: http.StatusOK, wantData: marshallObj(t, MessageResponse{Message: "Course deleted successfully"}),
		},
		{
			name: "retrieve deleted course", path: "/api/courses/" + itoa(crs.ID), token: token,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "course not found"}),
		},
		{name: "list after delete", path: "/api/courses", token: token, wantCode: http.StatusOK, wantData: []byte(`[]`)},
	})
}

func Test_courseApi_validation(t *testing.T) {
	a := setup(t)
	owner := testutil.CreateOwner(t, a.usrRepo, "Owner", "owner", "owner@test.cd", "")
	token := getToken(t, a.conf, owner)
	crs := testutil.CreateCourse(t, a.courseSvc, owner, "Marketing")
	grp := testutil.CreateGroup(t, a.groupRepo, owner, crs, "A")

	runHTTPTests(t, a, []httpTest{
		{
			name: "blank course name", method: http.MethodPost, path: "/api/courses", token: token, body: []byte(`{"name":"   "}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"name":"this field cannot be blank"}`),
		},
		{
			name: "blank group name", method: http.MethodPost, path: "/api/courses/" + itoa(crs.ID) + "/groups", token: token,
			body: []byte(`{}`), wantCode: http.StatusBadRequest, wantData: []byte(`{"name":"this field cannot be blank"}`),
		},
		{
			name: "invalid student email", method: http.MethodPost, path: "/api/groups/" + itoa(grp.ID) + "/students", token: token,
			body: []byte(`{"name":"Ana","email":"lol"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "malformed body", method: http.MethodPost, path: "/api/courses", token: token, body: []byte(`{"name":`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "invalid id", path: "/api/courses/lol", token: token,
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "invalid id"}),
		},
		{name: "trailing slash", path: "/api/courses/", token: token, wantCode: http.StatusOK},
	})
}

func Test_courseApi_ownerScope(t *testing.T) {
	a := setup(t)
	owner := testutil.CreateOwner(t, a.usrRepo, "Owner", "owner", "owner@test.cd", "")
	other := testutil.CreateOwner(t, a.usrRepo, "Other", "other", "other@test.cd", "")
	crs := testutil.CreateCourse(t, a.courseSvc, owner, "Marketing")
	grp := testutil.CreateGroup(t, a.groupRepo, owner, crs, "A")
	std := testutil.CreateStudent(t, a.stdRepo, owner, grp, "Ana", "")
	classes, err := a.courseSvc.QueryClasses(context.Background(), owner.ID, crs.ID)
	require.NoError(t, err)

	token := getToken(t, a.conf, other)
	empty := []byte(`[]`)
	runHTTPTests(t, a, []httpTest{
		{name: "list courses", path: "/api/courses", token: token, wantCode: http.StatusOK, wantData: empty},
		{name: "retrieve course", path: "/api/courses/" + itoa(crs.ID), token: token, wantCode: http.StatusNotFound},
		{name: "delete course", method: http.MethodDelete, path: "/api/courses/" + itoa(crs.ID), token: token, wantCode: http.StatusNotFound},
		{name: "list groups", path: "/api/courses/" + itoa(crs.ID) + "/groups", token: token, wantCode: http.StatusOK, wantData: empty},
		{
			name: "create group", method: http.MethodPost, path: "/api/courses/" + itoa(crs.ID) + "/groups", token: token,
			body: []byte(`{"name":"B"}`), wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "course not found"}),
		},
		{name: "retrieve group", path: "/api/groups/" + itoa(grp.ID), token: token, wantCode: http.StatusNotFound},
		{name: "delete group", method: http.MethodDelete, path: "/api/groups/" + itoa(grp.ID), token: token, wantCode: http.StatusNotFound},
		{name: "list students", path: "/api/groups/" + itoa(grp.ID) + "/students", token: token, wantCode: http.StatusOK, wantData: empty},
		{
			name: "create student", method: http.MethodPost, path: "/api/groups/" + itoa(grp.ID) + "/students", token: token,
			body: []byte(`{"name":"Eve"}`), wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "group not found"}),
		},
		{name: "delete student", method: http.MethodDelete, path: "/api/students/" + itoa(std.ID), token: token, wantCode: http.StatusNotFound},
		{name: "list classes", path: "/api/courses/" + itoa(crs.ID) + "/classes", token: token, wantCode: http.StatusOK, wantData: empty},
		{name: "retrieve class", path: "/api/classes/" + itoa(classes[0].ID), token: token, wantCode: http.StatusNotFound},
		{name: "report", path: "/api/courses/" + itoa(crs.ID) + "/report", token: token, wantCode: http.StatusOK, wantData: empty},
	})
}
