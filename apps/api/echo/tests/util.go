package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/attendance/apps/api/echo"
	"github.com/trezcool/attendance/core"
	"github.com/trezcool/attendance/core/attendance"
	"github.com/trezcool/attendance/core/course"
	"github.com/trezcool/attendance/core/group"
	"github.com/trezcool/attendance/core/student"
	"github.com/trezcool/attendance/core/user"
	sqlxrepos "github.com/trezcool/attendance/storage/database/sqlx"
	"github.com/trezcool/attendance/tests"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errInvalidToken = httpErr{Error: "invalid or expired jwt"}
)

type testLogger struct {
	t *testing.T
}

var _ core.Logger = (*testLogger)(nil)

func (l testLogger) log(msg string, args []interface{}) {
	l.t.Log(append([]interface{}{msg}, args...)...)
}

func (l testLogger) Debug(msg string, args ...interface{}) { l.log(msg, args) }

func (l testLogger) Info(msg string, args ...interface{}) { l.log(msg, args) }

func (l testLogger) Warn(msg string, args ...interface{}) { l.log(msg, args) }

func (l testLogger) Error(msg string, args ...interface{}) { l.log(msg, args) }

func (l testLogger) Fatal(msg string, args ...interface{}) {
	l.log(msg, args)
	l.t.FailNow()
}

type app struct {
	*Server
	conf      *core.Config
	usrRepo   user.Repository
	groupRepo group.Repository
	stdRepo   student.Repository
	courseSvc *course.Service
	attRepo   attendance.Repository
}

func setup(t *testing.T) app {
	// set up DB & repos
	db := testutil.PrepareDB(t)
	a := app{
		conf:      testutil.NewConfig(),
		usrRepo:   sqlxrepos.NewUserRepository(db),
		groupRepo: sqlxrepos.NewGroupRepository(db),
		stdRepo:   sqlxrepos.NewStudentRepository(db),
		attRepo:   sqlxrepos.NewAttendanceRepository(db),
	}
	a.courseSvc = course.NewService(db, sqlxrepos.NewCourseRepository(db))

	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)

	// set up server
	a.Server = NewServer(ServerDeps{
		Conf:          a.conf,
		Logger:        testLogger{t: t},
		UserSvc:       user.NewService(a.usrRepo),
		CourseSvc:     a.courseSvc,
		GroupSvc:      group.NewService(a.groupRepo),
		StudentSvc:    student.NewService(a.stdRepo),
		AttendanceSvc: attendance.NewService(a.attRepo),
		Validate:      validate,
		Translator:    translator,
	})
	return a
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func (a app) run(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	a.ServeHTTP(rec, req)
	return rec
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("unmarshall() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "body: %s", rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, a app, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, a.run(t, tt))
		})
	}
}
