// Package testutil sets up migrated databases and fixtures for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/attendance/core"
	"github.com/trezcool/attendance/core/course"
	"github.com/trezcool/attendance/core/group"
	"github.com/trezcool/attendance/core/student"
	"github.com/trezcool/attendance/core/user"
	"github.com/trezcool/attendance/storage/database"
)

// NewConfig returns a Config suitable for tests; it does not read the environment.
func NewConfig() *core.Config {
	return &core.Config{
		Env:                       "TEST",
		AppName:                   "Attendance",
		Build:                     "test",
		TestMode:                  true,
		SecretKey:                 "test-secret",
		JWTExpirationDelta:        time.Hour,
		JWTRefreshExpirationDelta: 24 * time.Hour,
		Server: core.ServerConfig{
			Address:         ":0",
			ShutdownTimeout: time.Second,
			CORSOrigins:     []string{"*"},
		},
		Database: core.DatabaseConfig{Engine: database.EngineSQLite},
	}
}

// PrepareDB returns a migrated sqlite database living in t.TempDir(); it is closed on cleanup.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database.SetMigrationLogger(nil)
	db, err := database.Open(core.DatabaseConfig{
		Engine: database.EngineSQLite,
		Path:   filepath.Join(t.TempDir(), "test.sqlite"),
	})
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("db.Close() failed: %v", err)
		}
	})

	if err = database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// DefaultPassword is the password CreateOwner sets when none is given.
const DefaultPassword = "owner-pwd"

func CreateOwner(t *testing.T, repo user.Repository, name, uname, email, pwd string) user.User {
	t.Helper()

	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if pwd == "" {
		pwd = DefaultPassword
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("CreateOwner() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateOwner() failed: %v", err)
	}
	return usr
}

// CreateCourse creates a Course along with its Classes.
func CreateCourse(t *testing.T, svc *course.Service, owner user.User, name string) course.Course {
	t.Helper()

	crs, err := svc.Create(context.Background(), owner.ID, course.NewCourse{Name: name})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateGroup(t *testing.T, repo group.Repository, owner user.User, crs course.Course, name string) group.Group {
	t.Helper()

	grp, err := repo.CreateGroup(context.Background(), owner.ID, group.Group{
		Name:      name,
		CourseID:  crs.ID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateGroup() failed: %v", err)
	}
	return grp
}

func CreateStudent(t *testing.T, repo student.Repository, owner user.User, grp group.Group, name, email string) student.Student {
	t.Helper()

	std, err := repo.CreateStudent(context.Background(), owner.ID, student.Student{
		Name:      name,
		Email:     null.NewString(email, email != ""),
		GroupID:   grp.ID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}
