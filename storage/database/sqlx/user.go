package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/attendance/core"
	"github.com/trezcool/attendance/core/user"
)

const userColumns = "id, name, username, email, password, created_at"

type userRepository struct {
	repository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{repository{exec: exec}}
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, exec ...core.DBExecutor) error {
	var taken []user.User
	err := selectAll(ctx, repo.getExec(exec), &taken,
		"SELECT "+userColumns+" FROM users WHERE username = ? OR email = ?", username, email)
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, usr := range taken {
		if usr.Username == username {
			return user.ErrUsernameExists
		}
		if usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	id, err := insertReturningID(ctx, repo.getExec(exec),
		"INSERT INTO users (name, username, email, password, created_at) VALUES (?, ?, ?, ?, ?)",
		usr.Name, usr.Username, usr.Email, usr.PasswordHash, usr.CreatedAt)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	usr.ID = id
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int64, exec ...core.DBExecutor) (user.User, error) {
	var usr user.User
	err := get(ctx, repo.getExec(exec), &usr, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by ID")
	}
	return usr, nil
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, uname string, exec ...core.DBExecutor) (user.User, error) {
	if uname == "" {
		return user.User{}, user.ErrNotFound
	}
	var usr user.User
	err := get(ctx, repo.getExec(exec), &usr,
		"SELECT "+userColumns+" FROM users WHERE username = ? OR email = ? ORDER BY id LIMIT 1", uname, uname)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by username or email")
	}
	return usr, nil
}

func (repo userRepository) UpdatePassword(ctx context.Context, id int64, hash []byte, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	res, err := exe.ExecContext(ctx, exe.Rebind("UPDATE users SET password = ? WHERE id = ?"), hash, id)
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "updating password")
	} else if n == 0 {
		return user.ErrNotFound
	}
	return nil
}
