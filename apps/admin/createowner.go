package main

import (
	"context"
	"fmt"

	"github.com/trezcool/attendance/core/user"
)

func (cli *commandLine) createOwner(name, uname, email, pwd string) error {
	ctx := context.Background()
	nu := user.NewUser{
		Name:            name,
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err := nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Create(ctx, nu)
	if err != nil {
		return err
	}
	fmt.Printf("Owner %q created (id %d)\n", usr.Username, usr.ID)
	return nil
}
