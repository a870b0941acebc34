package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/attendance/core/course"
	"github.com/trezcool/attendance/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db        *sqlx.DB
	validate  *validator.Validate
	usrSvc    *user.Service
	courseSvc *course.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command (up, down, status, version, redo, reset, up-to VERSION, down-to VERSION...)")
	fmt.Println("  createowner -username USERNAME -email EMAIL [-name NAME] - create an owner account")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset an owner's password")
	fmt.Println("  provision -course ID - create the missing classes of a course")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createOwnerCmd := flag.NewFlagSet("createowner", flag.ExitOnError)
	createOwnerUname := createOwnerCmd.String("username", "", "The owner's username. The password will be prompted next.")
	createOwnerEmail := createOwnerCmd.String("email", "", "The owner's email.")
	createOwnerName := createOwnerCmd.String("name", "", "The owner's name (defaults to the username).")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The owner's username or email. The password will be prompted next.")

	provisionCmd := flag.NewFlagSet("provision", flag.ExitOnError)
	provisionCourse := provisionCmd.Int64("course", 0, "The ID of the course to provision.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "createowner":
		if err := createOwnerCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createOwnerUname == "" || *createOwnerEmail == "" {
			createOwnerCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			createOwnerCmd.Usage()
			return errHelp
		}
		name := *createOwnerName
		if name == "" {
			name = *createOwnerUname
		}
		return cli.createOwner(name, *createOwnerUname, *createOwnerEmail, pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	case "provision":
		if err := provisionCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *provisionCourse <= 0 {
			provisionCmd.Usage()
			return errHelp
		}
		return cli.provision(*provisionCourse)
	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
