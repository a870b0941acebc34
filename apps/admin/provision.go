package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) provision(courseID int64) error {
	if err := cli.courseSvc.Provision(context.Background(), courseID); err != nil {
		return err
	}
	fmt.Printf("Course %d provisioned\n", courseID)
	return nil
}
