package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/trezcool/akili/core/student"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db     *sql.DB
	stdSvc *student.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run database migrations (up, down, status, ...)")
	fmt.Println("  repair -email EMAIL [-apply] - recompute a student's installments; dry run unless -apply")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	repairCmd := flag.NewFlagSet("repair", flag.ExitOnError)
	repairEmail := repairCmd.String("email", "", "The student's email.")
	repairApply := repairCmd.Bool("apply", false, "Write the corrected values instead of reporting the diff.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "repair":
		if err := repairCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *repairEmail == "" {
			repairCmd.Usage()
			return errHelp
		}
		return cli.repair(*repairEmail, *repairApply)
	default:
		cli.printUsage()
		return errHelp
	}
}
