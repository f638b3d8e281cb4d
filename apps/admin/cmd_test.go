package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"
	"testing"
	"time"

	"github.com/trezcool/akili/core"
	"github.com/trezcool/akili/core/payment"
	"github.com/trezcool/akili/core/student"
	"github.com/trezcool/akili/services/email"
	"github.com/trezcool/akili/storage/database/dummy"
	"github.com/trezcool/akili/tests"
)

var (
	payRepo payment.Repository
	stdRepo student.Repository
)

func setup(t *testing.T) *commandLine {
	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	payRepo = dummydb.NewPaymentRepository(db)
	stdRepo = dummydb.NewStudentRepository(db)

	conf := &core.Config{AppName: "Akili", TestMode: true}
	stdSvc := student.NewService(stdRepo, payRepo, emailsvc.NewConsoleServiceMock(conf), conf)

	// start CLI
	return &commandLine{
		stdSvc: stdSvc,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_repair(t *testing.T) {
	cli := setup(t)

	paidOn, _ := time.Parse("2006-01-02", "2024-01-05")
	std := testutil.CreateStudent(t, stdRepo, "Amani", "amani@test.cd", "B7", "Applied ML", paidOn)
	testutil.CreatePayment(t, payRepo, std.Email, 2999, payment.CurrencyINR, "tx-1", payment.StatusSuccess, paidOn)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no email", args: []string{"repair"}, wantErr: errHelp},
		{name: "no payments", args: []string{"repair", "-email", "lol@test.cd"}, wantErr: payment.ErrNoPayments},
		{name: "dry run", args: []string{"repair", "-email", std.Email}},
		{name: "apply", args: []string{"repair", "-email", std.Email, "-apply"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	refreshed, err := stdRepo.GetStudentByEmail(context.Background(), std.Email)
	if err != nil {
		t.Fatalf("GetStudentByEmail() failed: %v", err)
	}
	if refreshed.TotalPaymentsCount != 1 || refreshed.TotalAmountPaid != 2999 {
		t.Errorf("aggregates = (%v, %d), want (2999, 1)", refreshed.TotalAmountPaid, refreshed.TotalPaymentsCount)
	}
}
