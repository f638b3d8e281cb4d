package main

import (
	"log"
	"os"

	"github.com/trezcool/akili/core"
	"github.com/trezcool/akili/core/student"
	emailsvc "github.com/trezcool/akili/services/email"
	"github.com/trezcool/akili/storage/database"
	sqlxrepos "github.com/trezcool/akili/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	payRepo := sqlxrepos.NewPaymentRepository(db)
	stdSvc := student.NewService(sqlxrepos.NewStudentRepository(db), payRepo, emailsvc.NewConsoleService(conf), conf)

	// start CLI
	cli := commandLine{
		db:     db,
		stdSvc: stdSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
