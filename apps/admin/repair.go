package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) repair(email string, apply bool) error {
	report, err := cli.stdSvc.Repair(context.Background(), email, !apply)
	if err != nil {
		return err
	}

	fmt.Printf("payments: %d raw, %d significant\n", report.RawCount, report.SignificantCount)
	if report.InSync() {
		fmt.Println("stored record matches the payment log; nothing to repair")
		return nil
	}

	fmt.Print(report.Diff)
	if report.DryRun {
		fmt.Println("dry run; no changes written (re-run with -apply to write)")
	} else {
		fmt.Printf("record repaired; updated_at %s\n", report.Updated.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
