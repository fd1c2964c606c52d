package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiebiao/library/internal/application/lending"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
)

func newLoanCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "借阅记录维护",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "assess-fine <loan-id>",
		Short: "按当前时间(未归还)或归还时间核算罚款,可重复执行",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || id == 0 {
				return fmt.Errorf("无效的借阅ID: %s", args[0])
			}

			rate, err := e.cfg.Lending.FineRate()
			if err != nil {
				return err
			}

			db, closeDB, err := e.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			uc := lending.NewAssessFineUseCase(
				rdb.NewLoanRepository(db),
				rdb.NewFineRepository(db),
				rdb.NewTxManager(db),
				loan.NewFinePolicy(e.cfg.Lending.LoanPeriodDays, rate),
				time.Now,
				e.log,
			)
			fine, err := uc.Execute(cmd.Context(), lending.AssessFineRequest{LoanID: uint(id)})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "loan=%d overdue_days=%d amount=%s paid=%t action=%s\n",
				fine.LoanID, fine.OverdueDays, fine.Amount, fine.Paid, fine.Action)
			return nil
		},
	})
	return cmd
}
