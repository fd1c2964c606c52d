package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	appreport "github.com/xiebiao/library/internal/application/report"
	"github.com/xiebiao/library/internal/domain/report"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
)

func newReportCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "借阅排行榜",
	}

	withTop := func(run func(cmd *cobra.Command, uc *appreport.TopUseCase) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			db, closeDB, err := e.openDB()
			if err != nil {
				return err
			}
			defer closeDB()
			return run(cmd, appreport.NewTopUseCase(rdb.NewReportRepository(db)))
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "top-books",
			Short: "借阅次数最多的10本书",
			Args:  cobra.NoArgs,
			RunE: withTop(func(cmd *cobra.Command, uc *appreport.TopUseCase) error {
				rows, err := uc.TopBooks(cmd.Context())
				if err != nil {
					return err
				}
				return printTopBooks(cmd.OutOrStdout(), rows)
			}),
		},
		&cobra.Command{
			Use:   "top-users",
			Short: "借阅次数最多的10位读者",
			Args:  cobra.NoArgs,
			RunE: withTop(func(cmd *cobra.Command, uc *appreport.TopUseCase) error {
				rows, err := uc.TopUsers(cmd.Context())
				if err != nil {
					return err
				}
				return printTopUsers(cmd.OutOrStdout(), rows)
			}),
		},
	)
	return cmd
}

func printTopBooks(w io.Writer, rows []report.BookLoanCount) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tBOOK_ID\tISBN\tTITLE\tLOANS")
	for i, r := range rows {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\n", i+1, r.BookID, r.ISBN, r.Title, r.LoanCount)
	}
	return tw.Flush()
}

func printTopUsers(w io.Writer, rows []report.UserLoanCount) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tUSER_ID\tUSERNAME\tLOANS")
	for i, r := range rows {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\n", i+1, r.UserID, r.Username, r.LoanCount)
	}
	return tw.Flush()
}
