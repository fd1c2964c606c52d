package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "创建或更新表结构,并初始化内置用户组",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, closeDB, err := e.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := rdb.AutoMigrate(db); err != nil {
				return err
			}
			e.log.Info("迁移完成", "driver", e.cfg.Database.Driver)
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
