// libctl 图书馆运维命令行:迁移表结构、查看排行榜、核算罚款、监听到馆通知
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/library/pkg/logger"
)

// env 子命令共用的配置与日志
type env struct {
	configDir string
	cfg       *config.Config
	log       *slog.Logger
	closeLog  func() error
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:          "libctl",
		Short:        "图书馆借阅系统运维工具",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.closeLog != nil {
				_ = e.closeLog()
			}
		},
	}
	root.PersistentFlags().StringVarP(&e.configDir, "config", "c", "./config", "配置文件目录")

	root.AddCommand(
		newMigrateCmd(e),
		newReportCmd(e),
		newLoanCmd(e),
		newNotifyCmd(e),
	)
	return root
}

func (e *env) load() error {
	cfg, err := config.LoadFrom(e.configDir, ".")
	if err != nil {
		return err
	}
	log, closeLog, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: "stderr",
	})
	if err != nil {
		return err
	}
	e.cfg, e.log, e.closeLog = cfg, log, closeLog
	return nil
}

// openDB 命令行不自动迁移,由migrate子命令显式执行
func (e *env) openDB() (*gorm.DB, func(), error) {
	cfg := *e.cfg
	cfg.Database.AutoMigrate = false

	db, err := rdb.NewDB(&cfg, e.log)
	if err != nil {
		return nil, nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	return db, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}
