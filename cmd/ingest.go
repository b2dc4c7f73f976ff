package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"FrameFlow/config"
	"FrameFlow/core/ingest"
	"FrameFlow/db"
	"FrameFlow/logger"
	"FrameFlow/repository"
	"FrameFlow/storage"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "独立运行素材投递目录监听",
	Long:  `监听 INGEST_DIR，把落进来的媒体文件探测时长、上传对象存储并登记为素材节点`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger.InitLogger(logger.Config{Level: logger.InfoLevel})

		if err := storage.InitMinio(cfg); err != nil {
			return fmt.Errorf("初始化 MinIO 失败: %w", err)
		}
		if err := db.ConnectGormDB(cfg); err != nil {
			return fmt.Errorf("连接数据库失败: %w", err)
		}
		defer db.CloseGormDB()

		nodeRepo := repository.NewGormNodeRepository(db.GormDB)
		assets := storage.NewAssetStore(storage.GetMinioClient(), cfg.MinioBucket)
		watcher := ingest.NewWatcher(cfg.IngestDir, cfg.FFprobePath, nodeRepo, assets)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-stop
			cancel()
		}()

		if err := watcher.Run(ctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
