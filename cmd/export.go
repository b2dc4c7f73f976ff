package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"FrameFlow/config"
	"FrameFlow/core/export"
	"FrameFlow/core/mediastore"
	"FrameFlow/db"
	"FrameFlow/logger"
	"FrameFlow/repository"
	"FrameFlow/storage"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <projectId>",
	Short: "导出项目的时间轴草稿包",
	Long:  `把项目当前的时间轴文档连同引用的素材打成草稿包（zip），不经过HTTP服务`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID := args[0]
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
		timelineRepo := repository.NewGormTimelineRepository(db.GormDB)
		assets := storage.NewAssetStore(storage.GetMinioClient(), cfg.MinioBucket)
		store := mediastore.New(nodeRepo, assets)

		ctx := context.Background()
		doc, err := timelineRepo.Get(ctx, projectID)
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("项目 %s 没有时间轴文档", projectID)
		}

		out := exportOutput
		if out == "" {
			if err := os.MkdirAll(cfg.ExportDir, 0755); err != nil {
				return err
			}
			out = filepath.Join(cfg.ExportDir, fmt.Sprintf("frameflow-%s.zip", projectID))
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("创建输出文件失败: %w", err)
		}
		defer f.Close()

		serializer := export.NewSerializer(store, cfg.CanvasWidth, cfg.CanvasHeight)
		if err := serializer.Export(ctx, doc, f); err != nil {
			return fmt.Errorf("导出失败: %w", err)
		}

		fmt.Printf("导出完成: %s\n", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "输出文件路径（默认 EXPORT_DIR 下）")
	rootCmd.AddCommand(exportCmd)
}
