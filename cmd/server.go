package cmd

import (
	"FrameFlow/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动FrameFlow服务器",
	Long:  `启动FrameFlow分镜系统的HTTP服务器，提供项目、素材、时间轴与导出API`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
