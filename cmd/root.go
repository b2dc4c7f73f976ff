package cmd

import (
	"fmt"
	"log"
	"os"

	"FrameFlow/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "frameflow",
	Short: "FrameFlow is an AI-assisted storyboard/video production backend.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting FrameFlow server...")
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
