package cmd

import (
	"songshelf/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动 songshelf 服务器",
	Long:  `启动 HTTP 服务器，提供播放页面、JSON API 和音乐文件。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
