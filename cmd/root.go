package cmd

import (
	"fmt"
	"os"

	"songshelf/config"
	"songshelf/logger"
	"songshelf/server"

	"github.com/spf13/cobra"
)

// cfg is loaded once before any sub command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "songshelf",
	Short: "songshelf 是一个按文件夹浏览本地音乐的网页播放器",
	Long:  `songshelf 提供音乐文件夹浏览、播放、自定义歌单（Custom）管理和下载功能。不带子命令时启动服务器。`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger.InitLogger(logger.Config{
			Level:      logger.ParseLevel(cfg.LogLevel),
			OutputPath: cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start(cfg)
	},
	SilenceUsage: true,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
