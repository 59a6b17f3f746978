package cmd

import (
	"fmt"

	"songshelf/core/playlist"
	"songshelf/server"

	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:   "library [folder]",
	Short: "列出音乐库",
	Long:  `不带参数时列出所有文件夹；指定文件夹时列出其中的歌曲、显示名称和播放地址。`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// 一次性命令，不需要监听目录变化
		cfg.WatchLibrary = false
		lib, err := server.OpenLibrary(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			folders, err := lib.Folders(cmd.Context())
			if err != nil {
				return err
			}
			for _, f := range folders {
				fmt.Println(f)
			}
			return nil
		}

		folder := args[0]
		files, err := lib.Files(cmd.Context(), folder)
		if err != nil {
			return fmt.Errorf("列出 %s 失败: %w", folder, err)
		}
		for i, t := range playlist.Resolve(folder, files, nil) {
			fmt.Printf("%3d  %-40s  %s\n", i, t.Name, playlist.TrackURL(t))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(libraryCmd)
}
