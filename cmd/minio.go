package cmd

import (
	"fmt"

	"songshelf/storage"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var minioStats bool

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO音乐库检查",
	Long:  `连接 MinIO 存储桶，列出 MINIO_PREFIX 下的音乐文件夹，或显示统计信息。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("开始连接MinIO服务器...")
		fmt.Printf("MinIO配置: %s, Bucket: %s, Prefix: %s\n", cfg.MinioEndpoint, cfg.MinioBucket, cfg.MinioPrefix)

		lib, err := storage.NewMinioLibrary(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("无法连接到MinIO: %w", err)
		}
		fmt.Println("MinIO连接成功！")

		if minioStats {
			stats, err := lib.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("获取存储桶统计信息失败: %w", err)
			}
			fmt.Printf("\n文件夹数量: %d\n", stats.Folders)
			fmt.Printf("对象数量: %d\n", stats.TotalObjects)
			fmt.Printf("总大小: %s\n", humanize.Bytes(uint64(stats.TotalSize)))
			if !stats.LastModified.IsZero() {
				fmt.Printf("最后修改: %s (%s)\n", stats.LastModified.Format("2006-01-02 15:04:05"), humanize.Time(stats.LastModified))
			}
			return nil
		}

		folders, err := lib.Folders(cmd.Context())
		if err != nil {
			return fmt.Errorf("列出文件夹失败: %w", err)
		}
		fmt.Printf("\n共 %d 个文件夹:\n", len(folders))
		for _, folder := range folders {
			files, err := lib.Files(cmd.Context(), folder)
			if err != nil {
				return fmt.Errorf("列出 %s 失败: %w", folder, err)
			}
			fmt.Printf("  📁 %s (%d)\n", folder, len(files))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)
	minioCmd.Flags().BoolVarP(&minioStats, "stats", "s", false, "显示存储桶统计信息")

	minioCmd.Example = `  # 列出音乐文件夹
  songshelf minio

  # 显示存储桶统计信息
  songshelf minio -s`
}
