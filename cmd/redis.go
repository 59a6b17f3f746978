package cmd

import (
	"context"
	"fmt"
	"time"

	"songshelf/cache"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis连接测试",
	Long:  `测试Redis连接是否成功，并进行基本读写操作。STORE_BACKEND=redis 之前先用它检查配置。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("开始测试Redis连接...")
		fmt.Printf("Redis配置: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		client, err := cache.NewRedisClient(cfg)
		if err != nil {
			return fmt.Errorf("无法连接到Redis: %w", err)
		}
		defer client.Close()
		fmt.Println("Redis连接成功！")

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		fmt.Println("开始测试Redis基本操作...")
		if err := cache.TestRedis(ctx, client); err != nil {
			return fmt.Errorf("Redis操作测试失败: %w", err)
		}
		fmt.Println("Redis基本操作测试成功！")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
