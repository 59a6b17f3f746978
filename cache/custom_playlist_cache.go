package cache

import (
	"context"
	"errors"
	"fmt"

	"songshelf/model"
	"songshelf/repository"

	"github.com/go-redis/redis/v8"
)

// CustomPlaylistCache stores each owner's custom playlist as one JSON string
// under customPlaylist:<owner>. Keys never expire.
type CustomPlaylistCache struct {
	client *redis.Client
}

// NewCustomPlaylistCache wraps an existing client.
func NewCustomPlaylistCache(client *redis.Client) *CustomPlaylistCache {
	return &CustomPlaylistCache{client: client}
}

// LoadCustom 读取自定义歌单，键不存在时返回空列表
func (c *CustomPlaylistCache) LoadCustom(ctx context.Context, owner string) ([]model.Track, error) {
	key, err := repository.OwnerKey(owner)
	if err != nil {
		return nil, err
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []model.Track{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get custom playlist %s: %w", key, err)
	}
	return repository.DecodeTracks(data)
}

// SaveCustom 整体覆盖写入自定义歌单（单条 SET，原子）
func (c *CustomPlaylistCache) SaveCustom(ctx context.Context, owner string, tracks []model.Track) error {
	key, err := repository.OwnerKey(owner)
	if err != nil {
		return err
	}
	data, err := repository.EncodeTracks(tracks)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set custom playlist %s: %w", key, err)
	}
	return nil
}
