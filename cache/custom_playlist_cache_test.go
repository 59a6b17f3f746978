package cache

import (
	"context"
	"errors"
	"testing"

	"songshelf/model"
	"songshelf/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/go-test/deep"
)

func newTestCache(t *testing.T) (*CustomPlaylistCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCustomPlaylistCache(client), mr
}

func TestCustomPlaylistCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	tracks, err := c.LoadCustom(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 0 {
		t.Fatalf("expected empty list, got %v", tracks)
	}

	want := []model.Track{
		{File: "a.mp3", Name: "a", Folder: "Pop"},
		{File: "b.mp3", Name: "b", Folder: "Jazz"},
	}
	if err := c.SaveCustom(ctx, "alice", want); err != nil {
		t.Fatal(err)
	}

	raw, err := mr.Get("customPlaylist:alice")
	if err != nil {
		t.Fatal(err)
	}
	const expect = `[{"file":"a.mp3","name":"a","folder":"Pop"},{"file":"b.mp3","name":"b","folder":"Jazz"}]`
	if raw != expect {
		t.Fatalf("stored %s, want %s", raw, expect)
	}
	if ttl := mr.TTL("customPlaylist:alice"); ttl != 0 {
		t.Fatalf("custom playlist must not expire, ttl %v", ttl)
	}

	got, err := c.LoadCustom(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatal(diff)
	}
}

func TestCustomPlaylistCacheCorrupt(t *testing.T) {
	c, mr := newTestCache(t)
	if err := mr.Set("customPlaylist:alice", "oops"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.LoadCustom(context.Background(), "alice"); !errors.Is(err, repository.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for corrupt value, got %v", err)
	}
}

func TestCustomPlaylistCacheServerDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()
	// 连接失败不是数据损坏，调用方不能把它当成空歌单
	if _, err := c.LoadCustom(context.Background(), "alice"); err == nil || errors.Is(err, repository.ErrCorrupt) {
		t.Fatalf("expected a transient error, got %v", err)
	}
	if err := c.SaveCustom(context.Background(), "alice", nil); err == nil {
		t.Fatal("expected error when redis is unavailable")
	}
}

func TestTestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	if err := TestRedis(context.Background(), client); err != nil {
		t.Fatal(err)
	}
	if mr.Exists("songshelf:test_key") {
		t.Fatal("test key left behind")
	}
}
