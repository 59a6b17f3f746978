package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"songshelf/config"
	"songshelf/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioLibrary reads folders from a bucket: every "directory" directly under
// Prefix is a folder, e.g. music/Rock/Song One.mp3.
type MinioLibrary struct {
	client *minio.Client
	bucket string
	prefix string
}

// BucketStats 存储桶中音乐文件的统计信息
type BucketStats struct {
	Folders      int
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// NewMinioLibrary 初始化 MinIO 客户端并确认存储桶存在
func NewMinioLibrary(ctx context.Context, cfg *config.Config) (*MinioLibrary, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("检查存储桶失败: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("存储桶 %s 不存在", cfg.MinioBucket)
	}

	prefix := cfg.MinioPrefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	logger.Info("MinIO library ready",
		logger.String("endpoint", cfg.MinioEndpoint),
		logger.String("bucket", cfg.MinioBucket),
		logger.String("prefix", prefix))
	return &MinioLibrary{client: client, bucket: cfg.MinioBucket, prefix: prefix}, nil
}

// Folders lists the common prefixes directly below the library prefix.
func (m *MinioLibrary) Folders(ctx context.Context) ([]string, error) {
	var folders []string
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: m.prefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("列出文件夹失败: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, "/") {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, m.prefix), "/")
		if !ValidName(name) || strings.HasPrefix(name, ".") || name == reservedFolder {
			continue
		}
		folders = append(folders, name)
	}
	sort.Strings(folders)
	return folders, nil
}

// Files lists the audio objects directly inside folder.
func (m *MinioLibrary) Files(ctx context.Context, folder string) ([]string, error) {
	folderPrefix, err := m.folderPrefix(folder)
	if err != nil {
		return nil, err
	}

	var files []string
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: folderPrefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("列出文件失败: %w", obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, folderPrefix)
		if strings.HasSuffix(obj.Key, "/") || !ValidName(name) || !IsAudioFile(name) {
			continue
		}
		files = append(files, name)
	}
	if len(files) == 0 {
		// An empty folder has no objects at all, so it cannot be told apart
		// from a missing one; report missing only when the folder is not listed.
		folders, err := m.Folders(ctx)
		if err != nil {
			return nil, err
		}
		if i := sort.SearchStrings(folders, folder); i == len(folders) || folders[i] != folder {
			return nil, ErrNotFound
		}
	}
	sort.Strings(files)
	return files, nil
}

// Open fetches one object. The returned reader supports Seek, so range
// requests work without buffering the whole file.
func (m *MinioLibrary) Open(ctx context.Context, folder, file string) (*Object, error) {
	folderPrefix, err := m.folderPrefix(folder)
	if err != nil {
		return nil, err
	}
	if !ValidName(file) || !IsAudioFile(file) {
		return nil, ErrInvalidName
	}

	obj, err := m.client.GetObject(ctx, m.bucket, folderPrefix+file, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("读取对象失败: %w", err)
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("获取对象信息失败: %w", err)
	}

	return &Object{ReadSeekCloser: obj, Name: file, Size: info.Size, ModTime: info.LastModified}, nil
}

// Stats 统计音乐前缀下的对象数量与大小
func (m *MinioLibrary) Stats(ctx context.Context) (BucketStats, error) {
	var stats BucketStats
	folders, err := m.Folders(ctx)
	if err != nil {
		return stats, err
	}
	stats.Folders = len(folders)

	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: m.prefix, Recursive: true}) {
		if obj.Err != nil {
			return stats, fmt.Errorf("列出对象时出错: %w", obj.Err)
		}
		stats.TotalObjects++
		stats.TotalSize += obj.Size
		if obj.LastModified.After(stats.LastModified) {
			stats.LastModified = obj.LastModified
		}
	}
	return stats, nil
}

func (m *MinioLibrary) folderPrefix(folder string) (string, error) {
	if !ValidName(folder) || strings.HasPrefix(folder, ".") {
		return "", ErrInvalidName
	}
	if folder == reservedFolder {
		return "", ErrNotFound
	}
	return m.prefix + folder + "/", nil
}
