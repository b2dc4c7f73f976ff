package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// AssetStore 素材与导出产物的对象存储访问
type AssetStore struct {
	client *minio.Client
	bucket string
}

// NewAssetStore 创建对象存储访问器
func NewAssetStore(client *minio.Client, bucket string) *AssetStore {
	return &AssetStore{client: client, bucket: bucket}
}

// NodeObjectPath 素材节点在桶内的对象路径
func NodeObjectPath(nodeID, ext string) string {
	return fmt.Sprintf("nodes/%s%s", nodeID, ext)
}

// contentTypeByExt 按扩展名猜 Content-Type
func contentTypeByExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".mp4", ".mov":
		return "video/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a", ".aac":
		return "audio/mp4"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}

// PutNodeAsset 上传素材内容，返回对象路径
func (s *AssetStore) PutNodeAsset(ctx context.Context, nodeID, ext string, r io.Reader, size int64) (string, error) {
	objectPath := NodeObjectPath(nodeID, ext)
	_, err := s.client.PutObject(ctx, s.bucket, objectPath, r, size, minio.PutObjectOptions{
		ContentType: contentTypeByExt(ext),
	})
	if err != nil {
		return "", fmt.Errorf("上传素材对象失败: %w", err)
	}
	return objectPath, nil
}

// GetObject 按对象路径取内容流
func (s *AssetStore) GetObject(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("读取素材对象失败: %w", err)
	}
	return obj, nil
}

// PutExportArchive 上传导出的草稿包，返回对象路径
func (s *AssetStore) PutExportArchive(ctx context.Context, projectID string, r io.Reader, size int64) (string, error) {
	objectPath := fmt.Sprintf("exports/%s-%d.zip", projectID, time.Now().Unix())
	_, err := s.client.PutObject(ctx, s.bucket, objectPath, r, size, minio.PutObjectOptions{
		ContentType: "application/zip",
	})
	if err != nil {
		return "", fmt.Errorf("上传草稿包失败: %w", err)
	}
	return objectPath, nil
}

// PresignedURL 生成限时下载地址
func (s *AssetStore) PresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectPath, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成下载地址失败: %w", err)
	}
	return u.String(), nil
}

// ObjectExt 对象路径的扩展名（含点号）
func ObjectExt(objectPath string) string {
	return path.Ext(objectPath)
}
