package uploader

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"time"

	"anonboard/internal/pkg/config"
	"anonboard/pkg/errs"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

// BlobStore 存储二进制内容并返回可公开访问的 URL
type BlobStore interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
}

// allowedTypes 允许上传的图片类型
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MaxImageSize 单张图片上限
const MaxImageSize = 5 << 20

type AliyunOSSUploader struct {
	bucket *oss.Bucket
	config config.OSSConfig
	now    func() time.Time
}

func NewAliyunOSSUploader(cfg config.OSSConfig) (*AliyunOSSUploader, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, err
	}

	return &AliyunOSSUploader{
		bucket: bucket,
		config: cfg,
		now:    time.Now,
	}, nil
}

// ObjectKey 生成对象名：YYYYMMDD/uuid.ext
func ObjectKey(now time.Time, contentType string) (string, error) {
	ext, err := Extension(contentType)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s%s", now.Format("20060102"), uuid.New().String(), ext), nil
}

// Extension 校验内容类型并返回扩展名
func Extension(contentType string) (string, error) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", errs.InvalidArgument("invalid content type")
	}
	ext, ok := allowedTypes[mt]
	if !ok {
		return "", errs.Newf(errs.ErrInvalidArgument, "unsupported content type %q", mt)
	}
	return ext, nil
}

func (u *AliyunOSSUploader) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", errs.InvalidArgument("empty file")
	}
	if len(data) > MaxImageSize {
		return "", errs.InvalidArgument("file too large")
	}
	key, err := ObjectKey(u.now(), contentType)
	if err != nil {
		return "", err
	}

	if err := u.bucket.PutObject(key, bytes.NewReader(data), oss.ContentType(contentType), oss.WithContext(ctx)); err != nil {
		return "", err
	}

	// bucket 为 public-read 或挂 CDN，直接拼接公开地址
	return fmt.Sprintf("https://%s.%s/%s", u.config.BucketName, u.config.Endpoint, key), nil
}

// NewBlobStore 按配置创建 OSS 存储，未配置时返回 nil
func NewBlobStore(cfg config.OSSConfig) (BlobStore, error) {
	if cfg.Endpoint == "" || cfg.BucketName == "" {
		return nil, nil
	}
	u, err := NewAliyunOSSUploader(cfg)
	if err != nil {
		return nil, err
	}
	return u, nil
}
