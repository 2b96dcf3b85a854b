package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archive keeps uploaded source documents in a MinIO bucket.
type Archive struct {
	client     *minio.Client
	bucketName string
	region     string
}

// New buat koneksi MinIO dan pastikan bucket ada
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Archive, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	return &Archive{client: cli, bucketName: bucket, region: region}, nil
}

// ObjectKey builds tenant/yyyy/mm/dd/<analysis id><ext>.
func ObjectKey(tenant, analysisID, filename string, at time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(tenant, at.UTC().Format("2006/01/02"), analysisID+ext)
}

// Upload implementasi DocumentStore
func (a *Archive) Upload(ctx context.Context, localPath, key string) (string, error) {
	_, err := a.client.FPutObject(ctx, a.bucketName, key, localPath, minio.PutObjectOptions{
		ContentType: contentType(localPath),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	// URL publik (jika bucket public), kalau private harus generate presigned URL
	return fmt.Sprintf("%s/%s/%s", a.client.EndpointURL().String(), a.bucketName, key), nil
}

// Check reports whether the bucket is reachable; used by the health endpoint.
func (a *Archive) Check(ctx context.Context) error {
	ok, err := a.client.BucketExists(ctx, a.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s missing", a.bucketName)
	}
	return nil
}

func contentType(localPath string) string {
	switch strings.ToLower(filepath.Ext(localPath)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
