package export

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/downfa11-org/logsnap/pkg/config"
	"github.com/downfa11-org/logsnap/util"
)

// Uploader pushes finished snapshot files to an S3-compatible object
// store.
type Uploader struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewUploader(cfg config.S3Config) (*Uploader, error) {
	u, err := url.Parse(cfg.EndpointURL)
	if err != nil {
		return nil, fmt.Errorf("invalid S3 endpoint URL: %w", err)
	}
	endpoint := u.Host
	if endpoint == "" {
		endpoint = cfg.EndpointURL
	}
	useSSL := cfg.UseSSL || u.Scheme == "https"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 client: %w", err)
	}

	return &Uploader{client: client, bucket: cfg.Bucket, prefix: cfg.BasePrefix}, nil
}

func (u *Uploader) Upload(ctx context.Context, localPath, name string) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return err
	}
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	key := name
	if u.prefix != "" {
		key = path.Join(u.prefix, name)
	}
	_, err = u.client.PutObject(ctx, u.bucket, key, f, info.Size(), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return err
	}

	util.Info("Uploaded %s to s3://%s/%s (%d bytes)", name, u.bucket, key, info.Size())
	return nil
}
