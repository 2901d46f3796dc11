package s3

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/google/uuid"
)

const PresignTTL = time.Hour

type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	BucketName      string
}

// ItfS3 is the image store: originals live under originals/<folder>/, uploads under upload/.
type ItfS3 interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	PresignUrl(key string) (string, error)
	UploadPNG(ctx context.Context, data []byte) (key string, location string, err error)
	DeleteFile(ctx context.Context, key string) error
}

type s3Client struct {
	client     s3iface.S3API
	uploader   s3manageriface.UploaderAPI
	bucketName string
}

func New(cfg Config) (ItfS3, error) {
	sess, err := newSession(cfg)
	if err != nil {
		return nil, err
	}

	return &s3Client{
		client:     s3.New(sess),
		uploader:   s3manager.NewUploader(sess),
		bucketName: cfg.BucketName,
	}, nil
}

func NewWithAPI(client s3iface.S3API, uploader s3manageriface.UploaderAPI, bucketName string) ItfS3 {
	return &s3Client{
		client:     client,
		uploader:   uploader,
		bucketName: bucketName,
	}
}

func (s *s3Client) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	err := s.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucketName),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, aws.StringValue(obj.Key))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}

	return keys, nil
}

func (s *s3Client) PresignUrl(key string) (string, error) {
	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})

	urlStr, err := req.Presign(PresignTTL)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}

	return urlStr, nil
}

func (s *s3Client) UploadPNG(ctx context.Context, data []byte) (string, string, error) {
	key := fmt.Sprintf("upload/%s.png", uuid.NewString())

	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/png"),
		ACL:         aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		return "", "", fmt.Errorf("upload %s: %w", key, err)
	}

	return key, out.Location, nil
}

func (s *s3Client) DeleteFile(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})

	return err
}

func newSession(cfg Config) (*session.Session, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	return session.NewSession(awsCfg)
}
