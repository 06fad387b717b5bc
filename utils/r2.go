// utils/r2.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gosimple/slug"
)

// ObjectPutter is the part of the S3 client the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Uploader copies finished battle reports to a Cloudflare R2 bucket.
type R2Uploader struct {
	client  ObjectPutter
	bucket  string
	baseURL string
}

// R2Settings names the bucket and credentials.
type R2Settings struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

func InitR2(ctx context.Context, s R2Settings) (*R2Uploader, error) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.AccountID)
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.AccessKeyID, s.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	base := s.CDNBaseURL
	if base == "" {
		base = endpoint
	}
	return NewR2Uploader(client, s.Bucket, base), nil
}

func NewR2Uploader(client ObjectPutter, bucket, baseURL string) *R2Uploader {
	return &R2Uploader{client: client, bucket: bucket, baseURL: baseURL}
}

// ReportKey is battles/<opponent-slug>/<seed>.json.
func ReportKey(opponentID string, seed uint64) string {
	opp := slug.Make(opponentID)
	if opp == "" {
		opp = "unknown"
	}
	return "battles/" + opp + "/" + strconv.FormatUint(seed, 10) + ".json"
}

// UploadReport stores a report body and returns its public URL.
func (u *R2Uploader) UploadReport(ctx context.Context, opponentID string, seed uint64, body []byte) (string, error) {
	key := ReportKey(opponentID, seed)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}
	return fmt.Sprintf("%s/%s", u.baseURL, key), nil
}
