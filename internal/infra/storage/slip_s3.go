// Package storage archives uploaded bank-transfer slips.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type S3Options struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewS3Client builds a client from static credentials. A custom endpoint
// (MinIO, R2) switches to path-style addressing.
func NewS3Client(opts S3Options) *s3.Client {
	return s3.New(s3.Options{
		Region:      opts.Region,
		Credentials: credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
	}, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
}

// ObjectPutter is the part of *s3.Client the archive uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type SlipArchive struct {
	client ObjectPutter
	bucket string
	now    func() time.Time
}

func NewSlipArchive(client ObjectPutter, bucket string) *SlipArchive {
	return &SlipArchive{client: client, bucket: bucket, now: time.Now}
}

var extensions = map[string]string{
	"image/png":       "png",
	"image/jpeg":      "jpg",
	"application/pdf": "pdf",
}

// SlipKey is slips/YYYY/MM/<uuid>.<ext>.
func SlipKey(at time.Time, contentType string) string {
	ext, ok := extensions[contentType]
	if !ok {
		ext = "bin"
	}
	return fmt.Sprintf("slips/%04d/%02d/%s.%s", at.Year(), int(at.Month()), uuid.NewString(), ext)
}

// Put stores body and returns its object key.
func (a *SlipArchive) Put(ctx context.Context, contentType string, body []byte) (string, error) {
	key := SlipKey(a.now().UTC(), contentType)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("put slip %s: %w", key, err)
	}
	return key, nil
}
