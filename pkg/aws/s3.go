package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ImagePresigner issues presigned PUT URLs for objects in one bucket.
type ImagePresigner struct {
	presigner *s3.PresignClient
	bucket    string
}

func NewImagePresigner(cfg sdkaws.Config, bucket string) *ImagePresigner {
	return &ImagePresigner{
		presigner: s3.NewPresignClient(s3.NewFromConfig(cfg)),
		bucket:    bucket,
	}
}

// PresignPut returns a presigned PUT URL for key, valid for expiry.
func (p *ImagePresigner) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: sdkaws.String(p.bucket),
		Key:    sdkaws.String(key),
	}
	if contentType != "" {
		input.ContentType = sdkaws.String(contentType)
	}

	presigned, err := p.presigner.PresignPutObject(ctx, input, func(o *s3.PresignOptions) {
		o.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign put object: %w", err)
	}
	return presigned.URL, nil
}

// PublicURL is the virtual-hosted style URL the object will be served from.
func (p *ImagePresigner) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", p.bucket, key)
}
