package upload

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// S3Store uploads into a bucket; the object URL is returned as-is.
type S3Store struct {
	uploader s3manageriface.UploaderAPI
	bucket   string
	prefix   string
}

// NewS3Store uses the default credential chain for region.
func NewS3Store(region, bucket, prefix string) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return NewS3StoreWithUploader(s3manager.NewUploader(sess), bucket, prefix), nil
}

func NewS3StoreWithUploader(u s3manageriface.UploaderAPI, bucket, prefix string) *S3Store {
	return &S3Store{uploader: u, bucket: bucket, prefix: prefix}
}

var _ Store = (*S3Store)(nil)

func (s *S3Store) Save(ctx context.Context, originalName, contentType string, r io.Reader) (string, error) {
	name, err := ObjectName(originalName, contentType)
	if err != nil {
		return "", err
	}
	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path.Join(s.prefix, name)),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}
	return out.Location, nil
}
