package services

import (
	"context"
	"fmt"
	"log"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Service issues presigned URLs for profile photos.
type S3Service struct {
	Client *s3.Client
	Bucket string
}

// NewS3Service initializes the S3 client for the given region and bucket.
func NewS3Service(region, bucket string) *S3Service {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
	if err != nil {
		log.Fatalf("Failed to load AWS config for S3: %v", err)
	}
	return &S3Service{Client: s3.NewFromConfig(cfg), Bucket: bucket}
}

// GenerateUploadURL generates a presigned URL for uploading a profile photo,
// returning the URL and the object key to store on the profile.
func (s *S3Service) GenerateUploadURL(ctx context.Context, fileName, fileType string) (string, string, error) {
	key := "profile-pics/" + time.Now().Format("20060102150405") + "-" + fileName
	params := &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}
	presigner := s3.NewPresignClient(s.Client)
	presignedURL, err := presigner.PresignPutObject(ctx, params, s3.WithPresignExpires(5*time.Minute))
	if err != nil {
		return "", "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return presignedURL.URL, key, nil
}

// GenerateReadURL generates a presigned URL for reading a stored photo.
func (s *S3Service) GenerateReadURL(ctx context.Context, key string) (string, error) {
	params := &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}
	presigner := s3.NewPresignClient(s.Client)
	presignedURL, err := presigner.PresignGetObject(ctx, params, s3.WithPresignExpires(5*time.Minute))
	if err != nil {
		return "", fmt.Errorf("failed to presign read: %w", err)
	}
	return presignedURL.URL, nil
}
