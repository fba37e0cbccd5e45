package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var evidenceClient *s3.Client
var evidenceBucket string
var evidenceBaseURL string

// InitEvidenceStore configures the R2 bucket that holds submission videos.
// Evidence is served through the CDN, never directly from the bucket.
func InitEvidenceStore() error {
	accountID := os.Getenv("CLOUDFLARE_ACCOUNT_ID")
	accessKeyID := os.Getenv("R2_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("R2_ACCESS_KEY_SECRET")
	evidenceBucket = os.Getenv("R2_BUCKET_NAME")
	evidenceBaseURL = os.Getenv("CDN_BASE_URL")
	if evidenceBaseURL == "" {
		evidenceBaseURL = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
		config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
				}, nil
			}),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to load R2 config: %w", err)
	}

	evidenceClient = s3.NewFromConfig(cfg)
	return nil
}

// UploadEvidence uploads a multipart evidence file and returns the public URL.
// key is the object key (e.g., "evidence/abc123.mp4")
func UploadEvidence(fileHeader *multipart.FileHeader, key string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err = evidenceClient.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(evidenceBucket),
		Key:         aws.String(key),
		Body:        buf,
		ContentType: aws.String(fileHeader.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload evidence: %w", err)
	}

	url := fmt.Sprintf("%s/%s", evidenceBaseURL, key)
	return url, nil
}

// DeleteEvidence removes an evidence object given the URL stored on the
// submission. No-op for refs that don't point at our bucket.
func DeleteEvidence(evidenceRef string) error {
	key := strings.TrimPrefix(evidenceRef, evidenceBaseURL+"/")
	if key == evidenceRef || key == "" {
		return nil
	}

	_, err := evidenceClient.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(evidenceBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete evidence %s: %w", key, err)
	}
	return nil
}
