package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"garage-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ArchiveService uploads generated invoice PDFs to S3-compatible object
// storage so a copy survives outside the database.
type ArchiveService struct {
	cfg    config.ArchiveConfig
	client *s3.Client
}

// NewArchiveService builds the archive client. Returns nil when archival is
// disabled so callers can skip it with a nil check.
func NewArchiveService(cfg config.ArchiveConfig) *ArchiveService {
	if !cfg.Enabled {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		log.Printf("[Archive] Failed to configure storage client: %v", err)
		return nil
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &ArchiveService{cfg: cfg, client: client}
}

// ArchiveInvoicePDF uploads a rendered invoice PDF in the background. Upload
// failures are logged, never surfaced to the download request.
func (s *ArchiveService) ArchiveInvoicePDF(ctx context.Context, invoiceNumber string, data []byte) {
	if s == nil || s.client == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		key := fmt.Sprintf("invoices/%s/%s.pdf", time.Now().Format("2006/01"), invoiceNumber)
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.cfg.Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String("application/pdf"),
		})
		if err != nil {
			log.Printf("[Archive] Failed to upload %s: %v", key, err)
			return
		}
		log.Printf("[Archive] Uploaded %s (%d bytes)", key, len(data))
	}()
}

// ListArchivedPDFs lists the stored PDF keys for a month prefix like "2025/04"
func (s *ArchiveService) ListArchivedPDFs(ctx context.Context, monthPrefix string) ([]string, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("archival is not configured")
	}

	prefix := "invoices/"
	if monthPrefix != "" {
		prefix += monthPrefix + "/"
	}

	result, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}

	keys := make([]string, 0, len(result.Contents))
	for _, obj := range result.Contents {
		if obj.Key != nil {
			keys = append(keys, *obj.Key)
		}
	}
	return keys, nil
}
