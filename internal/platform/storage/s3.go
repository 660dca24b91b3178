// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

/*
Package storage provides the object-storage client used for waveform files.

Recorded ECG strips are uploaded by the mobile apps as packed binary files
and read back when a chart window is rendered. The client targets any
S3-compatible endpoint (AWS S3, Cloudflare R2, MinIO), selected via config.

Core Responsibilities:

  - Upload: store a waveform file under a collision-free key.
  - Download: fetch the raw bytes of a previously stored file.
  - Addressing: translate between public URLs and object keys.
*/
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config carries the credentials and addressing for the object store.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Client wraps the S3 client together with its bucket so call sites never
// juggle the two separately.
type Client struct {
	s3     *s3.Client
	bucket string
	// publicBase is the URL prefix stored in waveform rows,
	// e.g. "https://<endpoint>/<bucket>".
	publicBase string
}

// NewClient builds an S3 client from static credentials and verifies nothing:
// object stores reject bad credentials lazily, so the first upload surfaces
// misconfiguration instead of startup.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket must be configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(options *s3.Options) {
		if cfg.Endpoint != "" {
			options.BaseEndpoint = aws.String(cfg.Endpoint)
			// Path-style addressing is required by R2 and MinIO.
			options.UsePathStyle = true
		}
	})

	publicBase := publicBaseURL(cfg)
	logger.Info("object storage client ready",
		slog.String("bucket", cfg.Bucket),
		slog.String("region", cfg.Region),
	)

	return &Client{s3: client, bucket: cfg.Bucket, publicBase: publicBase}, nil
}

// Upload stores the payload under the given key and returns its public URL.
func (c *Client) Upload(ctx context.Context, key, contentType string, payload []byte) (string, error) {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: upload of %q failed: %w", key, err)
	}

	return c.publicBase + "/" + key, nil
}

// Download fetches the raw bytes stored under the given key.
func (c *Client) Download(ctx context.Context, key string) ([]byte, error) {
	output, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: download of %q failed: %w", key, err)
	}
	defer output.Body.Close()

	payload, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: reading body of %q failed: %w", key, err)
	}

	return payload, nil
}

// Delete removes the object stored under the given key.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: delete of %q failed: %w", key, err)
	}
	return nil
}

// KeyFromURL converts a stored public URL back into its object key.
// Unknown prefixes are returned unchanged so legacy rows keep working.
func (c *Client) KeyFromURL(fileURL string) string {
	if key, found := strings.CutPrefix(fileURL, c.publicBase+"/"); found {
		return key
	}
	return fileURL
}

func publicBaseURL(cfg Config) string {
	if cfg.Endpoint != "" {
		return strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}
