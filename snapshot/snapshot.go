// Package snapshot uploads point-in-time JSON copies of the asset collection
// to an S3-compatible bucket.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ejjays/assets-management/models"
)

var ErrNotConfigured = errors.New("snapshot bucket not configured")

// Config mirrors the SNAPSHOT_S3_* environment variables.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, e.g. MinIO
	PathStyle bool
	Prefix    string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Uploader struct {
	client objectPutter
	bucket string
	prefix string
}

// Result describes one stored snapshot.
type Result struct {
	Bucket string    `json:"bucket"`
	Key    string    `json:"key"`
	Count  int       `json:"count"`
	At     time.Time `json:"takenAt"`
}

type document struct {
	TakenAt time.Time      `json:"takenAt"`
	Count   int            `json:"count"`
	Assets  []models.Asset `json:"assets"`
}

// New loads AWS configuration from the default chain. Extra load options are
// applied after the region.
func New(ctx context.Context, cfg Config, optFns ...func(*config.LoadOptions) error) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := append([]func(*config.LoadOptions) error{config.WithRegion(region)}, optFns...)
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newUploader(client, cfg.Bucket, cfg.Prefix), nil
}

func newUploader(client objectPutter, bucket, prefix string) *Uploader {
	return &Uploader{client: client, bucket: bucket, prefix: prefix}
}

// Key is the object key for a snapshot taken at t.
func (u *Uploader) Key(t time.Time) string {
	return u.prefix + "assets-" + t.UTC().Format("20060102T150405Z") + ".json"
}

func (u *Uploader) Upload(ctx context.Context, assets []models.Asset, at time.Time) (Result, error) {
	if assets == nil {
		assets = []models.Asset{}
	}
	body, err := json.Marshal(document{TakenAt: at.UTC(), Count: len(assets), Assets: assets})
	if err != nil {
		return Result{}, fmt.Errorf("encode snapshot: %w", err)
	}

	key := u.Key(at)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return Result{}, fmt.Errorf("put snapshot %s: %w", key, err)
	}
	return Result{Bucket: u.bucket, Key: key, Count: len(assets), At: at.UTC()}, nil
}
