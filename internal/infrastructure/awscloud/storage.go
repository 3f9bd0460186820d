package awscloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"cloud-agent/internal/application/port/output"
	"cloud-agent/internal/domain/entity"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var _ output.StoragePort = (*Storage)(nil)

// usEast1 rejects an explicit LocationConstraint.
const usEast1 = "us-east-1"

type StorageConfig struct {
	DefaultRegion string
	BucketSuffix  string
}

type Storage struct {
	clients ClientFactory
	cfg     StorageConfig
	logger  output.LoggerPort
}

func NewStorage(clients ClientFactory, cfg StorageConfig, logger output.LoggerPort) *Storage {
	return &Storage{
		clients: clients,
		cfg:     cfg,
		logger:  logger.WithField("component", "s3"),
	}
}

func (s *Storage) region(region string) string {
	if region == "" {
		return s.cfg.DefaultRegion
	}
	return region
}

// BucketName appends the configured suffix unless the name already has it.
func (s *Storage) BucketName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if s.cfg.BucketSuffix == "" || strings.HasSuffix(name, s.cfg.BucketSuffix) {
		return name
	}
	return name + s.cfg.BucketSuffix
}

type policyStatement struct {
	Sid       string   `json:"Sid"`
	Effect    string   `json:"Effect"`
	Principal string   `json:"Principal"`
	Action    []string `json:"Action"`
	Resource  string   `json:"Resource"`
}

type bucketPolicy struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

func publicReadWritePolicy(bucket string) (string, error) {
	policy := bucketPolicy{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Sid:       "PublicReadWrite",
			Effect:    "Allow",
			Principal: "*",
			Action:    []string{"s3:GetObject", "s3:PutObject"},
			Resource:  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
		}},
	}
	b, err := json.Marshal(policy)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CreatePublicBucket creates the bucket, lifts the public access block and
// attaches a public read/write policy. The three calls are not atomic.
func (s *Storage) CreatePublicBucket(ctx context.Context, region, name string) (string, error) {
	region = s.region(region)
	if strings.TrimSpace(name) == "" {
		return "", entity.InvalidInputf("s3.CreateBucket", "bucket name is required")
	}
	bucket := s.BucketName(name)
	client := s.clients.S3(region)

	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	if region != usEast1 {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(region),
		}
	}
	if _, err := client.CreateBucket(ctx, input); err != nil {
		return "", classify("s3.CreateBucket", err)
	}

	if _, err := client.PutPublicAccessBlock(ctx, &s3.PutPublicAccessBlockInput{
		Bucket: aws.String(bucket),
		PublicAccessBlockConfiguration: &s3types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(false),
			IgnorePublicAcls:      aws.Bool(false),
			BlockPublicPolicy:     aws.Bool(false),
			RestrictPublicBuckets: aws.Bool(false),
		},
	}); err != nil {
		return "", classify("s3.PutPublicAccessBlock", err)
	}

	policy, err := publicReadWritePolicy(bucket)
	if err != nil {
		return "", fmt.Errorf("marshal bucket policy: %w", err)
	}
	if _, err := client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(bucket),
		Policy: aws.String(policy),
	}); err != nil {
		return "", classify("s3.PutBucketPolicy", err)
	}

	s.logger.Info("Public bucket created", "bucket", bucket, "region", region)
	return fmt.Sprintf("S3 bucket '%s' created with PUBLIC READ + WRITE.\nPublic URL / connection string: https://%s.s3.%s.amazonaws.com/",
		bucket, bucket, region), nil
}

func (s *Storage) ListBuckets(ctx context.Context, region string) (string, error) {
	out, err := s.clients.S3(s.region(region)).ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return "", classify("s3.ListBuckets", err)
	}
	if len(out.Buckets) == 0 {
		return "No S3 buckets found in your account.", nil
	}

	var sb strings.Builder
	sb.WriteString("S3 Buckets:")
	for _, b := range out.Buckets {
		sb.WriteString("\n")
		sb.WriteString(aws.ToString(b.Name))
	}
	return sb.String(), nil
}

// DeleteBucket empties the bucket page by page before deleting it.
func (s *Storage) DeleteBucket(ctx context.Context, region, name string) (string, error) {
	region = s.region(region)
	if strings.TrimSpace(name) == "" {
		return "", entity.InvalidInputf("s3.DeleteBucket", "bucket name is required")
	}
	client := s.clients.S3(region)

	listed, err := client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return "", classify("s3.ListBuckets", err)
	}
	bucket, ok := matchBucket(listed.Buckets, strings.TrimSpace(name), s.BucketName(name))
	if !ok {
		return "", entity.NotFoundf("s3.DeleteBucket", "bucket '%s' does not exist", strings.TrimSpace(name))
	}

	deleted := 0
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{Bucket: aws.String(bucket)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", classify("s3.ListObjectsV2", err)
		}
		for _, obj := range page.Contents {
			if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(bucket),
				Key:    obj.Key,
			}); err != nil {
				return "", classify("s3.DeleteObject", err)
			}
			deleted++
		}
	}

	if _, err := client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return "", classify("s3.DeleteBucket", err)
	}

	s.logger.Info("Bucket deleted", "bucket", bucket, "objects_removed", deleted)
	return fmt.Sprintf("S3 bucket '%s' deleted successfully.", bucket), nil
}

// matchBucket returns the first candidate present in the listing. The name
// as given wins over its suffixed form.
func matchBucket(buckets []s3types.Bucket, candidates ...string) (string, bool) {
	names := make(map[string]struct{}, len(buckets))
	for _, b := range buckets {
		names[aws.ToString(b.Name)] = struct{}{}
	}
	for _, c := range candidates {
		if _, ok := names[c]; ok {
			return c, true
		}
	}
	return "", false
}

// ListObjects lists one "directory" level under prefix.
func (s *Storage) ListObjects(ctx context.Context, region, bucket, prefix string) (*entity.ObjectListing, error) {
	if bucket == "" {
		return nil, entity.InvalidInputf("s3.ListObjectsV2", "bucket is required")
	}
	client := s.clients.S3(s.region(region))

	listing := &entity.ObjectListing{
		Bucket:  bucket,
		Prefix:  prefix,
		Files:   []entity.ObjectInfo{},
		Folders: []string{},
	}

	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify("s3.ListObjectsV2", err)
		}
		for _, cp := range page.CommonPrefixes {
			listing.Folders = append(listing.Folders, aws.ToString(cp.Prefix))
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			// the prefix placeholder object itself
			if key == prefix {
				continue
			}
			info := entity.ObjectInfo{Key: key, Size: aws.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				info.LastModified = obj.LastModified.UTC()
			}
			listing.Files = append(listing.Files, info)
		}
	}
	return listing, nil
}

func (s *Storage) PutObject(ctx context.Context, region, bucket, key string, body io.Reader) error {
	if bucket == "" || key == "" {
		return entity.InvalidInputf("s3.PutObject", "bucket and key are required")
	}
	if _, err := s.clients.S3(s.region(region)).PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	}); err != nil {
		return classify("s3.PutObject", err)
	}
	s.logger.Debug("Object uploaded", "bucket", bucket, "key", key)
	return nil
}

func (s *Storage) DeleteObject(ctx context.Context, region, bucket, key string) error {
	if bucket == "" || key == "" {
		return entity.InvalidInputf("s3.DeleteObject", "bucket and key are required")
	}
	if _, err := s.clients.S3(s.region(region)).DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return classify("s3.DeleteObject", err)
	}
	return nil
}
