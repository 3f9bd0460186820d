package output

import (
	"context"
	"io"

	"cloud-agent/internal/domain/entity"
)

// ComputePort issues EC2 actions. Results are human-readable strings; an
// empty listing is reported in the string, never as an error.
type ComputePort interface {
	CreateInstance(ctx context.Context, req entity.CreateInstanceRequest) (string, error)
	ListInstances(ctx context.Context, region string) (string, error)
	StopInstances(ctx context.Context, region string) (string, error)
	TerminateInstanceByIP(ctx context.Context, region, publicIP string) (string, error)
}

type StoragePort interface {
	CreatePublicBucket(ctx context.Context, region, name string) (string, error)
	ListBuckets(ctx context.Context, region string) (string, error)
	DeleteBucket(ctx context.Context, region, name string) (string, error)

	ListObjects(ctx context.Context, region, bucket, prefix string) (*entity.ObjectListing, error)
	PutObject(ctx context.Context, region, bucket, key string, body io.Reader) error
	DeleteObject(ctx context.Context, region, bucket, key string) error
}
