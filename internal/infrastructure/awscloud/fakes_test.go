package awscloud

import (
	"context"
	"sync"
	"time"

	"cloud-agent/internal/infrastructure/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeFactory struct {
	ec2 *fakeEC2
	s3  *fakeS3

	regions []string
}

func (f *fakeFactory) EC2(region string) EC2API {
	f.regions = append(f.regions, region)
	return f.ec2
}

func (f *fakeFactory) S3(region string) S3API {
	f.regions = append(f.regions, region)
	return f.s3
}

type fakeEC2 struct {
	mu sync.Mutex

	createSGErr   error
	describeSG    []ec2types.SecurityGroup
	describeSGErr error
	runErr        error

	instances    []ec2types.Instance
	describeErr  error
	lastFilters  []ec2types.Filter
	runInput     *ec2.RunInstancesInput
	stopped      []string
	terminated   []string
	createdGroup string
}

func (f *fakeEC2) CreateSecurityGroup(_ context.Context, in *ec2.CreateSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error) {
	if f.createSGErr != nil {
		return nil, f.createSGErr
	}
	f.createdGroup = aws.ToString(in.GroupName)
	return &ec2.CreateSecurityGroupOutput{GroupId: aws.String("sg-new")}, nil
}

func (f *fakeEC2) DescribeSecurityGroups(_ context.Context, _ *ec2.DescribeSecurityGroupsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	if f.describeSGErr != nil {
		return nil, f.describeSGErr
	}
	return &ec2.DescribeSecurityGroupsOutput{SecurityGroups: f.describeSG}, nil
}

func (f *fakeEC2) RunInstances(_ context.Context, in *ec2.RunInstancesInput, _ ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	if f.runErr != nil {
		return nil, f.runErr
	}
	f.runInput = in
	return &ec2.RunInstancesOutput{Instances: []ec2types.Instance{{InstanceId: aws.String("i-new")}}}, nil
}

func (f *fakeEC2) DescribeInstances(_ context.Context, in *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	f.lastFilters = in.Filters
	if len(f.instances) == 0 {
		return &ec2.DescribeInstancesOutput{}, nil
	}
	return &ec2.DescribeInstancesOutput{
		Reservations: []ec2types.Reservation{{Instances: f.instances}},
	}, nil
}

func (f *fakeEC2) StopInstances(_ context.Context, in *ec2.StopInstancesInput, _ ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error) {
	f.stopped = append(f.stopped, in.InstanceIds...)
	return &ec2.StopInstancesOutput{}, nil
}

func (f *fakeEC2) TerminateInstances(_ context.Context, in *ec2.TerminateInstancesInput, _ ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error) {
	f.terminated = append(f.terminated, in.InstanceIds...)
	return &ec2.TerminateInstancesOutput{}, nil
}

type fakeS3 struct {
	buckets []string
	// objects per bucket, served two per page
	objects  map[string][]string
	prefixes []string

	createInput  *s3.CreateBucketInput
	createErr    error
	policy       string
	accessBlock  *s3types.PublicAccessBlockConfiguration
	deletedKeys  []string
	deletedBkts  []string
	putKeys      []string
	listRequests []*s3.ListObjectsV2Input
}

func (f *fakeS3) CreateBucket(_ context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createInput = in
	f.buckets = append(f.buckets, aws.ToString(in.Bucket))
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) PutPublicAccessBlock(_ context.Context, in *s3.PutPublicAccessBlockInput, _ ...func(*s3.Options)) (*s3.PutPublicAccessBlockOutput, error) {
	f.accessBlock = in.PublicAccessBlockConfiguration
	return &s3.PutPublicAccessBlockOutput{}, nil
}

func (f *fakeS3) PutBucketPolicy(_ context.Context, in *s3.PutBucketPolicyInput, _ ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error) {
	f.policy = aws.ToString(in.Policy)
	return &s3.PutBucketPolicyOutput{}, nil
}

func (f *fakeS3) ListBuckets(_ context.Context, _ *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	out := &s3.ListBucketsOutput{}
	for _, b := range f.buckets {
		out.Buckets = append(out.Buckets, s3types.Bucket{Name: aws.String(b)})
	}
	return out, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.listRequests = append(f.listRequests, in)

	keys := f.objects[aws.ToString(in.Bucket)]
	start := 0
	if in.ContinuationToken != nil {
		for i, k := range keys {
			if k == aws.ToString(in.ContinuationToken) {
				start = i
			}
		}
	}
	end := min(start+2, len(keys))

	out := &s3.ListObjectsV2Output{}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k), Size: aws.Int64(int64(len(k)))})
	}
	if end < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[end])
	}
	if start == 0 {
		for _, p := range f.prefixes {
			out.CommonPrefixes = append(out.CommonPrefixes, s3types.CommonPrefix{Prefix: aws.String(p)})
		}
	}
	return out, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putKeys = append(f.putKeys, aws.ToString(in.Key))
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletedKeys = append(f.deletedKeys, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) DeleteBucket(_ context.Context, in *s3.DeleteBucketInput, _ ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
	f.deletedBkts = append(f.deletedBkts, aws.ToString(in.Bucket))
	return &s3.DeleteBucketOutput{}, nil
}

func newTestCompute(fake *fakeEC2) (*Compute, *fakeFactory) {
	factory := &fakeFactory{ec2: fake}
	return NewCompute(factory, ComputeConfig{
		DefaultRegion: "us-east-1",
		AMI:           "ami-test",
		SGPrefix:      "cloud-agent-sg",
		WaitTimeout:   time.Second,
	}, logger.NewNop()), factory
}

func newTestStorage(fake *fakeS3) (*Storage, *fakeFactory) {
	factory := &fakeFactory{s3: fake}
	return NewStorage(factory, StorageConfig{
		DefaultRegion: "us-east-1",
		BucketSuffix:  "-cloud-agent",
	}, logger.NewNop()), factory
}
