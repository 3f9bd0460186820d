package tool

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"cloud-agent/internal/application/service"
	"cloud-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCompute struct {
	createReq entity.CreateInstanceRequest
	region    string
	ip        string
	err       error
}

func (c *recordingCompute) CreateInstance(_ context.Context, req entity.CreateInstanceRequest) (string, error) {
	c.createReq = req
	return "created", c.err
}

func (c *recordingCompute) ListInstances(_ context.Context, region string) (string, error) {
	c.region = region
	return "listed", c.err
}

func (c *recordingCompute) StopInstances(_ context.Context, region string) (string, error) {
	c.region = region
	return "stopped", c.err
}

func (c *recordingCompute) TerminateInstanceByIP(_ context.Context, region, ip string) (string, error) {
	c.region, c.ip = region, ip
	return "terminated", c.err
}

type recordingStorage struct {
	region, bucket, prefix, key string
}

func (s *recordingStorage) CreatePublicBucket(_ context.Context, region, name string) (string, error) {
	s.region, s.bucket = region, name
	return "bucket created", nil
}

func (s *recordingStorage) ListBuckets(_ context.Context, region string) (string, error) {
	s.region = region
	return "buckets", nil
}

func (s *recordingStorage) DeleteBucket(_ context.Context, region, name string) (string, error) {
	s.region, s.bucket = region, name
	return "bucket deleted", nil
}

func (s *recordingStorage) ListObjects(_ context.Context, region, bucket, prefix string) (*entity.ObjectListing, error) {
	s.region, s.bucket, s.prefix = region, bucket, prefix
	return &entity.ObjectListing{
		Bucket:  bucket,
		Prefix:  prefix,
		Files:   []entity.ObjectInfo{{Key: prefix + "a.txt", Size: 3}},
		Folders: []string{},
	}, nil
}

func (s *recordingStorage) PutObject(context.Context, string, string, string, io.Reader) error {
	return nil
}

func (s *recordingStorage) DeleteObject(_ context.Context, region, bucket, key string) error {
	s.region, s.bucket, s.key = region, bucket, key
	return nil
}

type stubFormatter struct {
	got string
}

func (f *stubFormatter) Format(_ context.Context, content string) (string, error) {
	f.got = content
	return "friendly: " + content, nil
}

var testDefaults = Defaults{Region: "us-east-1", InstanceType: "t2.micro", KeyName: "default-key"}

func TestCreateEC2InstanceTool_AppliesDefaults(t *testing.T) {
	compute := &recordingCompute{}
	tool := NewCreateEC2InstanceTool(compute, testDefaults)

	out, err := tool.Execute(context.Background(), `{}`)
	require.NoError(t, err)

	assert.Equal(t, "created", out)
	assert.Equal(t, entity.CreateInstanceRequest{
		InstanceType: "t2.micro",
		Region:       "us-east-1",
		KeyName:      "default-key",
	}, compute.createReq)
}

func TestCreateEC2InstanceTool_ExplicitArguments(t *testing.T) {
	compute := &recordingCompute{}
	tool := NewCreateEC2InstanceTool(compute, testDefaults)

	_, err := tool.Execute(context.Background(), `{"instance_type":"t3.large","region":"eu-west-2","key_name":"mine"}`)
	require.NoError(t, err)

	assert.Equal(t, "t3.large", compute.createReq.InstanceType)
	assert.Equal(t, "eu-west-2", compute.createReq.Region)
	assert.Equal(t, "mine", compute.createReq.KeyName)
}

func TestRegionTools_DefaultRegion(t *testing.T) {
	compute := &recordingCompute{}

	_, err := NewListEC2InstancesTool(compute, testDefaults).Execute(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", compute.region)

	_, err = NewStopEC2InstancesTool(compute, testDefaults).Execute(context.Background(), `{"region":"ap-south-1"}`)
	require.NoError(t, err)
	assert.Equal(t, "ap-south-1", compute.region)
}

func TestDeleteEC2InstanceByIPTool(t *testing.T) {
	compute := &recordingCompute{}
	tool := NewDeleteEC2InstanceByIPTool(compute, testDefaults)

	_, err := tool.Execute(context.Background(), `{"public_ip":" 1.2.3.4 "}`)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", compute.ip)

	_, err = tool.Execute(context.Background(), `{}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
	assert.Contains(t, err.Error(), "public_ip")
}

func TestTool_MalformedArguments(t *testing.T) {
	tool := NewListS3BucketsTool(&recordingStorage{}, testDefaults)

	_, err := tool.Execute(context.Background(), `{"region":`)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestTool_PropagatesActionErrors(t *testing.T) {
	notFound := entity.NotFoundf("ec2.TerminateInstances", "nothing at 1.1.1.1")
	tool := NewDeleteEC2InstanceByIPTool(&recordingCompute{err: notFound}, testDefaults)

	_, err := tool.Execute(context.Background(), `{"public_ip":"1.1.1.1"}`)
	assert.True(t, errors.Is(err, entity.ErrNotFound))
}

func TestBucketTools(t *testing.T) {
	storage := &recordingStorage{}

	out, err := NewCreateS3BucketTool(storage, testDefaults).Execute(context.Background(), `{"bucket_name":"media"}`)
	require.NoError(t, err)
	assert.Equal(t, "bucket created", out)
	assert.Equal(t, "media", storage.bucket)
	assert.Equal(t, "us-east-1", storage.region)

	_, err = NewDeleteS3BucketTool(storage, testDefaults).Execute(context.Background(), `{"region":"eu-west-1"}`)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestListS3ObjectsTool_ReturnsJSON(t *testing.T) {
	storage := &recordingStorage{}
	tool := NewListS3ObjectsTool(storage, testDefaults)

	out, err := tool.Execute(context.Background(), `{"bucket":"files","prefix":"docs/"}`)
	require.NoError(t, err)

	var listing entity.ObjectListing
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	assert.Equal(t, "files", listing.Bucket)
	require.Len(t, listing.Files, 1)
	assert.Equal(t, "docs/a.txt", listing.Files[0].Key)
}

func TestDeleteS3ObjectTool(t *testing.T) {
	storage := &recordingStorage{}
	tool := NewDeleteS3ObjectTool(storage, testDefaults)

	out, err := tool.Execute(context.Background(), `{"bucket":"files","key":"docs/a.txt"}`)
	require.NoError(t, err)
	assert.Equal(t, "Deleted s3://files/docs/a.txt", out)

	_, err = tool.Execute(context.Background(), `{"bucket":"files"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"key"`)
}

func TestFormatResponseTool(t *testing.T) {
	formatter := &stubFormatter{}
	tool := NewFormatResponseTool(formatter)

	out, err := tool.Execute(context.Background(), `{"content":"{\"ok\":true}"}`)
	require.NoError(t, err)
	assert.Equal(t, `friendly: {"ok":true}`, out)
	assert.Equal(t, `{"ok":true}`, formatter.got)
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema[DeleteEC2ByIPInput]()

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, false, schema["additionalProperties"])
	assert.NotContains(t, schema, "$schema")
	assert.ElementsMatch(t, []any{"public_ip"}, schema["required"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	ip, ok := props["public_ip"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", ip["type"])
	assert.Equal(t, "Public IP of the EC2 instance to terminate", ip["description"])
}

func TestGenerateSchema_Default(t *testing.T) {
	props := GenerateSchema[CreateEC2InstanceInput]()["properties"].(map[string]any)
	instanceType := props["instance_type"].(map[string]any)

	assert.Equal(t, "t2.micro", instanceType["default"])
	assert.NotContains(t, GenerateSchema[CreateEC2InstanceInput](), "required")
}

func TestCloudTools_RegisterWithoutConflicts(t *testing.T) {
	registry := service.NewToolRegistry()
	for _, tl := range CloudTools(&recordingCompute{}, &recordingStorage{}, testDefaults) {
		require.NoError(t, registry.Register(tl))
	}
	require.NoError(t, registry.Register(NewFormatResponseTool(&stubFormatter{})))

	defs := registry.Definitions()
	require.Len(t, defs, 10)
	for _, d := range defs {
		assert.Equal(t, "object", d.Parameters["type"], d.Name)
		assert.NotEmpty(t, d.Description, d.Name)
	}
}
