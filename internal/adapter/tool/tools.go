package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cloud-agent/internal/application/port/output"
	"cloud-agent/internal/domain/entity"
)

// Defaults fill arguments the model leaves out.
type Defaults struct {
	Region       string
	InstanceType string
	KeyName      string
}

func (d Defaults) region(r string) string {
	if r == "" {
		return d.Region
	}
	return r
}

type CreateEC2InstanceInput struct {
	InstanceType string `json:"instance_type,omitempty" jsonschema_description:"The EC2 instance type" jsonschema:"default=t2.micro"`
	Region       string `json:"region,omitempty" jsonschema_description:"The AWS region, e.g. us-east-1"`
	KeyName      string `json:"key_name,omitempty" jsonschema_description:"Name of an existing EC2 key pair, for SSH access"`
}

type RegionInput struct {
	Region string `json:"region,omitempty" jsonschema_description:"AWS region, e.g. us-east-1"`
}

type DeleteEC2ByIPInput struct {
	PublicIP string `json:"public_ip" jsonschema_description:"Public IP of the EC2 instance to terminate"`
	Region   string `json:"region,omitempty" jsonschema_description:"AWS region, e.g. us-east-1"`
}

type BucketInput struct {
	BucketName string `json:"bucket_name" jsonschema_description:"Name of the bucket"`
	Region     string `json:"region,omitempty" jsonschema_description:"AWS region, e.g. us-east-1"`
}

type ListS3ObjectsInput struct {
	Bucket string `json:"bucket" jsonschema_description:"Full bucket name"`
	Prefix string `json:"prefix,omitempty" jsonschema_description:"Folder prefix, e.g. images/"`
	Region string `json:"region,omitempty" jsonschema_description:"AWS region, e.g. us-east-1"`
}

type DeleteS3ObjectInput struct {
	Bucket string `json:"bucket" jsonschema_description:"Full bucket name"`
	Key    string `json:"key" jsonschema_description:"Object key to delete"`
	Region string `json:"region,omitempty" jsonschema_description:"AWS region, e.g. us-east-1"`
}

var (
	createEC2InstanceSchema = GenerateSchema[CreateEC2InstanceInput]()
	regionSchema            = GenerateSchema[RegionInput]()
	deleteEC2ByIPSchema     = GenerateSchema[DeleteEC2ByIPInput]()
	bucketSchema            = GenerateSchema[BucketInput]()
	listS3ObjectsSchema     = GenerateSchema[ListS3ObjectsInput]()
	deleteS3ObjectSchema    = GenerateSchema[DeleteS3ObjectInput]()
)

type CreateEC2InstanceTool struct {
	compute  output.ComputePort
	defaults Defaults
}

func NewCreateEC2InstanceTool(compute output.ComputePort, defaults Defaults) *CreateEC2InstanceTool {
	return &CreateEC2InstanceTool{compute: compute, defaults: defaults}
}

func (t *CreateEC2InstanceTool) Name() entity.ToolName { return entity.ToolCreateEC2Instance }
func (t *CreateEC2InstanceTool) Description() string {
	return "Creates a new AWS EC2 instance and returns its public IP. If the security group already exists, it is reused."
}
func (t *CreateEC2InstanceTool) Parameters() map[string]any { return createEC2InstanceSchema }

func (t *CreateEC2InstanceTool) Execute(ctx context.Context, args string) (string, error) {
	var input CreateEC2InstanceInput
	if err := decodeArgs(t.Name(), args, &input); err != nil {
		return "", err
	}
	req := entity.CreateInstanceRequest{
		InstanceType: input.InstanceType,
		Region:       t.defaults.region(input.Region),
		KeyName:      input.KeyName,
	}
	if req.InstanceType == "" {
		req.InstanceType = t.defaults.InstanceType
	}
	if req.KeyName == "" {
		req.KeyName = t.defaults.KeyName
	}
	return t.compute.CreateInstance(ctx, req)
}

type ListEC2InstancesTool struct {
	compute  output.ComputePort
	defaults Defaults
}

func NewListEC2InstancesTool(compute output.ComputePort, defaults Defaults) *ListEC2InstancesTool {
	return &ListEC2InstancesTool{compute: compute, defaults: defaults}
}

func (t *ListEC2InstancesTool) Name() entity.ToolName { return entity.ToolListEC2Instances }
func (t *ListEC2InstancesTool) Description() string {
	return "Lists all EC2 instances in a region with their state, launch time and public IP."
}
func (t *ListEC2InstancesTool) Parameters() map[string]any { return regionSchema }

func (t *ListEC2InstancesTool) Execute(ctx context.Context, args string) (string, error) {
	var input RegionInput
	if err := decodeArgs(t.Name(), args, &input); err != nil {
		return "", err
	}
	return t.compute.ListInstances(ctx, t.defaults.region(input.Region))
}

type StopEC2InstancesTool struct {
	compute  output.ComputePort
	defaults Defaults
}

func NewStopEC2InstancesTool(compute output.ComputePort, defaults Defaults) *StopEC2InstancesTool {
	return &StopEC2InstancesTool{compute: compute, defaults: defaults}
}

func (t *StopEC2InstancesTool) Name() entity.ToolName { return entity.ToolStopEC2Instances }
func (t *StopEC2InstancesTool) Description() string {
	return "Stops ALL running EC2 instances in a region."
}
func (t *StopEC2InstancesTool) Parameters() map[string]any { return regionSchema }

func (t *StopEC2InstancesTool) Execute(ctx context.Context, args string) (string, error) {
	var input RegionInput
	if err := decodeArgs(t.Name(), args, &input); err != nil {
		return "", err
	}
	return t.compute.StopInstances(ctx, t.defaults.region(input.Region))
}

type DeleteEC2InstanceByIPTool struct {
	compute  output.ComputePort
	defaults Defaults
}

func NewDeleteEC2InstanceByIPTool(compute output.ComputePort, defaults Defaults) *DeleteEC2InstanceByIPTool {
	return &DeleteEC2InstanceByIPTool{compute: compute, defaults: defaults}
}

func (t *DeleteEC2InstanceByIPTool) Name() entity.ToolName { return entity.ToolDeleteEC2InstanceIP }
func (t *DeleteEC2InstanceByIPTool) Description() string {
	return "Terminates the EC2 instance with the given public IP address."
}
func (t *DeleteEC2InstanceByIPTool) Parameters() map[string]any { return deleteEC2ByIPSchema }

func (t *DeleteEC2InstanceByIPTool) Execute(ctx context.Context, args string) (string, error) {
	var input DeleteEC2ByIPInput
	if err := decodeArgs(t.Name(), args, &input); err != nil {
		return "", err
	}
	if err := requireFields(t.Name(), [2]string{"public_ip", input.PublicIP}); err != nil {
		return "", err
	}
	return t.compute.TerminateInstanceByIP(ctx, t.defaults.region(input.Region), strings.TrimSpace(input.PublicIP))
}

type CreateS3BucketTool struct {
	storage  output.StoragePort
	defaults Defaults
}

func NewCreateS3BucketTool(storage output.StoragePort, defaults Defaults) *CreateS3BucketTool {
	return &CreateS3BucketTool{storage: storage, defaults: defaults}
}

func (t *CreateS3BucketTool) Name() entity.ToolName { return entity.ToolCreateS3Bucket }
func (t *CreateS3BucketTool) Description() string {
	return "Creates a public S3 bucket with READ + WRITE access: anyone can upload and download. Insecure for production."
}
func (t *CreateS3BucketTool) Parameters() map[string]any { return bucketSchema }

func (t *CreateS3BucketTool) Execute(ctx context.Context, args string) (string, error) {
	var input BucketInput
	if err := decodeArgs(t.Name(), args, &input); err != nil {
		return "", err
	}
	if err := requireFields(t.Name(), [2]string{"bucket_name", input.BucketName}); err != nil {
		return "", err
	}
	return t.storage.CreatePublicBucket(ctx, t.defaults.region(input.Region), input.BucketName)
}

type ListS3BucketsTool struct {
	storage  output.StoragePort
	defaults Defaults
}

func NewListS3BucketsTool(storage output.StoragePort, defaults Defaults) *ListS3BucketsTool {
	return &ListS3BucketsTool{storage: storage, defaults: defaults}
}

func (t *ListS3BucketsTool) Name() entity.ToolName { return entity.ToolListS3Buckets }
func (t *ListS3BucketsTool) Description() string {
	return "Lists all S3 buckets in the account."
}
func (t *ListS3BucketsTool) Parameters() map[string]any { return regionSchema }

func (t *ListS3BucketsTool) Execute(ctx context.Context, args string) (string, error) {
	var input RegionInput
	if err := decodeArgs(t.Name(), args, &input); err != nil {
		return "", err
	}
	return t.storage.ListBuckets(ctx, t.defaults.region(input.Region))
}

type DeleteS3BucketTool struct {
	storage  output.StoragePort
	defaults Defaults
}

func NewDeleteS3BucketTool(storage output.StoragePort, defaults Defaults) *DeleteS3BucketTool {
	return &DeleteS3BucketTool{storage: storage, defaults: defaults}
}

func (t *DeleteS3BucketTool) Name() entity.ToolName { return entity.ToolDeleteS3Bucket }
func (t *DeleteS3BucketTool) Description() string {
	return "Deletes an S3 bucket, removing every object in it first."
}
func (t *DeleteS3BucketTool) Parameters() map[string]any { return bucketSchema }

func (t *DeleteS3BucketTool) Execute(ctx context.Context, args string) (string, error) {
	var input BucketInput
	if err := decodeArgs(t.Name(), args, &input); err != nil {
		return "", err
	}
	if err := requireFields(t.Name(), [2]string{"bucket_name", input.BucketName}); err != nil {
		return "", err
	}
	return t.storage.DeleteBucket(ctx, t.defaults.region(input.Region), input.BucketName)
}

type ListS3ObjectsTool struct {
	storage  output.StoragePort
	defaults Defaults
}

func NewListS3ObjectsTool(storage output.StoragePort, defaults Defaults) *ListS3ObjectsTool {
	return &ListS3ObjectsTool{storage: storage, defaults: defaults}
}

func (t *ListS3ObjectsTool) Name() entity.ToolName { return entity.ToolListS3Objects }
func (t *ListS3ObjectsTool) Description() string {
	return "Lists files and folders in an S3 bucket under an optional prefix. Returns JSON."
}
func (t *ListS3ObjectsTool) Parameters() map[string]any { return listS3ObjectsSchema }

func (t *ListS3ObjectsTool) Execute(ctx context.Context, args string) (string, error) {
	var input ListS3ObjectsInput
	if err := decodeArgs(t.Name(), args, &input); err != nil {
		return "", err
	}
	if err := requireFields(t.Name(), [2]string{"bucket", input.Bucket}); err != nil {
		return "", err
	}
	listing, err := t.storage.ListObjects(ctx, t.defaults.region(input.Region), input.Bucket, input.Prefix)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(listing)
	if err != nil {
		return "", fmt.Errorf("marshal listing: %w", err)
	}
	return string(raw), nil
}

type DeleteS3ObjectTool struct {
	storage  output.StoragePort
	defaults Defaults
}

func NewDeleteS3ObjectTool(storage output.StoragePort, defaults Defaults) *DeleteS3ObjectTool {
	return &DeleteS3ObjectTool{storage: storage, defaults: defaults}
}

func (t *DeleteS3ObjectTool) Name() entity.ToolName { return entity.ToolDeleteS3Object }
func (t *DeleteS3ObjectTool) Description() string {
	return "Deletes one object from an S3 bucket."
}
func (t *DeleteS3ObjectTool) Parameters() map[string]any { return deleteS3ObjectSchema }

func (t *DeleteS3ObjectTool) Execute(ctx context.Context, args string) (string, error) {
	var input DeleteS3ObjectInput
	if err := decodeArgs(t.Name(), args, &input); err != nil {
		return "", err
	}
	if err := requireFields(t.Name(),
		[2]string{"bucket", input.Bucket},
		[2]string{"key", input.Key},
	); err != nil {
		return "", err
	}
	if err := t.storage.DeleteObject(ctx, t.defaults.region(input.Region), input.Bucket, input.Key); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted s3://%s/%s", input.Bucket, input.Key), nil
}

// CloudTools returns every EC2 and S3 tool.
func CloudTools(compute output.ComputePort, storage output.StoragePort, defaults Defaults) []output.ToolPort {
	return []output.ToolPort{
		NewCreateEC2InstanceTool(compute, defaults),
		NewListEC2InstancesTool(compute, defaults),
		NewStopEC2InstancesTool(compute, defaults),
		NewDeleteEC2InstanceByIPTool(compute, defaults),
		NewCreateS3BucketTool(storage, defaults),
		NewListS3BucketsTool(storage, defaults),
		NewDeleteS3BucketTool(storage, defaults),
		NewListS3ObjectsTool(storage, defaults),
		NewDeleteS3ObjectTool(storage, defaults),
	}
}
