package entity

type ToolName string

const (
	ToolCreateEC2Instance   ToolName = "create_ec2_instance"
	ToolListEC2Instances    ToolName = "list_ec2_instances"
	ToolStopEC2Instances    ToolName = "stop_ec2_instances"
	ToolDeleteEC2InstanceIP ToolName = "delete_ec2_instance_by_ip"

	ToolCreateS3Bucket ToolName = "create_s3_bucket_public_rw"
	ToolListS3Buckets  ToolName = "list_s3_buckets"
	ToolDeleteS3Bucket ToolName = "delete_s3_bucket"
	ToolListS3Objects  ToolName = "list_s3_objects"
	ToolDeleteS3Object ToolName = "delete_s3_object"

	ToolFormatResponse ToolName = "format_response"
)

func (t ToolName) String() string {
	return string(t)
}
