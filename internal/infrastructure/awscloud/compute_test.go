package awscloud

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud-agent/internal/domain/entity"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runningInstance(id, ip string) ec2types.Instance {
	return ec2types.Instance{
		InstanceId:      aws.String(id),
		PublicIpAddress: aws.String(ip),
		State:           &ec2types.InstanceState{Name: ec2types.InstanceStateNameRunning},
		LaunchTime:      aws.Time(time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)),
	}
}

func TestCreateInstance_NewSecurityGroup(t *testing.T) {
	fake := &fakeEC2{instances: []ec2types.Instance{runningInstance("i-new", "3.3.3.3")}}
	compute, factory := newTestCompute(fake)

	out, err := compute.CreateInstance(context.Background(), entity.CreateInstanceRequest{})
	require.NoError(t, err)

	assert.Equal(t, "EC2 instance i-new created in us-east-1. Public IP: 3.3.3.3 (using SG cloud-agent-sg-t2.micro)", out)
	assert.Equal(t, "cloud-agent-sg-t2.micro", fake.createdGroup)
	assert.Equal(t, []string{"sg-new"}, fake.runInput.SecurityGroupIds)
	assert.Equal(t, ec2types.InstanceType("t2.micro"), fake.runInput.InstanceType)
	assert.Nil(t, fake.runInput.KeyName)
	assert.Equal(t, "us-east-1", factory.regions[0])
}

func TestCreateInstance_ReusesDuplicateSecurityGroup(t *testing.T) {
	fake := &fakeEC2{
		createSGErr: &smithy.GenericAPIError{Code: "InvalidGroup.Duplicate", Message: "already exists"},
		describeSG:  []ec2types.SecurityGroup{{GroupId: aws.String("sg-existing")}},
		instances:   []ec2types.Instance{runningInstance("i-new", "")},
	}
	compute, _ := newTestCompute(fake)

	out, err := compute.CreateInstance(context.Background(), entity.CreateInstanceRequest{
		InstanceType: "t3.small",
		Region:       "eu-west-1",
		KeyName:      "ops",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"sg-existing"}, fake.runInput.SecurityGroupIds)
	assert.Equal(t, "ops", aws.ToString(fake.runInput.KeyName))
	assert.Contains(t, out, "Public IP: No public IP assigned")
	assert.Contains(t, out, "created in eu-west-1")
	assert.Contains(t, out, "(using SG cloud-agent-sg-t3.small)")
}

func TestCreateInstance_SecurityGroupFailure(t *testing.T) {
	fake := &fakeEC2{
		createSGErr: &smithy.GenericAPIError{Code: "UnauthorizedOperation", Message: "denied"},
	}
	compute, _ := newTestCompute(fake)

	_, err := compute.CreateInstance(context.Background(), entity.CreateInstanceRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrProvider)
	assert.Nil(t, fake.runInput)
}

func TestCreateInstance_RunFailureIsClassified(t *testing.T) {
	fake := &fakeEC2{
		runErr: &smithy.GenericAPIError{Code: "InvalidAMIID.Malformed", Message: "bad ami"},
	}
	compute, _ := newTestCompute(fake)

	_, err := compute.CreateInstance(context.Background(), entity.CreateInstanceRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	var apiErr smithy.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "InvalidAMIID.Malformed", apiErr.ErrorCode())
}

func TestListInstances(t *testing.T) {
	stopped := ec2types.Instance{
		InstanceId: aws.String("i-2"),
		State:      &ec2types.InstanceState{Name: ec2types.InstanceStateNameStopped},
	}
	fake := &fakeEC2{instances: []ec2types.Instance{runningInstance("i-1", "1.2.3.4"), stopped}}
	compute, _ := newTestCompute(fake)

	out, err := compute.ListInstances(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t,
		"ID: i-1 | State: running | Launched: 2025-03-01 10:30:00 | Public IP: 1.2.3.4\n"+
			"ID: i-2 | State: stopped | Launched: unknown | Public IP: N/A",
		out)
}

func TestListInstances_Empty(t *testing.T) {
	compute, _ := newTestCompute(&fakeEC2{})

	out, err := compute.ListInstances(context.Background(), "ap-south-1")
	require.NoError(t, err)
	assert.Equal(t, "No EC2 instances found in ap-south-1.", out)
}

func TestStopInstances(t *testing.T) {
	stopped := ec2types.Instance{
		InstanceId: aws.String("i-3"),
		State:      &ec2types.InstanceState{Name: ec2types.InstanceStateNameStopped},
	}
	fake := &fakeEC2{instances: []ec2types.Instance{
		runningInstance("i-1", "1.1.1.1"),
		stopped,
		runningInstance("i-2", "2.2.2.2"),
	}}
	compute, _ := newTestCompute(fake)

	out, err := compute.StopInstances(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "Stopping 2 instance(s): i-1, i-2", out)
	assert.Equal(t, []string{"i-1", "i-2"}, fake.stopped)
}

func TestStopInstances_NoneRunning(t *testing.T) {
	compute, _ := newTestCompute(&fakeEC2{})

	out, err := compute.StopInstances(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "No running instances found in us-east-1.", out)
}

func TestTerminateInstanceByIP(t *testing.T) {
	fake := &fakeEC2{instances: []ec2types.Instance{runningInstance("i-9", "9.9.9.9")}}
	compute, _ := newTestCompute(fake)

	out, err := compute.TerminateInstanceByIP(context.Background(), "", "9.9.9.9")
	require.NoError(t, err)

	assert.Equal(t, "Terminating 1 instance(s) with public IP 9.9.9.9: i-9", out)
	assert.Equal(t, []string{"i-9"}, fake.terminated)
	require.Len(t, fake.lastFilters, 1)
	assert.Equal(t, "ip-address", aws.ToString(fake.lastFilters[0].Name))
	assert.Equal(t, []string{"9.9.9.9"}, fake.lastFilters[0].Values)
}

func TestTerminateInstanceByIP_NotFound(t *testing.T) {
	fake := &fakeEC2{}
	compute, _ := newTestCompute(fake)

	_, err := compute.TerminateInstanceByIP(context.Background(), "", "8.8.8.8")
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.Empty(t, fake.terminated)
}

func TestTerminateInstanceByIP_RequiresIP(t *testing.T) {
	compute, _ := newTestCompute(&fakeEC2{})

	_, err := compute.TerminateInstanceByIP(context.Background(), "", "")
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", &smithy.GenericAPIError{Code: "NoSuchBucket"}, entity.ErrNotFound},
		{"conflict", &smithy.GenericAPIError{Code: "BucketAlreadyOwnedByYou"}, entity.ErrConflict},
		{"invalid", &smithy.GenericAPIError{Code: "InvalidBucketName"}, entity.ErrInvalidInput},
		{"unknown code", &smithy.GenericAPIError{Code: "Throttling"}, entity.ErrProvider},
		{"plain error", errors.New("boom"), entity.ErrProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassify_ContextErrorsPassThrough(t *testing.T) {
	err := classify("op", context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)

	var actionErr *entity.ActionError
	assert.False(t, errors.As(err, &actionErr))
	assert.Nil(t, classify("op", nil))
}
