package awscloud

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud-agent/internal/application/port/output"
	"cloud-agent/internal/domain/entity"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

var _ output.ComputePort = (*Compute)(nil)

const (
	DefaultInstanceType = "t2.micro"
	launchTimeLayout    = "2006-01-02 15:04:05"
	noPublicIP          = "No public IP assigned"
)

type ComputeConfig struct {
	DefaultRegion string
	AMI           string
	KeyName       string
	SGPrefix      string
	WaitTimeout   time.Duration
}

type Compute struct {
	clients ClientFactory
	cfg     ComputeConfig
	logger  output.LoggerPort
}

func NewCompute(clients ClientFactory, cfg ComputeConfig, logger output.LoggerPort) *Compute {
	return &Compute{
		clients: clients,
		cfg:     cfg,
		logger:  logger.WithField("component", "ec2"),
	}
}

func (c *Compute) region(region string) string {
	if region == "" {
		return c.cfg.DefaultRegion
	}
	return region
}

// CreateInstance launches one instance behind a per-instance-type security
// group, reusing the group when it already exists, and waits until the
// instance is running so the public IP can be reported.
func (c *Compute) CreateInstance(ctx context.Context, req entity.CreateInstanceRequest) (string, error) {
	region := c.region(req.Region)
	instanceType := req.InstanceType
	if instanceType == "" {
		instanceType = DefaultInstanceType
	}
	keyName := req.KeyName
	if keyName == "" {
		keyName = c.cfg.KeyName
	}

	client := c.clients.EC2(region)
	sgName := fmt.Sprintf("%s-%s", c.cfg.SGPrefix, instanceType)

	sgID, err := c.ensureSecurityGroup(ctx, client, sgName)
	if err != nil {
		return "", err
	}

	input := &ec2.RunInstancesInput{
		ImageId:          aws.String(c.cfg.AMI),
		InstanceType:     ec2types.InstanceType(instanceType),
		MinCount:         aws.Int32(1),
		MaxCount:         aws.Int32(1),
		SecurityGroupIds: []string{sgID},
	}
	if keyName != "" {
		input.KeyName = aws.String(keyName)
	}

	runOut, err := client.RunInstances(ctx, input)
	if err != nil {
		return "", classify("ec2.RunInstances", err)
	}
	if len(runOut.Instances) == 0 {
		return "", entity.NewActionError("ec2.RunInstances", entity.ErrProvider, fmt.Errorf("no instance returned"))
	}
	instanceID := aws.ToString(runOut.Instances[0].InstanceId)

	c.logger.Info("Instance launched, waiting for running state",
		"instance_id", instanceID, "region", region, "security_group", sgName)

	waiter := ec2.NewInstanceRunningWaiter(client)
	describe := &ec2.DescribeInstancesInput{InstanceIds: []string{instanceID}}
	if err := waiter.Wait(ctx, describe, c.cfg.WaitTimeout); err != nil {
		return "", classify("ec2.WaitInstanceRunning", err)
	}

	descOut, err := client.DescribeInstances(ctx, describe)
	if err != nil {
		return "", classify("ec2.DescribeInstances", err)
	}

	publicIP := noPublicIP
	for _, reservation := range descOut.Reservations {
		for _, instance := range reservation.Instances {
			if ip := aws.ToString(instance.PublicIpAddress); ip != "" {
				publicIP = ip
			}
		}
	}

	return fmt.Sprintf("EC2 instance %s created in %s. Public IP: %s (using SG %s)",
		instanceID, region, publicIP, sgName), nil
}

func (c *Compute) ensureSecurityGroup(ctx context.Context, client EC2API, name string) (string, error) {
	created, err := client.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(name),
		Description: aws.String("Security group for cloud-agent EC2 instances"),
	})
	if err == nil {
		return aws.ToString(created.GroupId), nil
	}
	if apiErrorCode(err) != codeGroupDuplicate {
		return "", classify("ec2.CreateSecurityGroup", err)
	}

	c.logger.Debug("Security group exists, reusing", "group", name)

	existing, err := client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		GroupNames: []string{name},
	})
	if err != nil {
		return "", classify("ec2.DescribeSecurityGroups", err)
	}
	if len(existing.SecurityGroups) == 0 {
		return "", entity.NotFoundf("ec2.DescribeSecurityGroups", "security group %q reported as duplicate but not found", name)
	}
	return aws.ToString(existing.SecurityGroups[0].GroupId), nil
}

func (c *Compute) ListInstances(ctx context.Context, region string) (string, error) {
	region = c.region(region)

	out, err := c.clients.EC2(region).DescribeInstances(ctx, &ec2.DescribeInstancesInput{})
	if err != nil {
		return "", classify("ec2.DescribeInstances", err)
	}

	var lines []string
	for _, reservation := range out.Reservations {
		for _, instance := range reservation.Instances {
			launched := "unknown"
			if instance.LaunchTime != nil {
				launched = instance.LaunchTime.UTC().Format(launchTimeLayout)
			}
			publicIP := aws.ToString(instance.PublicIpAddress)
			if publicIP == "" {
				publicIP = "N/A"
			}
			state := "unknown"
			if instance.State != nil {
				state = string(instance.State.Name)
			}
			lines = append(lines, fmt.Sprintf("ID: %s | State: %s | Launched: %s | Public IP: %s",
				aws.ToString(instance.InstanceId), state, launched, publicIP))
		}
	}

	if len(lines) == 0 {
		return fmt.Sprintf("No EC2 instances found in %s.", region), nil
	}
	return strings.Join(lines, "\n"), nil
}

// StopInstances stops every running instance in the region.
func (c *Compute) StopInstances(ctx context.Context, region string) (string, error) {
	region = c.region(region)
	client := c.clients.EC2(region)

	out, err := client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{})
	if err != nil {
		return "", classify("ec2.DescribeInstances", err)
	}

	var running []string
	for _, reservation := range out.Reservations {
		for _, instance := range reservation.Instances {
			if instance.State != nil && instance.State.Name == ec2types.InstanceStateNameRunning {
				running = append(running, aws.ToString(instance.InstanceId))
			}
		}
	}

	if len(running) == 0 {
		return fmt.Sprintf("No running instances found in %s.", region), nil
	}

	if _, err := client.StopInstances(ctx, &ec2.StopInstancesInput{InstanceIds: running}); err != nil {
		return "", classify("ec2.StopInstances", err)
	}

	c.logger.Info("Stopping instances", "region", region, "count", len(running))
	return fmt.Sprintf("Stopping %d instance(s): %s", len(running), strings.Join(running, ", ")), nil
}

func (c *Compute) TerminateInstanceByIP(ctx context.Context, region, publicIP string) (string, error) {
	region = c.region(region)
	if publicIP == "" {
		return "", entity.InvalidInputf("ec2.TerminateInstances", "public IP is required")
	}
	client := c.clients.EC2(region)

	out, err := client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("ip-address"), Values: []string{publicIP}},
		},
	})
	if err != nil {
		return "", classify("ec2.DescribeInstances", err)
	}

	var ids []string
	for _, reservation := range out.Reservations {
		for _, instance := range reservation.Instances {
			ids = append(ids, aws.ToString(instance.InstanceId))
		}
	}

	if len(ids) == 0 {
		return "", entity.NotFoundf("ec2.TerminateInstances", "no EC2 instance found with public IP %s in %s", publicIP, region)
	}

	if _, err := client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{InstanceIds: ids}); err != nil {
		return "", classify("ec2.TerminateInstances", err)
	}

	c.logger.Info("Terminating instances", "region", region, "public_ip", publicIP, "count", len(ids))
	return fmt.Sprintf("Terminating %d instance(s) with public IP %s: %s", len(ids), publicIP, strings.Join(ids, ", ")), nil
}
