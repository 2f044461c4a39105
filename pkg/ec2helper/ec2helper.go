/*
Copyright 2024.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package ec2helper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
)

var (
	// ErrInstanceNotFound is returned when the compute API has no record of
	// the instance, e.g. after a terminated instance ages out.
	ErrInstanceNotFound = errors.New("instance not found")

	// ErrAddressUnavailable is returned when the instance exists but has no
	// usable IP address yet. Redelivery of the notification retries this.
	ErrAddressUnavailable = errors.New("instance has no usable IP address")
)

type (
	// EC2Client is the slice of the EC2 API the helper needs.
	EC2Client interface {
		DescribeInstances(context.Context, *ec2.DescribeInstancesInput, ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
		CreateTags(context.Context, *ec2.CreateTagsInput, ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error)
	}

	// EC2Helper reads instance attributes and writes the Name tag.
	EC2Helper struct {
		EC2Client

		// UsePublicIP selects the public address instead of the private one.
		UsePublicIP bool
	}
)

// GetInstance describes the instance.
func (h EC2Helper) GetInstance(ctx context.Context, instanceID string) (*ec2types.Instance, error) {
	result, err := h.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return nil, fmt.Errorf("describing instance %s: %w", instanceID, err)
	}

	for _, reservation := range result.Reservations {
		for _, instance := range reservation.Instances {
			if aws.ToString(instance.InstanceId) == instanceID {
				return &instance, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
}

// IsNotFound reports whether the error means the instance does not exist,
// as opposed to a transient API failure. Covers both this package's
// sentinel and the API's InvalidInstanceID.NotFound code.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrInstanceNotFound) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && strings.HasSuffix(apiErr.ErrorCode(), ".NotFound")
}

// AddressOf returns the instance's IP address, honoring UsePublicIP.
func (h EC2Helper) AddressOf(instance *ec2types.Instance) (string, error) {
	address := instance.PrivateIpAddress
	if h.UsePublicIP {
		address = instance.PublicIpAddress
	}

	if aws.ToString(address) == "" {
		return "", fmt.Errorf("%w: %s (usePublicIP=%t)", ErrAddressUnavailable, aws.ToString(instance.InstanceId), h.UsePublicIP)
	}
	return aws.ToString(address), nil
}

// SetNameTag sets the instance's Name tag. Best-effort from the caller's
// point of view; the DNS record is the outcome that matters.
func (h EC2Helper) SetNameTag(ctx context.Context, instanceID string, name string) error {
	ctx = logging.WithLogger(ctx, logging.FromContext(ctx).Named("ec2Helper.setNameTag"))

	_, err := h.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{instanceID},
		Tags: []ec2types.Tag{
			{
				Key:   aws.String("Name"),
				Value: aws.String(name),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("tagging instance %s: %w", instanceID, err)
	}

	logging.FromContext(ctx).
		With("ec2InstanceID", instanceID).
		With("name", name).
		Info("set instance Name tag")
	return nil
}

// TagValue returns the value of the given tag key on the instance, or ""
// when absent.
func TagValue(instance *ec2types.Instance, key string) string {
	if instance == nil {
		return ""
	}
	for _, tag := range instance.Tags {
		if aws.ToString(tag.Key) == key {
			return aws.ToString(tag.Value)
		}
	}
	return ""
}
