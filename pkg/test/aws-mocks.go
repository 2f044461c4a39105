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

package test

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/route53"
)

// MockedEC2 mocks the EC2 API
type MockedEC2 struct {
	DescribeInstancesResp ec2.DescribeInstancesOutput
	DescribeInstancesErr  error
	CreateTagsResp        ec2.CreateTagsOutput
	CreateTagsErr         error
	CreateTagsInputs      []*ec2.CreateTagsInput
}

// DescribeInstances mocks the ec2.DescribeInstances API call
func (m *MockedEC2) DescribeInstances(ctx context.Context, input *ec2.DescribeInstancesInput, options ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	return &m.DescribeInstancesResp, m.DescribeInstancesErr
}

// CreateTags mocks the ec2.CreateTags API call and records its inputs
func (m *MockedEC2) CreateTags(ctx context.Context, input *ec2.CreateTagsInput, options ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	m.CreateTagsInputs = append(m.CreateTagsInputs, input)
	return &m.CreateTagsResp, m.CreateTagsErr
}

// MockedASG mocks the autoscaling API
type MockedASG struct {
	CompleteLifecycleActionResp   autoscaling.CompleteLifecycleActionOutput
	CompleteLifecycleActionErr    error
	CompleteLifecycleActionInputs []*autoscaling.CompleteLifecycleActionInput
	DescribeTagsResp              autoscaling.DescribeTagsOutput
	DescribeTagsErr               error
}

// CompleteLifecycleAction mocks the autoscaling.CompleteLifecycleAction API call
func (m *MockedASG) CompleteLifecycleAction(ctx context.Context, input *autoscaling.CompleteLifecycleActionInput, options ...func(*autoscaling.Options)) (*autoscaling.CompleteLifecycleActionOutput, error) {
	m.CompleteLifecycleActionInputs = append(m.CompleteLifecycleActionInputs, input)
	return &m.CompleteLifecycleActionResp, m.CompleteLifecycleActionErr
}

// DescribeTags mocks the autoscaling.DescribeTags API call
func (m *MockedASG) DescribeTags(ctx context.Context, input *autoscaling.DescribeTagsInput, options ...func(*autoscaling.Options)) (*autoscaling.DescribeTagsOutput, error) {
	return &m.DescribeTagsResp, m.DescribeTagsErr
}

type (
	// ListResourceRecordSetsFunc mocks the route53.ListResourceRecordSets API call
	ListResourceRecordSetsFunc = func(context.Context, *route53.ListResourceRecordSetsInput, ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error)

	// ChangeResourceRecordSetsFunc mocks the route53.ChangeResourceRecordSets API call
	ChangeResourceRecordSetsFunc = func(context.Context, *route53.ChangeResourceRecordSetsInput, ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
)

// MockedRoute53 mocks the Route 53 API. The function fields let tests model
// zone state that changes between the read and the write.
type MockedRoute53 struct {
	ListResourceRecordSetsFn   ListResourceRecordSetsFunc
	ChangeResourceRecordSetsFn ChangeResourceRecordSetsFunc
}

// ListResourceRecordSets mocks the route53.ListResourceRecordSets API call
func (m *MockedRoute53) ListResourceRecordSets(ctx context.Context, input *route53.ListResourceRecordSetsInput, options ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error) {
	if m.ListResourceRecordSetsFn == nil {
		return &route53.ListResourceRecordSetsOutput{}, nil
	}
	return m.ListResourceRecordSetsFn(ctx, input, options...)
}

// ChangeResourceRecordSets mocks the route53.ChangeResourceRecordSets API call
func (m *MockedRoute53) ChangeResourceRecordSets(ctx context.Context, input *route53.ChangeResourceRecordSetsInput, options ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
	if m.ChangeResourceRecordSetsFn == nil {
		return &route53.ChangeResourceRecordSetsOutput{}, nil
	}
	return m.ChangeResourceRecordSetsFn(ctx, input, options...)
}
