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

// Package asghelper reads configuration carried as tags on an auto scaling
// group.
package asghelper

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	asgtypes "github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
)

type (
	// ASGDescribeTagsClient is the slice of the autoscaling API the helper
	// needs.
	ASGDescribeTagsClient interface {
		DescribeTags(context.Context, *autoscaling.DescribeTagsInput, ...func(*autoscaling.Options)) (*autoscaling.DescribeTagsOutput, error)
	}

	// ASGHelper looks up tags on auto scaling groups.
	ASGHelper struct {
		ASGDescribeTagsClient
	}
)

// GetTagValue returns the value of the given tag key on the group, or ""
// when the group does not carry the tag.
func (h ASGHelper) GetTagValue(ctx context.Context, asgName string, key string) (string, error) {
	var nextToken *string

	for {
		result, err := h.DescribeTags(ctx, &autoscaling.DescribeTagsInput{
			Filters: []asgtypes.Filter{
				{
					Name:   aws.String("auto-scaling-group"),
					Values: []string{asgName},
				},
				{
					Name:   aws.String("key"),
					Values: []string{key},
				},
			},
			NextToken: nextToken,
		})
		if err != nil {
			return "", fmt.Errorf("describing tags of group %s: %w", asgName, err)
		}

		for _, tag := range result.Tags {
			if aws.ToString(tag.Key) == key {
				return aws.ToString(tag.Value), nil
			}
		}

		if result.NextToken == nil {
			return "", nil
		}
		nextToken = result.NextToken
	}
}
