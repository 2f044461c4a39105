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

package asghelper_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/asghelper"
	h "github.com/tkchk/terraform-aws-asg-dns-handler/pkg/test"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	asgtypes "github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
)

func TestGetTagValue(t *testing.T) {
	helper := asghelper.ASGHelper{ASGDescribeTagsClient: &h.MockedASG{
		DescribeTagsResp: autoscaling.DescribeTagsOutput{
			Tags: []asgtypes.TagDescription{
				{
					Key:   aws.String("asg:hostname_pattern"),
					Value: aws.String("asg-test-#instanceid.example@Z3QP9GZSRL8IVA"),
				},
			},
		},
	}}

	value, err := helper.GetTagValue(context.Background(), "asg-test", "asg:hostname_pattern")
	h.Ok(t, err)
	h.Equals(t, "asg-test-#instanceid.example@Z3QP9GZSRL8IVA", value)
}

func TestGetTagValueMissing(t *testing.T) {
	helper := asghelper.ASGHelper{ASGDescribeTagsClient: &h.MockedASG{}}

	value, err := helper.GetTagValue(context.Background(), "asg-test", "asg:hostname_pattern")
	h.Ok(t, err)
	h.Equals(t, "", value)
}

func TestGetTagValueError(t *testing.T) {
	helper := asghelper.ASGHelper{ASGDescribeTagsClient: &h.MockedASG{
		DescribeTagsErr: errors.New("throttled"),
	}}

	_, err := helper.GetTagValue(context.Background(), "asg-test", "asg:hostname_pattern")
	h.Nok(t, err)
}
