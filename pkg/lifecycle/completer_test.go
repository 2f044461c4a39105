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

package lifecycle_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/lifecycle"
	h "github.com/tkchk/terraform-aws-asg-dns-handler/pkg/test"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

func testEvent() *lifecycle.Event {
	return &lifecycle.Event{
		Kind:                 lifecycle.KindLaunching,
		AutoScalingGroupName: "asg-test",
		EC2InstanceID:        "i-0123456789abcdef0",
		LifecycleActionToken: "0befcbdb-6ecd-498a-9ff7-ae9b54447cd6",
		LifecycleHookName:    "asg-dns-handler-hook",
	}
}

func TestCompleteContinue(t *testing.T) {
	asg := &h.MockedASG{}
	completer := lifecycle.Completer{ASGCompleteClient: asg}

	err := completer.Complete(context.Background(), testEvent(), lifecycle.ResultContinue)
	h.Ok(t, err)

	h.Equals(t, 1, len(asg.CompleteLifecycleActionInputs))
	input := asg.CompleteLifecycleActionInputs[0]
	h.Equals(t, "asg-test", aws.ToString(input.AutoScalingGroupName))
	h.Equals(t, "CONTINUE", aws.ToString(input.LifecycleActionResult))
	h.Equals(t, "asg-dns-handler-hook", aws.ToString(input.LifecycleHookName))
	h.Equals(t, "0befcbdb-6ecd-498a-9ff7-ae9b54447cd6", aws.ToString(input.LifecycleActionToken))
	h.Equals(t, "i-0123456789abcdef0", aws.ToString(input.InstanceId))
}

func TestCompleteAbandon(t *testing.T) {
	asg := &h.MockedASG{}
	completer := lifecycle.Completer{ASGCompleteClient: asg}

	err := completer.Complete(context.Background(), testEvent(), lifecycle.ResultAbandon)
	h.Ok(t, err)
	h.Equals(t, "ABANDON", aws.ToString(asg.CompleteLifecycleActionInputs[0].LifecycleActionResult))
}

func TestCompleteAlreadyCompleted(t *testing.T) {
	asg := &h.MockedASG{
		CompleteLifecycleActionErr: &awshttp.ResponseError{
			ResponseError: &smithyhttp.ResponseError{
				Response: &smithyhttp.Response{
					Response: &http.Response{StatusCode: 400},
				},
				Err: errors.New("ValidationError: No active Lifecycle Action found"),
			},
		},
	}
	completer := lifecycle.Completer{ASGCompleteClient: asg}

	err := completer.Complete(context.Background(), testEvent(), lifecycle.ResultContinue)
	h.Ok(t, err)
}

func TestCompleteServerError(t *testing.T) {
	asg := &h.MockedASG{
		CompleteLifecycleActionErr: &awshttp.ResponseError{
			ResponseError: &smithyhttp.ResponseError{
				Response: &smithyhttp.Response{
					Response: &http.Response{StatusCode: 500},
				},
				Err: errors.New("InternalFailure"),
			},
		},
	}
	completer := lifecycle.Completer{ASGCompleteClient: asg}

	err := completer.Complete(context.Background(), testEvent(), lifecycle.ResultContinue)
	h.Nok(t, err)
}

func TestCompleteSkippedAfterDeadline(t *testing.T) {
	asg := &h.MockedASG{}
	completer := lifecycle.Completer{ASGCompleteClient: asg}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	err := completer.Complete(ctx, testEvent(), lifecycle.ResultAbandon)
	h.Assert(t, errors.Is(err, context.DeadlineExceeded), "expected deadline error, got %v", err)
	h.Equals(t, 0, len(asg.CompleteLifecycleActionInputs))
}
