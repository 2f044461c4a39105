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

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
)

// Result is the outcome reported to the lifecycle hook.
type Result string

const (
	ResultContinue = Result("CONTINUE")
	ResultAbandon  = Result("ABANDON")
)

type (
	// ASGCompleteClient is the slice of the autoscaling API the completer
	// needs.
	ASGCompleteClient interface {
		CompleteLifecycleAction(context.Context, *autoscaling.CompleteLifecycleActionInput, ...func(*autoscaling.Options)) (*autoscaling.CompleteLifecycleActionOutput, error)
	}

	// Completer reports CONTINUE/ABANDON for a lifecycle action. It makes a
	// single attempt; redelivery of the whole notification is the upstream
	// retry mechanism.
	Completer struct {
		ASGCompleteClient
	}
)

// Complete reports the result to the lifecycle hook. When the invocation
// deadline has already passed the call is skipped entirely and the hook is
// left to time out into its configured default result.
//
// A 400 response means the action was already completed or its token
// expired, typically because a prior delivery of the same notification got
// there first. That is treated as success.
func (c Completer) Complete(ctx context.Context, event *Event, result Result) error {
	ctx = logging.WithLogger(ctx, logging.FromContext(ctx).Named("completer"))

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= 0 {
		logging.FromContext(ctx).
			With("result", result).
			Warn("heartbeat deadline elapsed, not reporting lifecycle action result")
		return fmt.Errorf("reporting %s for instance %s: %w", result, event.EC2InstanceID, context.DeadlineExceeded)
	}

	_, err := c.CompleteLifecycleAction(ctx, &autoscaling.CompleteLifecycleActionInput{
		AutoScalingGroupName:  aws.String(event.AutoScalingGroupName),
		LifecycleActionResult: aws.String(string(result)),
		LifecycleActionToken:  aws.String(event.LifecycleActionToken),
		LifecycleHookName:     aws.String(event.LifecycleHookName),
		InstanceId:            aws.String(event.EC2InstanceID),
	})
	if err != nil {
		var responseErr *awshttp.ResponseError
		if errors.As(err, &responseErr) && responseErr.HTTPStatusCode() == 400 {
			logging.FromContext(ctx).
				With("error", err).
				Info("lifecycle action already completed")
			return nil
		}
		return fmt.Errorf("completing lifecycle action with %s: %w", result, err)
	}

	logging.FromContext(ctx).
		With("lifecycleHookName", event.LifecycleHookName).
		With("ec2InstanceID", event.EC2InstanceID).
		With("result", result).
		Info("completed lifecycle action")
	return nil
}
