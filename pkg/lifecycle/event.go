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

// Package lifecycle interprets ASG lifecycle hook notifications and reports
// their outcome back to the hook.
package lifecycle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

/* Example SNS lifecycle notification message:
{
  "LifecycleHookName": "asg-dns-handler-launching",
  "AccountId": "123456789012",
  "RequestId": "3775fac9-93c3-7ead-8713-159816566000",
  "LifecycleTransition": "autoscaling:EC2_INSTANCE_LAUNCHING",
  "AutoScalingGroupName": "asg-test",
  "Service": "AWS Auto Scaling",
  "Time": "2020-07-01T22:19:58.872Z",
  "EC2InstanceId": "i-0123456789abcdef0",
  "LifecycleActionToken": "0befcbdb-6ecd-498a-9ff7-ae9b54447cd6"
}
*/

const (
	launchingSuffix   = "LAUNCHING"
	terminatingSuffix = "TERMINATING"

	// testNotificationEvent is sent once when the SNS topic subscription is
	// created. It carries no lifecycle action and is dropped.
	testNotificationEvent = "autoscaling:TEST_NOTIFICATION"
)

var (
	// ErrUnknownTransition is returned for LifecycleTransition values that
	// are neither launching nor terminating.
	ErrUnknownTransition = errors.New("unknown lifecycle transition")

	// ErrMalformedEvent is returned when a required notification field is
	// absent.
	ErrMalformedEvent = errors.New("malformed lifecycle event")
)

// Kind classifies a lifecycle transition.
type Kind string

const (
	KindLaunching   = Kind("launching")
	KindTerminating = Kind("terminating")
)

// LifecycleDetail provides the ASG lifecycle event details
type LifecycleDetail struct {
	Event                string `json:"Event,omitempty"`
	LifecycleActionToken string `json:"LifecycleActionToken"`
	AutoScalingGroupName string `json:"AutoScalingGroupName"`
	LifecycleHookName    string `json:"LifecycleHookName"`
	EC2InstanceID        string `json:"EC2InstanceId"`
	LifecycleTransition  string `json:"LifecycleTransition"`
	NotificationMetadata string `json:"NotificationMetadata,omitempty"`
}

// Event is a classified lifecycle transition for a single instance.
type Event struct {
	Kind                 Kind
	AutoScalingGroupName string
	EC2InstanceID        string
	LifecycleActionToken string
	LifecycleHookName    string
	NotificationMetadata string
}

func (e Event) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("kind", string(e.Kind))
	enc.AddString("autoScalingGroupName", e.AutoScalingGroupName)
	enc.AddString("ec2InstanceID", e.EC2InstanceID)
	enc.AddString("lifecycleHookName", e.LifecycleHookName)
	return nil
}

// ParseMessage parses the SNS message body into an Event. A nil Event with
// a nil error means the message was a test notification and there is
// nothing to do. Classification and field validation are fail-fast: no
// mutation happens downstream of an error.
func ParseMessage(body string) (*Event, error) {
	detail := LifecycleDetail{}
	if err := json.Unmarshal([]byte(body), &detail); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	if detail.Event == testNotificationEvent || detail.LifecycleTransition == testNotificationEvent {
		return nil, nil
	}

	for field, value := range map[string]string{
		"LifecycleTransition":  detail.LifecycleTransition,
		"AutoScalingGroupName": detail.AutoScalingGroupName,
		"EC2InstanceId":        detail.EC2InstanceID,
		"LifecycleActionToken": detail.LifecycleActionToken,
		"LifecycleHookName":    detail.LifecycleHookName,
	} {
		if value == "" {
			return nil, fmt.Errorf("%w: missing %s", ErrMalformedEvent, field)
		}
	}

	event := &Event{
		AutoScalingGroupName: detail.AutoScalingGroupName,
		EC2InstanceID:        detail.EC2InstanceID,
		LifecycleActionToken: detail.LifecycleActionToken,
		LifecycleHookName:    detail.LifecycleHookName,
		NotificationMetadata: detail.NotificationMetadata,
	}

	switch {
	case strings.HasSuffix(detail.LifecycleTransition, launchingSuffix):
		event.Kind = KindLaunching
	case strings.HasSuffix(detail.LifecycleTransition, terminatingSuffix):
		event.Kind = KindTerminating
	default:
		return event, fmt.Errorf("%w: %q", ErrUnknownTransition, detail.LifecycleTransition)
	}

	return event, nil
}
