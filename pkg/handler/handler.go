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

// Package handler runs the per-invocation pipeline: interpret the lifecycle
// notification, resolve hostname and address, mutate the zone record, tag
// the instance, and report CONTINUE/ABANDON back to the hook.
package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/dns"
	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/ec2helper"
	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/hostname"
	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/lifecycle"
	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/logging"

	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/multierr"
)

type (
	// GroupTagGetter reads tags from the auto scaling group.
	GroupTagGetter interface {
		GetTagValue(ctx context.Context, asgName string, key string) (string, error)
	}

	// InstanceReader reads instance attributes and writes the Name tag.
	InstanceReader interface {
		GetInstance(ctx context.Context, instanceID string) (*ec2types.Instance, error)
		AddressOf(instance *ec2types.Instance) (string, error)
		SetNameTag(ctx context.Context, instanceID string, name string) error
	}

	// RecordManager mutates the zone record.
	RecordManager interface {
		Lookup(ctx context.Context, zoneID string, fqdn string) (*r53types.ResourceRecordSet, error)
		Upsert(ctx context.Context, zoneID string, fqdn string, address string) error
		Remove(ctx context.Context, zoneID string, fqdn string, address string) error
	}

	// ActionCompleter reports the lifecycle action result.
	ActionCompleter interface {
		Complete(ctx context.Context, event *lifecycle.Event, result lifecycle.Result) error
	}

	// Handler processes one lifecycle transition per message.
	Handler struct {
		GroupTagGetter
		InstanceReader
		RecordManager
		ActionCompleter

		// HostnameTagName is the tag key carrying the hostname pattern.
		HostnameTagName string
	}
)

// HandleSNS processes every record of an SNS-triggered invocation. Records
// are independent lifecycle transitions; one failing does not stop the
// others.
func (h Handler) HandleSNS(ctx context.Context, snsEvent events.SNSEvent) (err error) {
	for _, record := range snsEvent.Records {
		err = multierr.Append(err, h.HandleMessage(ctx, record.SNS.Message))
	}
	return err
}

// HandleMessage runs the pipeline for a single notification body.
//
// Fatal pipeline errors short-circuit to an ABANDON report, with two
// exceptions. A notification missing its action token cannot be completed
// at all, and an instance without an address yet is left uncompleted on
// purpose: returning the error makes the delivery mechanism retry, and the
// hook's own timeout is the backstop.
func (h Handler) HandleMessage(ctx context.Context, message string) error {
	event, err := lifecycle.ParseMessage(message)
	if event == nil {
		if err == nil {
			logging.FromContext(ctx).Info("ignoring test notification")
			return nil
		}
		return err
	}

	ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("event", event))

	if err == nil {
		err = h.process(ctx, event)
	}

	if errors.Is(err, ec2helper.ErrAddressUnavailable) {
		logging.FromContext(ctx).
			With("error", err).
			Warn("instance address not available yet, leaving lifecycle action open for redelivery")
		return err
	}

	result := lifecycle.ResultContinue
	if err != nil {
		logging.FromContext(ctx).
			With("error", err).
			Error("lifecycle transition failed")
		result = lifecycle.ResultAbandon
	}

	return multierr.Append(err, h.Complete(ctx, event, result))
}

func (h Handler) process(ctx context.Context, event *lifecycle.Event) error {
	instance, instanceErr := h.GetInstance(ctx, event.EC2InstanceID)
	if instanceErr != nil {
		// A terminating instance legitimately ages out of the compute API;
		// anything else is fatal. Swallowing a transient failure here would
		// complete the hook with a stale address still in the record.
		if event.Kind != lifecycle.KindTerminating || !ec2helper.IsNotFound(instanceErr) {
			return instanceErr
		}
		logging.FromContext(ctx).
			With("error", instanceErr).
			Info("instance no longer describable, relying on the record itself")
	}

	pattern, err := h.lookupPattern(ctx, event, instance)
	if err != nil {
		return err
	}

	resolved := pattern.Resolve(event.EC2InstanceID)
	ctx = logging.WithLogger(ctx, logging.FromContext(ctx).
		With("fqdn", resolved.FQDN).With("zoneID", resolved.ZoneID))

	switch event.Kind {
	case lifecycle.KindLaunching:
		return h.launch(ctx, event, instance, resolved)
	case lifecycle.KindTerminating:
		return h.terminate(ctx, pattern, instance, resolved)
	default:
		return fmt.Errorf("%w: %q", lifecycle.ErrUnknownTransition, event.Kind)
	}
}

func (h Handler) launch(ctx context.Context, event *lifecycle.Event, instance *ec2types.Instance, resolved hostname.Resolved) error {
	address, err := h.AddressOf(instance)
	if err != nil {
		return err
	}

	if err := h.Upsert(ctx, resolved.ZoneID, resolved.FQDN, address); err != nil {
		return err
	}

	// The Name tag is cosmetic; the DNS binding is what matters. A failed
	// tag write is logged and the launch still continues.
	if err := h.SetNameTag(ctx, event.EC2InstanceID, resolved.Label()); err != nil {
		logging.FromContext(ctx).
			With("error", err).
			Warn("failed to set instance Name tag")
	}

	return nil
}

func (h Handler) terminate(ctx context.Context, pattern hostname.Pattern, instance *ec2types.Instance, resolved hostname.Resolved) error {
	recordSet, err := h.Lookup(ctx, resolved.ZoneID, resolved.FQDN)
	if err != nil {
		return err
	}
	if recordSet == nil {
		// A prior delivery of the same terminate already removed it.
		logging.FromContext(ctx).Info("record already absent, terminate is a no-op")
		return nil
	}

	address := h.terminateAddress(ctx, pattern, instance, recordSet)
	if address == "" {
		logging.FromContext(ctx).
			Warn("cannot determine terminating instance's address, leaving shared record untouched")
		return nil
	}

	return h.Remove(ctx, resolved.ZoneID, resolved.FQDN, address)
}

// terminateAddress picks the address to strip from the record. The instance
// is usually still describable in Terminating:Wait; when it no longer is, a
// per-instance record identifies the address by itself as long as it holds
// exactly one.
func (h Handler) terminateAddress(ctx context.Context, pattern hostname.Pattern, instance *ec2types.Instance, recordSet *r53types.ResourceRecordSet) string {
	if instance != nil {
		if address, err := h.AddressOf(instance); err == nil {
			return address
		}
	}

	if addresses := dns.Addresses(recordSet); pattern.PerInstance && len(addresses) == 1 {
		return addresses[0]
	}
	return ""
}

// lookupPattern finds the hostname pattern for the event. The authoritative
// copy lives on the auto scaling group; the instance's propagated tag and
// the hook's notification metadata are fallbacks for terminations racing
// group reconfiguration.
func (h Handler) lookupPattern(ctx context.Context, event *lifecycle.Event, instance *ec2types.Instance) (hostname.Pattern, error) {
	raw, err := h.GetTagValue(ctx, event.AutoScalingGroupName, h.HostnameTagName)
	if err != nil {
		if event.Kind == lifecycle.KindLaunching {
			return hostname.Pattern{}, err
		}
		logging.FromContext(ctx).
			With("error", err).
			Warn("failed reading group tags, falling back to instance tag")
	}

	if raw == "" {
		raw = ec2helper.TagValue(instance, h.HostnameTagName)
	}
	if raw == "" {
		raw = event.NotificationMetadata
	}
	if raw == "" {
		return hostname.Pattern{}, fmt.Errorf("hostname pattern tag %q not found for group %s", h.HostnameTagName, event.AutoScalingGroupName)
	}

	return hostname.ParsePattern(raw)
}
