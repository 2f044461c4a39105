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

// Package dns performs idempotent create/merge/delete of A-records in a
// Route 53 hosted zone.
//
// Writes are full-record UPSERTs over a set of addresses, so the manager
// re-reads the current set immediately before every write. With no locking
// across invocations two concurrent launches onto a shared record can still
// lose an update; the record converges as later lifecycle events re-run the
// read-merge-write. Per-instance records are not affected since each
// instance owns its own name.
package dns

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
)

type (
	// Route53Client is the slice of the Route 53 API the manager needs.
	Route53Client interface {
		ListResourceRecordSets(context.Context, *route53.ListResourceRecordSetsInput, ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error)
		ChangeResourceRecordSets(context.Context, *route53.ChangeResourceRecordSetsInput, ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
	}

	// Manager mutates A-records in a hosted zone.
	Manager struct {
		Route53Client

		// TTL in seconds applied to records the manager writes.
		TTL int64

		// MultiHost merges addresses into the record's set instead of
		// replacing the whole record on upsert.
		MultiHost bool
	}
)

// Lookup returns the A-record for fqdn in the zone, or nil when no such
// record exists.
func (m Manager) Lookup(ctx context.Context, zoneID string, fqdn string) (*r53types.ResourceRecordSet, error) {
	result, err := m.ListResourceRecordSets(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId:    aws.String(zoneID),
		StartRecordName: aws.String(fqdn),
		StartRecordType: r53types.RRTypeA,
		MaxItems:        aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("listing records for %s in zone %s: %w", fqdn, zoneID, err)
	}

	// The listing starts at the requested name but continues into the rest
	// of the zone, so a miss comes back as the lexically next record.
	for _, recordSet := range result.ResourceRecordSets {
		recordSet := recordSet
		if recordSet.Type == r53types.RRTypeA && sameName(aws.ToString(recordSet.Name), fqdn) {
			return &recordSet, nil
		}
	}
	return nil, nil
}

// Upsert ensures the record contains the address. In multi-host mode an
// existing record keeps its other addresses and the new one is merged in;
// otherwise the record is replaced outright. Re-running with an address
// that is already present changes nothing.
func (m Manager) Upsert(ctx context.Context, zoneID string, fqdn string, address string) error {
	ctx = logging.WithLogger(ctx, logging.FromContext(ctx).Named("dnsManager.upsert").
		With("fqdn", fqdn).With("zoneID", zoneID).With("address", address))

	current, err := m.Lookup(ctx, zoneID, fqdn)
	if err != nil {
		return err
	}

	addresses := Addresses(current)
	if contains(addresses, address) && (m.MultiHost || len(addresses) == 1) {
		logging.FromContext(ctx).Info("address already present, record unchanged")
		return nil
	}

	merged := []string{address}
	if m.MultiHost {
		merged = append(addresses, address)
	}
	if err := m.change(ctx, zoneID, r53types.ChangeActionUpsert, m.recordSet(fqdn, merged)); err != nil {
		return err
	}

	logging.FromContext(ctx).With("addresses", merged).Info("upserted record")
	return nil
}

// Remove strips the address from the record, deleting the record outright
// when the address was the last one. A missing record and a missing address
// are both successes: a prior delivery or a concurrent invocation already
// did the work.
func (m Manager) Remove(ctx context.Context, zoneID string, fqdn string, address string) error {
	ctx = logging.WithLogger(ctx, logging.FromContext(ctx).Named("dnsManager.remove").
		With("fqdn", fqdn).With("zoneID", zoneID).With("address", address))

	current, err := m.Lookup(ctx, zoneID, fqdn)
	if err != nil {
		return err
	}
	if current == nil {
		logging.FromContext(ctx).Info("record already absent, nothing to remove")
		return nil
	}

	addresses := Addresses(current)
	if !contains(addresses, address) {
		logging.FromContext(ctx).Info("address not in record, nothing to remove")
		return nil
	}

	remaining := make([]string, 0, len(addresses)-1)
	for _, a := range addresses {
		if a != address {
			remaining = append(remaining, a)
		}
	}

	if len(remaining) == 0 {
		// DELETE must match the stored record exactly, so send it verbatim.
		if err := m.change(ctx, zoneID, r53types.ChangeActionDelete, current); err != nil {
			return err
		}
		logging.FromContext(ctx).Info("deleted record")
		return nil
	}

	if err := m.change(ctx, zoneID, r53types.ChangeActionUpsert, m.recordSet(fqdn, remaining)); err != nil {
		return err
	}
	logging.FromContext(ctx).With("addresses", remaining).Info("removed address from record")
	return nil
}

func (m Manager) change(ctx context.Context, zoneID string, action r53types.ChangeAction, recordSet *r53types.ResourceRecordSet) error {
	_, err := m.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
		ChangeBatch: &r53types.ChangeBatch{
			Changes: []r53types.Change{
				{
					Action:            action,
					ResourceRecordSet: recordSet,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("applying %s for %s in zone %s: %w", action, aws.ToString(recordSet.Name), zoneID, err)
	}
	return nil
}

func (m Manager) recordSet(fqdn string, addresses []string) *r53types.ResourceRecordSet {
	sort.Strings(addresses)
	records := make([]r53types.ResourceRecord, 0, len(addresses))
	for _, address := range addresses {
		records = append(records, r53types.ResourceRecord{Value: aws.String(address)})
	}
	return &r53types.ResourceRecordSet{
		Name:            aws.String(fqdn),
		Type:            r53types.RRTypeA,
		TTL:             aws.Int64(m.TTL),
		ResourceRecords: records,
	}
}

// Addresses returns the record's address set. A nil record has no
// addresses.
func Addresses(recordSet *r53types.ResourceRecordSet) []string {
	if recordSet == nil {
		return nil
	}
	addresses := make([]string, 0, len(recordSet.ResourceRecords))
	for _, record := range recordSet.ResourceRecords {
		addresses = append(addresses, aws.ToString(record.Value))
	}
	return addresses
}

// sameName compares DNS names ignoring case and the trailing dot Route 53
// appends to stored names.
func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSuffix(a, "."), strings.TrimSuffix(b, "."))
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
