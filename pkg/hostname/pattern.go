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

// Package hostname turns the declarative hostname pattern carried on an
// auto scaling group into concrete DNS names. The grammar is
//
//	prefix[-#instanceid][.subdomain]@zoneId
//
// e.g. "asg-test-#instanceid.example@Z3QP9GZSRL8IVA". When the #instanceid
// token is present every instance gets its own record; without it all
// instances in the group share one name.
package hostname

import (
	"errors"
	"fmt"
	"strings"
)

// InstanceIDToken marks the spot in the pattern that is replaced by the
// EC2 instance ID.
const InstanceIDToken = "#instanceid"

// ErrMalformedPattern is returned for pattern strings that do not follow
// the prefix[-#instanceid][.subdomain]@zoneId grammar.
var ErrMalformedPattern = errors.New("malformed hostname pattern")

// Pattern is the parsed form of the hostname pattern tag value.
type Pattern struct {
	Prefix      string
	PerInstance bool
	Subdomain   string
	ZoneID      string
}

// Resolved is a fully-qualified hostname bound to a hosted zone.
type Resolved struct {
	FQDN   string
	ZoneID string
}

// ParsePattern parses the raw tag value into a Pattern.
func ParsePattern(raw string) (Pattern, error) {
	raw = strings.TrimSpace(raw)

	name, zoneID, found := cutLast(raw, "@")
	if !found || zoneID == "" {
		return Pattern{}, fmt.Errorf("%w: missing @zoneId suffix in %q", ErrMalformedPattern, raw)
	}

	host, subdomain, _ := strings.Cut(name, ".")

	pattern := Pattern{
		Subdomain: subdomain,
		ZoneID:    zoneID,
	}

	if strings.Contains(host, InstanceIDToken) {
		// Anywhere else the token would leave "#instanceid" inside the
		// emitted label.
		if !strings.HasSuffix(host, InstanceIDToken) {
			return Pattern{}, fmt.Errorf("%w: %s must end the host segment in %q", ErrMalformedPattern, InstanceIDToken, raw)
		}
		pattern.PerInstance = true
		host = strings.TrimSuffix(host, InstanceIDToken)
		host = strings.TrimSuffix(host, "-")
	}
	pattern.Prefix = host

	if pattern.Prefix == "" {
		return Pattern{}, fmt.Errorf("%w: empty prefix in %q", ErrMalformedPattern, raw)
	}

	return pattern, nil
}

// Resolve computes the hostname for the given instance. It is a pure
// function of the pattern and the instance ID, so launch and terminate
// paths always agree on the name even after the pattern tag is gone.
func (p Pattern) Resolve(instanceID string) Resolved {
	fqdn := p.Prefix
	if p.PerInstance {
		fqdn = p.Prefix + "-" + instanceID
	}
	if p.Subdomain != "" {
		fqdn = fqdn + "." + p.Subdomain
	}
	return Resolved{FQDN: fqdn, ZoneID: p.ZoneID}
}

// Label returns the leading DNS label of the hostname, used as the
// instance's Name tag.
func (r Resolved) Label() string {
	label, _, _ := strings.Cut(r.FQDN, ".")
	return label
}

// cutLast is strings.Cut around the last occurrence of sep.
func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
