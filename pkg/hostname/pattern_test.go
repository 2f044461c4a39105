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

package hostname_test

import (
	"errors"
	"testing"

	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/hostname"
	h "github.com/tkchk/terraform-aws-asg-dns-handler/pkg/test"
)

const instanceID = "i-0123456789abcdef0"

func TestParsePatternPerInstance(t *testing.T) {
	pattern, err := hostname.ParsePattern("asg-test-#instanceid.example@Z3QP9GZSRL8IVA")
	h.Ok(t, err)
	h.Equals(t, hostname.Pattern{
		Prefix:      "asg-test",
		PerInstance: true,
		Subdomain:   "example",
		ZoneID:      "Z3QP9GZSRL8IVA",
	}, pattern)
}

func TestParsePatternShared(t *testing.T) {
	pattern, err := hostname.ParsePattern("asg-test.example@Z3QP9GZSRL8IVA")
	h.Ok(t, err)
	h.Equals(t, hostname.Pattern{
		Prefix:    "asg-test",
		Subdomain: "example",
		ZoneID:    "Z3QP9GZSRL8IVA",
	}, pattern)
}

func TestParsePatternNoSubdomain(t *testing.T) {
	pattern, err := hostname.ParsePattern("asg-test-#instanceid@Z3QP9GZSRL8IVA")
	h.Ok(t, err)
	h.Equals(t, hostname.Pattern{
		Prefix:      "asg-test",
		PerInstance: true,
		ZoneID:      "Z3QP9GZSRL8IVA",
	}, pattern)
}

func TestParsePatternMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"asg-test.example",
		"asg-test.example@",
		"@Z3QP9GZSRL8IVA",
		"-#instanceid@Z3QP9GZSRL8IVA",
		"a-#instanceid-b@Z3QP9GZSRL8IVA",
		"#instanceid-a.example@Z3QP9GZSRL8IVA",
	} {
		_, err := hostname.ParsePattern(raw)
		h.Assert(t, errors.Is(err, hostname.ErrMalformedPattern), "expected ErrMalformedPattern for %q, got %v", raw, err)
	}
}

func TestResolvePerInstance(t *testing.T) {
	pattern, err := hostname.ParsePattern("asg-test-#instanceid.example@Z3QP9GZSRL8IVA")
	h.Ok(t, err)

	resolved := pattern.Resolve(instanceID)
	h.Equals(t, "asg-test-i-0123456789abcdef0.example", resolved.FQDN)
	h.Equals(t, "Z3QP9GZSRL8IVA", resolved.ZoneID)
	h.Equals(t, "asg-test-i-0123456789abcdef0", resolved.Label())
}

func TestResolveSharedIgnoresInstanceID(t *testing.T) {
	pattern, err := hostname.ParsePattern("asg-test.example@Z3QP9GZSRL8IVA")
	h.Ok(t, err)

	for _, id := range []string{instanceID, "i-0fedcba9876543210"} {
		resolved := pattern.Resolve(id)
		h.Equals(t, "asg-test.example", resolved.FQDN)
		h.Equals(t, "Z3QP9GZSRL8IVA", resolved.ZoneID)
	}
}

func TestResolveNoSubdomain(t *testing.T) {
	pattern, err := hostname.ParsePattern("vpn@Z3QP9GZSRL8IVA")
	h.Ok(t, err)

	resolved := pattern.Resolve(instanceID)
	h.Equals(t, "vpn", resolved.FQDN)
	h.Equals(t, "vpn", resolved.Label())
}

func TestResolveDeepSubdomain(t *testing.T) {
	pattern, err := hostname.ParsePattern("web-#instanceid.prod.example.com@ZONEID")
	h.Ok(t, err)

	resolved := pattern.Resolve(instanceID)
	h.Equals(t, "web-i-0123456789abcdef0.prod.example.com", resolved.FQDN)
	h.Equals(t, "web-i-0123456789abcdef0", resolved.Label())
}
