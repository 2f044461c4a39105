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

package config

import (
	"strconv"
	"testing"

	h "github.com/tkchk/terraform-aws-asg-dns-handler/pkg/test"
)

func TestGetEnv(t *testing.T) {
	var key = "STRING_TEST"
	var successVal = "success"
	var failVal = "failure"

	t.Setenv(key, successVal)

	result := getEnv(key+"bla", failVal)
	h.Equals(t, failVal, result)

	result = getEnv(key, failVal)
	h.Equals(t, successVal, result)
}

func TestGetIntEnv(t *testing.T) {
	var key = "INT_TEST"
	var successVal = 1
	var failVal = 0

	t.Setenv(key, strconv.Itoa(successVal))

	result := getIntEnv(key+"bla", failVal)
	h.Equals(t, failVal, result)

	result = getIntEnv(key, failVal)
	h.Equals(t, successVal, result)

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("getIntEnv did not panic")
		}
	}()
	t.Setenv(key, "hi")
	getIntEnv(key, 0)
}

func TestGetBoolEnv(t *testing.T) {
	var key = "BOOL_TEST"
	var successVal = true
	var failVal = false

	t.Setenv(key, strconv.FormatBool(successVal))

	result := getBoolEnv(key+"bla", failVal)
	h.Equals(t, failVal, result)

	result = getBoolEnv(key, failVal)
	h.Equals(t, successVal, result)

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("getBoolEnv did not panic")
		}
	}()
	t.Setenv(key, "hi")
	getBoolEnv(key, false)
}
