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
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	usePublicIPConfigKey     = "USE_PUBLIC_IP"
	usePublicIPDefault       = false
	multiHostConfigKey       = "MULTI_HOST"
	multiHostDefault         = false
	hostnameTagNameConfigKey = "HOSTNAME_TAG_NAME"
	hostnameTagNameDefault   = "asg:hostname_pattern"
	recordTTLConfigKey       = "RECORD_TTL"
	recordTTLDefault         = 300
	awsRegionConfigKey       = "AWS_REGION"
	awsEndpointConfigKey     = "AWS_ENDPOINT"
	jsonLoggingConfigKey     = "JSON_LOGGING"
	jsonLoggingDefault       = false
	logLevelConfigKey        = "LOG_LEVEL"
	logLevelDefault          = "info"
)

// Config arguments set via CLI, environment variables, or defaults
type Config struct {
	UsePublicIP     bool
	MultiHost       bool
	HostnameTagName string
	RecordTTL       int
	AWSRegion       string
	AWSEndpoint     string
	JSONLogging     bool
	LogLevel        string
}

// ParseCliArgs parses cli arguments and uses environment variables as
// fallback values. In the Lambda runtime no arguments are passed, so the
// environment supplies everything.
func ParseCliArgs() (config Config, err error) {
	flag.BoolVar(&config.UsePublicIP, "use-public-ip", getBoolEnv(usePublicIPConfigKey, usePublicIPDefault), "If true, register the instance's public IP address instead of the private one.")
	flag.BoolVar(&config.MultiHost, "multi-host", getBoolEnv(multiHostConfigKey, multiHostDefault), "If true, all instances in the group share one record and their addresses are merged into its set.")
	flag.StringVar(&config.HostnameTagName, "hostname-tag-name", getEnv(hostnameTagNameConfigKey, hostnameTagNameDefault), "The tag key holding the hostname pattern on the auto scaling group.")
	flag.IntVar(&config.RecordTTL, "record-ttl", getIntEnv(recordTTLConfigKey, recordTTLDefault), "TTL in seconds applied to records the handler writes.")
	flag.StringVar(&config.AWSRegion, "aws-region", getEnv(awsRegionConfigKey, ""), "If specified, use the AWS region for AWS API calls")
	flag.StringVar(&config.AWSEndpoint, "aws-endpoint", getEnv(awsEndpointConfigKey, ""), "[testing] If specified, use the AWS endpoint to make API calls")
	flag.BoolVar(&config.JSONLogging, "json-logging", getBoolEnv(jsonLoggingConfigKey, jsonLoggingDefault), "If true, use JSON-formatted logs instead of human readable logs.")
	flag.StringVar(&config.LogLevel, "log-level", getEnv(logLevelConfigKey, logLevelDefault), "Sets the log level (info, debug, or error)")

	flag.Parse()

	switch strings.ToLower(config.LogLevel) {
	case "info", "debug", "error":
	default:
		return config, fmt.Errorf("invalid log-level passed: %s  Should be one of: info, debug, error", config.LogLevel)
	}

	if config.RecordTTL <= 0 {
		return config, fmt.Errorf("record-ttl must be positive, got %d", config.RecordTTL)
	}

	return config, nil
}

// getEnv returns the env var value or the fallback when unset.
func getEnv(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getIntEnv returns the env var parsed as an int, panicking when it is set
// but unparseable.
func getIntEnv(key string, fallback int) int {
	envStrValue := getEnv(key, "")
	if envStrValue == "" {
		return fallback
	}
	envIntValue, err := strconv.Atoi(envStrValue)
	if err != nil {
		panic("Env var " + key + " must be an integer")
	}
	return envIntValue
}

// getBoolEnv returns the env var parsed as a bool, panicking when it is set
// but unparseable.
func getBoolEnv(key string, fallback bool) bool {
	envStrValue := getEnv(key, "")
	if envStrValue == "" {
		return fallback
	}
	envBoolValue, err := strconv.ParseBool(envStrValue)
	if err != nil {
		panic("Env var " + key + " must be either true or false")
	}
	return envBoolValue
}
