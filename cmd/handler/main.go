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

// The asg-dns-handler Lambda entrypoint. Subscribed to the auto scaling
// group's lifecycle SNS topic; each notification assigns or retires the DNS
// name of one instance and completes the lifecycle action.
package main

import (
	"context"
	"log"

	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/asghelper"
	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/config"
	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/dns"
	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/ec2helper"
	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/handler"
	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/lifecycle"
	"github.com/tkchk/terraform-aws-asg-dns-handler/pkg/logging"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/route53"
)

func main() {
	cfg, err := config.ParseCliArgs()
	if err != nil {
		log.Fatalln("Failed to parse configuration:", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.JSONLogging)
	if err != nil {
		log.Fatalln("Failed to build logger:", err)
	}
	defer logger.Sync() //nolint:errcheck

	awsCfgOptions := []func(*awsconfig.LoadOptions) error{}
	if cfg.AWSRegion != "" {
		awsCfgOptions = append(awsCfgOptions, awsconfig.WithRegion(cfg.AWSRegion))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsCfgOptions...)
	if err != nil {
		logger.With("error", err).Fatal("failed to load AWS configuration")
	}

	asgClient := autoscaling.NewFromConfig(awsCfg, func(o *autoscaling.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
		}
	})
	ec2Client := ec2.NewFromConfig(awsCfg, func(o *ec2.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
		}
	})
	route53Client := route53.NewFromConfig(awsCfg, func(o *route53.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
		}
	})

	h := handler.Handler{
		GroupTagGetter:  asghelper.ASGHelper{ASGDescribeTagsClient: asgClient},
		InstanceReader:  ec2helper.EC2Helper{EC2Client: ec2Client, UsePublicIP: cfg.UsePublicIP},
		RecordManager:   dns.Manager{Route53Client: route53Client, TTL: int64(cfg.RecordTTL), MultiHost: cfg.MultiHost},
		ActionCompleter: lifecycle.Completer{ASGCompleteClient: asgClient},
		HostnameTagName: cfg.HostnameTagName,
	}

	logger.With("usePublicIP", cfg.UsePublicIP).
		With("multiHost", cfg.MultiHost).
		With("hostnameTagName", cfg.HostnameTagName).
		With("recordTTL", cfg.RecordTTL).
		Info("asg-dns-handler started")

	lambda.Start(func(ctx context.Context, snsEvent events.SNSEvent) error {
		ctx = logging.WithLogger(ctx, logger)
		return h.HandleSNS(ctx, snsEvent)
	})
}
