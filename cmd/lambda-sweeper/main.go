// Package main is the entry point for the scheduled sweep Lambda.
package main

import (
	"context"
	"log"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	sweephandler "github.com/byteness/leasegate/lambda"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	handler, err := sweephandler.NewHandler(context.Background())
	if err != nil {
		log.Fatalf("leasegate-sweeper: %v", err)
	}
	awslambda.Start(handler.HandleScheduledEvent)
}
