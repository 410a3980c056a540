package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alarmvault/alarmvault/pkg/service"
	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s, err := service.New(ctx)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") == "" {
		return s.Worker.Run(ctx)
	}

	lambda.Start(s.Worker.HandleSQS)

	return nil
}
