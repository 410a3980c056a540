package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

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
	s, err := service.New(context.Background())
	if err != nil {
		return err
	}

	// outside lambda serve plain http for local testing
	if port := os.Getenv("PORT"); port != "" && os.Getenv("AWS_LAMBDA_RUNTIME_API") == "" {
		return http.ListenAndServe(":"+port, s.API)
	}

	lambda.Start(s.API.HandleProxy)

	return nil
}
