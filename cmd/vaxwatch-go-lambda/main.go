package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"

	vwg "github.com/vaxwatch/vaxwatch-go"
)

// AWS Lambda wrapper reporting current availability once per invocation

type WatchEvent struct {
	State    string `json:"state"`
	ZipsPath string `json:"zips_path"`
	ToEmail  string `json:"to_email"`
}

func HandleRequest(ctx context.Context, evt WatchEvent) (string, error) {
	watcher, err := vwg.Setup(vwg.DefaultConfigPath, evt.State, evt.ZipsPath, "", evt.ToEmail)
	if err != nil {
		return fmt.Sprintf("Setup failed: %s!", evt.State), err
	}

	if err := watcher.ReportOnce(); err != nil {
		return fmt.Sprintf("Execution finished with error: %s!", evt.State), err
	}

	return fmt.Sprintf("Execution finished: %s!", evt.State), nil
}

func main() {
	lambda.Start(HandleRequest)
}
