package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/imrishuroy/dispatch-board/internal/client"
	"github.com/imrishuroy/dispatch-board/internal/config"
	"github.com/imrishuroy/dispatch-board/internal/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("DISPATCH_CONFIG"))
	if err != nil {
		logger.New("worker").Errorf("load config: %v", err)
		os.Exit(1)
	}
	logger.Configure(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log := logger.New("worker")

	relay := NewRelay(client.New(cfg.Client.BaseURL, cfg.Client.RequestTimeout), log)

	// RUN_LOCAL=true relays a single message taken from LOCAL_SQS_BODY.
	if os.Getenv("RUN_LOCAL") == "true" {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			body = `{"action":"ambulance","profile":{"Name":"Local Test","Location":"1 Main St"}}`
		}
		ev := events.SQSEvent{Records: []events.SQSMessage{{MessageId: "local-1", Body: body}}}
		resp, err := relay.Handle(context.Background(), ev)
		if err != nil || len(resp.BatchItemFailures) > 0 {
			log.Errorf("local handler error: %v, %d failed", err, len(resp.BatchItemFailures))
			os.Exit(1)
		}
		return
	}

	lambda.Start(relay.Handle)
}
