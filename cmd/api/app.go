package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/imrishuroy/dispatch-board/internal/aws"
	"github.com/imrishuroy/dispatch-board/internal/config"
	"github.com/imrishuroy/dispatch-board/internal/dispatch"
	"github.com/imrishuroy/dispatch-board/internal/handlers"
	"github.com/imrishuroy/dispatch-board/internal/logger"
	"github.com/imrishuroy/dispatch-board/internal/metrics"
)

// app is the wired API: one in-memory store behind the gin router.
type app struct {
	router *gin.Engine
	store  *dispatch.Store
	close  func()
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.New("api")

	var clients *aws.AWSClients
	if cfg.NeedsAWS() {
		var err error
		clients, err = aws.NewAWSClients(ctx, aws.Settings{
			Region:           cfg.AWS.Region,
			EndpointOverride: cfg.AWS.EndpointOverride,
		})
		if err != nil {
			return nil, fmt.Errorf("init aws clients: %w", err)
		}
	}

	var (
		sinks          []metrics.Sink
		metricsHandler http.Handler
		closers        []func() error
	)
	if cfg.Metrics.PrometheusEnabled {
		prom, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prometheus sink: %w", err)
		}
		sinks = append(sinks, prom)
		metricsHandler = metrics.Handler(prometheus.DefaultGatherer)
	}
	if cfg.Metrics.CloudWatchEnabled {
		cw := metrics.NewCloudWatchSink(clients.CloudWatch, cfg.Metrics.CloudWatchNamespace)
		sinks = append(sinks, cw)
		closers = append(closers, cw.Close)
	}

	store := dispatch.NewStore()
	hcfg := handlers.HandlerConfig{
		Store:   store,
		Metrics: metrics.Combine(sinks...),
		Log:     log,
	}
	if cfg.Notify.SQSQueueURL != "" {
		hcfg.Notifier = aws.NewPublisher(clients.SQS, cfg.Notify.SQSQueueURL)
		log.Infof("notifying new dispatches on %s", cfg.Notify.SQSQueueURL)
	}

	return &app{
		router: handlers.NewRouter(hcfg, metricsHandler),
		store:  store,
		close: func() {
			for _, c := range closers {
				if err := c(); err != nil {
					log.Errorf("close: %v", err)
				}
			}
		},
	}, nil
}
