package metrics

import (
	"context"
	"sync"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	internalaws "github.com/imrishuroy/dispatch-board/internal/aws"
	"github.com/imrishuroy/dispatch-board/internal/logger"
)

// CloudWatchSink publishes dispatch counters as CloudWatch metric data.
// Each datum is sent in the background so request handlers never wait on AWS;
// Close waits for in-flight puts.
type CloudWatchSink struct {
	client    internalaws.CloudWatchAPI
	namespace string
	timeout   time.Duration
	log       logger.Logger
	wg        sync.WaitGroup
}

// NewCloudWatchSink returns a sink writing into namespace.
func NewCloudWatchSink(client internalaws.CloudWatchAPI, namespace string) *CloudWatchSink {
	return &CloudWatchSink{
		client:    client,
		namespace: namespace,
		timeout:   5 * time.Second,
		log:       logger.New("cloudwatch-sink"),
	}
}

func (s *CloudWatchSink) RecordIngested(action string) error {
	s.put(cwtypes.MetricDatum{
		MetricName: sdkaws.String("DispatchesIngested"),
		Dimensions: []cwtypes.Dimension{{Name: sdkaws.String("Action"), Value: sdkaws.String(action)}},
		Unit:       cwtypes.StandardUnitCount,
		Value:      sdkaws.Float64(1),
	})
	return nil
}

func (s *CloudWatchSink) RecordSnapshot(result string, active int) error {
	s.put(
		cwtypes.MetricDatum{
			MetricName: sdkaws.String("SnapshotsServed"),
			Dimensions: []cwtypes.Dimension{{Name: sdkaws.String("Result"), Value: sdkaws.String(result)}},
			Unit:       cwtypes.StandardUnitCount,
			Value:      sdkaws.Float64(1),
		},
		cwtypes.MetricDatum{
			MetricName: sdkaws.String("ActiveDispatches"),
			Unit:       cwtypes.StandardUnitCount,
			Value:      sdkaws.Float64(float64(active)),
		},
	)
	return nil
}

func (s *CloudWatchSink) put(data ...cwtypes.MetricDatum) {
	now := time.Now()
	for i := range data {
		data[i].Timestamp = &now
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_, err := s.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  &s.namespace,
			MetricData: data,
		})
		if err != nil {
			s.log.Warnf("put metric data: %v", err)
		}
	}()
}

// Close waits for pending puts.
func (s *CloudWatchSink) Close() error {
	s.wg.Wait()
	return nil
}
