// Package metrics records compiler throughput/latency/failure counters,
// adapted from the teacher's internal/metrics/cloudwatch.go (an
// API-request/token-usage recorder) to the compiler's own domain
// events: calls compiled, calls failed, compile latency, breathe
// operations, and tiling backtracks.
package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "SetsInMotion/Compiler"
	cloudwatchTimeoutSeconds = 5
)

// Client wraps a CloudWatch client for custom compiler metrics.
type Client struct {
	client      *cloudwatch.Client
	enabled     bool
	environment string
}

// NewClient creates a CloudWatch metrics client, enabled only in
// production, the same gate the teacher applies.
func NewClient(ctx context.Context, environment string) (*Client, error) {
	if environment != "production" {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &Client{enabled: false, environment: environment}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false}, nil
	}

	client := cloudwatch.NewFromConfig(cfg)
	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)

	return &Client{client: client, enabled: true, environment: environment}, nil
}

// RecordCompile records one phrase compilation: whether it succeeded and
// how long Session.Compile took.
func (m *Client) RecordCompile(danceType string, success bool, duration time.Duration) {
	if !m.enabled {
		return
	}

	go func() {
		ctx := context.Background()
		metricName := "CallsCompiled"
		if !success {
			metricName = "CallsFailed"
		}

		dimensions := []types.Dimension{
			{Name: aws.String("DanceType"), Value: aws.String(danceType)},
			{Name: aws.String("Environment"), Value: aws.String(m.environment)},
		}

		if err := m.putMetric(ctx, metricName, 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record %s metric: %v", metricName, err)
		}

		latencyMs := float64(duration.Milliseconds())
		if err := m.putMetric(ctx, "CompileLatency", latencyMs, types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("Failed to record CompileLatency metric: %v", err)
		}
	}()
}

// RecordBreathe records one Breathe normalization pass.
func (m *Client) RecordBreathe(danceType string) {
	if !m.enabled {
		return
	}
	go func() {
		dimensions := []types.Dimension{
			{Name: aws.String("DanceType"), Value: aws.String(danceType)},
			{Name: aws.String("Environment"), Value: aws.String(m.environment)},
		}
		if err := m.putMetric(context.Background(), "BreatheOperations", 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record BreatheOperations metric: %v", err)
		}
	}()
}

// RecordTilingBacktrack records count failed tiling candidates Tile had
// to discard before finding a covering partition, as one datum (a count
// of zero or less records nothing), the way a caller's
// grammar might try several formations before one tiles successfully.
func (m *Client) RecordTilingBacktrack(count int) {
	if !m.enabled || count <= 0 {
		return
	}
	go func() {
		dimensions := []types.Dimension{
			{Name: aws.String("Environment"), Value: aws.String(m.environment)},
		}
		if err := m.putMetric(context.Background(), "TilingBacktracks", float64(count), types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record TilingBacktracks metric: %v", err)
		}
	}()
}

func (m *Client) putMetric(
	_ context.Context,
	metricName string,
	value float64,
	unit types.StandardUnit,
	dimensions []types.Dimension,
) error {
	if !m.enabled || m.client == nil {
		return nil
	}

	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: dimensions,
			},
		},
	})

	return err
}
