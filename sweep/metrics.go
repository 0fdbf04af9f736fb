package sweep

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/byteness/leasegate/lifecycle"
)

// MetricNamespace is the CloudWatch namespace all sweep metrics land in.
const MetricNamespace = "Leasegate"

// Metric names published per sweep pass.
const (
	MetricExamined         = "GrantsExamined"
	MetricExpired          = "ExpiredGrants"
	MetricSkipped          = "SweepSkipped"
	MetricTeardownFailures = "TeardownFailures"
)

// Publisher reports the outcome of a sweep pass.
type Publisher interface {
	PublishSweep(ctx context.Context, result lifecycle.SweepResult) error
}

// NopPublisher discards metrics.
type NopPublisher struct{}

func (*NopPublisher) PublishSweep(ctx context.Context, result lifecycle.SweepResult) error {
	return nil
}

type cloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchPublisher publishes sweep metrics with PutMetricData.
type CloudWatchPublisher struct {
	client cloudWatchAPI
}

// NewCloudWatchPublisher returns a publisher backed by the given CloudWatch
// client.
func NewCloudWatchPublisher(client *cloudwatch.Client) *CloudWatchPublisher {
	return &CloudWatchPublisher{client: client}
}

// NewCloudWatchPublisherWithClient allows injecting a mock client for testing.
func NewCloudWatchPublisherWithClient(client cloudWatchAPI) *CloudWatchPublisher {
	return &CloudWatchPublisher{client: client}
}

// PublishSweep sends one datum per metric for the pass. All four counts go
// out even when zero so dashboards show a continuous series.
func (p *CloudWatchPublisher) PublishSweep(ctx context.Context, result lifecycle.SweepResult) error {
	data := []cwtypes.MetricDatum{
		datum(MetricExamined, result.Examined),
		datum(MetricExpired, result.Expired),
		datum(MetricSkipped, result.Skipped),
		datum(MetricTeardownFailures, len(result.Failures)),
	}

	_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(MetricNamespace),
		MetricData: data,
	})
	return err
}

func datum(name string, value int) cwtypes.MetricDatum {
	return cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(float64(value)),
		Unit:       cwtypes.StandardUnitCount,
	}
}
