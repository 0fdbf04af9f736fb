package sweep_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/byteness/leasegate/lifecycle"
	"github.com/byteness/leasegate/sweep"
	"github.com/byteness/leasegate/testutil"
)

func TestCloudWatchPublisherPublishSweep(t *testing.T) {
	mock := &testutil.MockCloudWatchClient{}
	publisher := sweep.NewCloudWatchPublisherWithClient(mock)

	result := lifecycle.SweepResult{
		Examined: 10,
		Expired:  4,
		Skipped:  1,
		Failures: []string{"a1b2c3d4e5f60718", "1122334455667788"},
	}

	if err := publisher.PublishSweep(context.Background(), result); err != nil {
		t.Fatalf("PublishSweep() error: %v", err)
	}

	if len(mock.PutMetricDataCalls) != 1 {
		t.Fatalf("PutMetricData calls = %d, want 1", len(mock.PutMetricDataCalls))
	}
	input := mock.PutMetricDataCalls[0]
	if aws.ToString(input.Namespace) != sweep.MetricNamespace {
		t.Errorf("Namespace = %q, want %q", aws.ToString(input.Namespace), sweep.MetricNamespace)
	}
	if len(input.MetricData) != 4 {
		t.Fatalf("MetricData = %d datums, want 4", len(input.MetricData))
	}

	want := map[string]float64{
		sweep.MetricExamined:         10,
		sweep.MetricExpired:          4,
		sweep.MetricSkipped:          1,
		sweep.MetricTeardownFailures: 2,
	}
	for _, d := range input.MetricData {
		name := aws.ToString(d.MetricName)
		wantValue, ok := want[name]
		if !ok {
			t.Errorf("unexpected metric %q", name)
			continue
		}
		if aws.ToFloat64(d.Value) != wantValue {
			t.Errorf("%s = %v, want %v", name, aws.ToFloat64(d.Value), wantValue)
		}
		if d.Unit != cwtypes.StandardUnitCount {
			t.Errorf("%s unit = %v, want Count", name, d.Unit)
		}
	}
}

func TestCloudWatchPublisherError(t *testing.T) {
	mock := &testutil.MockCloudWatchClient{
		PutMetricDataFunc: func(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
			return nil, errors.New("throttled")
		},
	}
	publisher := sweep.NewCloudWatchPublisherWithClient(mock)

	if err := publisher.PublishSweep(context.Background(), lifecycle.SweepResult{}); err == nil {
		t.Fatal("expected error")
	}
}
