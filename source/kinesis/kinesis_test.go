package kinesis_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	kinesissdk "github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"github.com/stretchr/testify/require"

	"github.com/streamql-io/streamql/source/kinesis"
)

// fakeClient implements kinesis.Client against canned, in-memory
// responses so Resolve/listShards can be exercised without a live AWS
// account or the SDK's event-stream machinery.
type fakeClient struct {
	streamARN   string
	consumerARN string

	describeStreamErr error
}

func (f *fakeClient) ListShards(ctx context.Context, params *kinesissdk.ListShardsInput, optFns ...func(*kinesissdk.Options)) (*kinesissdk.ListShardsOutput, error) {
	return &kinesissdk.ListShardsOutput{}, nil
}

func (f *fakeClient) DescribeStream(ctx context.Context, params *kinesissdk.DescribeStreamInput, optFns ...func(*kinesissdk.Options)) (*kinesissdk.DescribeStreamOutput, error) {
	if f.describeStreamErr != nil {
		return nil, f.describeStreamErr
	}
	return &kinesissdk.DescribeStreamOutput{
		StreamDescription: &types.StreamDescription{
			StreamARN: aws.String(f.streamARN),
		},
	}, nil
}

func (f *fakeClient) DescribeStreamConsumer(ctx context.Context, params *kinesissdk.DescribeStreamConsumerInput, optFns ...func(*kinesissdk.Options)) (*kinesissdk.DescribeStreamConsumerOutput, error) {
	return &kinesissdk.DescribeStreamConsumerOutput{
		ConsumerDescription: &types.ConsumerDescription{
			ConsumerARN: aws.String(f.consumerARN),
		},
	}, nil
}

func (f *fakeClient) SubscribeToShard(ctx context.Context, params *kinesissdk.SubscribeToShardInput, optFns ...func(*kinesissdk.Options)) (*kinesissdk.SubscribeToShardOutput, error) {
	return nil, nil
}

func TestResolveReturnsStreamAndConsumerARNs(t *testing.T) {
	client := &fakeClient{
		streamARN:   "arn:aws:kinesis:eu-west-1:1:stream/pv-prod",
		consumerARN: "arn:aws:kinesis:eu-west-1:1:stream/pv-prod/consumer/analytics-consumer",
	}
	drv := &kinesis.Driver{Client: client}

	streamARN, consumerARN, err := drv.Resolve(context.Background(), "pv-prod", "analytics-consumer")
	require.NoError(t, err)
	require.Equal(t, client.streamARN, streamARN)
	require.Equal(t, client.consumerARN, consumerARN)
}

func TestResolvePropagatesDescribeStreamError(t *testing.T) {
	client := &fakeClient{describeStreamErr: errors.New("stream not found")}
	drv := &kinesis.Driver{Client: client}

	_, _, err := drv.Resolve(context.Background(), "missing", "consumer")
	require.Error(t, err)
	require.Contains(t, err.Error(), "describe stream missing")
}
