package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- mocks ----

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sns.PublishOutput{}, f.err
}

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sqs.SendMessageOutput{}, nil
}

type fakeSecrets struct {
	values map[string]string
	calls  int
}

func (f *fakeSecrets) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	v, ok := f.values[*in.SecretId]
	if !ok {
		return nil, errors.New("ResourceNotFoundException")
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: &v}, nil
}

type fakeCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

// ---- tests ----

func TestSNSClient_Publish(t *testing.T) {
	api := &fakeSNS{}
	c := &SNSClient{client: api}

	require.NoError(t, c.Publish(context.Background(), "arn:aws:sns:eu-west-1:1:checkout", []byte(`{"type":"order_created"}`)))
	require.Len(t, api.inputs, 1)
	assert.Equal(t, "arn:aws:sns:eu-west-1:1:checkout", *api.inputs[0].TopicArn)
	assert.Equal(t, `{"type":"order_created"}`, *api.inputs[0].Message)

	assert.Error(t, c.Publish(context.Background(), "", []byte("x")))
	assert.Len(t, api.inputs, 1)

	api.err = errors.New("throttled")
	assert.ErrorIs(t, c.Publish(context.Background(), "arn", []byte("x")), api.err)
}

func TestSQSSender_SendMessage(t *testing.T) {
	api := &fakeSQS{}
	s := &SQSSender{client: api, queueURL: "https://sqs.local/notifications"}

	require.NoError(t, s.SendMessage(context.Background(), "hello"))
	require.Len(t, api.inputs, 1)
	assert.Equal(t, "https://sqs.local/notifications", *api.inputs[0].QueueUrl)
	assert.Equal(t, "hello", *api.inputs[0].MessageBody)

	empty := &SQSSender{client: api}
	assert.Error(t, empty.SendMessage(context.Background(), "hello"))
}

func TestSecretsClient_CachesValues(t *testing.T) {
	api := &fakeSecrets{values: map[string]string{
		"checkout/STRIPE_API_KEY": "sk_test_1",
		"checkout/DB_CREDENTIALS": `{"POSTGRES_USER":"store","POSTGRES_PASSWORD":"pw"}`,
		"checkout/BROKEN":         "not-json",
	}}
	s := &SecretsClient{client: api, cache: make(map[string]string)}

	for i := 0; i < 2; i++ {
		v, err := s.GetSecret(context.Background(), "checkout/STRIPE_API_KEY")
		require.NoError(t, err)
		assert.Equal(t, "sk_test_1", v)
	}
	assert.Equal(t, 1, api.calls)

	m, err := s.GetSecretMap(context.Background(), "checkout/DB_CREDENTIALS")
	require.NoError(t, err)
	assert.Equal(t, "store", m["POSTGRES_USER"])

	_, err = s.GetSecretMap(context.Background(), "checkout/BROKEN")
	assert.Error(t, err)

	_, err = s.GetSecret(context.Background(), "checkout/MISSING")
	assert.Error(t, err)
}

func TestMetricsClient_Disabled(t *testing.T) {
	api := &fakeCloudWatch{}
	m := &MetricsClient{client: api, namespace: "Test"}

	assert.False(t, m.IsEnabled())
	assert.NoError(t, m.RecordCount(context.Background(), MetricOrdersCreated, nil))
	assert.Empty(t, api.inputs)

	var nilClient *MetricsClient
	assert.False(t, nilClient.IsEnabled())
	assert.NoError(t, nilClient.RecordCount(context.Background(), MetricOrdersCreated, nil))
}

func TestMetricsClient_Enabled(t *testing.T) {
	api := &fakeCloudWatch{}
	m := &MetricsClient{client: api, namespace: "Test", enabled: true}

	require.NoError(t, m.RecordLatency(context.Background(), MetricHTTPLatency, 250*time.Millisecond, map[string]string{"Service": "checkout-service"}))

	require.Len(t, api.inputs, 1)
	in := api.inputs[0]
	assert.Equal(t, "Test", *in.Namespace)
	require.Len(t, in.MetricData, 1)
	datum := in.MetricData[0]
	assert.Equal(t, MetricHTTPLatency, *datum.MetricName)
	assert.Equal(t, 250.0, *datum.Value)
	assert.Equal(t, types.StandardUnitMilliseconds, datum.Unit)
	require.Len(t, datum.Dimensions, 1)
	assert.Equal(t, "Service", *datum.Dimensions[0].Name)
}
