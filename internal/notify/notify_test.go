package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{}, nil
}

func TestLog(t *testing.T) {
	logger, hook := test.NewNullLogger()
	NewLog(logger).Error(context.Background(), "requested quantity out of stock")

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, log.WarnLevel, entry.Level)
	assert.Equal(t, "Cart notice", entry.Message)
	assert.Equal(t, "requested quantity out of stock", entry.Data["notice"])
}

func TestSNS(t *testing.T) {
	cli := &fakeSNS{}
	arn := "arn:aws:sns:us-east-1:000000000000:cart-notices"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	NewSNS(cli, arn).Error(ctx, "error adding product")

	require.Len(t, cli.inputs, 1)
	in := cli.inputs[0]
	assert.Equal(t, arn, *in.TopicArn)
	assert.Equal(t, "application/json", *in.MessageAttributes["content-type"].StringValue)

	var n notice
	require.NoError(t, json.Unmarshal([]byte(*in.Message), &n))
	assert.Equal(t, "error", n.Level)
	assert.Equal(t, "error adding product", n.Message)
	assert.NotZero(t, n.At)
}

func TestSNSPublishFailure(t *testing.T) {
	cli := &fakeSNS{err: errors.New("topic does not exist")}
	assert.NotPanics(t, func() {
		NewSNS(cli, "arn:aws:sns:us-east-1:000000000000:missing").Error(context.Background(), "error removing product")
	})
	assert.Len(t, cli.inputs, 1)
}

func TestMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, nil, b}
	m.Error(context.Background(), "error updating product quantity")
	m.Error(context.Background(), "requested quantity out of stock")

	assert.Equal(t, []string{"error updating product quantity", "requested quantity out of stock"}, a.Messages())
	assert.Equal(t, a.Messages(), b.Messages())
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	assert.Equal(t, "", r.Last())
	assert.Empty(t, r.Messages())

	r.Error(context.Background(), "one")
	r.Error(context.Background(), "two")
	assert.Equal(t, "two", r.Last())

	msgs := r.Messages()
	msgs[0] = "changed"
	assert.Equal(t, []string{"one", "two"}, r.Messages())

	r.Reset()
	assert.Empty(t, r.Messages())
}
