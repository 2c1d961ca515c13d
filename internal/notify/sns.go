package notify

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// SNSAPI is the subset of *sns.Client used to publish notices.
type SNSAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNS forwards cart notices to a topic. Publish failures are logged and dropped.
type SNS struct {
	cli SNSAPI
	arn string
}

func NewSNS(c SNSAPI, arn string) *SNS { return &SNS{cli: c, arn: arn} }

type notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	At      int64  `json:"at"`
}

func (s *SNS) Error(ctx context.Context, message string) {
	payload, err := json.Marshal(notice{Level: "error", Message: message, At: time.Now().Unix()})
	if err != nil {
		log.WithError(err).Error("failed to marshal notice")
		return
	}
	// The notice must go out even when the request that caused it is already done.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	_, err = s.cli.Publish(pubCtx, &sns.PublishInput{
		TopicArn: &s.arn,
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"content-type": {DataType: aws.String("String"), StringValue: aws.String("application/json")},
		},
	})
	if err != nil {
		log.WithError(err).WithField("snsArn", s.arn).Error("failed to publish notice")
	}
}
