package pub

import (
	"banco/internal/types"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snsTypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/goccy/go-json"
)

type snsPub struct {
	cli *sns.Client
	arn string
}

// NewSNS publishes every event as a JSON message to the topic arn.
func NewSNS(c *sns.Client, arn string) *snsPub { return &snsPub{cli: c, arn: arn} }

func (s *snsPub) Notify(ctx context.Context, ev types.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = s.cli.Publish(ctx, &sns.PublishInput{
		TopicArn: &s.arn,
		Subject:  aws.String(subject(ev)),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]snsTypes.MessageAttributeValue{
			"content-type": {DataType: aws.String("String"), StringValue: aws.String("application/json")},
			"event":        {DataType: aws.String("String"), StringValue: aws.String(ev.Kind)},
		},
	})
	return err
}
