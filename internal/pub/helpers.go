package pub

import (
	"banco/internal/config"
	"banco/internal/ports"
	"banco/internal/types"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// FromConfig builds the configured notifier.
func FromConfig(ctx context.Context, cfg config.Config) (ports.Notifier, error) {
	switch cfg.Notifier {
	case config.NotifierSNS:
		cli, err := snsClientFromConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewSNS(cli, cfg.SNS.TopicArn), nil
	case config.NotifierSMTP:
		return NewSMTP(cfg.SMTP), nil
	case config.NotifierNone:
		return NewNop(), nil
	case config.NotifierLog, "":
		return NewLog(), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
}

func snsClientFromConfig(ctx context.Context, cfg config.Config) (*sns.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if cfg.SNS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.SNS.Endpoint)
			if o.Region == "" {
				o.Region = cfg.DDB.Region
			}
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.DDB.AccessKey, cfg.DDB.SecretKey, "")
		}
	}), nil
}

func subject(ev types.Event) string {
	return fmt.Sprintf("[banco] %s", ev.Kind)
}
