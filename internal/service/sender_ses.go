// internal/service/sender_ses.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"go_5_srs_engine/internal/config"
	"go_5_srs_engine/internal/middleware"
	"go_5_srs_engine/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/google/uuid"
)

// EmailResolver は学習者IDから送信先メールアドレスを引きます
type EmailResolver func(ctx context.Context, learnerID uuid.UUID) (string, error)

// SESSender は AWS SES でリマインダーメールを送信する実装です
type SESSender struct {
	client   *sesv2.Client
	cfg      *config.SESConfig
	resolver EmailResolver
}

// NewSESSender は設定に応じて認証方法を切り替えてSESクライアントを生成します
func NewSESSender(cfg *config.Config, resolver EmailResolver) Sender {
	var awsCfgOpts []func(*awsconfig.LoadOptions) error
	awsCfgOpts = append(awsCfgOpts, awsconfig.WithRegion(cfg.SES.Region))

	switch cfg.SES.AuthType {
	case "static_credentials":
		slog.Info("Configuring SES with static credentials.")
		if cfg.SES.AccessKeyID == "" || cfg.SES.SecretAccessKey == "" {
			slog.Error("SES auth_type is 'static_credentials' but access_key_id or secret_access_key is missing in config.")
			// 起動時にpanicさせることで、設定ミスに即座に気づけるようにする
			panic("missing static credentials for SES")
		}
		creds := credentials.NewStaticCredentialsProvider(
			cfg.SES.AccessKeyID,
			cfg.SES.SecretAccessKey,
			"",
		)
		awsCfgOpts = append(awsCfgOpts, awsconfig.WithCredentialsProvider(creds))

	case "iam_role":
		slog.Info("Configuring SES with IAM Role credentials.")
		// SDKが自動で認証情報を探すので特別な設定は不要

	default:
		slog.Warn("Unknown SES auth_type specified, defaulting to IAM Role.", "type", cfg.SES.AuthType)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsCfgOpts...)
	if err != nil {
		slog.Error("Failed to load AWS config for SES", "error", err)
		panic(err)
	}

	return &SESSender{
		client:   sesv2.NewFromConfig(awsCfg),
		cfg:      &cfg.SES,
		resolver: resolver,
	}
}

// Send はリマインダーを学習者のメールアドレスへ送信します
func (s *SESSender) Send(ctx context.Context, payload model.NotificationPayload) error {
	logger := middleware.GetLogger(ctx)

	to, err := s.resolver(ctx, payload.LearnerID)
	if err != nil {
		logger.Error("Failed to resolve learner email for reminder", "learner_id", payload.LearnerID, "error", err)
		return err
	}

	subject := fmt.Sprintf("復習の時間です (%d件)", payload.DueCardCount)
	body := payload.Message

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.cfg.From),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(body),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	_, err = s.client.SendEmail(ctx, input)
	if err != nil {
		logger.Error("Failed to send reminder via SES", "error", err, "to", to)
		return err
	}

	logger.Info("Reminder sent successfully via SES", "to", to, "due_card_count", payload.DueCardCount)
	return nil
}
