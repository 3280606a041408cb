package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/redis/go-redis/v9"

	"github.com/cuentame-ec/cuentame/internal/classifier"
	appconfig "github.com/cuentame-ec/cuentame/internal/config"
	"github.com/cuentame-ec/cuentame/internal/notify"
	"github.com/cuentame-ec/cuentame/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, draft snapshots disabled", "error", err)
		return nil
	}
	return client
}

// BuildLLMClient wires the completion provider chain: Gemini primary with a
// Bedrock fallback when both are configured, either one alone otherwise.
// Returns nil when no provider is configured; the classifier and the chat
// assistant both degrade safely on a nil client.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) classifier.LLMClient {
	if cfg == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var primary, secondary classifier.LLMClient

	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		gemini, err := classifier.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
		} else {
			primary = gemini
		}
	}
	if strings.TrimSpace(cfg.BedrockModelID) != "" {
		secondary = classifier.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
	}

	switch {
	case primary != nil && secondary != nil:
		logger.Info("llm providers configured", "primary", "gemini", "fallback", "bedrock")
		return classifier.NewFallbackLLMClient(primary, secondary, logger.Logger)
	case primary != nil:
		logger.Info("llm provider configured", "provider", "gemini")
		return primary
	case secondary != nil:
		logger.Info("llm provider configured", "provider", "bedrock")
		return secondary
	default:
		logger.Warn("no llm provider configured, classification uses the safe fallback")
		return nil
	}
}

// BuildEmailSender returns the configured notification email sender. Falls
// back to a logging stub so DECE inbox copies never block case writes.
func BuildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return notify.NewStubEmailSender(logger)
	}

	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but not configured, email copies disabled")
	case "ses":
		if sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); sender != nil {
			return sender
		}
		logger.Warn("ses selected but not configured, email copies disabled")
	}
	return notify.NewStubEmailSender(logger)
}
