package classifier

import (
	"context"
	"log/slog"
)

// FallbackLLMClient wraps a primary LLM client with a secondary provider.
// If the primary fails, it retries once with the secondary.
type FallbackLLMClient struct {
	primary   LLMClient
	secondary LLMClient
	logger    *slog.Logger
}

// NewFallbackLLMClient creates a provider-failover client. A nil
// secondary means only the primary is used.
func NewFallbackLLMClient(primary, secondary LLMClient, logger *slog.Logger) *FallbackLLMClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackLLMClient{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Complete sends the request to the primary provider, retrying with the
// secondary on failure.
func (c *FallbackLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}

	c.logger.Warn("primary LLM failed, attempting secondary",
		"error", err.Error(),
		"secondary_available", c.secondary != nil,
	)

	if c.secondary == nil {
		return LLMResponse{}, err
	}

	secondResp, secondErr := c.secondary.Complete(ctx, req)
	if secondErr != nil {
		c.logger.Error("secondary LLM also failed",
			"primary_error", err.Error(),
			"secondary_error", secondErr.Error(),
		)
		return LLMResponse{}, secondErr
	}

	c.logger.Info("secondary LLM succeeded after primary failure")
	return secondResp, nil
}
