package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	v1 "flaggate/pkg/api/v1"
	"flaggate/pkg/logger"

	"go.uber.org/zap"
)

const serviceTokenHeader = "X-Service-Token"

// FlagClient is the consumer-side SDK. It performs one evaluation request
// per call; the service owns all flag state, nothing is cached here.
type FlagClient struct {
	addr         string
	serviceToken string
	httpClient   *http.Client
}

type Option func(*FlagClient)

// WithHTTPClient replaces the default transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *FlagClient) {
		c.httpClient = hc
	}
}

func NewFlagClient(addr, serviceToken string, opts ...Option) *FlagClient {
	c := &FlagClient{
		addr:         addr,
		serviceToken: serviceToken,
		httpClient:   &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Evaluate resolves the effective value of featureName for userID.
func (c *FlagClient) Evaluate(ctx context.Context, userID, featureName string) (*v1.Decision, error) {
	q := url.Values{}
	q.Set("user_id", userID)
	q.Set("feature_name", featureName)

	reqURL := fmt.Sprintf("%s/flags/evaluate?%s", c.addr, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(serviceTokenHeader, c.serviceToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil && errBody.Error != "" {
			return nil, fmt.Errorf("evaluate %s: %s (status %d)", featureName, errBody.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("evaluate %s: unexpected status %d", featureName, resp.StatusCode)
	}

	var decision v1.Decision
	if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
		return nil, fmt.Errorf("evaluate %s: decode response: %w", featureName, err)
	}
	return &decision, nil
}

// IsEnabled reports whether the feature is on for the user, treating every
// transport or service failure as disabled. Callers gating functionality
// behind a flag prefer a dark feature over a failed request.
func (c *FlagClient) IsEnabled(ctx context.Context, userID, featureName string) bool {
	decision, err := c.Evaluate(ctx, userID, featureName)
	if err != nil {
		logger.Warn("flag evaluation failed, defaulting to disabled",
			zap.String("feature_name", featureName),
			zap.Error(err))
		return false
	}
	return decision.Enabled
}
