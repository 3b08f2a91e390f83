package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultBaseURL is the OpenAI-compatible endpoint prefix.
	DefaultBaseURL = "https://api.openai.com/v1"

	defaultMaxAttempts = 3
	defaultBackoffUnit = time.Second
)

// Request carries the two instructions of a completion call. Model,
// max_tokens and temperature come from the client, not the caller.
type Request struct {
	System string
	User   string
}

// Options configures a Client. Token and Model are required; everything
// else has a default.
type Options struct {
	BaseURL     string
	Token       string
	Model       string
	MaxTokens   int
	Temperature float64

	// MaxAttempts bounds retries on transient failures.
	MaxAttempts int
	// BackoffUnit is the first backoff delay; it doubles each retry.
	BackoffUnit time.Duration

	// HTTPClient and Sleep are injectable for tests.
	HTTPClient *http.Client
	Sleep      func(context.Context, time.Duration)
}

// Client calls the remote text-generation service.
type Client struct {
	baseURL     string
	token       string
	model       string
	maxTokens   int
	temperature float64
	maxAttempts int
	backoffUnit time.Duration
	httpClient  *http.Client
	sleep       func(context.Context, time.Duration)
}

// New creates a completion client.
func New(opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, ErrMissingCredential
	}
	if opts.Model == "" {
		return nil, errors.New("model is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.BackoffUnit <= 0 {
		opts.BackoffUnit = defaultBackoffUnit
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	return &Client{
		baseURL:     strings.TrimSuffix(opts.BaseURL, "/"),
		token:       opts.Token,
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		maxAttempts: opts.MaxAttempts,
		backoffUnit: opts.BackoffUnit,
		httpClient:  opts.HTTPClient,
		sleep:       opts.Sleep,
	}, nil
}

// Model returns the model identifier the client was built with.
func (c *Client) Model() string {
	return c.model
}

// Complete sends the request and returns the raw response text, retrying
// transient failures up to the attempt bound. The observed policy sleeps
// after every failed attempt, the last one included, before surfacing the
// final error.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	logger := zerolog.Ctx(ctx)

	var lastErr error
	attempts := 0
	backoff := c.backoffUnit
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		attempts++
		text, err := c.complete(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if Classify(err) == ClassFatal {
			logger.Debug().Err(err).Msg("fatal completion error, not retrying")
			break
		}

		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", c.maxAttempts).
			Dur("backoff", backoff).
			Msg("completion attempt failed")

		c.sleep(ctx, backoff)
		backoff *= 2
	}

	return "", errors.Errorf("completion failed after %d attempts: %w", attempts, lastErr)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete performs a single chat completion call.
func (c *Client) complete(ctx context.Context, req Request) (string, error) {
	payload := chatRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", errors.Errorf("calling completion service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", newServiceError(resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", errors.Errorf("decoding response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("response contains no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// sleepContext sleeps for d unless the context is cancelled first.
func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
