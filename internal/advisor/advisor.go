// Package advisor asks an OpenAI-compatible chat completions endpoint for
// personal-finance tips based on a dashboard summary.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"

	"finsmart/internal/cache"
	"finsmart/internal/core"
	"finsmart/internal/log"
)

const (
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "llama3-8b-8192"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 512
	DefaultTimeout     = 30 * time.Second

	adviceTTL      = 10 * time.Minute
	adviceCapacity = 256
)

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	RetryDelay  time.Duration
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	return c
}

// Client talks to the chat completions API and remembers recent answers.
type Client struct {
	cfg     Config
	http    *http.Client
	logger  *log.Logger
	answers *cache.LRUCache[string]
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent(log.ComponentAdvisor) }
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing AI_API_KEY")
	}
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:     cfg,
		http:    newHTTPClient(cfg.Timeout),
		logger:  log.Discard(),
		answers: cache.NewLRUCache[string](adviceCapacity, adviceTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			ForceAttemptHTTP2:     true,
		},
		Timeout: timeout,
	}
}

// Cache exposes the answer cache for the cleanup manager.
func (c *Client) Cache() *cache.LRUCache[string] {
	return c.answers
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// statusError carries a non-2xx reply so the retry policy can inspect it.
type statusError struct {
	code int
	msg  string
}

func (e *statusError) Error() string {
	if e.msg == "" {
		return fmt.Sprintf("status %d", e.code)
	}
	return fmt.Sprintf("status %d: %s", e.code, e.msg)
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	return false
}

// Advise returns tips for the summary. Identical figures for the same user
// within ten minutes are answered from cache.
func (c *Client) Advise(ctx context.Context, s core.Summary) (string, error) {
	key := cacheKey(s)
	if text, ok := c.answers.Get(key); ok {
		c.logger.DebugContext(ctx, "Advice served from cache", log.FieldUser, s.User)
		return text, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var text string
	err := retry.Do(
		func() error {
			var err error
			text, err = c.complete(ctx, Prompt(s))
			return err
		},
		retry.RetryIf(func(err error) bool {
			if retryable(err) {
				c.logger.WarnContext(ctx, "AI request failed, will retry", "error", err)
				return true
			}
			return false
		}),
		retry.Attempts(3),
		retry.Delay(c.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return "", fmt.Errorf("advice: %w: %w", core.ErrExternalService, err)
	}

	c.answers.Set(key, text)
	return text, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ae apiError
		_ = json.Unmarshal(raw, &ae)
		return "", &statusError{code: resp.StatusCode, msg: ae.Error.Message}
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode reply: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", errors.New("empty reply")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func cacheKey(s core.Summary) string {
	return strings.Join([]string{
		s.User,
		s.Income.String(),
		s.Expense.String(),
		s.Remaining.String(),
		s.TopCategory,
	}, "|")
}
