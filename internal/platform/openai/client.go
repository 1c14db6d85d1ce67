package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/yungbote/researchtrack-backend/internal/observability"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.1
	// MaxTemperature caps extraction randomness; higher configured values are clamped.
	MaxTemperature = 0.3
)

var (
	ErrMissingAPIKey = errors.New("missing OPENAI_API_KEY")
	ErrNoChoices     = errors.New("openai returned no choices")
	ErrEmptyContent  = errors.New("openai returned empty content")
)

type CompletionRequest struct {
	System string
	User   string
	// JSONObject asks the endpoint to constrain output to a single JSON object.
	JSONObject bool
}

type Completion struct {
	Text             string
	Model            string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
}

// Client is the completion capability used by the intake module. One Complete call is
// one HTTP round trip; nothing is retried.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
	Model() string
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// StatusError is a non-2xx response from the completion endpoint.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type client struct {
	log         *logger.Logger
	api         *goopenai.Client
	model       string
	temperature float32
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	// Zero is omitted on the wire and would select the server default.
	temp := cfg.Temperature
	if temp <= 0 {
		temp = DefaultTemperature
	}
	if temp > MaxTemperature {
		temp = MaxTemperature
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	apiCfg := goopenai.DefaultConfig(apiKey)
	apiCfg.BaseURL = NormalizeBaseURL(cfg.BaseURL)
	apiCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &client{
		log:         log.With("service", "OpenAIClient", "model", model),
		api:         goopenai.NewClientWithConfig(apiCfg),
		model:       model,
		temperature: temp,
	}, nil
}

// NormalizeBaseURL accepts a host root or a /v1 root and returns the /v1 root.
func NormalizeBaseURL(raw string) string {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	if base == "" {
		return DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	return base
}

func (c *client) Model() string { return c.model }

func (c *client) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	chatReq := goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.System},
			{Role: goopenai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: c.temperature,
	}
	if req.JSONObject {
		chatReq.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		err = translateError(err)
		observability.Current().ObserveLLMRequest(c.model, statusLabel(err), time.Since(start), 0, 0)
		c.log.Warn("Completion request failed", "error", err, "elapsed", time.Since(start).String())
		return Completion{}, err
	}
	observability.Current().ObserveLLMRequest(c.model, "200", time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return Completion{}, ErrNoChoices
	}
	choice := resp.Choices[0]
	text := choice.Message.Content
	if strings.TrimSpace(text) == "" {
		return Completion{}, ErrEmptyContent
	}
	model := resp.Model
	if model == "" {
		model = c.model
	}
	c.log.Debug("Completion received",
		"finish_reason", string(choice.FinishReason),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return Completion{
		Text:             text,
		Model:            model,
		FinishReason:     string(choice.FinishReason),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func translateError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &StatusError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &StatusError{StatusCode: reqErr.HTTPStatusCode, Message: msg}
	}
	return err
}

func statusLabel(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return strconv.Itoa(se.StatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "error"
}
