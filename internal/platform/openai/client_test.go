package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		handler(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCompleteSendsJSONModeAndLowTemperature(t *testing.T) {
	var seen map[string]any
	srv := newTestServer(t, func(w http.ResponseWriter, body map[string]any) {
		seen = body
		_, _ = w.Write([]byte(`{
			"id": "c1",
			"model": "gpt-4o-mini-2024",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"programs\":[]}"}}],
			"usage": {"prompt_tokens": 11, "completion_tokens": 7, "total_tokens": 18}
		}`))
	})

	c, err := NewClient(logger.Nop(), Config{APIKey: "sk-test", BaseURL: srv.URL, Temperature: 0.1})
	require.NoError(t, err)

	got, err := c.Complete(context.Background(), CompletionRequest{System: "sys", User: "hello", JSONObject: true})
	require.NoError(t, err)
	assert.Equal(t, `{"programs":[]}`, got.Text)
	assert.Equal(t, "gpt-4o-mini-2024", got.Model)
	assert.Equal(t, "stop", got.FinishReason)
	assert.Equal(t, 11, got.PromptTokens)
	assert.Equal(t, 7, got.CompletionTokens)

	require.NotNil(t, seen)
	assert.Equal(t, DefaultModel, seen["model"])
	assert.InDelta(t, 0.1, seen["temperature"], 0.0001)
	format, _ := seen["response_format"].(map[string]any)
	assert.Equal(t, "json_object", format["type"])
	msgs, _ := seen["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "hello", msgs[1].(map[string]any)["content"])
}

func TestCompleteMapsErrorStatus(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ map[string]any) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
	})

	c, err := NewClient(logger.Nop(), Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), CompletionRequest{System: "s", User: "u"})
	var se *StatusError
	require.True(t, errors.As(err, &se), "err=%v", err)
	assert.Equal(t, http.StatusServiceUnavailable, se.HTTPStatusCode())
}

func TestCompleteEmptyResponses(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{name: "no choices", body: `{"id":"c","choices":[]}`, want: ErrNoChoices},
		{name: "blank content", body: `{"id":"c","choices":[{"index":0,"message":{"role":"assistant","content":"  "}}]}`, want: ErrEmptyContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, _ map[string]any) {
				_, _ = w.Write([]byte(tc.body))
			})
			c, err := NewClient(logger.Nop(), Config{APIKey: "sk-test", BaseURL: srv.URL})
			require.NoError(t, err)
			_, err = c.Complete(context.Background(), CompletionRequest{System: "s", User: "u"})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(logger.Nop(), Config{APIKey: "  "})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewClientClampsTemperature(t *testing.T) {
	c, err := NewClient(logger.Nop(), Config{APIKey: "k", Temperature: 0.9})
	require.NoError(t, err)
	assert.Equal(t, float32(MaxTemperature), c.(*client).temperature)

	c, err = NewClient(logger.Nop(), Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, float32(DefaultTemperature), c.(*client).temperature)
}

func TestNormalizeBaseURL(t *testing.T) {
	cases := map[string]string{
		"":                           DefaultBaseURL,
		"https://api.openai.com":     "https://api.openai.com/v1",
		"https://api.openai.com/v1/": "https://api.openai.com/v1",
		"http://localhost:11434/v1":  "http://localhost:11434/v1",
	}
	for in, want := range cases {
		if got := NormalizeBaseURL(in); got != want {
			t.Fatalf("NormalizeBaseURL(%q)=%q, want %q", in, got, want)
		}
	}
}
