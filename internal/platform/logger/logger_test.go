package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVs(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"user_id", "u1",
		"openai_api_key", "sk-live-123",
		"program_title", "PhD in Biology",
		"dangling",
	})
	if len(out) != 7 {
		t.Fatalf("len=%d, want 7", len(out))
	}
	if got, ok := out[1].(string); !ok || !strings.HasPrefix(got, "hash:") || got == "hash:u1" {
		t.Fatalf("user_id not hashed: %v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("api key not redacted: %v", out[3])
	}
	if out[5] != "PhD in Biology" {
		t.Fatalf("plain value changed: %v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("dangling key dropped: %v", out[6])
	}
}

func TestNewTestModeIsNop(t *testing.T) {
	log, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.With("service", "x").Info("discarded", "k", "v")
	log.Sync()
}
