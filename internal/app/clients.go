package app

import (
	"errors"
	"fmt"

	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
	"github.com/yungbote/researchtrack-backend/internal/platform/openai"
)

type Clients struct {
	// OpenAI is nil when no API key is configured.
	OpenAI openai.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	ai, err := openai.NewClient(log, cfg.OpenAI())
	switch {
	case errors.Is(err, openai.ErrMissingAPIKey):
		log.Warn("OPENAI_API_KEY not set; extraction requests will fail until it is configured")
		return Clients{}, nil
	case err != nil:
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	return Clients{OpenAI: ai}, nil
}
