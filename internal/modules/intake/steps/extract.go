package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/researchtrack-backend/internal/domain/extraction"
	"github.com/yungbote/researchtrack-backend/internal/observability"
	pkgerrors "github.com/yungbote/researchtrack-backend/internal/pkg/errors"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
	"github.com/yungbote/researchtrack-backend/internal/platform/openai"
)

type ExtractDeps struct {
	Log *logger.Logger
	// AI is nil when no completion credential is configured.
	AI openai.Client
}

type ExtractInput struct {
	Message string
	UserID  string
}

type ExtractOutput struct {
	Graph       extraction.Graph
	RawResponse string
	Model       string
}

// Extract turns one free-text message into a candidate graph with a single completion
// call. A missing credential fails before any network call.
func Extract(ctx context.Context, deps ExtractDeps, in ExtractInput) (ExtractOutput, error) {
	const op = "intake.extract"
	if deps.Log == nil {
		return ExtractOutput{}, fmt.Errorf("%s: missing deps", op)
	}
	if deps.AI == nil {
		return ExtractOutput{}, extraction.ConfigurationError(op, "completion credential is not configured")
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ExtractOutput{}, fmt.Errorf("%s: empty message: %w", op, pkgerrors.ErrInvalidArgument)
	}

	ctx, span := observability.Tracer().Start(ctx, "intake.extract")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", deps.AI.Model()),
		attribute.Int("message.length", len(message)),
	)

	completion, err := deps.AI.Complete(ctx, openai.CompletionRequest{
		System:     extractionSystemPrompt,
		User:       message,
		JSONObject: true,
	})
	if err != nil {
		var out error
		if errors.Is(err, openai.ErrMissingAPIKey) {
			out = extraction.ConfigurationError(op, err.Error())
		} else {
			out = extraction.UpstreamError(op, err)
		}
		span.RecordError(out)
		span.SetStatus(codes.Error, string(extraction.KindOf(out)))
		deps.Log.Warn("Completion call failed", "user_id", in.UserID, "error", err)
		return ExtractOutput{}, out
	}

	graph, err := extraction.ParseGraph(completion.Text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(extraction.KindMalformedResponse))
		deps.Log.Warn("Completion was not a valid extraction graph",
			"user_id", in.UserID,
			"finish_reason", completion.FinishReason,
			"error", err,
		)
		return ExtractOutput{RawResponse: completion.Text, Model: completion.Model}, err
	}

	span.SetAttributes(
		attribute.Int("graph.programs", len(graph.Programs)),
		attribute.Int("graph.deadlines", len(graph.Deadlines)),
		attribute.Int("graph.people", len(graph.People)),
		attribute.Int("graph.links", len(graph.Links)),
	)
	deps.Log.Debug("Extraction graph parsed",
		"user_id", in.UserID,
		"programs", len(graph.Programs),
		"deadlines", len(graph.Deadlines),
		"people", len(graph.People),
		"links", len(graph.Links),
	)
	return ExtractOutput{Graph: graph, RawResponse: completion.Text, Model: completion.Model}, nil
}
