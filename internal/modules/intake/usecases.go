package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/researchtrack-backend/internal/data/aggregates"
	"github.com/yungbote/researchtrack-backend/internal/data/repos"
	"github.com/yungbote/researchtrack-backend/internal/domain/extraction"
	"github.com/yungbote/researchtrack-backend/internal/modules/intake/steps"
	"github.com/yungbote/researchtrack-backend/internal/observability"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
	"github.com/yungbote/researchtrack-backend/internal/platform/openai"
)

type UsecasesDeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	// AI is nil when no completion credential is configured; Extract then fails with
	// a configuration error.
	AI openai.Client
	// Tx defaults to a gorm transaction runner over DB.
	Tx aggregates.TxRunner

	Programs  repos.ProgramRepo
	Deadlines repos.DeadlineRepo
	People    repos.PersonRepo
	Links     repos.LinkRepo

	Metrics *observability.Metrics
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Tx == nil && deps.DB != nil {
		deps.Tx = aggregates.NewGormTxRunner(deps.DB)
	}
	return Usecases{deps: deps}
}

func (u Usecases) WithLog(log *logger.Logger) Usecases {
	u.deps.Log = log
	return u
}

type (
	ExtractInput  = steps.ExtractInput
	ExtractOutput = steps.ExtractOutput
	PersistInput  = steps.PersistInput
)

type IngestInput struct {
	Message string
	UserID  string
}

func (u Usecases) Extract(ctx context.Context, in ExtractInput) (ExtractOutput, error) {
	return steps.Extract(ctx, steps.ExtractDeps{
		Log: u.deps.Log,
		AI:  u.deps.AI,
	}, in)
}

func (u Usecases) Persist(ctx context.Context, in PersistInput) (*extraction.Result, error) {
	return steps.Persist(ctx, steps.PersistDeps{
		Log:       u.deps.Log,
		Tx:        u.deps.Tx,
		Programs:  u.deps.Programs,
		Deadlines: u.deps.Deadlines,
		People:    u.deps.People,
		Links:     u.deps.Links,
		Metrics:   u.deps.Metrics,
	}, in)
}

// Ingest runs one extraction batch: a single completion call, then the per-program
// writes. Fatal extraction errors stop before any write.
func (u Usecases) Ingest(ctx context.Context, in IngestInput) (*extraction.Result, error) {
	start := time.Now()
	batchID := uuid.New()
	log := u.deps.Log
	if log == nil {
		return nil, fmt.Errorf("intake.ingest: missing deps")
	}
	log = log.With("batch_id", batchID.String())

	out, err := u.WithLog(log).Extract(ctx, ExtractInput{Message: in.Message, UserID: in.UserID})
	if err != nil {
		u.deps.Metrics.ObserveExtraction(outcomeOf(err), time.Since(start))
		return nil, err
	}

	res, err := u.WithLog(log).Persist(ctx, PersistInput{
		UserID:      in.UserID,
		Graph:       out.Graph,
		RawResponse: out.RawResponse,
		BatchID:     batchID,
		Model:       out.Model,
	})
	if err != nil {
		u.deps.Metrics.ObserveExtraction("error", time.Since(start))
		return res, err
	}

	outcome := "ok"
	if res.Partial {
		outcome = "partial"
	}
	u.deps.Metrics.ObserveExtraction(outcome, time.Since(start))
	log.Info("Extraction batch persisted",
		"user_id", in.UserID,
		"programs", len(res.Programs),
		"deadlines", len(res.Deadlines),
		"people", len(res.People),
		"links", len(res.Links),
		"failures", len(res.Failures),
		"elapsed", time.Since(start).String(),
	)
	return res, nil
}

func outcomeOf(err error) string {
	if kind := extraction.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}
