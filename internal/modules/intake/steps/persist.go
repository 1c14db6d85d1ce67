package steps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/researchtrack-backend/internal/data/aggregates"
	"github.com/yungbote/researchtrack-backend/internal/data/db"
	"github.com/yungbote/researchtrack-backend/internal/data/repos"
	types "github.com/yungbote/researchtrack-backend/internal/domain"
	"github.com/yungbote/researchtrack-backend/internal/domain/extraction"
	"github.com/yungbote/researchtrack-backend/internal/observability"
	pkgerrors "github.com/yungbote/researchtrack-backend/internal/pkg/errors"
	"github.com/yungbote/researchtrack-backend/internal/platform/dbctx"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

const metadataSourceExtraction = "extraction"

type PersistDeps struct {
	Log       *logger.Logger
	Tx        aggregates.TxRunner
	Programs  repos.ProgramRepo
	Deadlines repos.DeadlineRepo
	People    repos.PersonRepo
	Links     repos.LinkRepo
	Metrics   *observability.Metrics
}

type PersistInput struct {
	UserID      string
	Graph       extraction.Graph
	RawResponse string
	// BatchID is stamped into every program's metadata; a fresh id is used when nil.
	BatchID uuid.UUID
	Model   string
}

type programOutcome int

const (
	// outcomeSkipped: nothing was written; the program's children are parent_missing.
	outcomeSkipped programOutcome = iota
	outcomeCommitted
	// outcomeRolledBack: written, then lost at commit; children are reported with it.
	outcomeRolledBack
)

// Persist writes the graph program by program. Each program and its children commit
// together; each child insert runs in its own savepoint so a bad child costs only
// itself. Row-level failures land in the result, never in the returned error.
func Persist(ctx context.Context, deps PersistDeps, in PersistInput) (*extraction.Result, error) {
	const op = "intake.persist"
	if deps.Log == nil || deps.Tx == nil || deps.Programs == nil || deps.Deadlines == nil || deps.People == nil || deps.Links == nil {
		return nil, fmt.Errorf("%s: missing deps", op)
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%s: missing user id: %w", op, pkgerrors.ErrInvalidArgument)
	}
	if in.BatchID == uuid.Nil {
		in.BatchID = uuid.New()
	}

	ctx, span := observability.Tracer().Start(ctx, "intake.persist")
	defer span.End()
	span.SetAttributes(
		attribute.String("batch.id", in.BatchID.String()),
		attribute.Int("graph.programs", len(in.Graph.Programs)),
	)

	p := &persister{
		deps:     deps,
		in:       in,
		userID:   userID,
		log:      deps.Log.With("batch_id", in.BatchID.String(), "user_id", userID),
		res:      extraction.NewResult(in.BatchID, in.RawResponse),
		owners:   firstOwners(in.Graph.Programs),
		outcomes: make([]programOutcome, len(in.Graph.Programs)),
	}

	var cancelled error
	for i := range in.Graph.Programs {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		p.outcomes[i] = p.persistProgram(ctx, i)
	}
	p.sweepChildren()

	deps.Metrics.AddRowsPersisted(extraction.EntityProgram, len(p.res.Programs))
	deps.Metrics.AddRowsPersisted(extraction.EntityDeadline, len(p.res.Deadlines))
	deps.Metrics.AddRowsPersisted(extraction.EntityPerson, len(p.res.People))
	deps.Metrics.AddRowsPersisted(extraction.EntityLink, len(p.res.Links))

	span.SetAttributes(
		attribute.Int("persisted.programs", len(p.res.Programs)),
		attribute.Int("failures", len(p.res.Failures)),
	)
	if cancelled != nil {
		span.SetStatus(codes.Error, "cancelled")
		return p.res, fmt.Errorf("%s: %w", op, cancelled)
	}
	return p.res, nil
}

type persister struct {
	deps     PersistDeps
	in       PersistInput
	userID   string
	log      *logger.Logger
	res      *extraction.Result
	owners   map[string]int
	outcomes []programOutcome
}

// stagedProgram holds rows written inside a program's transaction; they reach the
// result only once the transaction commits.
type stagedProgram struct {
	program   *types.Program
	deadlines []*types.Deadline
	people    []*types.Person
	links     []*types.Link
	failures  []extraction.Failure
}

func (s *stagedProgram) fail(f extraction.Failure) {
	s.failures = append(s.failures, f)
}

type programInsertError struct{ err error }

func (e *programInsertError) Error() string { return e.err.Error() }
func (e *programInsertError) Unwrap() error { return e.err }

// firstOwners maps each program title to the index of the first program carrying it.
// Children bind to that program only.
func firstOwners(programs []extraction.CandidateProgram) map[string]int {
	owners := make(map[string]int, len(programs))
	for i, prog := range programs {
		title := string(prog.Title)
		if _, seen := owners[title]; !seen {
			owners[title] = i
		}
	}
	return owners
}

func (p *persister) persistProgram(ctx context.Context, i int) programOutcome {
	cand := p.in.Graph.Programs[i]
	title := string(cand.Title)

	if err := extraction.Validate(cand); err != nil {
		p.fail(extraction.Failure{
			Entity: extraction.EntityProgram,
			Title:  cand.Title.Trimmed(),
			Kind:   extraction.FailureMalformed,
			Reason: err.Error(),
		})
		return outcomeSkipped
	}

	ctx, span := observability.Tracer().Start(ctx, "intake.persist_program")
	defer span.End()
	span.SetAttributes(attribute.String("program.title", cand.Title.Trimmed()))

	primary := p.owners[title] == i
	var staged stagedProgram
	err := p.deps.Tx.InTx(ctx, func(dbc dbctx.Context) error {
		staged = stagedProgram{}
		row, err := p.programRow(cand)
		if err != nil {
			return &programInsertError{err: err}
		}
		if _, err := p.deps.Programs.Create(dbc.Ctx, dbc.Tx, []*types.Program{row}); err != nil {
			return &programInsertError{err: err}
		}
		staged.program = row
		if primary {
			p.insertChildren(dbc, title, row.ID, &staged)
		}
		return nil
	})

	var insErr *programInsertError
	switch {
	case err == nil:
		p.res.Programs = append(p.res.Programs, staged.program)
		p.res.Deadlines = append(p.res.Deadlines, staged.deadlines...)
		p.res.People = append(p.res.People, staged.people...)
		p.res.Links = append(p.res.Links, staged.links...)
		for _, f := range staged.failures {
			p.fail(f)
		}
		if !primary {
			p.fail(extraction.Failure{
				Entity: extraction.EntityProgram,
				Title:  cand.Title.Trimmed(),
				Kind:   extraction.FailureDuplicateTitle,
				Reason: "persisted without children; an earlier program in this batch has the same title",
			})
		}
		return outcomeCommitted

	case errors.As(err, &insErr), staged.program == nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "program insert failed")
		p.fail(extraction.Failure{
			Entity: extraction.EntityProgram,
			Title:  cand.Title.Trimmed(),
			Kind:   extraction.FailurePersistence,
			Reason: storeReason(err),
		})
		return outcomeSkipped

	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit failed")
		reason := "rolled back with program: " + storeReason(err)
		p.fail(extraction.Failure{
			Entity: extraction.EntityProgram,
			Title:  cand.Title.Trimmed(),
			Kind:   extraction.FailurePersistence,
			Reason: storeReason(err),
		})
		for _, d := range staged.deadlines {
			p.fail(extraction.Failure{Entity: extraction.EntityDeadline, Title: d.Title, ProgramTitle: title, Kind: extraction.FailurePersistence, Reason: reason})
		}
		for _, n := range staged.people {
			p.fail(extraction.Failure{Entity: extraction.EntityPerson, Title: n.Name, ProgramTitle: title, Kind: extraction.FailurePersistence, Reason: reason})
		}
		for _, l := range staged.links {
			p.fail(extraction.Failure{Entity: extraction.EntityLink, Title: l.Title, ProgramTitle: title, Kind: extraction.FailurePersistence, Reason: reason})
		}
		for _, f := range staged.failures {
			p.fail(f)
		}
		return outcomeRolledBack
	}
}

func (p *persister) programRow(cand extraction.CandidateProgram) (*types.Program, error) {
	meta, err := json.Marshal(types.ProgramMetadata{
		BatchID: p.in.BatchID,
		Source:  metadataSourceExtraction,
		Model:   p.in.Model,
	})
	if err != nil {
		return nil, err
	}
	return &types.Program{
		ID:          uuid.New(),
		UserID:      p.userID,
		Title:       cand.Title.Trimmed(),
		University:  cand.University.Trimmed(),
		Description: cand.Description.Trimmed(),
		ProgramType: cand.ProgramType.Trimmed(),
		Status:      cand.Status.Trimmed(),
		Metadata:    datatypes.JSON(meta),
	}, nil
}

// insertChildren scans the full child arrays for entries naming this program.
func (p *persister) insertChildren(dbc dbctx.Context, title string, programID uuid.UUID, staged *stagedProgram) {
	for _, c := range p.in.Graph.Deadlines {
		if string(c.ProgramTitle) != title {
			continue
		}
		failure := extraction.Failure{Entity: extraction.EntityDeadline, Title: c.Title.Trimmed(), ProgramTitle: title}
		if err := extraction.Validate(c); err != nil {
			failure.Kind, failure.Reason = extraction.FailureMalformed, err.Error()
			staged.fail(failure)
			continue
		}
		date, _ := extraction.ParseDate(c.Date.String())
		row := &types.Deadline{
			ID:           uuid.New(),
			ProgramID:    programID,
			Title:        c.Title.Trimmed(),
			Date:         date,
			DeadlineType: c.DeadlineType.Trimmed(),
			Description:  c.Description.Trimmed(),
		}
		if err := insertChild(dbc, p.deps.Deadlines.Create, row); err != nil {
			failure.Kind, failure.Reason = extraction.FailurePersistence, storeReason(err)
			staged.fail(failure)
			continue
		}
		staged.deadlines = append(staged.deadlines, row)
	}

	for _, c := range p.in.Graph.People {
		if string(c.ProgramTitle) != title {
			continue
		}
		failure := extraction.Failure{Entity: extraction.EntityPerson, Title: c.Name.Trimmed(), ProgramTitle: title}
		if err := extraction.Validate(c); err != nil {
			failure.Kind, failure.Reason = extraction.FailureMalformed, err.Error()
			staged.fail(failure)
			continue
		}
		row := &types.Person{
			ID:          uuid.New(),
			ProgramID:   programID,
			Name:        c.Name.Trimmed(),
			Description: c.Description.Trimmed(),
			ProfileURL:  c.ProfileURL.Trimmed(),
			Role:        c.Role.Trimmed(),
		}
		if err := insertChild(dbc, p.deps.People.Create, row); err != nil {
			failure.Kind, failure.Reason = extraction.FailurePersistence, storeReason(err)
			staged.fail(failure)
			continue
		}
		staged.people = append(staged.people, row)
	}

	for _, c := range p.in.Graph.Links {
		if string(c.ProgramTitle) != title {
			continue
		}
		failure := extraction.Failure{Entity: extraction.EntityLink, Title: c.Title.Trimmed(), ProgramTitle: title}
		if err := extraction.Validate(c); err != nil {
			failure.Kind, failure.Reason = extraction.FailureMalformed, err.Error()
			staged.fail(failure)
			continue
		}
		row := &types.Link{
			ID:          uuid.New(),
			ProgramID:   programID,
			Title:       c.Title.Trimmed(),
			URL:         c.URL.Trimmed(),
			Description: c.Description.Trimmed(),
			LinkType:    c.LinkType.Trimmed(),
		}
		if err := insertChild(dbc, p.deps.Links.Create, row); err != nil {
			failure.Kind, failure.Reason = extraction.FailurePersistence, storeReason(err)
			staged.fail(failure)
			continue
		}
		staged.links = append(staged.links, row)
	}
}

func insertChild[T any](dbc dbctx.Context, create func(context.Context, *gorm.DB, []*T) ([]*T, error), row *T) error {
	return aggregates.Savepoint(dbc, func(sp dbctx.Context) error {
		_, err := create(sp.Ctx, sp.Tx, []*T{row})
		return err
	})
}

// sweepChildren reports children that were never attempted: those naming no program
// in the batch, and those whose program was not written.
func (p *persister) sweepChildren() {
	for _, c := range p.in.Graph.Deadlines {
		p.sweep(extraction.EntityDeadline, c.Title.Trimmed(), string(c.ProgramTitle))
	}
	for _, c := range p.in.Graph.People {
		p.sweep(extraction.EntityPerson, c.Name.Trimmed(), string(c.ProgramTitle))
	}
	for _, c := range p.in.Graph.Links {
		p.sweep(extraction.EntityLink, c.Title.Trimmed(), string(c.ProgramTitle))
	}
}

func (p *persister) sweep(entity, title, programTitle string) {
	idx, ok := p.owners[programTitle]
	if !ok {
		p.fail(extraction.Failure{
			Entity:       entity,
			Title:        title,
			ProgramTitle: programTitle,
			Kind:         extraction.FailureUnmatched,
			Reason:       "no program in this batch has this title",
		})
		return
	}
	if p.outcomes[idx] == outcomeSkipped {
		p.fail(extraction.Failure{
			Entity:       entity,
			Title:        title,
			ProgramTitle: programTitle,
			Kind:         extraction.FailureParentMissing,
			Reason:       "program was not persisted",
		})
	}
}

func (p *persister) fail(f extraction.Failure) {
	p.res.AddFailure(f)
	p.deps.Metrics.IncRowFailed(f.Entity, string(f.Kind))
	p.log.Warn("Extraction row skipped",
		"entity", f.Entity,
		"title", f.Title,
		"program_title", f.ProgramTitle,
		"kind", string(f.Kind),
		"reason", f.Reason,
	)
}

func storeReason(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", db.Classify(err), err)
}
