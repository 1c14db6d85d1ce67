package steps

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/researchtrack-backend/internal/data/aggregates"
	repoprograms "github.com/yungbote/researchtrack-backend/internal/data/repos/programs"
	"github.com/yungbote/researchtrack-backend/internal/data/repos/testutil"
	types "github.com/yungbote/researchtrack-backend/internal/domain"
	"github.com/yungbote/researchtrack-backend/internal/domain/extraction"
	"github.com/yungbote/researchtrack-backend/internal/platform/openai"
)

type stubCompletion struct {
	text  string
	err   error
	calls int
	last  openai.CompletionRequest
}

func (s *stubCompletion) Complete(ctx context.Context, req openai.CompletionRequest) (openai.Completion, error) {
	_ = ctx
	s.calls++
	s.last = req
	if s.err != nil {
		return openai.Completion{}, s.err
	}
	return openai.Completion{Text: s.text, Model: "stub-model", FinishReason: "stop"}, nil
}

func (s *stubCompletion) Model() string { return "stub-model" }

// failingProgramRepo rejects inserts of programs with the given title.
type failingProgramRepo struct {
	repoprograms.ProgramRepo
	title string
}

func (r failingProgramRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Program) ([]*types.Program, error) {
	for _, row := range rows {
		if row.Title == r.title {
			return nil, errors.New("insert program: connection reset")
		}
	}
	return r.ProgramRepo.Create(ctx, tx, rows)
}

// lateFailingDeadlineRepo writes the row, then reports failure, so only a savepoint
// rollback can keep the row out of the store.
type lateFailingDeadlineRepo struct {
	repoprograms.DeadlineRepo
	title string
}

func (r lateFailingDeadlineRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Deadline) ([]*types.Deadline, error) {
	out, err := r.DeadlineRepo.Create(ctx, tx, rows)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Title == r.title {
			return nil, errors.New("insert deadline: statement timeout")
		}
	}
	return out, nil
}

type persistFixture struct {
	db     *gorm.DB
	deps   PersistDeps
	userID string
}

func newPersistFixture(t *testing.T) *persistFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &persistFixture{
		db: db,
		deps: PersistDeps{
			Log:       log,
			Tx:        aggregates.NewGormTxRunner(db),
			Programs:  repoprograms.NewProgramRepo(db, log),
			Deadlines: repoprograms.NewDeadlineRepo(db, log),
			People:    repoprograms.NewPersonRepo(db, log),
			Links:     repoprograms.NewLinkRepo(db, log),
		},
		userID: testutil.UserID(),
	}
}

func (f *persistFixture) persist(t *testing.T, g extraction.Graph) *extraction.Result {
	t.Helper()
	res, err := Persist(context.Background(), f.deps, PersistInput{UserID: f.userID, Graph: g, RawResponse: "{}"})
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

// count returns how many rows of model the fixture user owns.
func (f *persistFixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if _, ok := model.(*types.Program); ok {
		q = q.Where("user_id = ?", f.userID)
	} else {
		q = q.Where("program_id IN (?)", f.db.Model(&types.Program{}).Select("id").Where("user_id = ?", f.userID))
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func failuresOf(res *extraction.Result, kind extraction.FailureKind) []extraction.Failure {
	var out []extraction.Failure
	for _, f := range res.Failures {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func program(title, university string) extraction.CandidateProgram {
	return extraction.CandidateProgram{
		Title:       extraction.Text(title),
		University:  extraction.Text(university),
		ProgramType: "PhD",
	}
}

func deadline(programTitle, title, date string) extraction.CandidateDeadline {
	return extraction.CandidateDeadline{
		ProgramTitle: extraction.Text(programTitle),
		Title:        extraction.Text(title),
		Date:         extraction.Text(date),
		DeadlineType: "application",
	}
}

func person(programTitle, name string) extraction.CandidatePerson {
	return extraction.CandidatePerson{
		ProgramTitle: extraction.Text(programTitle),
		Name:         extraction.Text(name),
		Role:         "professor",
	}
}

func link(programTitle, title, url string) extraction.CandidateLink {
	return extraction.CandidateLink{
		ProgramTitle: extraction.Text(programTitle),
		Title:        extraction.Text(title),
		URL:          extraction.Text(url),
		LinkType:     "website",
	}
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
