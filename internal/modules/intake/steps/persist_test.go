package steps

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aggtestutil "github.com/yungbote/researchtrack-backend/internal/data/aggregates/testutil"
	types "github.com/yungbote/researchtrack-backend/internal/domain"
	"github.com/yungbote/researchtrack-backend/internal/domain/extraction"
	pkgerrors "github.com/yungbote/researchtrack-backend/internal/pkg/errors"
)

func TestPersistRoundTrip(t *testing.T) {
	f := newPersistFixture(t)

	res := f.persist(t, extraction.Graph{
		Programs:  []extraction.CandidateProgram{program("X", "MIT")},
		Deadlines: []extraction.CandidateDeadline{deadline("X", "Apply", "2025-12-01")},
	})

	require.Len(t, res.Programs, 1)
	require.Len(t, res.Deadlines, 1)
	assert.False(t, res.Partial)
	assert.Empty(t, res.Failures)
	assert.Equal(t, res.Programs[0].ID, res.Deadlines[0].ProgramID)

	assert.EqualValues(t, 1, f.count(t, &types.Program{}))
	assert.EqualValues(t, 1, f.count(t, &types.Deadline{}))

	var stored types.Deadline
	require.NoError(t, f.db.Where("id = ?", res.Deadlines[0].ID).First(&stored).Error)
	assert.Equal(t, res.Programs[0].ID, stored.ProgramID)
	assert.True(t, stored.Date.Equal(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)), "date=%s", stored.Date)
}

func TestPersistStampsOwnerAndBatch(t *testing.T) {
	f := newPersistFixture(t)
	batch := uuid.New()

	res, err := Persist(context.Background(), f.deps, PersistInput{
		UserID:  f.userID,
		BatchID: batch,
		Model:   "stub-model",
		Graph: extraction.Graph{Programs: []extraction.CandidateProgram{
			program("  PhD in Biology ", "MIT"),
			program("MS in CS", "Stanford"),
		}},
	})
	require.NoError(t, err)
	require.Len(t, res.Programs, 2)
	assert.Equal(t, batch, res.BatchID)

	for _, p := range res.Programs {
		assert.Equal(t, f.userID, p.UserID)
		assert.Equal(t, types.DefaultProgramStatus, p.Status)
		var meta types.ProgramMetadata
		require.NoError(t, json.Unmarshal(p.Metadata, &meta))
		assert.Equal(t, batch, meta.BatchID)
		assert.Equal(t, "extraction", meta.Source)
		assert.Equal(t, "stub-model", meta.Model)
	}
	assert.Equal(t, "PhD in Biology", res.Programs[0].Title)
	assert.Equal(t, "MS in CS", res.Programs[1].Title, "programs keep extractor order")
}

func TestPersistNeverWritesOrphans(t *testing.T) {
	f := newPersistFixture(t)

	res := f.persist(t, extraction.Graph{
		Programs: []extraction.CandidateProgram{
			program("Real", "MIT"),
			program("No University", ""),
		},
		Deadlines: []extraction.CandidateDeadline{
			deadline("Real", "ok", "2025-11-01"),
			deadline("Ghost", "unmatched", "2025-11-01"),
			deadline("No University", "orphaned", "2025-11-01"),
		},
		People: []extraction.CandidatePerson{person("Ghost", "Nobody")},
		Links:  []extraction.CandidateLink{link("No University", "site", "https://x.test")},
	})

	require.Len(t, res.Programs, 1)
	require.Len(t, res.Deadlines, 1)
	assert.Empty(t, res.People)
	assert.Empty(t, res.Links)
	assert.True(t, res.Partial)

	assert.Len(t, failuresOf(res, extraction.FailureMalformed), 1)
	assert.Len(t, failuresOf(res, extraction.FailureUnmatched), 2)
	parentMissing := failuresOf(res, extraction.FailureParentMissing)
	require.Len(t, parentMissing, 2)
	for _, pm := range parentMissing {
		assert.Equal(t, "No University", pm.ProgramTitle)
	}

	assert.EqualValues(t, 1, f.count(t, &types.Program{}))
	assert.EqualValues(t, 1, f.count(t, &types.Deadline{}))
	assert.EqualValues(t, 0, f.count(t, &types.Person{}))
	assert.EqualValues(t, 0, f.count(t, &types.Link{}))
}

func TestPersistParentFailureSkipsChildren(t *testing.T) {
	f := newPersistFixture(t)
	f.deps.Programs = failingProgramRepo{ProgramRepo: f.deps.Programs, title: "Broken"}

	res := f.persist(t, extraction.Graph{
		Programs: []extraction.CandidateProgram{
			program("Broken", "MIT"),
			program("Fine", "Stanford"),
		},
		Deadlines: []extraction.CandidateDeadline{
			deadline("Broken", "b1", "2025-11-01"),
			deadline("Fine", "f1", "2025-11-02"),
		},
		People: []extraction.CandidatePerson{person("Broken", "Dr. B")},
		Links:  []extraction.CandidateLink{link("Broken", "b", "https://b.test")},
	})

	require.Len(t, res.Programs, 1)
	assert.Equal(t, "Fine", res.Programs[0].Title)
	require.Len(t, res.Deadlines, 1)
	assert.Equal(t, "f1", res.Deadlines[0].Title)

	persistence := failuresOf(res, extraction.FailurePersistence)
	require.Len(t, persistence, 1)
	assert.Equal(t, extraction.EntityProgram, persistence[0].Entity)
	assert.Contains(t, persistence[0].Reason, "connection reset")
	assert.Len(t, failuresOf(res, extraction.FailureParentMissing), 3)

	assert.EqualValues(t, 1, f.count(t, &types.Program{}))
	assert.EqualValues(t, 1, f.count(t, &types.Deadline{}))
	assert.EqualValues(t, 0, f.count(t, &types.Person{}))
	assert.EqualValues(t, 0, f.count(t, &types.Link{}))
}

func TestPersistChildFailureIsIsolated(t *testing.T) {
	f := newPersistFixture(t)
	f.deps.Deadlines = lateFailingDeadlineRepo{DeadlineRepo: f.deps.Deadlines, title: "poison"}

	res := f.persist(t, extraction.Graph{
		Programs: []extraction.CandidateProgram{program("PhD in Biology", "MIT")},
		Deadlines: []extraction.CandidateDeadline{
			deadline("PhD in Biology", "first", "2025-11-01"),
			deadline("PhD in Biology", "poison", "2025-11-02"),
			deadline("PhD in Biology", "third", "2025-11-03"),
		},
		People: []extraction.CandidatePerson{person("PhD in Biology", "Dr. Smith")},
	})

	require.Len(t, res.Programs, 1)
	require.Len(t, res.Deadlines, 2)
	assert.Equal(t, "first", res.Deadlines[0].Title)
	assert.Equal(t, "third", res.Deadlines[1].Title)
	require.Len(t, res.People, 1)

	persistence := failuresOf(res, extraction.FailurePersistence)
	require.Len(t, persistence, 1)
	assert.Equal(t, extraction.EntityDeadline, persistence[0].Entity)
	assert.Equal(t, "poison", persistence[0].Title)

	assert.EqualValues(t, 2, f.count(t, &types.Deadline{}), "savepoint must undo the failed insert")
	var n int64
	require.NoError(t, f.db.Model(&types.Deadline{}).Where("title = ?", "poison").Where("program_id = ?", res.Programs[0].ID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestPersistMalformedChildSkipped(t *testing.T) {
	f := newPersistFixture(t)

	res := f.persist(t, extraction.Graph{
		Programs: []extraction.CandidateProgram{program("P", "MIT")},
		Deadlines: []extraction.CandidateDeadline{
			deadline("P", "good", "2025-12-01T17:00:00Z"),
			deadline("P", "bad date", "next Tuesday"),
		},
		Links: []extraction.CandidateLink{
			link("P", "no url", ""),
			link("P", "site", "https://p.test"),
		},
	})

	assert.Len(t, res.Deadlines, 1)
	assert.Len(t, res.Links, 1)
	malformed := failuresOf(res, extraction.FailureMalformed)
	require.Len(t, malformed, 2)
	assert.Contains(t, malformed[0].Reason, "date")
	assert.Contains(t, malformed[1].Reason, "url")
	assert.EqualValues(t, 1, f.count(t, &types.Deadline{}))
}

func TestPersistDuplicateTitleFirstMatchWins(t *testing.T) {
	f := newPersistFixture(t)

	res := f.persist(t, extraction.Graph{
		Programs: []extraction.CandidateProgram{
			program("PhD in CS", "MIT"),
			program("PhD in CS", "Stanford"),
		},
		Deadlines: []extraction.CandidateDeadline{deadline("PhD in CS", "Apply", "2025-12-01")},
		People:    []extraction.CandidatePerson{person("PhD in CS", "Dr. Lee")},
	})

	require.Len(t, res.Programs, 2)
	require.Len(t, res.Deadlines, 1)
	require.Len(t, res.People, 1)
	assert.Equal(t, res.Programs[0].ID, res.Deadlines[0].ProgramID)
	assert.Equal(t, "MIT", res.Programs[0].University)
	assert.Equal(t, res.Programs[0].ID, res.People[0].ProgramID)

	dups := failuresOf(res, extraction.FailureDuplicateTitle)
	require.Len(t, dups, 1)
	assert.Equal(t, "PhD in CS", dups[0].Title)

	var n int64
	require.NoError(t, f.db.Model(&types.Deadline{}).Where("program_id = ?", res.Programs[1].ID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestPersistCommitFailureDropsProgram(t *testing.T) {
	f := newPersistFixture(t)
	runner := &aggtestutil.InjectedTxRunner{DB: f.db, FailCommit: errors.New("commit lost"), FailCommitAt: 2}
	f.deps.Tx = runner

	res := f.persist(t, extraction.Graph{
		Programs: []extraction.CandidateProgram{
			program("Kept", "MIT"),
			program("Lost", "Stanford"),
		},
		Deadlines: []extraction.CandidateDeadline{
			deadline("Kept", "k", "2025-11-01"),
			deadline("Lost", "l", "2025-11-02"),
		},
		Links: []extraction.CandidateLink{link("Lost", "site", "https://lost.test")},
	})

	require.Len(t, res.Programs, 1)
	assert.Equal(t, "Kept", res.Programs[0].Title)
	require.Len(t, res.Deadlines, 1)
	assert.Equal(t, "k", res.Deadlines[0].Title)
	assert.Empty(t, res.Links)

	persistence := failuresOf(res, extraction.FailurePersistence)
	require.Len(t, persistence, 3)
	entities := map[string]bool{}
	for _, p := range persistence {
		entities[p.Entity] = true
		assert.Contains(t, p.Reason, "commit lost")
	}
	assert.True(t, entities[extraction.EntityProgram])
	assert.True(t, entities[extraction.EntityDeadline])
	assert.True(t, entities[extraction.EntityLink])
	assert.Empty(t, failuresOf(res, extraction.FailureParentMissing))

	assert.Equal(t, 2, runner.BeginCalls)
	assert.Equal(t, 1, runner.RollbackCalls)
	assert.EqualValues(t, 1, f.count(t, &types.Program{}))
	assert.EqualValues(t, 1, f.count(t, &types.Deadline{}))
	assert.EqualValues(t, 0, f.count(t, &types.Link{}))
}

func TestPersistEmptyGraphWritesNothing(t *testing.T) {
	f := newPersistFixture(t)
	runner := &aggtestutil.InjectedTxRunner{DB: f.db}
	f.deps.Tx = runner

	res := f.persist(t, extraction.Graph{})

	assert.Empty(t, res.Programs)
	assert.Empty(t, res.Deadlines)
	assert.Empty(t, res.People)
	assert.Empty(t, res.Links)
	assert.False(t, res.Partial)
	assert.Zero(t, runner.BeginCalls)
	assert.EqualValues(t, 0, f.count(t, &types.Program{}))
}

func TestPersistRequiresUser(t *testing.T) {
	f := newPersistFixture(t)
	_, err := Persist(context.Background(), f.deps, PersistInput{UserID: " "})
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)
}

func TestPersistStopsWhenCancelled(t *testing.T) {
	f := newPersistFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Persist(ctx, f.deps, PersistInput{
		UserID: f.userID,
		Graph:  extraction.Graph{Programs: []extraction.CandidateProgram{program("P", "MIT")}},
	})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Empty(t, res.Programs)
	assert.EqualValues(t, 0, f.count(t, &types.Program{}))
}
