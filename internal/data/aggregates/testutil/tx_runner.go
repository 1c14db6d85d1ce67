package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/researchtrack-backend/internal/data/aggregates"
	"github.com/yungbote/researchtrack-backend/internal/platform/dbctx"
)

// InjectedTxRunner is a TxRunner for failure injection. With DB set the body runs in
// a real transaction, and injected commit failures roll it back; without DB the body
// runs with a nil Tx.
type InjectedTxRunner struct {
	mu sync.Mutex

	DB *gorm.DB

	FailBegin  error
	FailCommit error
	// FailCommitAt fails only the n-th (1-based) InTx call; zero means every call.
	FailCommitAt int

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	call := r.BeginCalls
	failBegin := r.FailBegin
	failCommit := r.FailCommit
	if r.FailCommitAt > 0 && call != r.FailCommitAt {
		failCommit = nil
	}
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if fn == nil {
		r.count(&r.CommitCalls)
		return nil
	}

	body := func(dbc dbctx.Context) error {
		if err := fn(dbc); err != nil {
			return err
		}
		return failCommit
	}

	var err error
	if r.DB != nil {
		err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return body(dbctx.Context{Ctx: ctx, Tx: tx})
		})
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}
	if err != nil {
		r.count(&r.RollbackCalls)
		return err
	}
	r.count(&r.CommitCalls)
	return nil
}

func (r *InjectedTxRunner) count(field *int) {
	r.mu.Lock()
	*field++
	r.mu.Unlock()
}
