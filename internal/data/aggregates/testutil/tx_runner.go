package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/collections-backend/internal/data/aggregates"
	"github.com/yungbote/collections-backend/internal/platform/dbctx"
)

// InjectedTxRunner wraps a runner and fails chosen transactions before the
// body runs. Calls are numbered from 1.
type InjectedTxRunner struct {
	Inner aggregates.TxRunner

	mu     sync.Mutex
	failAt map[int]error
	calls  int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func NewInjectedTxRunner(inner aggregates.TxRunner) *InjectedTxRunner {
	return &InjectedTxRunner{Inner: inner, failAt: map[int]error{}}
}

// FailCall makes the n-th InTx call return err without touching the inner runner.
func (r *InjectedTxRunner) FailCall(n int, err error) *InjectedTxRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failAt[n] = err
	return r
}

func (r *InjectedTxRunner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.calls++
	err := r.failAt[r.calls]
	r.mu.Unlock()
	if err != nil {
		return err
	}
	if r.Inner == nil {
		if fn == nil {
			return nil
		}
		return fn(dbctx.Context{Ctx: ctx})
	}
	return r.Inner.InTx(ctx, fn)
}
