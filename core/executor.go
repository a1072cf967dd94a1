package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/event"
)

// Executor serializes every ledger and custody operation into atomic
// transactions. Mutations register undo steps with OnRevert; a failed
// transaction replays them in reverse and drops its buffered events.
type Executor struct {
	mu        sync.Mutex
	callouts  atomic.Int32
	sequence  uint64
	feed      event.Feed
	sinksMu   sync.RWMutex
	sinks     []EventSink
	onSinkErr func(ctx context.Context, err error)
	Now       func() time.Time

	queueMu     sync.Mutex
	pending     []pendingBatch
	dispatching bool
}

type pendingBatch struct {
	ctx    context.Context
	events []Event
}

type transaction struct {
	executor *Executor
	undo     []func()
	events   []Event
	readOnly bool
}

type transactionContextKey struct{}

func NewExecutor() *Executor {
	return &Executor{
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Execute runs fn as one transaction. When ctx already carries a transaction
// of this executor, fn joins it and a failure reverts only fn's own steps.
//
// Committed batches are dispatched in commit order without holding the
// transaction lock, so sinks may call back into the executor. A batch
// committed while another call is dispatching is delivered by that call.
func (e *Executor) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if e == nil {
		return fmt.Errorf("core: executor is not configured")
	}
	if fn == nil {
		return fmt.Errorf("core: transaction function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if tx := e.transactionFrom(ctx); tx != nil {
		if tx.readOnly {
			return fmt.Errorf("core: mutation attempted inside a read-only view")
		}
		return tx.nested(ctx, fn)
	}

	if err := e.commit(ctx, fn); err != nil {
		return err
	}
	e.drain()
	return nil
}

// View runs fn against a consistent state without a commit phase.
func (e *Executor) View(ctx context.Context, fn func(ctx context.Context) error) error {
	if e == nil {
		return fmt.Errorf("core: executor is not configured")
	}
	if fn == nil {
		return fmt.Errorf("core: view function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if tx := e.transactionFrom(ctx); tx != nil {
		return fn(ctx)
	}
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.mu.Unlock()
	tx := &transaction{executor: e, readOnly: true}
	return fn(context.WithValue(ctx, transactionContextKey{}, tx))
}

// Subscribe delivers every committed event to ch. Slow receivers delay the
// dispatch of later transactions, so ch should be buffered.
func (e *Executor) Subscribe(ch chan<- Event) event.Subscription {
	return e.feed.Subscribe(ch)
}

func (e *Executor) AddSink(sink EventSink) {
	if e == nil || sink == nil {
		return
	}
	e.sinksMu.Lock()
	defer e.sinksMu.Unlock()
	e.sinks = append(e.sinks, sink)
}

// OnSinkError installs the hook that receives post-commit sink failures.
func (e *Executor) OnSinkError(hook func(ctx context.Context, err error)) {
	if e == nil {
		return
	}
	e.sinksMu.Lock()
	defer e.sinksMu.Unlock()
	e.onSinkErr = hook
}

// Callout runs fn as code outside the executor, such as a receiver hook,
// within the transaction carried by ctx. While any callout runs, a call that
// arrives without a transaction fails with CustodyErrorReentrantCall instead
// of waiting on the lock held by the running transaction. Unrelated
// goroutines arriving in that window get the same error and may retry.
func (e *Executor) Callout(ctx context.Context, fn func(ctx context.Context) error) error {
	if e == nil || fn == nil {
		return nil
	}
	if e.transactionFrom(ctx) == nil {
		return fn(ctx)
	}
	e.callouts.Add(1)
	defer e.callouts.Add(-1)
	return fn(ctx)
}

func (e *Executor) acquire() error {
	if e.mu.TryLock() {
		return nil
	}
	if e.callouts.Load() > 0 {
		return stateError(
			"core: call re-entered the executor from an external callback",
			CustodyErrorReentrantCall,
			nil,
		)
	}
	e.mu.Lock()
	return nil
}

func (e *Executor) commit(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := e.acquire(); err != nil {
		return err
	}
	defer e.mu.Unlock()

	tx := &transaction{executor: e}
	defer func() {
		if recovered := recover(); recovered != nil {
			tx.revertTo(0, 0)
			panic(recovered)
		}
	}()

	if err := fn(context.WithValue(ctx, transactionContextKey{}, tx)); err != nil {
		tx.revertTo(0, 0)
		return err
	}
	for i := range tx.events {
		e.sequence++
		tx.events[i].Sequence = e.sequence
	}
	// queued before mu is released so dispatch order follows commit order
	if len(tx.events) > 0 {
		e.queueMu.Lock()
		e.pending = append(e.pending, pendingBatch{ctx: ctx, events: tx.events})
		e.queueMu.Unlock()
	}
	return nil
}

// drain delivers queued batches until the queue is empty. Only one caller
// drains at a time; the others leave their batches to it.
func (e *Executor) drain() {
	e.queueMu.Lock()
	if e.dispatching {
		e.queueMu.Unlock()
		return
	}
	e.dispatching = true
	e.queueMu.Unlock()

	defer func() {
		if recovered := recover(); recovered != nil {
			e.queueMu.Lock()
			e.dispatching = false
			e.queueMu.Unlock()
			panic(recovered)
		}
	}()

	for {
		e.queueMu.Lock()
		if len(e.pending) == 0 {
			e.dispatching = false
			e.queueMu.Unlock()
			return
		}
		batch := e.pending[0]
		e.pending[0] = pendingBatch{}
		e.pending = e.pending[1:]
		e.queueMu.Unlock()

		e.dispatch(batch.ctx, batch.events)
	}
}

func (e *Executor) dispatch(ctx context.Context, events []Event) {
	if len(events) == 0 {
		return
	}
	for _, evt := range events {
		e.feed.Send(evt)
	}
	e.sinksMu.RLock()
	sinks := append([]EventSink(nil), e.sinks...)
	hook := e.onSinkErr
	e.sinksMu.RUnlock()
	for _, sink := range sinks {
		if err := sink.HandleEvents(ctx, cloneEvents(events)); err != nil && hook != nil {
			hook(ctx, err)
		}
	}
}

func (e *Executor) transactionFrom(ctx context.Context) *transaction {
	if ctx == nil {
		return nil
	}
	tx, ok := ctx.Value(transactionContextKey{}).(*transaction)
	if !ok || tx == nil || tx.executor != e {
		return nil
	}
	return tx
}

func (e *Executor) now() time.Time {
	if e != nil && e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

func (tx *transaction) nested(ctx context.Context, fn func(ctx context.Context) error) error {
	undoMark, eventMark := len(tx.undo), len(tx.events)
	if err := fn(ctx); err != nil {
		tx.revertTo(undoMark, eventMark)
		return err
	}
	return nil
}

func (tx *transaction) revertTo(undoMark int, eventMark int) {
	for i := len(tx.undo) - 1; i >= undoMark; i-- {
		if tx.undo[i] != nil {
			tx.undo[i]()
		}
	}
	tx.undo = tx.undo[:undoMark]
	tx.events = tx.events[:eventMark]
}

func transactionFromContext(ctx context.Context) *transaction {
	if ctx == nil {
		return nil
	}
	tx, _ := ctx.Value(transactionContextKey{}).(*transaction)
	return tx
}

// InTransaction reports whether ctx carries an active transaction.
func InTransaction(ctx context.Context) bool {
	tx := transactionFromContext(ctx)
	return tx != nil && !tx.readOnly
}

// OnRevert registers undo for the transaction carried by ctx. It returns an
// error outside a writable transaction so mutations never escape rollback.
func OnRevert(ctx context.Context, undo func()) error {
	tx := transactionFromContext(ctx)
	if tx == nil || tx.readOnly {
		return fmt.Errorf("core: state mutation outside a transaction")
	}
	tx.undo = append(tx.undo, undo)
	return nil
}

// Emit buffers evt until the transaction carried by ctx commits.
func Emit(ctx context.Context, evt Event) error {
	tx := transactionFromContext(ctx)
	if tx == nil || tx.readOnly {
		return fmt.Errorf("core: event emitted outside a transaction")
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = tx.executor.now()
	}
	tx.events = append(tx.events, evt)
	return nil
}
