package adapters_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goliatone/go-command"
	"github.com/goliatone/go-custody/adapters/gocommand"
	"github.com/goliatone/go-custody/adapters/gojob"
	"github.com/goliatone/go-custody/adapters/gologger"
	"github.com/goliatone/go-custody/asset"
	custodycommand "github.com/goliatone/go-custody/command"
	"github.com/goliatone/go-custody/core"
	sqlstore "github.com/goliatone/go-custody/store/sql"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	glog "github.com/goliatone/go-logger/glog"
)

var (
	principal = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	holder    = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	assetAddr = common.HexToAddress("0x00000000000000000000000000000000000000c1")
)

func TestRuntimeCompatibility_GoJobGoCommandGoLogger(t *testing.T) {
	logger := &compatLogger{}
	provider := &compatProvider{logger: logger}

	_, _, jobProvider, jobLogger := gologger.ResolveForJob("custody", provider, nil)
	if jobProvider == nil || jobLogger == nil {
		t.Fatalf("expected go-job logger bridges")
	}

	queueRegistry := jobqueuecommand.NewRegistry()
	commandAdapter := gocommand.NewRegistryAdapter(command.NewRegistry())
	if err := commandAdapter.AddQueueResolver("queue", queueRegistry); err != nil {
		t.Fatalf("add queue resolver: %v", err)
	}
	if err := commandAdapter.RegisterCommand(custodycommand.NewPauseCommand(nil)); err != nil {
		t.Fatalf("register command: %v", err)
	}
	if err := commandAdapter.Initialize(); err != nil {
		t.Fatalf("initialize command registry: %v", err)
	}
	if _, ok := queueRegistry.Get(custodycommand.TypePause); !ok {
		t.Fatalf("expected command resolver hook to mirror command into go-job queue registry")
	}
}

func TestRuntimeCompatibility_DispatchedDepositProjectsThroughQueue(t *testing.T) {
	ctx := context.Background()
	memQueue := &memoryQueue{}
	logger := &compatLogger{}

	collection, err := asset.NewCollection(core.NewExecutor(), assetAddr)
	if err != nil {
		t.Fatalf("new collection: %v", err)
	}
	cfg := core.DefaultConfig()
	cfg.Registry = []core.RegistryEntryConfig{{ID: 3, Amount: "750"}}
	svc, err := core.NewService(cfg,
		core.WithPrincipal(principal),
		core.WithAssetContract(collection),
		core.WithLogger(logger),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.AddEventSink(gojob.NewEventJobSink(memQueue))
	svc.AddEventSink(gologger.NewEventLogSink("custody", nil, logger))

	client, err := sqlstore.Open(ctx, core.PersistenceConfig{Driver: "sqlite"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = client.Close() }()
	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client, svc.Deployment(), nil)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}

	adapter := gocommand.NewRegistryAdapter(command.NewRegistry())
	subscriptions, err := gocommand.RegisterCustodyHandlers(adapter, svc, factory.EventStore())
	if err != nil {
		t.Fatalf("register custody handlers: %v", err)
	}
	defer subscriptions.Unsubscribe()
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	if err := collection.Mint(ctx, holder, 3); err != nil {
		t.Fatalf("mint asset: %v", err)
	}
	if err := collection.Approve(ctx, holder, svc.Vault().Address(), 3); err != nil {
		t.Fatalf("approve asset: %v", err)
	}
	if err := gocommand.Dispatch(ctx, custodycommand.DepositMessage{Request: core.DepositRequest{
		Caller:       holder,
		CollateralID: 3,
		AssetAddress: assetAddr,
	}}); err != nil {
		t.Fatalf("dispatch deposit: %v", err)
	}

	handler := gojob.NewProjectionHandler(factory.Projector(), gojob.RetryPolicy{MaxAttempts: 3}, logger)
	for memQueue.Len() > 0 {
		if err := handler.Next(ctx, memQueue); err != nil {
			t.Fatalf("project queued event: %v", err)
		}
	}
	if memQueue.nacked != 0 {
		t.Fatalf("expected every projection to ack, %d nacked", memQueue.nacked)
	}

	balance, err := factory.StateReader().BalanceOf(ctx, holder)
	if err != nil {
		t.Fatalf("projected balance: %v", err)
	}
	if balance.Uint64() != 750 {
		t.Fatalf("expected projected balance 750, got %s", balance.Dec())
	}
	present, err := factory.StateReader().IsDeposited(ctx, 3)
	if err != nil || !present {
		t.Fatalf("expected id 3 projected into custody, got %v (%v)", present, err)
	}
	if logger.infoCount() == 0 {
		t.Fatalf("expected committed events to be logged")
	}
}

type memoryQueue struct {
	mu      sync.Mutex
	pending []*job.ExecutionMessage
	nacked  int
}

func (q *memoryQueue) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, msg)
	return nil
}

func (q *memoryQueue) Dequeue(context.Context) (queue.Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil, fmt.Errorf("memory queue is empty")
	}
	msg := q.pending[0]
	q.pending = q.pending[1:]
	return &memoryDelivery{queue: q, msg: msg}, nil
}

func (q *memoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

type memoryDelivery struct {
	queue *memoryQueue
	msg   *job.ExecutionMessage
}

func (d *memoryDelivery) Message() *job.ExecutionMessage { return d.msg }

func (d *memoryDelivery) Ack(context.Context) error { return nil }

func (d *memoryDelivery) Nack(ctx context.Context, opts queue.NackOptions) error {
	d.queue.mu.Lock()
	d.queue.nacked++
	d.queue.mu.Unlock()
	if opts.Requeue {
		return d.queue.Enqueue(ctx, d.msg)
	}
	return nil
}

type compatProvider struct {
	logger glog.Logger
}

func (p *compatProvider) GetLogger(string) glog.Logger {
	return p.logger
}

type compatLogger struct {
	mu    sync.Mutex
	infos int
}

func (l *compatLogger) infoCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.infos
}

func (l *compatLogger) Trace(string, ...any) {}
func (l *compatLogger) Debug(string, ...any) {}
func (l *compatLogger) Warn(string, ...any)  {}
func (l *compatLogger) Error(string, ...any) {}
func (l *compatLogger) Fatal(string, ...any) {}

func (l *compatLogger) Info(string, ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos++
}

func (l *compatLogger) WithContext(context.Context) glog.Logger { return l }
