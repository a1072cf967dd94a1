package gocommand

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goliatone/go-command"
	"github.com/goliatone/go-custody/asset"
	custodycommand "github.com/goliatone/go-custody/command"
	"github.com/goliatone/go-custody/core"
	custodyquery "github.com/goliatone/go-custody/query"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
)

var (
	principal = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	holder    = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	assetAddr = common.HexToAddress("0x00000000000000000000000000000000000000c1")
)

type invalidMessage struct{}

func (invalidMessage) Type() string { return "" }

type dispatchMessage struct {
	ID string
}

func (dispatchMessage) Type() string { return "custody.command.adapter_test" }

type queueMessage struct{}

func (queueMessage) Type() string { return "custody.command.queue_test" }

func TestValidateMessageContract(t *testing.T) {
	valid := custodycommand.PauseMessage{Request: core.PauseRequest{Caller: principal}}
	if err := ValidateMessageContract(valid); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := ValidateMessageContract(invalidMessage{}); err == nil {
		t.Fatalf("expected empty type to fail contract validation")
	}
	if err := ValidateMessageContract(custodycommand.PauseMessage{}); err == nil {
		t.Fatalf("expected Validate() failure to bubble")
	}
	if err := ValidateMessageContract(struct{}{}); err == nil {
		t.Fatalf("expected untyped message to fail")
	}
}

func TestRegistryAndDispatchWiring(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	executed := 0
	customResolverCalled := 0

	cmd := command.CommandFunc[dispatchMessage](func(context.Context, dispatchMessage) error {
		executed++
		return nil
	})

	subscription, err := RegisterAndSubscribe(adapter, cmd)
	if err != nil {
		t.Fatalf("register and subscribe: %v", err)
	}
	defer subscription.Unsubscribe()
	if err := adapter.AddResolver("custom", func(any, command.CommandMeta, *command.Registry) error {
		customResolverCalled++
		return nil
	}); err != nil {
		t.Fatalf("add resolver: %v", err)
	}
	if !adapter.HasResolver("custom") {
		t.Fatalf("expected custom resolver to be registered")
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}
	if customResolverCalled == 0 {
		t.Fatalf("expected resolver hook to run during initialization")
	}

	if err := Dispatch(context.Background(), dispatchMessage{ID: "m1"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if executed != 1 {
		t.Fatalf("expected command execution count=1, got %d", executed)
	}
}

func TestQueueResolverHookWiring(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	queueRegistry := jobqueuecommand.NewRegistry()

	cmd := command.CommandFunc[queueMessage](func(context.Context, queueMessage) error { return nil })

	if err := adapter.AddQueueResolver("queue", queueRegistry); err != nil {
		t.Fatalf("add queue resolver: %v", err)
	}
	if err := adapter.AddQueueResolver("missing", nil); err == nil {
		t.Fatalf("expected nil queue registry to fail")
	}
	if err := adapter.RegisterCommand(cmd); err != nil {
		t.Fatalf("register command: %v", err)
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	if _, ok := queueRegistry.Get("custody.command.queue_test"); !ok {
		t.Fatalf("expected command to be mirrored into queue registry")
	}
}

func TestRegisterCustodyHandlers_DispatchesToService(t *testing.T) {
	ctx := context.Background()
	collection, err := asset.NewCollection(core.NewExecutor(), assetAddr)
	if err != nil {
		t.Fatalf("new collection: %v", err)
	}
	cfg := core.DefaultConfig()
	cfg.Registry = []core.RegistryEntryConfig{{ID: 7, Amount: "5000"}}
	svc, err := core.NewService(cfg, core.WithPrincipal(principal), core.WithAssetContract(collection))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	adapter := NewRegistryAdapter(command.NewRegistry())
	subscriptions, err := RegisterCustodyHandlers(adapter, svc, nil)
	if err != nil {
		t.Fatalf("register custody handlers: %v", err)
	}
	defer subscriptions.Unsubscribe()
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	if err := collection.Mint(ctx, holder, 7); err != nil {
		t.Fatalf("mint asset: %v", err)
	}
	if err := collection.Approve(ctx, holder, svc.Vault().Address(), 7); err != nil {
		t.Fatalf("approve asset: %v", err)
	}
	if err := Dispatch(ctx, custodycommand.DepositMessage{Request: core.DepositRequest{
		Caller:       holder,
		CollateralID: 7,
		AssetAddress: assetAddr,
	}}); err != nil {
		t.Fatalf("dispatch deposit: %v", err)
	}

	balance, err := Query[custodyquery.BalanceMessage, core.Amount](ctx, custodyquery.BalanceMessage{Account: holder})
	if err != nil {
		t.Fatalf("query balance: %v", err)
	}
	if balance.Uint64() != 5000 {
		t.Fatalf("expected balance 5000, got %s", balance.Dec())
	}
	present, err := Query[custodyquery.IsDepositedMessage, bool](ctx, custodyquery.IsDepositedMessage{CollateralID: 7})
	if err != nil || !present {
		t.Fatalf("expected id 7 in custody, got %v (%v)", present, err)
	}

	if err := Dispatch(ctx, custodycommand.PauseMessage{Request: core.PauseRequest{Caller: holder}}); err == nil {
		t.Fatalf("expected pause by holder to fail")
	}
	if svc.Paused(ctx) {
		t.Fatalf("expected ledger to stay live")
	}
}

func TestRegisterCustodyHandlers_RequiresBackend(t *testing.T) {
	if _, err := RegisterCustodyHandlers(NewRegistryAdapter(nil), nil, nil); err == nil {
		t.Fatalf("expected missing backend to fail")
	}
	var adapter *RegistryAdapter
	if _, err := RegisterCustodyHandlers(adapter, nil, nil); err == nil {
		t.Fatalf("expected nil adapter to fail")
	}
}
