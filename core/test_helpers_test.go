package core

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

func testAddress(n byte) Address {
	var out Address
	out[common.AddressLength-1] = n
	out[0] = 0xc0
	return out
}

var (
	testPrincipal = testAddress(1)
	testAlice     = testAddress(2)
	testBob       = testAddress(3)
	testAssetAddr = testAddress(9)
)

// testAsset is a minimal collection covering what the vault needs.
type testAsset struct {
	address   Address
	executor  *Executor
	owners    map[CollateralID]Address
	approvals map[CollateralID]Address
	receivers map[Address]NonFungibleReceiver
}

func newTestAsset(executor *Executor) *testAsset {
	return &testAsset{
		address:   testAssetAddr,
		executor:  executor,
		owners:    map[CollateralID]Address{},
		approvals: map[CollateralID]Address{},
		receivers: map[Address]NonFungibleReceiver{},
	}
}

func (a *testAsset) Address() Address    { return a.address }
func (a *testAsset) Executor() *Executor { return a.executor }

func (a *testAsset) RegisterReceiver(ctx context.Context, address Address, receiver NonFungibleReceiver) error {
	return a.executor.Execute(ctx, func(ctx context.Context) error {
		if _, bound := a.receivers[address]; bound {
			return fmt.Errorf("test asset: receiver for %s already registered", address.Hex())
		}
		return PutState(ctx, a.receivers, address, receiver, true)
	})
}

func (a *testAsset) mint(to Address, id CollateralID) {
	a.owners[id] = to
}

func (a *testAsset) approve(id CollateralID, operator Address) {
	a.approvals[id] = operator
}

func (a *testAsset) OwnerOf(_ context.Context, id CollateralID) (Address, error) {
	owner, ok := a.owners[id]
	if !ok {
		return ZeroAddress, fmt.Errorf("test asset: token %s not found", id)
	}
	return owner, nil
}

func (a *testAsset) GetApproved(_ context.Context, id CollateralID) (Address, error) {
	return a.approvals[id], nil
}

func (a *testAsset) IsApprovedForAll(context.Context, Address, Address) bool {
	return false
}

func (a *testAsset) SafeTransferFrom(ctx context.Context, operator Address, from Address, to Address, id CollateralID, data []byte) error {
	return a.executor.Execute(ctx, func(ctx context.Context) error {
		if a.owners[id] != from {
			return fmt.Errorf("test asset: %s does not own %s", from.Hex(), id)
		}
		if operator != from && a.approvals[id] != operator {
			return fmt.Errorf("test asset: operator not approved")
		}
		if err := PutState(ctx, a.approvals, id, ZeroAddress, false); err != nil {
			return err
		}
		if err := PutState(ctx, a.owners, id, to, true); err != nil {
			return err
		}
		receiver := a.receivers[to]
		if receiver == nil {
			return nil
		}
		return a.executor.Callout(ctx, func(ctx context.Context) error {
			return receiver.OnNonFungibleReceived(ctx, operator, from, id, data)
		})
	})
}

func testRegistryConfig() []RegistryEntryConfig {
	return []RegistryEntryConfig{
		{ID: 0, Amount: "10000000000000000"},
		{ID: 1, Amount: "20000000000000000"},
		{ID: 2, Amount: "1000000000000000000"},
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Registry = testRegistryConfig()
	return cfg
}

func newTestService(opts ...Option) (*Service, *testAsset, error) {
	executor := NewExecutor()
	asset := newTestAsset(executor)
	options := append([]Option{
		WithPrincipal(testPrincipal),
		WithAssetContract(asset),
	}, opts...)
	svc, err := NewService(testConfig(), options...)
	return svc, asset, err
}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}
