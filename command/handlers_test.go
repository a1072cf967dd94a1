package command

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-custody/core"
	goerrors "github.com/goliatone/go-errors"
)

var (
	caller  = common.HexToAddress("0x0000000000000000000000000000000000000011")
	account = common.HexToAddress("0x0000000000000000000000000000000000000022")
	assetID = common.HexToAddress("0x0000000000000000000000000000000000000033")
)

type stubMutatingService struct {
	calls    []string
	lastRole core.RoleRequest
	err      error
}

func (s *stubMutatingService) record(name string) error {
	s.calls = append(s.calls, name)
	return s.err
}

func (s *stubMutatingService) Deposit(_ context.Context, req core.DepositRequest) (core.CustodyResult, error) {
	if err := s.record("deposit"); err != nil {
		return core.CustodyResult{}, err
	}
	return core.CustodyResult{CollateralID: req.CollateralID, ClaimAmount: core.NewAmount(10), Account: req.Caller}, nil
}

func (s *stubMutatingService) Withdraw(_ context.Context, req core.WithdrawRequest) (core.CustodyResult, error) {
	if err := s.record("withdraw"); err != nil {
		return core.CustodyResult{}, err
	}
	return core.CustodyResult{CollateralID: req.CollateralID, ClaimAmount: core.NewAmount(10), Account: req.Caller}, nil
}

func (s *stubMutatingService) Transfer(context.Context, core.TransferRequest) error {
	return s.record("transfer")
}

func (s *stubMutatingService) TransferFrom(context.Context, core.TransferFromRequest) error {
	return s.record("transfer_from")
}

func (s *stubMutatingService) Approve(context.Context, core.AllowanceRequest) error {
	return s.record("approve")
}

func (s *stubMutatingService) IncreaseAllowance(context.Context, core.AllowanceRequest) error {
	return s.record("increase_allowance")
}

func (s *stubMutatingService) DecreaseAllowance(context.Context, core.AllowanceRequest) error {
	return s.record("decrease_allowance")
}

func (s *stubMutatingService) Mint(context.Context, core.MintRequest) error {
	return s.record("mint")
}

func (s *stubMutatingService) BurnFrom(context.Context, core.BurnFromRequest) error {
	return s.record("burn_from")
}

func (s *stubMutatingService) Pause(context.Context, core.PauseRequest) error {
	return s.record("pause")
}

func (s *stubMutatingService) Unpause(context.Context, core.PauseRequest) error {
	return s.record("unpause")
}

func (s *stubMutatingService) GrantRole(_ context.Context, req core.RoleRequest) error {
	s.lastRole = req
	return s.record("grant_role")
}

func (s *stubMutatingService) RevokeRole(_ context.Context, req core.RoleRequest) error {
	s.lastRole = req
	return s.record("revoke_role")
}

func (s *stubMutatingService) RenounceRole(_ context.Context, req core.RoleRequest) error {
	s.lastRole = req
	return s.record("renounce_role")
}

var _ MutatingService = (*stubMutatingService)(nil)

func TestDepositCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	svc := &stubMutatingService{}
	cmd := NewDepositCommand(svc)
	collector := gocmd.NewResult[core.CustodyResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	msg := DepositMessage{Request: core.DepositRequest{Caller: caller, CollateralID: 4, AssetAddress: assetID}}
	if err := msg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := cmd.Execute(ctx, msg); err != nil {
		t.Fatalf("execute deposit: %v", err)
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.CollateralID != 4 || result.Account != caller || result.ClaimAmount.Uint64() != 10 {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestWithdrawCommand_PropagatesServiceError(t *testing.T) {
	failure := errors.New("withdraw failed")
	svc := &stubMutatingService{err: failure}
	err := NewWithdrawCommand(svc).Execute(context.Background(), WithdrawMessage{Request: core.WithdrawRequest{Caller: caller}})
	if !errors.Is(err, failure) {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestLedgerCommands_DelegateToService(t *testing.T) {
	svc := &stubMutatingService{}
	ctx := context.Background()
	amount := core.NewAmount(5)
	allowance := core.AllowanceRequest{Caller: caller, Spender: account, Amount: amount}
	role := core.RoleRequest{Caller: caller, Role: core.RoleMint, Account: account}

	steps := []func() error{
		func() error {
			return NewTransferCommand(svc).Execute(ctx, TransferMessage{Request: core.TransferRequest{Caller: caller, To: account, Amount: amount}})
		},
		func() error {
			return NewTransferFromCommand(svc).Execute(ctx, TransferFromMessage{Request: core.TransferFromRequest{Caller: caller, From: account, To: caller, Amount: amount}})
		},
		func() error { return NewApproveCommand(svc).Execute(ctx, ApproveMessage{Request: allowance}) },
		func() error { return NewIncreaseAllowanceCommand(svc).Execute(ctx, IncreaseAllowanceMessage{Request: allowance}) },
		func() error { return NewDecreaseAllowanceCommand(svc).Execute(ctx, DecreaseAllowanceMessage{Request: allowance}) },
		func() error {
			return NewMintCommand(svc).Execute(ctx, MintMessage{Request: core.MintRequest{Caller: caller, To: account, Amount: amount}})
		},
		func() error {
			return NewBurnFromCommand(svc).Execute(ctx, BurnFromMessage{Request: core.BurnFromRequest{Caller: caller, From: account, Amount: amount}})
		},
		func() error { return NewPauseCommand(svc).Execute(ctx, PauseMessage{Request: core.PauseRequest{Caller: caller}}) },
		func() error { return NewUnpauseCommand(svc).Execute(ctx, UnpauseMessage{Request: core.PauseRequest{Caller: caller}}) },
		func() error { return NewGrantRoleCommand(svc).Execute(ctx, GrantRoleMessage{Request: role}) },
		func() error { return NewRevokeRoleCommand(svc).Execute(ctx, RevokeRoleMessage{Request: role}) },
	}
	for idx, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", idx, err)
		}
	}

	want := []string{
		"transfer", "transfer_from", "approve", "increase_allowance", "decrease_allowance",
		"mint", "burn_from", "pause", "unpause", "grant_role", "revoke_role",
	}
	if len(svc.calls) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), svc.calls)
	}
	for idx, name := range want {
		if svc.calls[idx] != name {
			t.Fatalf("call %d: expected %s, got %s", idx, name, svc.calls[idx])
		}
	}
	if svc.lastRole.Role != core.RoleMint || svc.lastRole.Account != account {
		t.Fatalf("unexpected role payload: %#v", svc.lastRole)
	}
}

func TestMessages_ValidateReturnsRichError(t *testing.T) {
	cases := map[string]interface{ Validate() error }{
		"deposit without caller":  DepositMessage{Request: core.DepositRequest{AssetAddress: assetID}},
		"deposit without asset":   DepositMessage{Request: core.DepositRequest{Caller: caller}},
		"transfer without to":     TransferMessage{Request: core.TransferRequest{Caller: caller}},
		"mint zero amount":        MintMessage{Request: core.MintRequest{Caller: caller, To: account}},
		"increase zero amount":    IncreaseAllowanceMessage{Request: core.AllowanceRequest{Caller: caller, Spender: account}},
		"renounce for other":      RenounceRoleMessage{Request: core.RoleRequest{Caller: caller, Role: core.RolePause, Account: account}},
		"grant without account":   GrantRoleMessage{Request: core.RoleRequest{Caller: caller, Role: core.RolePause}},
		"burn without from":       BurnFromMessage{Request: core.BurnFromRequest{Caller: caller, Amount: core.NewAmount(1)}},
		"pause without caller":    PauseMessage{},
		"withdraw without caller": WithdrawMessage{},
	}
	for name, msg := range cases {
		err := msg.Validate()
		if err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
		var rich *goerrors.Error
		if !goerrors.As(err, &rich) {
			t.Fatalf("%s: expected go-errors envelope, got %T", name, err)
		}
		if rich.Category != goerrors.CategoryValidation {
			t.Fatalf("%s: expected validation category, got %q", name, rich.Category)
		}
		if rich.TextCode != core.CustodyErrorBadInput {
			t.Fatalf("%s: expected %q text code, got %q", name, core.CustodyErrorBadInput, rich.TextCode)
		}
	}

	approve := ApproveMessage{Request: core.AllowanceRequest{Caller: caller, Spender: account}}
	if err := approve.Validate(); err != nil {
		t.Fatalf("expected zero approval to be valid, got %v", err)
	}
	renounce := RenounceRoleMessage{Request: core.RoleRequest{Caller: caller, Role: core.RolePause, Account: caller}}
	if err := renounce.Validate(); err != nil {
		t.Fatalf("expected self renounce to be valid, got %v", err)
	}
}

func TestDepositCommand_NilServiceReturnsRichError(t *testing.T) {
	var cmd *DepositCommand
	err := cmd.Execute(context.Background(), DepositMessage{})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}

	if err := NewRenounceRoleCommand(nil).Execute(context.Background(), RenounceRoleMessage{}); err == nil {
		t.Fatalf("expected nil ledger service to fail")
	}
}
