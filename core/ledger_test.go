package core

import (
	"context"
	"strings"
	"testing"
)

func newTestLedger(t *testing.T) (*ClaimLedger, *Executor) {
	t.Helper()
	executor := NewExecutor()
	ledger, err := NewClaimLedger(context.Background(), executor, testAddress(0xaa), testPrincipal, "SimpleFraction", "SIMP")
	if err != nil {
		t.Fatalf("new claim ledger: %v", err)
	}
	return ledger, executor
}

func TestClaimLedger_DeployGrantsPrincipalRoles(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	for _, role := range []Role{RoleAdmin, RoleMint, RolePause} {
		if !ledger.HasRole(ctx, role, testPrincipal) {
			t.Fatalf("expected principal to hold %s", RoleName(role))
		}
	}
	if ledger.Decimals() != 18 || ledger.Symbol() != "SIMP" || ledger.Name() != "SimpleFraction" {
		t.Fatalf("unexpected metadata %q %q %d", ledger.Name(), ledger.Symbol(), ledger.Decimals())
	}
}

func TestClaimLedger_MintRequiresRole(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	err := ledger.Mint(ctx, testAlice, testAlice, NewAmount(5))
	if !HasErrorCode(err, CustodyErrorMissingRole) {
		t.Fatalf("expected missing role error, got %v", err)
	}
	if ErrorKindOf(err) != ErrorKindAuthorization {
		t.Fatalf("expected authorization kind, got %q", ErrorKindOf(err))
	}
	if !strings.Contains(err.Error(), "claim ledger: must have mint role to mint") {
		t.Fatalf("unexpected error text %q", err.Error())
	}

	if err := ledger.Mint(ctx, testPrincipal, testAlice, NewAmount(5)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if supply := ledger.TotalSupply(ctx); supply.Uint64() != 5 {
		t.Fatalf("expected supply 5, got %s", supply.Dec())
	}
}

func TestClaimLedger_TransferAndAllowances(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	if err := ledger.Mint(ctx, testPrincipal, testAlice, NewAmount(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := ledger.Transfer(ctx, testAlice, testBob, NewAmount(30)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if bal := ledger.BalanceOf(ctx, testBob); bal.Uint64() != 30 {
		t.Fatalf("expected bob balance 30, got %s", bal.Dec())
	}

	err := ledger.Transfer(ctx, testBob, testAlice, NewAmount(31))
	if !HasErrorCode(err, CustodyErrorInsufficientClaimBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}

	err = ledger.TransferFrom(ctx, testBob, testAlice, testBob, NewAmount(10))
	if !HasErrorCode(err, CustodyErrorInsufficientClaimAllowance) {
		t.Fatalf("expected insufficient allowance, got %v", err)
	}
	if err := ledger.Approve(ctx, testAlice, testBob, NewAmount(10)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := ledger.IncreaseAllowance(ctx, testAlice, testBob, NewAmount(5)); err != nil {
		t.Fatalf("increase allowance: %v", err)
	}
	if err := ledger.DecreaseAllowance(ctx, testAlice, testBob, NewAmount(3)); err != nil {
		t.Fatalf("decrease allowance: %v", err)
	}
	if allowance := ledger.Allowance(ctx, testAlice, testBob); allowance.Uint64() != 12 {
		t.Fatalf("expected allowance 12, got %s", allowance.Dec())
	}
	if err := ledger.DecreaseAllowance(ctx, testAlice, testBob, NewAmount(13)); ErrorKindOf(err) != ErrorKindValidation {
		t.Fatalf("expected decrease below zero to fail validation, got %v", err)
	}
	if err := ledger.TransferFrom(ctx, testBob, testAlice, testBob, NewAmount(12)); err != nil {
		t.Fatalf("transfer from: %v", err)
	}
	if allowance := ledger.Allowance(ctx, testAlice, testBob); !allowance.IsZero() {
		t.Fatalf("expected allowance to be spent, got %s", allowance.Dec())
	}
	if bal := ledger.BalanceOf(ctx, testAlice); bal.Uint64() != 58 {
		t.Fatalf("expected alice balance 58, got %s", bal.Dec())
	}
	if err := ledger.Transfer(ctx, testAlice, ZeroAddress, NewAmount(1)); ErrorKindOf(err) != ErrorKindValidation {
		t.Fatalf("expected zero recipient to be rejected, got %v", err)
	}
}

func TestClaimLedger_PauseBlocksBalanceMutations(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	if err := ledger.Mint(ctx, testPrincipal, testAlice, NewAmount(10)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := ledger.Pause(ctx, testAlice); !HasErrorCode(err, CustodyErrorMissingRole) {
		t.Fatalf("expected pause without role to fail, got %v", err)
	}
	if err := ledger.Pause(ctx, testPrincipal); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := ledger.Pause(ctx, testPrincipal); !HasErrorCode(err, CustodyErrorPaused) {
		t.Fatalf("expected second pause to fail, got %v", err)
	}

	if err := ledger.Transfer(ctx, testAlice, testBob, NewAmount(1)); ErrorKindOf(err) != ErrorKindState {
		t.Fatalf("expected transfer while paused to fail with state error, got %v", err)
	}
	if err := ledger.Mint(ctx, testPrincipal, testAlice, NewAmount(1)); !HasErrorCode(err, CustodyErrorPaused) {
		t.Fatalf("expected mint while paused to fail, got %v", err)
	}
	if err := ledger.Approve(ctx, testAlice, testBob, NewAmount(1)); err != nil {
		t.Fatalf("expected approve while paused to succeed, got %v", err)
	}

	if err := ledger.Unpause(ctx, testPrincipal); err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if err := ledger.Unpause(ctx, testPrincipal); !HasErrorCode(err, CustodyErrorNotPaused) {
		t.Fatalf("expected unpause of live ledger to fail, got %v", err)
	}
	if err := ledger.Transfer(ctx, testAlice, testBob, NewAmount(1)); err != nil {
		t.Fatalf("transfer after unpause: %v", err)
	}
}

func TestClaimLedger_BurnFromRequiresRoleAndAllowance(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	if err := ledger.Mint(ctx, testPrincipal, testAlice, NewAmount(10)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := ledger.BurnFrom(ctx, testBob, testAlice, NewAmount(1)); !HasErrorCode(err, CustodyErrorMissingRole) {
		t.Fatalf("expected burn without mint role to fail, got %v", err)
	}
	if err := ledger.BurnFrom(ctx, testPrincipal, testAlice, NewAmount(4)); !HasErrorCode(err, CustodyErrorInsufficientClaimAllowance) {
		t.Fatalf("expected burn without allowance to fail, got %v", err)
	}
	if err := ledger.Approve(ctx, testAlice, testPrincipal, NewAmount(4)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := ledger.BurnFrom(ctx, testPrincipal, testAlice, NewAmount(4)); err != nil {
		t.Fatalf("burn from: %v", err)
	}
	if supply := ledger.TotalSupply(ctx); supply.Uint64() != 6 {
		t.Fatalf("expected supply 6, got %s", supply.Dec())
	}
}

func TestClaimLedger_RoleAdministration(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	if err := ledger.GrantRole(ctx, testAlice, RoleMint, testBob); !HasErrorCode(err, CustodyErrorMissingRole) {
		t.Fatalf("expected grant without admin to fail, got %v", err)
	}
	if err := ledger.GrantRole(ctx, testPrincipal, RolePause, testAlice); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if !ledger.HasRole(ctx, RolePause, testAlice) {
		t.Fatalf("expected alice to hold pause")
	}
	if err := ledger.RenounceRole(ctx, testPrincipal, RolePause, testAlice); ErrorKindOf(err) != ErrorKindValidation {
		t.Fatalf("expected renounce for another account to fail, got %v", err)
	}
	if err := ledger.RevokeRole(ctx, testPrincipal, RolePause, testAlice); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ledger.HasRole(ctx, RolePause, testAlice) {
		t.Fatalf("expected alice pause role to be revoked")
	}

	if err := ledger.RenounceRole(ctx, testPrincipal, RoleAdmin, testPrincipal); err != nil {
		t.Fatalf("renounce admin: %v", err)
	}
	if err := ledger.GrantRole(ctx, testPrincipal, RoleAdmin, testPrincipal); !HasErrorCode(err, CustodyErrorMissingRole) {
		t.Fatalf("expected grants to be impossible without an admin, got %v", err)
	}
	if members := ledger.RoleMembers(ctx, RoleAdmin); len(members) != 0 {
		t.Fatalf("expected no admin members, got %v", members)
	}
}

func TestClaimLedger_EmitsTransferAndRoleEvents(t *testing.T) {
	ledger, executor := newTestLedger(t)
	ctx := context.Background()
	var events []Event
	executor.AddSink(EventSinkFunc(func(_ context.Context, batch []Event) error {
		events = append(events, batch...)
		return nil
	}))

	if err := ledger.Mint(ctx, testPrincipal, testAlice, NewAmount(3)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := ledger.GrantRole(ctx, testPrincipal, RoleMint, testPrincipal); err != nil {
		t.Fatalf("grant held role: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	evt := events[0]
	if evt.Type != EventClaimTransfer || evt.From != ZeroAddress || evt.To != testAlice || evt.Amount.Uint64() != 3 {
		t.Fatalf("unexpected mint event %#v", evt)
	}
}
