package core

import (
	"context"
	"fmt"
	"strings"
)

const (
	claimLedgerComponent = "claim ledger"
	ClaimDecimals        = uint8(18)
)

// ClaimLedger is the fungible claim token. Mint and pause rights are
// role-gated; the vault is expected to be the only long-term minter.
type ClaimLedger struct {
	name       string
	symbol     string
	address    Address
	executor   *Executor
	access     *AccessControl
	supply     Amount
	balances   map[Address]Amount
	allowances map[Address]map[Address]Amount
	paused     bool
}

// NewClaimLedger deploys a ledger at address and grants admin, mint and
// pause roles to principal.
func NewClaimLedger(
	ctx context.Context,
	executor *Executor,
	address Address,
	principal Address,
	name string,
	symbol string,
) (*ClaimLedger, error) {
	if executor == nil {
		return nil, fmt.Errorf("claim ledger: executor is required")
	}
	if address == ZeroAddress {
		return nil, zeroAddressError(claimLedgerComponent, "address")
	}
	if principal == ZeroAddress {
		return nil, zeroAddressError(claimLedgerComponent, "principal")
	}
	name = strings.TrimSpace(name)
	symbol = strings.TrimSpace(symbol)
	if name == "" || symbol == "" {
		return nil, badInputError("claim ledger: name and symbol are required", nil)
	}
	ledger := &ClaimLedger{
		name:       name,
		symbol:     symbol,
		address:    address,
		executor:   executor,
		access:     newAccessControl(claimLedgerComponent, address),
		balances:   map[Address]Amount{},
		allowances: map[Address]map[Address]Amount{},
	}
	err := executor.Execute(ctx, func(ctx context.Context) error {
		for _, role := range []Role{RoleAdmin, RoleMint, RolePause} {
			if err := ledger.access.grantUnchecked(ctx, principal, role, principal); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

func (l *ClaimLedger) Name() string     { return l.name }
func (l *ClaimLedger) Symbol() string   { return l.symbol }
func (l *ClaimLedger) Decimals() uint8  { return ClaimDecimals }
func (l *ClaimLedger) Address() Address { return l.address }

func (l *ClaimLedger) TotalSupply(ctx context.Context) Amount {
	var out Amount
	l.view(ctx, func() { out = l.supply })
	return out
}

func (l *ClaimLedger) BalanceOf(ctx context.Context, account Address) Amount {
	var out Amount
	l.view(ctx, func() { out = l.balances[account] })
	return out
}

func (l *ClaimLedger) Allowance(ctx context.Context, owner Address, spender Address) Amount {
	var out Amount
	l.view(ctx, func() { out = l.allowances[owner][spender] })
	return out
}

func (l *ClaimLedger) Paused(ctx context.Context) bool {
	var out bool
	l.view(ctx, func() { out = l.paused })
	return out
}

func (l *ClaimLedger) HasRole(ctx context.Context, role Role, account Address) bool {
	var out bool
	l.view(ctx, func() { out = l.access.HasRole(role, account) })
	return out
}

func (l *ClaimLedger) RoleAdmin(role Role) Role {
	return l.access.RoleAdmin(role)
}

func (l *ClaimLedger) RoleMembers(ctx context.Context, role Role) []Address {
	var out []Address
	l.view(ctx, func() { out = l.access.Members(role) })
	return out
}

func (l *ClaimLedger) Transfer(ctx context.Context, caller Address, to Address, amount Amount) error {
	return l.executor.Execute(ctx, func(ctx context.Context) error {
		return l.transfer(ctx, caller, to, amount)
	})
}

func (l *ClaimLedger) TransferFrom(ctx context.Context, caller Address, from Address, to Address, amount Amount) error {
	return l.executor.Execute(ctx, func(ctx context.Context) error {
		if err := l.spendAllowance(ctx, from, caller, amount); err != nil {
			return err
		}
		return l.transfer(ctx, from, to, amount)
	})
}

func (l *ClaimLedger) Approve(ctx context.Context, caller Address, spender Address, amount Amount) error {
	return l.executor.Execute(ctx, func(ctx context.Context) error {
		return l.approve(ctx, caller, spender, amount)
	})
}

func (l *ClaimLedger) IncreaseAllowance(ctx context.Context, caller Address, spender Address, added Amount) error {
	return l.executor.Execute(ctx, func(ctx context.Context) error {
		next, overflow := addAmounts(l.allowances[caller][spender], added)
		if overflow {
			return badInputError("claim ledger: allowance overflows", map[string]any{
				"owner":   caller.Hex(),
				"spender": spender.Hex(),
			})
		}
		return l.approve(ctx, caller, spender, next)
	})
}

func (l *ClaimLedger) DecreaseAllowance(ctx context.Context, caller Address, spender Address, subtracted Amount) error {
	return l.executor.Execute(ctx, func(ctx context.Context) error {
		next, underflow := subAmounts(l.allowances[caller][spender], subtracted)
		if underflow {
			return badInputError("claim ledger: decreased allowance below zero", map[string]any{
				"owner":   caller.Hex(),
				"spender": spender.Hex(),
			})
		}
		return l.approve(ctx, caller, spender, next)
	})
}

func (l *ClaimLedger) Mint(ctx context.Context, caller Address, to Address, amount Amount) error {
	return l.executor.Execute(ctx, func(ctx context.Context) error {
		if err := l.access.require(RoleMint, caller, "mint"); err != nil {
			return err
		}
		if to == ZeroAddress {
			return zeroAddressError(claimLedgerComponent, "mint recipient")
		}
		if err := l.requireLive("mint"); err != nil {
			return err
		}
		supply, overflow := addAmounts(l.supply, amount)
		if overflow {
			return badInputError("claim ledger: total supply overflows", map[string]any{"amount": FormatAmount(amount)})
		}
		balance, _ := addAmounts(l.balances[to], amount)
		if err := SetState(ctx, &l.supply, supply); err != nil {
			return err
		}
		if err := PutState(ctx, l.balances, to, balance, true); err != nil {
			return err
		}
		return Emit(ctx, Event{
			Type:     EventClaimTransfer,
			Contract: l.address,
			To:       to,
			Operator: caller,
			Amount:   amount,
		})
	})
}

// BurnFrom destroys amount of from's balance, spending the allowance from
// granted to caller. Only mint role holders may burn.
func (l *ClaimLedger) BurnFrom(ctx context.Context, caller Address, from Address, amount Amount) error {
	return l.executor.Execute(ctx, func(ctx context.Context) error {
		if err := l.access.require(RoleMint, caller, "burn"); err != nil {
			return err
		}
		if from == ZeroAddress {
			return zeroAddressError(claimLedgerComponent, "burn account")
		}
		if err := l.requireLive("burn"); err != nil {
			return err
		}
		if err := l.spendAllowance(ctx, from, caller, amount); err != nil {
			return err
		}
		balance, underflow := subAmounts(l.balances[from], amount)
		if underflow {
			return insufficientBalanceError(from, l.balances[from], amount)
		}
		supply, _ := subAmounts(l.supply, amount)
		if err := PutState(ctx, l.balances, from, balance, !balance.IsZero()); err != nil {
			return err
		}
		if err := SetState(ctx, &l.supply, supply); err != nil {
			return err
		}
		return Emit(ctx, Event{
			Type:     EventClaimTransfer,
			Contract: l.address,
			From:     from,
			Operator: caller,
			Amount:   amount,
		})
	})
}

func (l *ClaimLedger) Pause(ctx context.Context, caller Address) error {
	return l.executor.Execute(ctx, func(ctx context.Context) error {
		if err := l.access.require(RolePause, caller, "pause"); err != nil {
			return err
		}
		if l.paused {
			return stateError("claim ledger: already paused", CustodyErrorPaused, nil)
		}
		if err := SetState(ctx, &l.paused, true); err != nil {
			return err
		}
		return Emit(ctx, Event{Type: EventLedgerPaused, Contract: l.address, Operator: caller})
	})
}

func (l *ClaimLedger) Unpause(ctx context.Context, caller Address) error {
	return l.executor.Execute(ctx, func(ctx context.Context) error {
		if err := l.access.require(RolePause, caller, "unpause"); err != nil {
			return err
		}
		if !l.paused {
			return stateError("claim ledger: not paused", CustodyErrorNotPaused, nil)
		}
		if err := SetState(ctx, &l.paused, false); err != nil {
			return err
		}
		return Emit(ctx, Event{Type: EventLedgerUnpaused, Contract: l.address, Operator: caller})
	})
}

func (l *ClaimLedger) GrantRole(ctx context.Context, caller Address, role Role, account Address) error {
	return l.executor.Execute(ctx, func(ctx context.Context) error {
		return l.access.grant(ctx, caller, role, account)
	})
}

func (l *ClaimLedger) RevokeRole(ctx context.Context, caller Address, role Role, account Address) error {
	return l.executor.Execute(ctx, func(ctx context.Context) error {
		return l.access.revoke(ctx, caller, role, account)
	})
}

func (l *ClaimLedger) RenounceRole(ctx context.Context, caller Address, role Role, account Address) error {
	return l.executor.Execute(ctx, func(ctx context.Context) error {
		return l.access.renounce(ctx, caller, role, account)
	})
}

func (l *ClaimLedger) view(ctx context.Context, read func()) {
	_ = l.executor.View(ctx, func(context.Context) error {
		read()
		return nil
	})
}

func (l *ClaimLedger) requireLive(action string) error {
	if !l.paused {
		return nil
	}
	return stateError(
		fmt.Sprintf("claim ledger: cannot %s while paused", action),
		CustodyErrorPaused,
		map[string]any{"action": action},
	)
}

func (l *ClaimLedger) transfer(ctx context.Context, from Address, to Address, amount Amount) error {
	if from == ZeroAddress {
		return zeroAddressError(claimLedgerComponent, "sender")
	}
	if to == ZeroAddress {
		return zeroAddressError(claimLedgerComponent, "recipient")
	}
	if err := l.requireLive("transfer"); err != nil {
		return err
	}
	fromBalance, underflow := subAmounts(l.balances[from], amount)
	if underflow {
		return insufficientBalanceError(from, l.balances[from], amount)
	}
	if err := PutState(ctx, l.balances, from, fromBalance, !fromBalance.IsZero()); err != nil {
		return err
	}
	toBalance, overflow := addAmounts(l.balances[to], amount)
	if overflow {
		return badInputError("claim ledger: balance overflows", map[string]any{"account": to.Hex()})
	}
	if err := PutState(ctx, l.balances, to, toBalance, !toBalance.IsZero()); err != nil {
		return err
	}
	return Emit(ctx, Event{
		Type:     EventClaimTransfer,
		Contract: l.address,
		From:     from,
		To:       to,
		Operator: from,
		Amount:   amount,
	})
}

func (l *ClaimLedger) approve(ctx context.Context, owner Address, spender Address, amount Amount) error {
	if owner == ZeroAddress {
		return zeroAddressError(claimLedgerComponent, "owner")
	}
	if spender == ZeroAddress {
		return zeroAddressError(claimLedgerComponent, "spender")
	}
	set, ok := l.allowances[owner]
	if !ok || set == nil {
		set = map[Address]Amount{}
		if err := PutState(ctx, l.allowances, owner, set, true); err != nil {
			return err
		}
	}
	if err := PutState(ctx, set, spender, amount, !amount.IsZero()); err != nil {
		return err
	}
	return Emit(ctx, Event{
		Type:     EventClaimApproval,
		Contract: l.address,
		From:     owner,
		To:       spender,
		Operator: owner,
		Amount:   amount,
	})
}

func (l *ClaimLedger) spendAllowance(ctx context.Context, owner Address, spender Address, amount Amount) error {
	current := l.allowances[owner][spender]
	remaining, underflow := subAmounts(current, amount)
	if underflow {
		return authorizationError(
			"claim ledger: insufficient allowance",
			CustodyErrorInsufficientClaimAllowance,
			map[string]any{
				"owner":     owner.Hex(),
				"spender":   spender.Hex(),
				"allowance": FormatAmount(current),
				"required":  FormatAmount(amount),
			},
		)
	}
	set := l.allowances[owner]
	return PutState(ctx, set, spender, remaining, !remaining.IsZero())
}

func insufficientBalanceError(account Address, balance Amount, required Amount) error {
	return authorizationError(
		"claim ledger: transfer amount exceeds balance",
		CustodyErrorInsufficientClaimBalance,
		map[string]any{
			"account":  account.Hex(),
			"balance":  FormatAmount(balance),
			"required": FormatAmount(required),
		},
	)
}
