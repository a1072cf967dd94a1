package query

import (
	"fmt"

	"github.com/goliatone/go-custody/core"
)

const (
	TypeTotalSupply  = "custody.query.claim.total_supply"
	TypeBalance      = "custody.query.claim.balance"
	TypeAllowance    = "custody.query.claim.allowance"
	TypeIsDeposited  = "custody.query.collateral.is_deposited"
	TypeClaimAmount  = "custody.query.registry.claim_amount"
	TypeListRegistry = "custody.query.registry.list"
	TypeHasRole      = "custody.query.role.has"
	TypeStatus       = "custody.query.status"
	TypeAuditSupply  = "custody.query.supply.audit"
	TypeListEvents   = "custody.query.events.list"
)

type TotalSupplyMessage struct{}

func (TotalSupplyMessage) Type() string { return TypeTotalSupply }

func (TotalSupplyMessage) Validate() error { return nil }

type BalanceMessage struct {
	Account core.Address
}

func (BalanceMessage) Type() string { return TypeBalance }

func (m BalanceMessage) Validate() error {
	return requireAddress("account", m.Account)
}

type AllowanceMessage struct {
	Owner   core.Address
	Spender core.Address
}

func (AllowanceMessage) Type() string { return TypeAllowance }

func (m AllowanceMessage) Validate() error {
	if err := requireAddress("owner", m.Owner); err != nil {
		return err
	}
	return requireAddress("spender", m.Spender)
}

type IsDepositedMessage struct {
	CollateralID core.CollateralID
}

func (IsDepositedMessage) Type() string { return TypeIsDeposited }

func (IsDepositedMessage) Validate() error { return nil }

type ClaimAmountMessage struct {
	CollateralID core.CollateralID
}

func (ClaimAmountMessage) Type() string { return TypeClaimAmount }

func (ClaimAmountMessage) Validate() error { return nil }

type ListRegistryMessage struct{}

func (ListRegistryMessage) Type() string { return TypeListRegistry }

func (ListRegistryMessage) Validate() error { return nil }

type HasRoleMessage struct {
	Role    core.Role
	Account core.Address
}

func (HasRoleMessage) Type() string { return TypeHasRole }

func (m HasRoleMessage) Validate() error {
	return requireAddress("account", m.Account)
}

type StatusMessage struct{}

func (StatusMessage) Type() string { return TypeStatus }

func (StatusMessage) Validate() error { return nil }

type AuditSupplyMessage struct{}

func (AuditSupplyMessage) Type() string { return TypeAuditSupply }

func (AuditSupplyMessage) Validate() error { return nil }

type ListEventsMessage struct {
	Filter core.EventFilter
}

func (ListEventsMessage) Type() string { return TypeListEvents }

func (m ListEventsMessage) Validate() error {
	if m.Filter.Limit < 0 {
		return queryValidationError("limit", "must be >= 0")
	}
	if m.Filter.Limit > maxEventPageSize {
		return queryValidationError("limit", fmt.Sprintf("must be <= %d", maxEventPageSize))
	}
	return nil
}
