package query

import (
	"context"

	"github.com/goliatone/go-custody/core"
)

type LedgerReader interface {
	TotalSupply(ctx context.Context) core.Amount
	BalanceOf(ctx context.Context, account core.Address) core.Amount
	Allowance(ctx context.Context, owner core.Address, spender core.Address) core.Amount
	HasRole(ctx context.Context, role core.Role, account core.Address) bool
}

type CustodyReader interface {
	IsDeposited(ctx context.Context, id core.CollateralID) bool
	ClaimAmount(id core.CollateralID) (core.Amount, error)
	RegistryEntries() []core.RegistryEntry
	Status(ctx context.Context) core.CustodyStatus
	AuditSupply(ctx context.Context) core.SupplyAudit
}

// EventReader lists persisted custody events.
type EventReader interface {
	List(ctx context.Context, filter core.EventFilter) (core.EventPage, error)
}

type TotalSupplyQuery struct {
	reader LedgerReader
}

func NewTotalSupplyQuery(reader LedgerReader) *TotalSupplyQuery {
	return &TotalSupplyQuery{reader: reader}
}

func (q *TotalSupplyQuery) Query(ctx context.Context, _ TotalSupplyMessage) (core.Amount, error) {
	if q == nil || q.reader == nil {
		return core.Amount{}, queryDependencyError("query: ledger reader is required")
	}
	return q.reader.TotalSupply(ctx), nil
}

type BalanceQuery struct {
	reader LedgerReader
}

func NewBalanceQuery(reader LedgerReader) *BalanceQuery {
	return &BalanceQuery{reader: reader}
}

func (q *BalanceQuery) Query(ctx context.Context, msg BalanceMessage) (core.Amount, error) {
	if q == nil || q.reader == nil {
		return core.Amount{}, queryDependencyError("query: ledger reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.Amount{}, err
	}
	return q.reader.BalanceOf(ctx, msg.Account), nil
}

type AllowanceQuery struct {
	reader LedgerReader
}

func NewAllowanceQuery(reader LedgerReader) *AllowanceQuery {
	return &AllowanceQuery{reader: reader}
}

func (q *AllowanceQuery) Query(ctx context.Context, msg AllowanceMessage) (core.Amount, error) {
	if q == nil || q.reader == nil {
		return core.Amount{}, queryDependencyError("query: ledger reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.Amount{}, err
	}
	return q.reader.Allowance(ctx, msg.Owner, msg.Spender), nil
}

type HasRoleQuery struct {
	reader LedgerReader
}

func NewHasRoleQuery(reader LedgerReader) *HasRoleQuery {
	return &HasRoleQuery{reader: reader}
}

func (q *HasRoleQuery) Query(ctx context.Context, msg HasRoleMessage) (bool, error) {
	if q == nil || q.reader == nil {
		return false, queryDependencyError("query: ledger reader is required")
	}
	if err := msg.Validate(); err != nil {
		return false, err
	}
	return q.reader.HasRole(ctx, msg.Role, msg.Account), nil
}

type IsDepositedQuery struct {
	reader CustodyReader
}

func NewIsDepositedQuery(reader CustodyReader) *IsDepositedQuery {
	return &IsDepositedQuery{reader: reader}
}

func (q *IsDepositedQuery) Query(ctx context.Context, msg IsDepositedMessage) (bool, error) {
	if q == nil || q.reader == nil {
		return false, queryDependencyError("query: custody reader is required")
	}
	return q.reader.IsDeposited(ctx, msg.CollateralID), nil
}

type ClaimAmountQuery struct {
	reader CustodyReader
}

func NewClaimAmountQuery(reader CustodyReader) *ClaimAmountQuery {
	return &ClaimAmountQuery{reader: reader}
}

func (q *ClaimAmountQuery) Query(_ context.Context, msg ClaimAmountMessage) (core.Amount, error) {
	if q == nil || q.reader == nil {
		return core.Amount{}, queryDependencyError("query: custody reader is required")
	}
	return q.reader.ClaimAmount(msg.CollateralID)
}

type ListRegistryQuery struct {
	reader CustodyReader
}

func NewListRegistryQuery(reader CustodyReader) *ListRegistryQuery {
	return &ListRegistryQuery{reader: reader}
}

func (q *ListRegistryQuery) Query(_ context.Context, _ ListRegistryMessage) ([]core.RegistryEntry, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: custody reader is required")
	}
	return q.reader.RegistryEntries(), nil
}

type StatusQuery struct {
	reader CustodyReader
}

func NewStatusQuery(reader CustodyReader) *StatusQuery {
	return &StatusQuery{reader: reader}
}

func (q *StatusQuery) Query(ctx context.Context, _ StatusMessage) (core.CustodyStatus, error) {
	if q == nil || q.reader == nil {
		return core.CustodyStatus{}, queryDependencyError("query: custody reader is required")
	}
	return q.reader.Status(ctx), nil
}

type AuditSupplyQuery struct {
	reader CustodyReader
}

func NewAuditSupplyQuery(reader CustodyReader) *AuditSupplyQuery {
	return &AuditSupplyQuery{reader: reader}
}

func (q *AuditSupplyQuery) Query(ctx context.Context, _ AuditSupplyMessage) (core.SupplyAudit, error) {
	if q == nil || q.reader == nil {
		return core.SupplyAudit{}, queryDependencyError("query: custody reader is required")
	}
	return q.reader.AuditSupply(ctx), nil
}

type ListEventsQuery struct {
	reader EventReader
}

func NewListEventsQuery(reader EventReader) *ListEventsQuery {
	return &ListEventsQuery{reader: reader}
}

func (q *ListEventsQuery) Query(ctx context.Context, msg ListEventsMessage) (core.EventPage, error) {
	if q == nil || q.reader == nil {
		return core.EventPage{}, queryDependencyError("query: event reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.EventPage{}, err
	}
	return q.reader.List(ctx, msg.Filter)
}
