package core

import (
	"context"
	"time"
)

type EventType string

const (
	EventClaimTransfer       EventType = "claim.transfer"
	EventClaimApproval       EventType = "claim.approval"
	EventLedgerPaused        EventType = "ledger.paused"
	EventLedgerUnpaused      EventType = "ledger.unpaused"
	EventRoleGranted         EventType = "role.granted"
	EventRoleRevoked         EventType = "role.revoked"
	EventCollateralDeposited EventType = "collateral.deposited"
	EventCollateralWithdrawn EventType = "collateral.withdrawn"
	EventAssetTransfer       EventType = "asset.transfer"
	EventAssetApproval       EventType = "asset.approval"
	EventAssetApprovalForAll EventType = "asset.approval_for_all"
)

// Event is a committed state-change notification. Fields that do not apply
// to a given type are left zero: a claim mint has a zero From, a burn a
// zero To.
type Event struct {
	Sequence     uint64
	Type         EventType
	Contract     Address
	From         Address
	To           Address
	Operator     Address
	Amount       Amount
	CollateralID CollateralID
	Role         Role
	Approved     bool
	OccurredAt   time.Time
}

// EventSink receives events after their transaction committed, in commit order.
type EventSink interface {
	HandleEvents(ctx context.Context, events []Event) error
}

type EventSinkFunc func(ctx context.Context, events []Event) error

func (f EventSinkFunc) HandleEvents(ctx context.Context, events []Event) error {
	if f == nil {
		return nil
	}
	return f(ctx, events)
}

func cloneEvents(events []Event) []Event {
	if len(events) == 0 {
		return nil
	}
	out := make([]Event, len(events))
	copy(out, events)
	return out
}

// EventFilter pages persisted events by sequence. Zero fields do not filter.
type EventFilter struct {
	AfterSequence uint64
	Limit         int
	Types         []EventType
	Contract      Address
	CollateralID  *CollateralID
}

type EventPage struct {
	Events       []Event
	NextSequence uint64
	HasMore      bool
}
