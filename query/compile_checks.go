package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-custody/core"
)

var (
	_ gocmd.Querier[TotalSupplyMessage, core.Amount]           = (*TotalSupplyQuery)(nil)
	_ gocmd.Querier[BalanceMessage, core.Amount]               = (*BalanceQuery)(nil)
	_ gocmd.Querier[AllowanceMessage, core.Amount]             = (*AllowanceQuery)(nil)
	_ gocmd.Querier[IsDepositedMessage, bool]                  = (*IsDepositedQuery)(nil)
	_ gocmd.Querier[ClaimAmountMessage, core.Amount]           = (*ClaimAmountQuery)(nil)
	_ gocmd.Querier[ListRegistryMessage, []core.RegistryEntry] = (*ListRegistryQuery)(nil)
	_ gocmd.Querier[HasRoleMessage, bool]                      = (*HasRoleQuery)(nil)
	_ gocmd.Querier[StatusMessage, core.CustodyStatus]         = (*StatusQuery)(nil)
	_ gocmd.Querier[AuditSupplyMessage, core.SupplyAudit]      = (*AuditSupplyQuery)(nil)
	_ gocmd.Querier[ListEventsMessage, core.EventPage]         = (*ListEventsQuery)(nil)
)
