package custody

import (
	"fmt"

	custodycommand "github.com/goliatone/go-custody/command"
	custodyquery "github.com/goliatone/go-custody/query"
)

type CommandQueryService interface {
	custodycommand.MutatingService
	custodyquery.LedgerReader
	custodyquery.CustodyReader
}

type Commands struct {
	Deposit           *custodycommand.DepositCommand
	Withdraw          *custodycommand.WithdrawCommand
	Transfer          *custodycommand.TransferCommand
	TransferFrom      *custodycommand.TransferFromCommand
	Approve           *custodycommand.ApproveCommand
	IncreaseAllowance *custodycommand.IncreaseAllowanceCommand
	DecreaseAllowance *custodycommand.DecreaseAllowanceCommand
	Mint              *custodycommand.MintCommand
	BurnFrom          *custodycommand.BurnFromCommand
	Pause             *custodycommand.PauseCommand
	Unpause           *custodycommand.UnpauseCommand
	GrantRole         *custodycommand.GrantRoleCommand
	RevokeRole        *custodycommand.RevokeRoleCommand
	RenounceRole      *custodycommand.RenounceRoleCommand
}

type Queries struct {
	TotalSupply  *custodyquery.TotalSupplyQuery
	Balance      *custodyquery.BalanceQuery
	Allowance    *custodyquery.AllowanceQuery
	HasRole      *custodyquery.HasRoleQuery
	IsDeposited  *custodyquery.IsDepositedQuery
	ClaimAmount  *custodyquery.ClaimAmountQuery
	ListRegistry *custodyquery.ListRegistryQuery
	Status       *custodyquery.StatusQuery
	AuditSupply  *custodyquery.AuditSupplyQuery
	ListEvents   *custodyquery.ListEventsQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	eventReader custodyquery.EventReader
}

// WithEventReader backs the ListEvents query, usually with a sqlstore
// EventStore. Without it the query reports a missing dependency.
func WithEventReader(reader custodyquery.EventReader) FacadeOption {
	return func(options *facadeOptions) {
		options.eventReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("custody: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	reader := cfg.eventReader
	if reader == nil {
		reader, _ = service.(custodyquery.EventReader)
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		Deposit:           custodycommand.NewDepositCommand(service),
		Withdraw:          custodycommand.NewWithdrawCommand(service),
		Transfer:          custodycommand.NewTransferCommand(service),
		TransferFrom:      custodycommand.NewTransferFromCommand(service),
		Approve:           custodycommand.NewApproveCommand(service),
		IncreaseAllowance: custodycommand.NewIncreaseAllowanceCommand(service),
		DecreaseAllowance: custodycommand.NewDecreaseAllowanceCommand(service),
		Mint:              custodycommand.NewMintCommand(service),
		BurnFrom:          custodycommand.NewBurnFromCommand(service),
		Pause:             custodycommand.NewPauseCommand(service),
		Unpause:           custodycommand.NewUnpauseCommand(service),
		GrantRole:         custodycommand.NewGrantRoleCommand(service),
		RevokeRole:        custodycommand.NewRevokeRoleCommand(service),
		RenounceRole:      custodycommand.NewRenounceRoleCommand(service),
	}
	facade.queries = Queries{
		TotalSupply:  custodyquery.NewTotalSupplyQuery(service),
		Balance:      custodyquery.NewBalanceQuery(service),
		Allowance:    custodyquery.NewAllowanceQuery(service),
		HasRole:      custodyquery.NewHasRoleQuery(service),
		IsDeposited:  custodyquery.NewIsDepositedQuery(service),
		ClaimAmount:  custodyquery.NewClaimAmountQuery(service),
		ListRegistry: custodyquery.NewListRegistryQuery(service),
		Status:       custodyquery.NewStatusQuery(service),
		AuditSupply:  custodyquery.NewAuditSupplyQuery(service),
		ListEvents:   custodyquery.NewListEventsQuery(reader),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
