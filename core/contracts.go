package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

type DepositRequest struct {
	Caller       Address
	CollateralID CollateralID
	AssetAddress Address
}

type WithdrawRequest struct {
	Caller       Address
	CollateralID CollateralID
}

// CustodyResult reports the claim amount minted by a deposit or burned by a
// withdrawal.
type CustodyResult struct {
	CollateralID CollateralID
	ClaimAmount  Amount
	Account      Address
}

type TransferRequest struct {
	Caller Address
	To     Address
	Amount Amount
}

type TransferFromRequest struct {
	Caller Address
	From   Address
	To     Address
	Amount Amount
}

// AllowanceRequest sets or adjusts the allowance Caller grants Spender.
type AllowanceRequest struct {
	Caller  Address
	Spender Address
	Amount  Amount
}

type MintRequest struct {
	Caller Address
	To     Address
	Amount Amount
}

type BurnFromRequest struct {
	Caller Address
	From   Address
	Amount Amount
}

type PauseRequest struct {
	Caller Address
}

type RoleRequest struct {
	Caller  Address
	Role    Role
	Account Address
}

type CustodyStatus struct {
	Ledger      Address
	Vault       Address
	Asset       Address
	TotalSupply Amount
	Backing     Amount
	MaxSupply   Amount
	Deposited   []CollateralID
	Paused      bool
}

// SupplyAudit compares the ledger supply with the claim amount backed by
// items in custody.
type SupplyAudit struct {
	TotalSupply Amount
	Backing     Amount
	Balanced    bool
	Minters     []Address
}

type DeploymentStep struct {
	Name    string
	Account Address
	Role    Role
}

// Deployment is the receipt of the setup sequence.
type Deployment struct {
	Principal Address
	Ledger    Address
	Vault     Address
	Asset     Address
	Steps     []DeploymentStep
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// CustodyService is the operation surface wrapped by the command and query
// packages.
type CustodyService interface {
	Deposit(ctx context.Context, req DepositRequest) (CustodyResult, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (CustodyResult, error)
	Transfer(ctx context.Context, req TransferRequest) error
	TransferFrom(ctx context.Context, req TransferFromRequest) error
	Approve(ctx context.Context, req AllowanceRequest) error
	IncreaseAllowance(ctx context.Context, req AllowanceRequest) error
	DecreaseAllowance(ctx context.Context, req AllowanceRequest) error
	Mint(ctx context.Context, req MintRequest) error
	BurnFrom(ctx context.Context, req BurnFromRequest) error
	Pause(ctx context.Context, req PauseRequest) error
	Unpause(ctx context.Context, req PauseRequest) error
	GrantRole(ctx context.Context, req RoleRequest) error
	RevokeRole(ctx context.Context, req RoleRequest) error
	RenounceRole(ctx context.Context, req RoleRequest) error

	TotalSupply(ctx context.Context) Amount
	BalanceOf(ctx context.Context, account Address) Amount
	Allowance(ctx context.Context, owner Address, spender Address) Amount
	IsDeposited(ctx context.Context, id CollateralID) bool
	ClaimAmount(id CollateralID) (Amount, error)
	RegistryEntries() []RegistryEntry
	HasRole(ctx context.Context, role Role, account Address) bool
	Paused(ctx context.Context) bool
	Status(ctx context.Context) CustodyStatus
	AuditSupply(ctx context.Context) SupplyAudit
}
