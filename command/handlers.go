package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-custody/core"
)

// CustodyService is the mutating half of the custody service.
type CustodyService interface {
	Deposit(ctx context.Context, req core.DepositRequest) (core.CustodyResult, error)
	Withdraw(ctx context.Context, req core.WithdrawRequest) (core.CustodyResult, error)
}

type LedgerService interface {
	Transfer(ctx context.Context, req core.TransferRequest) error
	TransferFrom(ctx context.Context, req core.TransferFromRequest) error
	Approve(ctx context.Context, req core.AllowanceRequest) error
	IncreaseAllowance(ctx context.Context, req core.AllowanceRequest) error
	DecreaseAllowance(ctx context.Context, req core.AllowanceRequest) error
	Mint(ctx context.Context, req core.MintRequest) error
	BurnFrom(ctx context.Context, req core.BurnFromRequest) error
	Pause(ctx context.Context, req core.PauseRequest) error
	Unpause(ctx context.Context, req core.PauseRequest) error
	GrantRole(ctx context.Context, req core.RoleRequest) error
	RevokeRole(ctx context.Context, req core.RoleRequest) error
	RenounceRole(ctx context.Context, req core.RoleRequest) error
}

type MutatingService interface {
	CustodyService
	LedgerService
}

type DepositCommand struct {
	service CustodyService
}

func NewDepositCommand(service CustodyService) *DepositCommand {
	return &DepositCommand{service: service}
}

func (c *DepositCommand) Execute(ctx context.Context, msg DepositMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: custody service is required")
	}
	out, err := c.service.Deposit(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type WithdrawCommand struct {
	service CustodyService
}

func NewWithdrawCommand(service CustodyService) *WithdrawCommand {
	return &WithdrawCommand{service: service}
}

func (c *WithdrawCommand) Execute(ctx context.Context, msg WithdrawMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: custody service is required")
	}
	out, err := c.service.Withdraw(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type TransferCommand struct {
	service LedgerService
}

func NewTransferCommand(service LedgerService) *TransferCommand {
	return &TransferCommand{service: service}
}

func (c *TransferCommand) Execute(ctx context.Context, msg TransferMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: transfer service is required")
	}
	return c.service.Transfer(ctx, msg.Request)
}

type TransferFromCommand struct {
	service LedgerService
}

func NewTransferFromCommand(service LedgerService) *TransferFromCommand {
	return &TransferFromCommand{service: service}
}

func (c *TransferFromCommand) Execute(ctx context.Context, msg TransferFromMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: transfer from service is required")
	}
	return c.service.TransferFrom(ctx, msg.Request)
}

type ApproveCommand struct {
	service LedgerService
}

func NewApproveCommand(service LedgerService) *ApproveCommand {
	return &ApproveCommand{service: service}
}

func (c *ApproveCommand) Execute(ctx context.Context, msg ApproveMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: approve service is required")
	}
	return c.service.Approve(ctx, msg.Request)
}

type IncreaseAllowanceCommand struct {
	service LedgerService
}

func NewIncreaseAllowanceCommand(service LedgerService) *IncreaseAllowanceCommand {
	return &IncreaseAllowanceCommand{service: service}
}

func (c *IncreaseAllowanceCommand) Execute(ctx context.Context, msg IncreaseAllowanceMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: allowance service is required")
	}
	return c.service.IncreaseAllowance(ctx, msg.Request)
}

type DecreaseAllowanceCommand struct {
	service LedgerService
}

func NewDecreaseAllowanceCommand(service LedgerService) *DecreaseAllowanceCommand {
	return &DecreaseAllowanceCommand{service: service}
}

func (c *DecreaseAllowanceCommand) Execute(ctx context.Context, msg DecreaseAllowanceMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: allowance service is required")
	}
	return c.service.DecreaseAllowance(ctx, msg.Request)
}

type MintCommand struct {
	service LedgerService
}

func NewMintCommand(service LedgerService) *MintCommand {
	return &MintCommand{service: service}
}

func (c *MintCommand) Execute(ctx context.Context, msg MintMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: mint service is required")
	}
	return c.service.Mint(ctx, msg.Request)
}

type BurnFromCommand struct {
	service LedgerService
}

func NewBurnFromCommand(service LedgerService) *BurnFromCommand {
	return &BurnFromCommand{service: service}
}

func (c *BurnFromCommand) Execute(ctx context.Context, msg BurnFromMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: burn service is required")
	}
	return c.service.BurnFrom(ctx, msg.Request)
}

type PauseCommand struct {
	service LedgerService
}

func NewPauseCommand(service LedgerService) *PauseCommand {
	return &PauseCommand{service: service}
}

func (c *PauseCommand) Execute(ctx context.Context, msg PauseMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: pause service is required")
	}
	return c.service.Pause(ctx, msg.Request)
}

type UnpauseCommand struct {
	service LedgerService
}

func NewUnpauseCommand(service LedgerService) *UnpauseCommand {
	return &UnpauseCommand{service: service}
}

func (c *UnpauseCommand) Execute(ctx context.Context, msg UnpauseMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: unpause service is required")
	}
	return c.service.Unpause(ctx, msg.Request)
}

type GrantRoleCommand struct {
	service LedgerService
}

func NewGrantRoleCommand(service LedgerService) *GrantRoleCommand {
	return &GrantRoleCommand{service: service}
}

func (c *GrantRoleCommand) Execute(ctx context.Context, msg GrantRoleMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: role service is required")
	}
	return c.service.GrantRole(ctx, msg.Request)
}

type RevokeRoleCommand struct {
	service LedgerService
}

func NewRevokeRoleCommand(service LedgerService) *RevokeRoleCommand {
	return &RevokeRoleCommand{service: service}
}

func (c *RevokeRoleCommand) Execute(ctx context.Context, msg RevokeRoleMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: role service is required")
	}
	return c.service.RevokeRole(ctx, msg.Request)
}

type RenounceRoleCommand struct {
	service LedgerService
}

func NewRenounceRoleCommand(service LedgerService) *RenounceRoleCommand {
	return &RenounceRoleCommand{service: service}
}

func (c *RenounceRoleCommand) Execute(ctx context.Context, msg RenounceRoleMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: role service is required")
	}
	return c.service.RenounceRole(ctx, msg.Request)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
