package command

import "github.com/goliatone/go-custody/core"

const (
	TypeDeposit           = "custody.command.collateral.deposit"
	TypeWithdraw          = "custody.command.collateral.withdraw"
	TypeTransfer          = "custody.command.claim.transfer"
	TypeTransferFrom      = "custody.command.claim.transfer_from"
	TypeApprove           = "custody.command.claim.approve"
	TypeIncreaseAllowance = "custody.command.claim.allowance.increase"
	TypeDecreaseAllowance = "custody.command.claim.allowance.decrease"
	TypeMint              = "custody.command.claim.mint"
	TypeBurnFrom          = "custody.command.claim.burn_from"
	TypePause             = "custody.command.ledger.pause"
	TypeUnpause           = "custody.command.ledger.unpause"
	TypeGrantRole         = "custody.command.role.grant"
	TypeRevokeRole        = "custody.command.role.revoke"
	TypeRenounceRole      = "custody.command.role.renounce"
)

type DepositMessage struct {
	Request core.DepositRequest
}

func (DepositMessage) Type() string { return TypeDeposit }

func (m DepositMessage) Validate() error {
	if err := requireAddress("caller", m.Request.Caller); err != nil {
		return err
	}
	return requireAddress("asset_address", m.Request.AssetAddress)
}

type WithdrawMessage struct {
	Request core.WithdrawRequest
}

func (WithdrawMessage) Type() string { return TypeWithdraw }

func (m WithdrawMessage) Validate() error {
	return requireAddress("caller", m.Request.Caller)
}

type TransferMessage struct {
	Request core.TransferRequest
}

func (TransferMessage) Type() string { return TypeTransfer }

func (m TransferMessage) Validate() error {
	if err := requireAddress("caller", m.Request.Caller); err != nil {
		return err
	}
	return requireAddress("to", m.Request.To)
}

type TransferFromMessage struct {
	Request core.TransferFromRequest
}

func (TransferFromMessage) Type() string { return TypeTransferFrom }

func (m TransferFromMessage) Validate() error {
	if err := requireAddress("caller", m.Request.Caller); err != nil {
		return err
	}
	if err := requireAddress("from", m.Request.From); err != nil {
		return err
	}
	return requireAddress("to", m.Request.To)
}

type ApproveMessage struct {
	Request core.AllowanceRequest
}

func (ApproveMessage) Type() string { return TypeApprove }

func (m ApproveMessage) Validate() error {
	return validateAllowance(m.Request)
}

type IncreaseAllowanceMessage struct {
	Request core.AllowanceRequest
}

func (IncreaseAllowanceMessage) Type() string { return TypeIncreaseAllowance }

func (m IncreaseAllowanceMessage) Validate() error {
	if err := validateAllowance(m.Request); err != nil {
		return err
	}
	return requireAmount("amount", m.Request.Amount)
}

type DecreaseAllowanceMessage struct {
	Request core.AllowanceRequest
}

func (DecreaseAllowanceMessage) Type() string { return TypeDecreaseAllowance }

func (m DecreaseAllowanceMessage) Validate() error {
	if err := validateAllowance(m.Request); err != nil {
		return err
	}
	return requireAmount("amount", m.Request.Amount)
}

type MintMessage struct {
	Request core.MintRequest
}

func (MintMessage) Type() string { return TypeMint }

func (m MintMessage) Validate() error {
	if err := requireAddress("caller", m.Request.Caller); err != nil {
		return err
	}
	if err := requireAddress("to", m.Request.To); err != nil {
		return err
	}
	return requireAmount("amount", m.Request.Amount)
}

type BurnFromMessage struct {
	Request core.BurnFromRequest
}

func (BurnFromMessage) Type() string { return TypeBurnFrom }

func (m BurnFromMessage) Validate() error {
	if err := requireAddress("caller", m.Request.Caller); err != nil {
		return err
	}
	if err := requireAddress("from", m.Request.From); err != nil {
		return err
	}
	return requireAmount("amount", m.Request.Amount)
}

type PauseMessage struct {
	Request core.PauseRequest
}

func (PauseMessage) Type() string { return TypePause }

func (m PauseMessage) Validate() error {
	return requireAddress("caller", m.Request.Caller)
}

type UnpauseMessage struct {
	Request core.PauseRequest
}

func (UnpauseMessage) Type() string { return TypeUnpause }

func (m UnpauseMessage) Validate() error {
	return requireAddress("caller", m.Request.Caller)
}

type GrantRoleMessage struct {
	Request core.RoleRequest
}

func (GrantRoleMessage) Type() string { return TypeGrantRole }

func (m GrantRoleMessage) Validate() error {
	return validateRole(m.Request)
}

type RevokeRoleMessage struct {
	Request core.RoleRequest
}

func (RevokeRoleMessage) Type() string { return TypeRevokeRole }

func (m RevokeRoleMessage) Validate() error {
	return validateRole(m.Request)
}

type RenounceRoleMessage struct {
	Request core.RoleRequest
}

func (RenounceRoleMessage) Type() string { return TypeRenounceRole }

func (m RenounceRoleMessage) Validate() error {
	if err := validateRole(m.Request); err != nil {
		return err
	}
	if m.Request.Account != m.Request.Caller {
		return commandValidationError("account", "can only renounce roles for self")
	}
	return nil
}

func validateAllowance(req core.AllowanceRequest) error {
	if err := requireAddress("caller", req.Caller); err != nil {
		return err
	}
	return requireAddress("spender", req.Spender)
}

func validateRole(req core.RoleRequest) error {
	if err := requireAddress("caller", req.Caller); err != nil {
		return err
	}
	return requireAddress("account", req.Account)
}
