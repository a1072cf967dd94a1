package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[DepositMessage]           = (*DepositCommand)(nil)
	_ gocmd.Commander[WithdrawMessage]          = (*WithdrawCommand)(nil)
	_ gocmd.Commander[TransferMessage]          = (*TransferCommand)(nil)
	_ gocmd.Commander[TransferFromMessage]      = (*TransferFromCommand)(nil)
	_ gocmd.Commander[ApproveMessage]           = (*ApproveCommand)(nil)
	_ gocmd.Commander[IncreaseAllowanceMessage] = (*IncreaseAllowanceCommand)(nil)
	_ gocmd.Commander[DecreaseAllowanceMessage] = (*DecreaseAllowanceCommand)(nil)
	_ gocmd.Commander[MintMessage]              = (*MintCommand)(nil)
	_ gocmd.Commander[BurnFromMessage]          = (*BurnFromCommand)(nil)
	_ gocmd.Commander[PauseMessage]             = (*PauseCommand)(nil)
	_ gocmd.Commander[UnpauseMessage]           = (*UnpauseCommand)(nil)
	_ gocmd.Commander[GrantRoleMessage]         = (*GrantRoleCommand)(nil)
	_ gocmd.Commander[RevokeRoleMessage]        = (*RevokeRoleCommand)(nil)
	_ gocmd.Commander[RenounceRoleMessage]      = (*RenounceRoleCommand)(nil)
)
