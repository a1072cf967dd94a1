package core

import "context"

func (s *Service) Transfer(ctx context.Context, req TransferRequest) error {
	return s.runLedgerOperation(ctx, req.Caller, "transfer", map[string]any{
		"caller": req.Caller.Hex(),
		"to":     req.To.Hex(),
		"amount": FormatAmount(req.Amount),
	}, func(ctx context.Context) error {
		return s.ledger.Transfer(ctx, req.Caller, req.To, req.Amount)
	})
}

func (s *Service) TransferFrom(ctx context.Context, req TransferFromRequest) error {
	return s.runLedgerOperation(ctx, req.Caller, "transfer_from", map[string]any{
		"caller": req.Caller.Hex(),
		"from":   req.From.Hex(),
		"to":     req.To.Hex(),
		"amount": FormatAmount(req.Amount),
	}, func(ctx context.Context) error {
		return s.ledger.TransferFrom(ctx, req.Caller, req.From, req.To, req.Amount)
	})
}

func (s *Service) Approve(ctx context.Context, req AllowanceRequest) error {
	return s.runLedgerOperation(ctx, req.Caller, "approve", allowanceFields(req), func(ctx context.Context) error {
		return s.ledger.Approve(ctx, req.Caller, req.Spender, req.Amount)
	})
}

func (s *Service) IncreaseAllowance(ctx context.Context, req AllowanceRequest) error {
	return s.runLedgerOperation(ctx, req.Caller, "increase_allowance", allowanceFields(req), func(ctx context.Context) error {
		return s.ledger.IncreaseAllowance(ctx, req.Caller, req.Spender, req.Amount)
	})
}

func (s *Service) DecreaseAllowance(ctx context.Context, req AllowanceRequest) error {
	return s.runLedgerOperation(ctx, req.Caller, "decrease_allowance", allowanceFields(req), func(ctx context.Context) error {
		return s.ledger.DecreaseAllowance(ctx, req.Caller, req.Spender, req.Amount)
	})
}

func (s *Service) Mint(ctx context.Context, req MintRequest) error {
	return s.runLedgerOperation(ctx, req.Caller, "mint", map[string]any{
		"caller": req.Caller.Hex(),
		"to":     req.To.Hex(),
		"amount": FormatAmount(req.Amount),
	}, func(ctx context.Context) error {
		return s.ledger.Mint(ctx, req.Caller, req.To, req.Amount)
	})
}

func (s *Service) BurnFrom(ctx context.Context, req BurnFromRequest) error {
	return s.runLedgerOperation(ctx, req.Caller, "burn_from", map[string]any{
		"caller": req.Caller.Hex(),
		"from":   req.From.Hex(),
		"amount": FormatAmount(req.Amount),
	}, func(ctx context.Context) error {
		return s.ledger.BurnFrom(ctx, req.Caller, req.From, req.Amount)
	})
}

func (s *Service) Pause(ctx context.Context, req PauseRequest) error {
	return s.runLedgerOperation(ctx, req.Caller, "pause", map[string]any{"caller": req.Caller.Hex()}, func(ctx context.Context) error {
		return s.ledger.Pause(ctx, req.Caller)
	})
}

func (s *Service) Unpause(ctx context.Context, req PauseRequest) error {
	return s.runLedgerOperation(ctx, req.Caller, "unpause", map[string]any{"caller": req.Caller.Hex()}, func(ctx context.Context) error {
		return s.ledger.Unpause(ctx, req.Caller)
	})
}

func (s *Service) GrantRole(ctx context.Context, req RoleRequest) error {
	return s.runLedgerOperation(ctx, req.Caller, "grant_role", roleFields(req), func(ctx context.Context) error {
		return s.ledger.GrantRole(ctx, req.Caller, req.Role, req.Account)
	})
}

func (s *Service) RevokeRole(ctx context.Context, req RoleRequest) error {
	return s.runLedgerOperation(ctx, req.Caller, "revoke_role", roleFields(req), func(ctx context.Context) error {
		return s.ledger.RevokeRole(ctx, req.Caller, req.Role, req.Account)
	})
}

func (s *Service) RenounceRole(ctx context.Context, req RoleRequest) error {
	return s.runLedgerOperation(ctx, req.Caller, "renounce_role", roleFields(req), func(ctx context.Context) error {
		return s.ledger.RenounceRole(ctx, req.Caller, req.Role, req.Account)
	})
}

func (s *Service) runLedgerOperation(
	ctx context.Context,
	caller Address,
	operation string,
	fields map[string]any,
	fn func(ctx context.Context) error,
) (err error) {
	startedAt := startTimer()
	defer func() {
		s.observeOperation(ctx, startedAt, operation, err, fields)
	}()

	if err = s.ready(); err != nil {
		err = s.mapError(err)
		return err
	}
	if err = s.requireExternalCaller(caller); err != nil {
		err = s.mapError(err)
		return err
	}
	if err = fn(ctx); err != nil {
		err = s.mapError(err)
		return err
	}
	return nil
}

func allowanceFields(req AllowanceRequest) map[string]any {
	return map[string]any{
		"caller":  req.Caller.Hex(),
		"spender": req.Spender.Hex(),
		"amount":  FormatAmount(req.Amount),
	}
}

func roleFields(req RoleRequest) map[string]any {
	return map[string]any{
		"caller":  req.Caller.Hex(),
		"role":    RoleName(req.Role),
		"account": req.Account.Hex(),
	}
}
