package core

import "context"

func (s *Service) Deposit(ctx context.Context, req DepositRequest) (result CustodyResult, err error) {
	startedAt := startTimer()
	fields := map[string]any{
		"caller":        req.Caller.Hex(),
		"collateral_id": uint64(req.CollateralID),
		"asset_address": req.AssetAddress.Hex(),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "deposit", err, fields)
	}()

	if err = s.ready(); err != nil {
		err = s.mapError(err)
		return CustodyResult{}, err
	}
	if req.Caller == ZeroAddress {
		err = s.mapError(zeroAddressError(vaultComponent, "caller"))
		return CustodyResult{}, err
	}
	if err = s.requireExternalCaller(req.Caller); err != nil {
		err = s.mapError(err)
		return CustodyResult{}, err
	}
	minted, err := s.vault.Deposit(ctx, req.Caller, req.CollateralID, req.AssetAddress)
	if err != nil {
		err = s.mapError(err)
		return CustodyResult{}, err
	}
	fields["amount"] = FormatAmount(minted)
	return CustodyResult{
		CollateralID: req.CollateralID,
		ClaimAmount:  minted,
		Account:      req.Caller,
	}, nil
}

func (s *Service) Withdraw(ctx context.Context, req WithdrawRequest) (result CustodyResult, err error) {
	startedAt := startTimer()
	fields := map[string]any{
		"caller":        req.Caller.Hex(),
		"collateral_id": uint64(req.CollateralID),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "withdraw", err, fields)
	}()

	if err = s.ready(); err != nil {
		err = s.mapError(err)
		return CustodyResult{}, err
	}
	if req.Caller == ZeroAddress {
		err = s.mapError(zeroAddressError(vaultComponent, "caller"))
		return CustodyResult{}, err
	}
	if err = s.requireExternalCaller(req.Caller); err != nil {
		err = s.mapError(err)
		return CustodyResult{}, err
	}
	burned, err := s.vault.Withdraw(ctx, req.Caller, req.CollateralID)
	if err != nil {
		err = s.mapError(err)
		return CustodyResult{}, err
	}
	fields["amount"] = FormatAmount(burned)
	return CustodyResult{
		CollateralID: req.CollateralID,
		ClaimAmount:  burned,
		Account:      req.Caller,
	}, nil
}
