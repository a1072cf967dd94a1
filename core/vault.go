package core

import (
	"context"
	"fmt"
	"sort"
)

const vaultComponent = "vault"

// ClaimIssuer is the part of the claim ledger the vault drives.
type ClaimIssuer interface {
	Address() Address
	Mint(ctx context.Context, caller Address, to Address, amount Amount) error
	BurnFrom(ctx context.Context, caller Address, from Address, amount Amount) error
	BalanceOf(ctx context.Context, account Address) Amount
	Allowance(ctx context.Context, owner Address, spender Address) Amount
}

type VaultConfig struct {
	Address  Address
	Registry *Registry
	Claims   ClaimIssuer
	Asset    AssetContract
}

// Vault holds registered collateral items and issues the matching claim
// amount for each one in custody. Claims are bearer: whoever returns the
// registered amount for an id may withdraw it.
type Vault struct {
	address   Address
	executor  *Executor
	registry  *Registry
	claims    ClaimIssuer
	asset     AssetContract
	present   map[CollateralID]struct{}
	entered   bool
	receiving *CollateralID
}

// NewVault binds the vault as the asset receiver for its address within the
// transaction carried by ctx, so a failed deployment leaves no binding.
func NewVault(ctx context.Context, executor *Executor, cfg VaultConfig) (*Vault, error) {
	if executor == nil {
		return nil, fmt.Errorf("vault: executor is required")
	}
	if cfg.Address == ZeroAddress {
		return nil, zeroAddressError(vaultComponent, "address")
	}
	if cfg.Registry == nil || cfg.Registry.Len() == 0 {
		return nil, validationError("vault: registry is required", CustodyErrorInvalidRegistry, nil)
	}
	if cfg.Claims == nil {
		return nil, fmt.Errorf("vault: claim issuer is required")
	}
	if cfg.Asset == nil {
		return nil, fmt.Errorf("vault: asset contract is required")
	}
	if cfg.Asset.Address() == ZeroAddress {
		return nil, zeroAddressError(vaultComponent, "asset address")
	}
	vault := &Vault{
		address:  cfg.Address,
		executor: executor,
		registry: cfg.Registry,
		claims:   cfg.Claims,
		asset:    cfg.Asset,
		present:  map[CollateralID]struct{}{},
	}
	if receivers, ok := cfg.Asset.(ReceiverRegistry); ok {
		if err := receivers.RegisterReceiver(ctx, vault.address, vault); err != nil {
			return nil, err
		}
	}
	return vault, nil
}

func (v *Vault) Address() Address {
	return v.address
}

func (v *Vault) AssetAddress() Address {
	return v.asset.Address()
}

func (v *Vault) Registry() *Registry {
	return v.registry
}

func (v *Vault) ClaimAmount(id CollateralID) (Amount, bool) {
	return v.registry.Lookup(id)
}

func (v *Vault) IsDeposited(ctx context.Context, id CollateralID) bool {
	var out bool
	_ = v.executor.View(ctx, func(context.Context) error {
		_, out = v.present[id]
		return nil
	})
	return out
}

// Deposited returns the ids currently in custody in ascending order.
func (v *Vault) Deposited(ctx context.Context) []CollateralID {
	var out []CollateralID
	_ = v.executor.View(ctx, func(context.Context) error {
		out = v.depositedIDs()
		return nil
	})
	return out
}

// Backing is the claim amount covered by the items in custody.
func (v *Vault) Backing(ctx context.Context) Amount {
	var out Amount
	_ = v.executor.View(ctx, func(context.Context) error {
		for id := range v.present {
			amount, _ := v.registry.Lookup(id)
			out, _ = addAmounts(out, amount)
		}
		return nil
	})
	return out
}

// Deposit takes item id into custody and mints its registered claim amount
// to caller. The caller must own the item and have approved the vault.
func (v *Vault) Deposit(ctx context.Context, caller Address, id CollateralID, assetAddress Address) (Amount, error) {
	var minted Amount
	err := v.executor.Execute(ctx, func(ctx context.Context) error {
		release, err := v.enter()
		if err != nil {
			return err
		}
		defer release()

		amount, ok := v.registry.Lookup(id)
		if !ok {
			return unregisteredCollateralError(id)
		}
		if assetAddress != v.asset.Address() {
			return validationError(
				"vault: collateral must come from the registered asset contract",
				CustodyErrorWrongAsset,
				map[string]any{
					"collateral_id": uint64(id),
					"asset_address": assetAddress.Hex(),
					"expected":      v.asset.Address().Hex(),
				},
			)
		}
		if _, exists := v.present[id]; exists {
			return validationError(
				fmt.Sprintf("vault: collateral %s is already deposited", id),
				CustodyErrorAlreadyDeposited,
				map[string]any{"collateral_id": uint64(id)},
			)
		}
		if err := v.requireTransferAuthorized(ctx, caller, id); err != nil {
			return err
		}

		if err := PutState(ctx, v.present, id, struct{}{}, true); err != nil {
			return err
		}
		if err := v.claims.Mint(ctx, v.address, caller, amount); err != nil {
			return err
		}
		v.receiving = &id
		defer func() { v.receiving = nil }()
		if err := v.asset.SafeTransferFrom(ctx, v.address, caller, v.address, id, nil); err != nil {
			return err
		}
		minted = amount
		return Emit(ctx, Event{
			Type:         EventCollateralDeposited,
			Contract:     v.address,
			From:         caller,
			To:           v.address,
			Operator:     caller,
			Amount:       amount,
			CollateralID: id,
		})
	})
	if err != nil {
		return Amount{}, err
	}
	return minted, nil
}

// Withdraw burns the registered claim amount for id from caller and returns
// the item. The caller must have approved the vault for that amount.
func (v *Vault) Withdraw(ctx context.Context, caller Address, id CollateralID) (Amount, error) {
	var burned Amount
	err := v.executor.Execute(ctx, func(ctx context.Context) error {
		release, err := v.enter()
		if err != nil {
			return err
		}
		defer release()

		if _, exists := v.present[id]; !exists {
			return validationError(
				fmt.Sprintf("vault: collateral %s is not deposited", id),
				CustodyErrorNotDeposited,
				map[string]any{"collateral_id": uint64(id)},
			)
		}
		amount, ok := v.registry.Lookup(id)
		if !ok {
			return unregisteredCollateralError(id)
		}
		if balance := v.claims.BalanceOf(ctx, caller); amountLess(balance, amount) {
			return authorizationError(
				"vault: insufficient claim balance to withdraw",
				CustodyErrorInsufficientClaimBalance,
				map[string]any{
					"collateral_id": uint64(id),
					"balance":       FormatAmount(balance),
					"required":      FormatAmount(amount),
				},
			)
		}
		if allowance := v.claims.Allowance(ctx, caller, v.address); amountLess(allowance, amount) {
			return authorizationError(
				"vault: insufficient claim allowance to withdraw",
				CustodyErrorInsufficientClaimAllowance,
				map[string]any{
					"collateral_id": uint64(id),
					"allowance":     FormatAmount(allowance),
					"required":      FormatAmount(amount),
				},
			)
		}

		if err := PutState(ctx, v.present, id, struct{}{}, false); err != nil {
			return err
		}
		if err := v.claims.BurnFrom(ctx, v.address, caller, amount); err != nil {
			return err
		}
		if err := v.asset.SafeTransferFrom(ctx, v.address, v.address, caller, id, nil); err != nil {
			return err
		}
		burned = amount
		return Emit(ctx, Event{
			Type:         EventCollateralWithdrawn,
			Contract:     v.address,
			From:         v.address,
			To:           caller,
			Operator:     caller,
			Amount:       amount,
			CollateralID: id,
		})
	})
	if err != nil {
		return Amount{}, err
	}
	return burned, nil
}

// OnNonFungibleReceived accepts only the transfer the vault itself starts
// during a deposit. Anything else would park an item with no claim behind it.
func (v *Vault) OnNonFungibleReceived(ctx context.Context, operator Address, from Address, id CollateralID, data []byte) error {
	if operator == v.address && v.receiving != nil && *v.receiving == id {
		if _, exists := v.present[id]; exists {
			return nil
		}
	}
	return stateError(
		"vault: unsolicited collateral transfer",
		CustodyErrorUnsolicitedTransfer,
		map[string]any{
			"collateral_id": uint64(id),
			"operator":      operator.Hex(),
			"from":          from.Hex(),
		},
	)
}

func (v *Vault) enter() (func(), error) {
	if v.entered {
		return nil, stateError("vault: reentrant call", CustodyErrorReentrantCall, nil)
	}
	v.entered = true
	return func() { v.entered = false }, nil
}

func (v *Vault) requireTransferAuthorized(ctx context.Context, caller Address, id CollateralID) error {
	owner, err := v.asset.OwnerOf(ctx, id)
	if err != nil {
		return err
	}
	if owner != caller {
		return authorizationError(
			"vault: caller does not own the collateral",
			CustodyErrorTransferNotAuthorized,
			map[string]any{"collateral_id": uint64(id), "caller": caller.Hex()},
		)
	}
	approved, err := v.asset.GetApproved(ctx, id)
	if err != nil {
		return err
	}
	if approved == v.address || v.asset.IsApprovedForAll(ctx, owner, v.address) {
		return nil
	}
	return authorizationError(
		"vault: vault is not approved to transfer the collateral",
		CustodyErrorTransferNotAuthorized,
		map[string]any{"collateral_id": uint64(id), "caller": caller.Hex()},
	)
}

func (v *Vault) depositedIDs() []CollateralID {
	out := make([]CollateralID, 0, len(v.present))
	for id := range v.present {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func unregisteredCollateralError(id CollateralID) error {
	return validationError(
		fmt.Sprintf("vault: collateral %s is not registered", id),
		CustodyErrorUnregisteredCollateral,
		map[string]any{"collateral_id": uint64(id)},
	)
}
