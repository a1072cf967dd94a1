package core

import (
	"context"
	"fmt"
)

func (s *Service) TotalSupply(ctx context.Context) Amount {
	if s.ready() != nil {
		return Amount{}
	}
	return s.ledger.TotalSupply(ctx)
}

func (s *Service) BalanceOf(ctx context.Context, account Address) Amount {
	if s.ready() != nil {
		return Amount{}
	}
	return s.ledger.BalanceOf(ctx, account)
}

func (s *Service) Allowance(ctx context.Context, owner Address, spender Address) Amount {
	if s.ready() != nil {
		return Amount{}
	}
	return s.ledger.Allowance(ctx, owner, spender)
}

func (s *Service) IsDeposited(ctx context.Context, id CollateralID) bool {
	if s.ready() != nil {
		return false
	}
	return s.vault.IsDeposited(ctx, id)
}

func (s *Service) ClaimAmount(id CollateralID) (Amount, error) {
	if err := s.ready(); err != nil {
		return Amount{}, s.mapError(err)
	}
	amount, ok := s.vault.ClaimAmount(id)
	if !ok {
		return Amount{}, s.mapError(unregisteredCollateralError(id))
	}
	return amount, nil
}

func (s *Service) RegistryEntries() []RegistryEntry {
	if s.ready() != nil {
		return nil
	}
	return s.vault.Registry().Entries()
}

func (s *Service) HasRole(ctx context.Context, role Role, account Address) bool {
	if s.ready() != nil {
		return false
	}
	return s.ledger.HasRole(ctx, role, account)
}

func (s *Service) RoleMembers(ctx context.Context, role Role) []Address {
	if s.ready() != nil {
		return nil
	}
	return s.ledger.RoleMembers(ctx, role)
}

func (s *Service) Paused(ctx context.Context) bool {
	if s.ready() != nil {
		return false
	}
	return s.ledger.Paused(ctx)
}

func (s *Service) Status(ctx context.Context) CustodyStatus {
	if s.ready() != nil {
		return CustodyStatus{}
	}
	status := CustodyStatus{
		Ledger:    s.ledger.Address(),
		Vault:     s.vault.Address(),
		Asset:     s.vault.AssetAddress(),
		MaxSupply: s.vault.Registry().Total(),
	}
	_ = s.executor.View(ctx, func(ctx context.Context) error {
		status.TotalSupply = s.ledger.TotalSupply(ctx)
		status.Backing = s.vault.Backing(ctx)
		status.Deposited = s.vault.Deposited(ctx)
		status.Paused = s.ledger.Paused(ctx)
		return nil
	})
	return status
}

// AuditSupply checks that the ledger supply equals the registered amount of
// every item in custody. It also lists the accounts able to mint.
func (s *Service) AuditSupply(ctx context.Context) SupplyAudit {
	if s.ready() != nil {
		return SupplyAudit{}
	}
	var audit SupplyAudit
	_ = s.executor.View(ctx, func(ctx context.Context) error {
		audit.TotalSupply = s.ledger.TotalSupply(ctx)
		audit.Backing = s.vault.Backing(ctx)
		audit.Minters = s.ledger.RoleMembers(ctx, RoleMint)
		return nil
	})
	audit.Balanced = audit.TotalSupply.Eq(&audit.Backing)
	if !audit.Balanced {
		s.logWarn(ctx, "claim supply does not match custody backing", map[string]any{
			"total_supply": FormatAmount(audit.TotalSupply),
			"backing":      FormatAmount(audit.Backing),
			"minters":      fmt.Sprint(audit.Minters),
		})
	}
	return audit
}
