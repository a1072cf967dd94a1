package core

import (
	"fmt"
	"sort"
)

type RegistryEntry struct {
	CollateralID CollateralID
	ClaimAmount  Amount
}

// Registry is the immutable collateral id to claim amount table fixed when
// the vault is deployed.
type Registry struct {
	amounts map[CollateralID]Amount
	order   []CollateralID
	total   Amount
}

func NewRegistry(ids []CollateralID, amounts []Amount) (*Registry, error) {
	if len(ids) != len(amounts) {
		return nil, validationError(
			fmt.Sprintf("registry: %d collateral ids but %d claim amounts", len(ids), len(amounts)),
			CustodyErrorInvalidRegistry,
			map[string]any{"ids": len(ids), "amounts": len(amounts)},
		)
	}
	entries := make([]RegistryEntry, 0, len(ids))
	for i := range ids {
		entries = append(entries, RegistryEntry{CollateralID: ids[i], ClaimAmount: amounts[i]})
	}
	return NewRegistryFromEntries(entries)
}

func NewRegistryFromEntries(entries []RegistryEntry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, validationError("registry: at least one collateral id is required", CustodyErrorInvalidRegistry, nil)
	}
	registry := &Registry{
		amounts: make(map[CollateralID]Amount, len(entries)),
		order:   make([]CollateralID, 0, len(entries)),
	}
	for _, entry := range entries {
		if _, exists := registry.amounts[entry.CollateralID]; exists {
			return nil, validationError(
				fmt.Sprintf("registry: duplicate collateral id %s", entry.CollateralID),
				CustodyErrorInvalidRegistry,
				map[string]any{"collateral_id": uint64(entry.CollateralID)},
			)
		}
		if entry.ClaimAmount.IsZero() {
			return nil, validationError(
				fmt.Sprintf("registry: claim amount for collateral id %s must be positive", entry.CollateralID),
				CustodyErrorInvalidRegistry,
				map[string]any{"collateral_id": uint64(entry.CollateralID)},
			)
		}
		total, overflow := addAmounts(registry.total, entry.ClaimAmount)
		if overflow {
			return nil, validationError(
				"registry: total claim amount overflows 256 bits",
				CustodyErrorInvalidRegistry,
				map[string]any{"collateral_id": uint64(entry.CollateralID)},
			)
		}
		registry.total = total
		registry.amounts[entry.CollateralID] = entry.ClaimAmount
		registry.order = append(registry.order, entry.CollateralID)
	}
	return registry, nil
}

func (r *Registry) Lookup(id CollateralID) (Amount, bool) {
	if r == nil {
		return Amount{}, false
	}
	amount, ok := r.amounts[id]
	return amount, ok
}

func (r *Registry) Contains(id CollateralID) bool {
	_, ok := r.Lookup(id)
	return ok
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Total is the supply reached when every registered item is in custody.
func (r *Registry) Total() Amount {
	if r == nil {
		return Amount{}
	}
	return r.total
}

// Entries returns the registry in construction order.
func (r *Registry) Entries() []RegistryEntry {
	if r == nil {
		return nil
	}
	out := make([]RegistryEntry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, RegistryEntry{CollateralID: id, ClaimAmount: r.amounts[id]})
	}
	return out
}

// IDs returns the registered ids in ascending order.
func (r *Registry) IDs() []CollateralID {
	if r == nil {
		return nil
	}
	out := append([]CollateralID(nil), r.order...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
