package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-custody/core"
	"github.com/uptrace/bun"
)

// StateReader answers read-model queries for one ledger and vault pair from
// the projected tables.
type StateReader struct {
	db     *bun.DB
	ledger core.Address
	vault  core.Address
}

func NewStateReader(db *bun.DB, ledger core.Address, vault core.Address) (*StateReader, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	if ledger == core.ZeroAddress || vault == core.ZeroAddress {
		return nil, fmt.Errorf("sqlstore: ledger and vault addresses are required")
	}
	return &StateReader{db: db, ledger: ledger, vault: vault}, nil
}

func (r *StateReader) Ledger() core.Address {
	if r == nil {
		return core.ZeroAddress
	}
	return r.ledger
}

func (r *StateReader) TotalSupply(ctx context.Context) (core.Amount, error) {
	if r == nil || r.db == nil {
		return core.Amount{}, fmt.Errorf("sqlstore: state reader is not configured")
	}
	record := supplyRecord{}
	err := r.db.NewSelect().
		Model(&record).
		Where("ledger = ?", r.ledger.Hex()).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Amount{}, nil
	}
	if err != nil {
		return core.Amount{}, err
	}
	return core.ParseAmount(record.TotalSupply)
}

func (r *StateReader) BalanceOf(ctx context.Context, account core.Address) (core.Amount, error) {
	if r == nil || r.db == nil {
		return core.Amount{}, fmt.Errorf("sqlstore: state reader is not configured")
	}
	record := claimBalanceRecord{}
	err := r.db.NewSelect().
		Model(&record).
		Where("ledger = ?", r.ledger.Hex()).
		Where("account = ?", account.Hex()).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Amount{}, nil
	}
	if err != nil {
		return core.Amount{}, err
	}
	return core.ParseAmount(record.Balance)
}

func (r *StateReader) IsDeposited(ctx context.Context, id core.CollateralID) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("sqlstore: state reader is not configured")
	}
	return r.db.NewSelect().
		Model((*depositRecord)(nil)).
		Where("vault = ?", r.vault.Hex()).
		Where("collateral_id = ?", int64(id)).
		Exists(ctx)
}

// Deposited lists the collateral ids currently held by the vault, ascending.
func (r *StateReader) Deposited(ctx context.Context) ([]core.CollateralID, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("sqlstore: state reader is not configured")
	}
	var records []depositRecord
	if err := r.db.NewSelect().
		Model(&records).
		Where("vault = ?", r.vault.Hex()).
		Scan(ctx); err != nil {
		return nil, err
	}
	ids := make([]core.CollateralID, 0, len(records))
	for _, record := range records {
		ids = append(ids, core.CollateralID(record.CollateralID))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
