package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-custody/core"
	"github.com/uptrace/bun"
)

// BalanceInvalidator drops cached balance reads once a projection committed.
type BalanceInvalidator interface {
	InvalidateBalance(ctx context.Context, ledger core.Address, account core.Address) error
}

type ProjectorOption func(*Projector)

func WithBalanceInvalidator(invalidator BalanceInvalidator) ProjectorOption {
	return func(p *Projector) {
		p.invalidator = invalidator
	}
}

// Projector persists committed events and folds them into the claim balance,
// supply and deposit tables. Each sequence is applied once: a batch that was
// already stored only re-runs the cache invalidation.
type Projector struct {
	db          *bun.DB
	events      *EventStore
	ledger      core.Address
	vault       core.Address
	invalidator BalanceInvalidator
}

func NewProjector(db *bun.DB, ledger core.Address, vault core.Address, opts ...ProjectorOption) (*Projector, error) {
	if ledger == core.ZeroAddress {
		return nil, fmt.Errorf("sqlstore: projector ledger address is required")
	}
	if vault == core.ZeroAddress {
		return nil, fmt.Errorf("sqlstore: projector vault address is required")
	}
	events, err := NewEventStore(db)
	if err != nil {
		return nil, err
	}
	projector := &Projector{db: db, events: events, ledger: ledger, vault: vault}
	for _, opt := range opts {
		if opt != nil {
			opt(projector)
		}
	}
	return projector, nil
}

func (p *Projector) Events() *EventStore {
	if p == nil {
		return nil
	}
	return p.events
}

func (p *Projector) HandleEvents(ctx context.Context, events []core.Event) error {
	if p == nil || p.db == nil || p.events == nil {
		return fmt.Errorf("sqlstore: projector is not configured")
	}
	if len(events) == 0 {
		return nil
	}
	var touched []core.Address
	err := p.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		touched = touched[:0]
		for _, evt := range events {
			applied, err := p.events.appendTx(ctx, tx, evt)
			if err != nil {
				return err
			}
			if !applied {
				continue
			}
			accounts, err := p.applyTx(ctx, tx, evt)
			if err != nil {
				return fmt.Errorf("sqlstore: project event %d (%s): %w", evt.Sequence, evt.Type, err)
			}
			touched = append(touched, accounts...)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return p.invalidate(ctx, touched)
}

func (p *Projector) applyTx(ctx context.Context, tx bun.Tx, evt core.Event) ([]core.Address, error) {
	switch evt.Type {
	case core.EventClaimTransfer:
		if evt.Contract != p.ledger {
			return nil, nil
		}
		return p.applyClaimTransferTx(ctx, tx, evt)
	case core.EventCollateralDeposited:
		if evt.Contract != p.vault {
			return nil, nil
		}
		return nil, p.upsertDepositTx(ctx, tx, evt)
	case core.EventCollateralWithdrawn:
		if evt.Contract != p.vault {
			return nil, nil
		}
		_, err := tx.NewDelete().
			Model((*depositRecord)(nil)).
			Where("vault = ?", p.vault.Hex()).
			Where("collateral_id = ?", int64(evt.CollateralID)).
			Exec(ctx)
		return nil, err
	default:
		return nil, nil
	}
}

func (p *Projector) applyClaimTransferTx(ctx context.Context, tx bun.Tx, evt core.Event) ([]core.Address, error) {
	var touched []core.Address
	amount := evt.Amount
	if evt.From == core.ZeroAddress {
		if err := p.adjustSupplyTx(ctx, tx, amount, true, evt.Sequence); err != nil {
			return nil, err
		}
	} else {
		if err := p.adjustBalanceTx(ctx, tx, evt.From, amount, false, evt.Sequence); err != nil {
			return nil, err
		}
		touched = append(touched, evt.From)
	}
	if evt.To == core.ZeroAddress {
		if err := p.adjustSupplyTx(ctx, tx, amount, false, evt.Sequence); err != nil {
			return nil, err
		}
	} else {
		if err := p.adjustBalanceTx(ctx, tx, evt.To, amount, true, evt.Sequence); err != nil {
			return nil, err
		}
		touched = append(touched, evt.To)
	}
	return touched, nil
}

func (p *Projector) adjustBalanceTx(
	ctx context.Context,
	tx bun.Tx,
	account core.Address,
	delta core.Amount,
	credit bool,
	sequence uint64,
) error {
	record := claimBalanceRecord{}
	err := tx.NewSelect().
		Model(&record).
		Where("ledger = ?", p.ledger.Hex()).
		Where("account = ?", account.Hex()).
		Limit(1).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	current := core.Amount{}
	if record.Balance != "" {
		if current, err = core.ParseAmount(record.Balance); err != nil {
			return err
		}
	}
	next, err := applyDelta(current, delta, credit)
	if err != nil {
		return fmt.Errorf("balance of %s: %w", account.Hex(), err)
	}
	if next.IsZero() {
		_, err := tx.NewDelete().
			Model((*claimBalanceRecord)(nil)).
			Where("ledger = ?", p.ledger.Hex()).
			Where("account = ?", account.Hex()).
			Exec(ctx)
		return err
	}
	updated := &claimBalanceRecord{
		Ledger:       p.ledger.Hex(),
		Account:      account.Hex(),
		Balance:      core.FormatAmount(next),
		LastSequence: maxSequence(record.LastSequence, sequence),
		UpdatedAt:    time.Now().UTC(),
	}
	_, err = tx.NewInsert().
		Model(updated).
		On("CONFLICT (ledger, account) DO UPDATE").
		Set("balance = EXCLUDED.balance").
		Set("last_sequence = EXCLUDED.last_sequence").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (p *Projector) adjustSupplyTx(ctx context.Context, tx bun.Tx, delta core.Amount, credit bool, sequence uint64) error {
	record := supplyRecord{}
	err := tx.NewSelect().
		Model(&record).
		Where("ledger = ?", p.ledger.Hex()).
		Limit(1).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	current := core.Amount{}
	if record.TotalSupply != "" {
		if current, err = core.ParseAmount(record.TotalSupply); err != nil {
			return err
		}
	}
	next, err := applyDelta(current, delta, credit)
	if err != nil {
		return fmt.Errorf("total supply: %w", err)
	}
	updated := &supplyRecord{
		Ledger:       p.ledger.Hex(),
		TotalSupply:  core.FormatAmount(next),
		LastSequence: maxSequence(record.LastSequence, sequence),
		UpdatedAt:    time.Now().UTC(),
	}
	_, err = tx.NewInsert().
		Model(updated).
		On("CONFLICT (ledger) DO UPDATE").
		Set("total_supply = EXCLUDED.total_supply").
		Set("last_sequence = EXCLUDED.last_sequence").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (p *Projector) upsertDepositTx(ctx context.Context, tx bun.Tx, evt core.Event) error {
	occurredAt := evt.OccurredAt.UTC()
	if evt.OccurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	record := &depositRecord{
		Vault:        p.vault.Hex(),
		CollateralID: int64(evt.CollateralID),
		Depositor:    evt.From.Hex(),
		ClaimAmount:  core.FormatAmount(evt.Amount),
		LastSequence: int64(evt.Sequence),
		DepositedAt:  occurredAt,
	}
	_, err := tx.NewInsert().
		Model(record).
		On("CONFLICT (vault, collateral_id) DO UPDATE").
		Set("depositor = EXCLUDED.depositor").
		Set("claim_amount = EXCLUDED.claim_amount").
		Set("last_sequence = EXCLUDED.last_sequence").
		Set("deposited_at = EXCLUDED.deposited_at").
		Exec(ctx)
	return err
}

func (p *Projector) invalidate(ctx context.Context, accounts []core.Address) error {
	if p.invalidator == nil || len(accounts) == 0 {
		return nil
	}
	seen := make(map[core.Address]struct{}, len(accounts))
	var errs []error
	for _, account := range accounts {
		if _, ok := seen[account]; ok {
			continue
		}
		seen[account] = struct{}{}
		if err := p.invalidator.InvalidateBalance(ctx, p.ledger, account); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("sqlstore: invalidate cached balances: %w", errors.Join(errs...))
	}
	return nil
}

// applyDelta fails on underflow so an out-of-order debit rolls the batch
// back and can be retried once its credit landed.
func applyDelta(current core.Amount, delta core.Amount, credit bool) (core.Amount, error) {
	var out core.Amount
	if credit {
		if _, overflow := out.AddOverflow(&current, &delta); overflow {
			return core.Amount{}, fmt.Errorf("amount overflow")
		}
		return out, nil
	}
	if _, underflow := out.SubOverflow(&current, &delta); underflow {
		return core.Amount{}, fmt.Errorf("amount underflow: have %s, need %s", current.Dec(), delta.Dec())
	}
	return out, nil
}

func maxSequence(stored int64, sequence uint64) int64 {
	if int64(sequence) > stored {
		return int64(sequence)
	}
	return stored
}
