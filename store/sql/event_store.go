package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-custody/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const defaultEventPageSize = 100

// EventStore appends committed custody events and pages them back by
// sequence. A sequence is stored at most once, so replays are no-ops.
type EventStore struct {
	db   *bun.DB
	repo repository.Repository[*eventRecord]
}

func NewEventStore(db *bun.DB) (*EventStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*eventRecord](db, eventHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid custody event repository wiring: %w", err)
		}
	}
	return &EventStore{db: db, repo: repo}, nil
}

// Append stores events in one transaction and returns how many were new.
func (s *EventStore) Append(ctx context.Context, events []core.Event) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: custody event store is not configured")
	}
	if len(events) == 0 {
		return 0, nil
	}
	appended := 0
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		appended = 0
		for _, evt := range events {
			applied, err := s.appendTx(ctx, tx, evt)
			if err != nil {
				return err
			}
			if applied {
				appended++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return appended, nil
}

// HandleEvents lets the store act as an executor sink on its own.
func (s *EventStore) HandleEvents(ctx context.Context, events []core.Event) error {
	_, err := s.Append(ctx, events)
	return err
}

func (s *EventStore) appendTx(ctx context.Context, tx bun.Tx, evt core.Event) (bool, error) {
	if evt.Sequence == 0 {
		return false, fmt.Errorf("sqlstore: event sequence is required")
	}
	if evt.Type == "" {
		return false, fmt.Errorf("sqlstore: event type is required")
	}
	record := newEventRecord(evt)
	record.ID = uuid.NewString()
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now().UTC()
	}
	record.CreatedAt = time.Now().UTC()

	res, err := tx.NewInsert().
		Model(record).
		On("CONFLICT (sequence) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (s *EventStore) List(ctx context.Context, filter core.EventFilter) (core.EventPage, error) {
	if s == nil || s.repo == nil {
		return core.EventPage{}, fmt.Errorf("sqlstore: custody event store is not configured")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultEventPageSize
	}

	criteria := []repository.SelectCriteria{
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.sequence > ?", int64(filter.AfterSequence))
		}),
	}
	if len(filter.Types) > 0 {
		types := make([]string, 0, len(filter.Types))
		for _, eventType := range filter.Types {
			types = append(types, string(eventType))
		}
		criteria = append(criteria, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.event_type IN (?)", bun.In(types))
		}))
	}
	if filter.Contract != core.ZeroAddress {
		criteria = append(criteria, repository.SelectBy("contract", "=", filter.Contract.Hex()))
	}
	if filter.CollateralID != nil {
		collateralID := int64(*filter.CollateralID)
		criteria = append(criteria, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.collateral_id = ?", collateralID)
		}))
	}
	criteria = append(criteria,
		repository.OrderBy("sequence ASC"),
		repository.SelectPaginate(limit+1, 0),
	)

	records, _, err := s.repo.List(ctx, criteria...)
	if err != nil {
		return core.EventPage{}, err
	}

	page := core.EventPage{NextSequence: filter.AfterSequence}
	if len(records) > limit {
		page.HasMore = true
		records = records[:limit]
	}
	page.Events = make([]core.Event, 0, len(records))
	for _, record := range records {
		evt, err := record.toDomain()
		if err != nil {
			return core.EventPage{}, fmt.Errorf("sqlstore: decode event %d: %w", record.Sequence, err)
		}
		page.Events = append(page.Events, evt)
		page.NextSequence = evt.Sequence
	}
	return page, nil
}

// LastSequence returns the highest stored sequence, or zero when empty.
func (s *EventStore) LastSequence(ctx context.Context) (uint64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: custody event store is not configured")
	}
	var last int64
	err := s.db.NewSelect().
		Model((*eventRecord)(nil)).
		ColumnExpr("COALESCE(MAX(?TableAlias.sequence), 0)").
		Scan(ctx, &last)
	if err != nil {
		return 0, err
	}
	return uint64(last), nil
}
