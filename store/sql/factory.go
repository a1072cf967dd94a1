package sqlstore

import (
	"fmt"

	"github.com/goliatone/go-custody/core"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// RepositoryFactory builds the event store, projector and readers that share
// one database for a deployed ledger and vault.
type RepositoryFactory struct {
	db *bun.DB

	ledger core.Address
	vault  core.Address

	eventStore    *EventStore
	projector     *Projector
	stateReader   *StateReader
	balanceReader *CachedBalanceReader
}

func NewRepositoryFactory(ledger core.Address, vault core.Address) *RepositoryFactory {
	return &RepositoryFactory{ledger: ledger, vault: vault}
}

func NewRepositoryFactoryFromPersistence(
	client *persistence.Client,
	deployment core.Deployment,
	cacheService repositorycache.CacheService,
) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(deployment.Ledger, deployment.Vault)
	if err := factory.Build(client, cacheService); err != nil {
		return nil, err
	}
	return factory, nil
}

// Build resolves the bun db from persistenceClient and wires the stores. A
// nil cacheService leaves balance reads uncached.
func (f *RepositoryFactory) Build(persistenceClient any, cacheService repositorycache.CacheService) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.projector != nil {
		return nil
	}

	eventStore, err := NewEventStore(f.db)
	if err != nil {
		return err
	}
	stateReader, err := NewStateReader(f.db, f.ledger, f.vault)
	if err != nil {
		return err
	}
	var opts []ProjectorOption
	if cacheService != nil {
		balanceReader, err := NewCachedBalanceReader(stateReader, cacheService)
		if err != nil {
			return err
		}
		f.balanceReader = balanceReader
		opts = append(opts, WithBalanceInvalidator(balanceReader))
	}
	projector, err := NewProjector(f.db, f.ledger, f.vault, opts...)
	if err != nil {
		return err
	}

	f.eventStore = eventStore
	f.stateReader = stateReader
	f.projector = projector
	return nil
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) EventStore() *EventStore {
	if f == nil {
		return nil
	}
	return f.eventStore
}

func (f *RepositoryFactory) Projector() *Projector {
	if f == nil {
		return nil
	}
	return f.projector
}

func (f *RepositoryFactory) StateReader() *StateReader {
	if f == nil {
		return nil
	}
	return f.stateReader
}

// BalanceReader returns the cached reader when a cache was configured and
// the plain state reader otherwise.
func (f *RepositoryFactory) BalanceReader() BalanceSource {
	if f == nil {
		return nil
	}
	if f.balanceReader != nil {
		return f.balanceReader
	}
	return f.stateReader
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
