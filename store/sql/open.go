package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-custody/core"
	custodymigrations "github.com/goliatone/go-custody/migrations"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const defaultPingTimeout = 5 * time.Second

var memoryDatabaseSeq atomic.Uint64

type persistenceConfig struct {
	driver string
	server string
	debug  bool
}

func (c persistenceConfig) GetDebug() bool {
	return c.debug
}

func (c persistenceConfig) GetDriver() string {
	return c.driver
}

func (c persistenceConfig) GetServer() string {
	return c.server
}

func (c persistenceConfig) GetPingTimeout() time.Duration {
	return defaultPingTimeout
}

func (c persistenceConfig) GetOtelIdentifier() string {
	return "go-custody"
}

type driverSpec struct {
	driver  string
	dialect string
	bun     func() schema.Dialect
}

func resolveDriver(name string) (driverSpec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return driverSpec{
			driver:  "sqlite3",
			dialect: custodymigrations.DialectSQLite,
			bun:     func() schema.Dialect { return sqlitedialect.New() },
		}, nil
	case "postgres", "postgresql":
		return driverSpec{
			driver:  "postgres",
			dialect: custodymigrations.DialectPostgres,
			bun:     func() schema.Dialect { return pgdialect.New() },
		}, nil
	default:
		return driverSpec{}, fmt.Errorf("sqlstore: unsupported driver %q", name)
	}
}

// Open connects the configured database, registers the custody migrations
// for its dialect and applies them. An empty sqlite DSN opens a private
// in-memory database.
func Open(ctx context.Context, cfg core.PersistenceConfig) (*persistence.Client, error) {
	spec, err := resolveDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		if spec.dialect != custodymigrations.DialectSQLite {
			return nil, fmt.Errorf("sqlstore: dsn is required for %s", spec.driver)
		}
		dsn = fmt.Sprintf(
			"file:custody-%d-%d?mode=memory&cache=shared&_foreign_keys=on",
			time.Now().UnixNano(),
			memoryDatabaseSeq.Add(1),
		)
	}

	sqlDB, err := sql.Open(spec.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", spec.driver, err)
	}
	if spec.dialect == custodymigrations.DialectSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := persistence.New(persistenceConfig{
		driver: spec.driver,
		server: dsn,
		debug:  cfg.Debug,
	}, sqlDB, spec.bun())
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}

	_, err = custodymigrations.Register(ctx, func(_ context.Context, source custodymigrations.Source) error {
		client.RegisterSQLMigrations(source.FS)
		return nil
	}, custodymigrations.WithDialects(spec.dialect))
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return client, nil
}
