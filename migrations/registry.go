// Package migrations exposes the embedded custody schema per SQL dialect and
// registers it with a persistence client.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"

	custody "github.com/goliatone/go-custody"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	rootPath   = "data/sql/migrations"
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
	sqliteDir  = "sqlite"
)

// Source is the migration directory of one dialect. Versions lists the
// migration names in apply order, without the up/down suffix.
type Source struct {
	Dialect  string
	Path     string
	FS       fs.FS
	Versions []string
}

type RegisterFunc func(ctx context.Context, source Source) error

type Option func(*registration)

type registration struct {
	root     fs.FS
	dialects []string
}

// WithRoot replaces the embedded migrations with another tree laid out the
// same way (data/sql/migrations with a sqlite subdirectory).
func WithRoot(root fs.FS) Option {
	return func(r *registration) {
		if root != nil {
			r.root = root
		}
	}
}

// WithDialects limits registration to the named dialects. Unknown names are
// reported by Register.
func WithDialects(dialects ...string) Option {
	return func(r *registration) {
		next := make([]string, 0, len(dialects))
		for _, dialect := range dialects {
			if strings.TrimSpace(dialect) == "" {
				continue
			}
			next = append(next, dialect)
		}
		if len(next) > 0 {
			r.dialects = next
		}
	}
}

// NormalizeDialect maps driver and dialect spellings onto DialectPostgres or
// DialectSQLite.
func NormalizeDialect(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pg", "pgx":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("migrations: unsupported dialect %q", name)
	}
}

// Sources loads and checks the migration directories for both dialects.
// Every up migration needs a matching down migration and a unique numeric
// version prefix.
func Sources(root fs.FS) ([]Source, error) {
	if root == nil {
		root = custody.GetMigrationsFS()
	}
	base, err := fs.Sub(root, rootPath)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve %s: %w", rootPath, err)
	}
	sqliteFS, err := fs.Sub(base, sqliteDir)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite migrations: %w", err)
	}

	sources := []Source{
		{Dialect: DialectPostgres, Path: rootPath, FS: base},
		{Dialect: DialectSQLite, Path: rootPath + "/" + sqliteDir, FS: sqliteFS},
	}
	for idx := range sources {
		versions, err := versionsOf(sources[idx])
		if err != nil {
			return nil, err
		}
		sources[idx].Versions = versions
	}
	if !slices.Equal(sources[0].Versions, sources[1].Versions) {
		return nil, fmt.Errorf(
			"migrations: postgres and sqlite versions differ: %v vs %v",
			sources[0].Versions,
			sources[1].Versions,
		)
	}
	return sources, nil
}

// ForDialect returns the checked migration source of one dialect.
func ForDialect(dialect string, opts ...Option) (Source, error) {
	reg := newRegistration(opts...)
	normalized, err := NormalizeDialect(dialect)
	if err != nil {
		return Source{}, err
	}
	sources, err := Sources(reg.root)
	if err != nil {
		return Source{}, err
	}
	for _, source := range sources {
		if source.Dialect == normalized {
			return source, nil
		}
	}
	return Source{}, fmt.Errorf("migrations: no source for %s", normalized)
}

// Register hands every selected dialect source to registerFn. All dialects
// are selected by default.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) ([]Source, error) {
	if registerFn == nil {
		return nil, fmt.Errorf("migrations: register function is required")
	}
	reg := newRegistration(opts...)

	selected := make([]string, 0, len(reg.dialects))
	for _, dialect := range reg.dialects {
		normalized, err := NormalizeDialect(dialect)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(selected, normalized) {
			selected = append(selected, normalized)
		}
	}

	sources, err := Sources(reg.root)
	if err != nil {
		return nil, err
	}
	registered := make([]Source, 0, len(selected))
	for _, source := range sources {
		if !slices.Contains(selected, source.Dialect) {
			continue
		}
		if err := registerFn(ctx, source); err != nil {
			return registered, fmt.Errorf("migrations: register %s (%s): %w", source.Dialect, source.Path, err)
		}
		registered = append(registered, source)
	}
	return registered, nil
}

func newRegistration(opts ...Option) registration {
	reg := registration{
		root:     custody.GetMigrationsFS(),
		dialects: []string{DialectPostgres, DialectSQLite},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&reg)
		}
	}
	return reg
}

func versionsOf(source Source) ([]string, error) {
	ups, err := fs.Glob(source.FS, "*"+upSuffix)
	if err != nil {
		return nil, fmt.Errorf("migrations: glob %s: %w", source.Path, err)
	}
	if len(ups) == 0 {
		return nil, fmt.Errorf("migrations: %s has no %s files", source.Path, upSuffix)
	}
	slices.Sort(ups)

	seen := make(map[uint64]string, len(ups))
	versions := make([]string, 0, len(ups))
	for _, up := range ups {
		name := strings.TrimSuffix(up, upSuffix)
		number, err := versionNumber(name)
		if err != nil {
			return nil, fmt.Errorf("migrations: %s/%s: %w", source.Path, up, err)
		}
		if previous, ok := seen[number]; ok {
			return nil, fmt.Errorf("migrations: %s: %s and %s share version %d", source.Path, previous, name, number)
		}
		seen[number] = name
		if _, err := fs.Stat(source.FS, name+downSuffix); err != nil {
			return nil, fmt.Errorf("migrations: %s: missing %s%s", source.Path, name, downSuffix)
		}
		versions = append(versions, name)
	}
	return versions, nil
}

func versionNumber(name string) (uint64, error) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok || prefix == "" {
		return 0, fmt.Errorf("missing numeric version prefix")
	}
	number, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version prefix %q", prefix)
	}
	return number, nil
}
