package tenantdb

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anyrent/shopkit/pkg/pg"
	"github.com/anyrent/shopkit/pkg/slug"
)

// ProvisionerConfig configures tenant database provisioning.
type ProvisionerConfig struct {
	AdminConnString string `env:"TENANT_ADMIN_CONN_URL,required"`                        // AdminConnString connects to the maintenance database with CREATEDB rights.
	MigrationsPath  string `env:"TENANT_MIGRATIONS_PATH" envDefault:"migrations/tenant"` // MigrationsPath is the tenant schema migrations directory.
	DatabasePrefix  string `env:"TENANT_DB_PREFIX" envDefault:"rent_"`                   // DatabasePrefix namespaces tenant databases on the cluster.
}

// Execer runs a single SQL statement on the maintenance database.
// *pgx.Conn and *pgxpool.Pool both satisfy it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Migrator applies the tenant schema to a freshly created database.
type Migrator func(ctx context.Context, connString string) error

// Provisioner creates isolated tenant databases on merchant signup.
//
// Provisioning is destructive-but-idempotent: an existing database with
// the derived name is dropped and recreated, guaranteeing a clean slate.
// Callers must therefore enforce subdomain uniqueness at the registry
// level before invoking it, so a retry can only ever clobber the empty
// database left behind by its own failed attempt.
type Provisioner struct {
	cfg     ProvisionerConfig
	admin   Execer
	migrate Migrator
	log     *slog.Logger
}

// ProvisionerOption configures a Provisioner.
type ProvisionerOption func(*Provisioner)

// WithExecer overrides the maintenance database connection.
func WithExecer(admin Execer) ProvisionerOption {
	return func(p *Provisioner) {
		if admin != nil {
			p.admin = admin
		}
	}
}

// WithMigrator overrides how the tenant schema is applied.
func WithMigrator(m Migrator) ProvisionerOption {
	return func(p *Provisioner) {
		if m != nil {
			p.migrate = m
		}
	}
}

// WithProvisionerLogger sets the logger for provisioning steps.
func WithProvisionerLogger(log *slog.Logger) ProvisionerOption {
	return func(p *Provisioner) {
		if log != nil {
			p.log = log
		}
	}
}

// NewProvisioner creates a provisioner. Unless WithExecer is given it
// connects to the maintenance database eagerly so a misconfigured admin
// connection fails at startup, not on the first signup.
func NewProvisioner(ctx context.Context, cfg ProvisionerConfig, opts ...ProvisionerOption) (*Provisioner, error) {
	p := &Provisioner{
		cfg: cfg,
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.admin == nil {
		conn, err := pgx.Connect(ctx, cfg.AdminConnString)
		if err != nil {
			return nil, fmt.Errorf("connect maintenance database: %w", err)
		}
		p.admin = conn
	}
	if p.migrate == nil {
		p.migrate = defaultMigrator(cfg.MigrationsPath, p.log)
	}
	return p, nil
}

// DatabaseName derives the tenant database name from a subdomain,
// sanitized to a safe lowercase identifier. The mapping is
// deterministic so re-provisioning the same subdomain always targets
// the same database.
func DatabaseName(prefix, subdomain string) (string, error) {
	name := slug.Make(subdomain, slug.Separator("_"), slug.MaxLength(48))
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidSubdomain, subdomain)
	}
	return prefix + name, nil
}

// Provision creates a fresh isolated database for the subdomain,
// applies the full tenant schema, and returns its connection string.
// Any step failure propagates unwrapped in meaning: a failed provision
// may leave an empty database behind, which the next attempt drops.
func (p *Provisioner) Provision(ctx context.Context, subdomain string) (string, error) {
	name, err := DatabaseName(p.cfg.DatabasePrefix, subdomain)
	if err != nil {
		return "", err
	}
	ident := pgx.Identifier{name}.Sanitize()

	p.log.InfoContext(ctx, "provisioning tenant database", "tenant", subdomain, "database", name)

	// DROP/CREATE DATABASE cannot run inside a transaction, hence two
	// separate statements on the maintenance connection.
	if _, err := p.admin.Exec(ctx, "DROP DATABASE IF EXISTS "+ident); err != nil {
		return "", fmt.Errorf("drop database %s: %w", name, err)
	}
	if _, err := p.admin.Exec(ctx, "CREATE DATABASE "+ident); err != nil {
		return "", fmt.Errorf("create database %s: %w", name, err)
	}

	connString, err := ConnStringForDatabase(p.cfg.AdminConnString, name)
	if err != nil {
		return "", err
	}

	if err := p.migrate(ctx, connString); err != nil {
		return "", fmt.Errorf("migrate tenant database %s: %w", name, err)
	}

	p.log.InfoContext(ctx, "tenant database ready", "tenant", subdomain, "database", name)
	return connString, nil
}

// ConnStringForDatabase swaps the database component of a postgres URL.
func ConnStringForDatabase(connString, database string) (string, error) {
	u, err := url.Parse(connString)
	if err != nil {
		return "", fmt.Errorf("parse connection string: %w", err)
	}
	u.Path = "/" + database
	return u.String(), nil
}

// defaultMigrator opens a short-lived pool against the new database and
// runs goose migrations up to latest.
func defaultMigrator(migrationsPath string, log *slog.Logger) Migrator {
	return func(ctx context.Context, connString string) error {
		pool, err := pgxpool.New(ctx, connString)
		if err != nil {
			return err
		}
		defer pool.Close()

		return pg.Migrate(ctx, pool, pg.Config{
			ConnString:      connString,
			MigrationsPath:  migrationsPath,
			MigrationsTable: "schema_migrations",
		}, log)
	}
}
