//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"farmgate/internal/catalog"
	"farmgate/migrations"
)

// PostgresContainer wraps a testcontainers Postgres instance.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a new Postgres container with migrations applied.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("farmgate_test"),
		postgres.WithUsername("farmgate"),
		postgres.WithPassword("farmgate_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	pc := &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
	}

	if err := pc.runMigrations(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to run migrations: %v", err)
	}

	// No t.Cleanup here: the container is shared via the singleton Manager
	// and reclaimed by the testcontainers reaper when the process exits.
	return pc
}

// runMigrations executes all *.up.sql migrations from the embedded migrations.FS.
func (p *PostgresContainer) runMigrations(ctx context.Context) error {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := fs.ReadFile(migrations.FS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := p.DB.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("execute migration %s: %w", file, err)
		}
	}
	return nil
}

// CreateTenantSchema provisions a tenant schema with the standard tables and
// seeds its configuration. Fails the test on error.
func (p *PostgresContainer) CreateTenantSchema(ctx context.Context, t testing.TB, tenantID string, options map[string]string) {
	t.Helper()

	schema := catalog.SchemaName(tenantID)
	stmts := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %q`, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q.wp_options (
			option_id BIGSERIAL PRIMARY KEY,
			option_name TEXT NOT NULL UNIQUE,
			option_value TEXT NOT NULL
		)`, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q.wp_users (
			id BIGSERIAL PRIMARY KEY,
			user_login TEXT NOT NULL
		)`, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q.wp_posts (
			id BIGSERIAL PRIMARY KEY,
			post_type TEXT NOT NULL,
			post_status TEXT NOT NULL
		)`, schema),
	}
	for _, stmt := range stmts {
		if _, err := p.DB.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("provision schema %s: %v", schema, err)
		}
	}

	for name, value := range options {
		_, err := p.DB.ExecContext(ctx, fmt.Sprintf(
			`INSERT INTO %q.wp_options (option_name, option_value) VALUES ($1, $2)
			 ON CONFLICT (option_name) DO UPDATE SET option_value = EXCLUDED.option_value`, schema),
			name, value)
		if err != nil {
			t.Fatalf("seed option %s for %s: %v", name, schema, err)
		}
	}
}

// DropTenantSchema removes a tenant schema and everything in it.
func (p *PostgresContainer) DropTenantSchema(ctx context.Context, t testing.TB, tenantID string) {
	t.Helper()
	schema := catalog.SchemaName(tenantID)
	if _, err := p.DB.ExecContext(ctx, fmt.Sprintf(`DROP SCHEMA IF EXISTS %q CASCADE`, schema)); err != nil {
		t.Fatalf("drop schema %s: %v", schema, err)
	}
}

// TruncateAudit clears the audit trail between tests.
func (p *PostgresContainer) TruncateAudit(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE audit_records")
	return err
}

// Exec runs a SQL statement.
func (p *PostgresContainer) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return p.DB.ExecContext(ctx, query, args...)
}

// QueryRow runs a SQL query expected to return a single row.
func (p *PostgresContainer) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return p.DB.QueryRowContext(ctx, query, args...)
}
