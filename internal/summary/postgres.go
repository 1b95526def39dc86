package summary

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// PostgresStore reads tenant metadata from the tenant's own schema. Table
// names are fixed; the schema identifier is sanitized and only ever comes from
// the catalog's enumeration, closing the identifier-interpolation injection
// vector of naive per-tenant queries.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a metadata store over the shared pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// table returns a safely quoted schema-qualified table reference.
func table(schemaName, tableName string) string {
	return pgx.Identifier{schemaName, tableName}.Sanitize()
}

// ReadOptions fetches the requested option keys from the tenant's options table.
func (s *PostgresStore) ReadOptions(ctx context.Context, schemaName string, keys []OptionKey) (map[OptionKey]string, error) {
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = string(k)
	}

	query := fmt.Sprintf(`
		SELECT option_name, option_value
		FROM %s
		WHERE option_name IN (%s)
	`, table(schemaName, "wp_options"), strings.Join(placeholders, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read options for %s: %w", schemaName, err)
	}
	defer rows.Close()

	options := make(map[OptionKey]string, len(keys))
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan option row: %w", err)
		}
		options[OptionKey(name)] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate options: %w", err)
	}
	return options, nil
}

// CountUsers counts user rows in the tenant schema.
func (s *PostgresStore) CountUsers(ctx context.Context, schemaName string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table(schemaName, "wp_users"))

	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users for %s: %w", schemaName, err)
	}
	return count, nil
}

// CountPublished counts published rows of one post type. The status filter is
// fixed: unpublished content must never be counted.
func (s *PostgresStore) CountPublished(ctx context.Context, schemaName, postType string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE post_status = 'publish' AND post_type = $1
	`, table(schemaName, "wp_posts"))

	var count int
	if err := s.db.QueryRowContext(ctx, query, postType).Scan(&count); err != nil {
		return 0, fmt.Errorf("count published %s for %s: %w", postType, schemaName, err)
	}
	return count, nil
}

// SchemaSizeMB sums relation sizes across the tenant schema.
func (s *PostgresStore) SchemaSizeMB(ctx context.Context, schemaName string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(pg_total_relation_size(c.oid)), 0) / 1024.0 / 1024.0
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relkind IN ('r', 'm')
	`

	var sizeMB float64
	if err := s.db.QueryRowContext(ctx, query, schemaName).Scan(&sizeMB); err != nil {
		return 0, fmt.Errorf("schema size for %s: %w", schemaName, err)
	}
	return sizeMB, nil
}
