package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresLister enumerates tenant schemas from information_schema.
type PostgresLister struct {
	db *sql.DB
}

// NewPostgresLister constructs a schema lister over the shared pool.
func NewPostgresLister(db *sql.DB) *PostgresLister {
	return &PostgresLister{db: db}
}

// ListSchemas returns every schema matching the tenant naming convention.
func (l *PostgresLister) ListSchemas(ctx context.Context) ([]string, error) {
	query := `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name LIKE $1 ESCAPE '\'
	`

	rows, err := l.db.QueryContext(ctx, query, likePattern(SchemaPrefix))
	if err != nil {
		return nil, fmt.Errorf("list tenant schemas: %w", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan schema name: %w", err)
		}
		schemas = append(schemas, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schemas: %w", err)
	}
	return schemas, nil
}

// SchemaExists reports whether the named schema is present.
func (l *PostgresLister) SchemaExists(ctx context.Context, schemaName string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.schemata WHERE schema_name = $1
		)
	`

	var exists bool
	if err := l.db.QueryRowContext(ctx, query, schemaName).Scan(&exists); err != nil {
		return false, fmt.Errorf("check schema %s: %w", schemaName, err)
	}
	return exists, nil
}

// likePattern escapes LIKE metacharacters in the prefix and appends the
// wildcard, so underscores in the prefix match literally.
func likePattern(prefix string) string {
	escaped := make([]byte, 0, len(prefix)+4)
	for i := 0; i < len(prefix); i++ {
		switch prefix[i] {
		case '_', '%', '\\':
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, prefix[i])
	}
	return string(escaped) + "%"
}
