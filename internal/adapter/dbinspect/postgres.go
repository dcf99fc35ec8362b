package dbinspect

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
)

const pgColumnsQuery = `
SELECT c.table_schema, c.table_name, c.column_name, c.data_type, c.is_nullable = 'YES'
FROM information_schema.columns c
JOIN information_schema.tables t
  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
WHERE t.table_type = 'BASE TABLE'
  AND c.table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY c.table_schema, c.table_name, c.ordinal_position`

const pgKeysQuery = `
SELECT kcu.table_schema, kcu.table_name, kcu.column_name,
       tc.constraint_type = 'PRIMARY KEY',
       ccu.table_schema, ccu.table_name, ccu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
LEFT JOIN information_schema.constraint_column_usage ccu
  ON tc.constraint_type = 'FOREIGN KEY'
 AND ccu.constraint_name = tc.constraint_name AND ccu.constraint_schema = tc.table_schema
WHERE tc.constraint_type IN ('PRIMARY KEY', 'FOREIGN KEY')
  AND tc.table_schema NOT IN ('pg_catalog', 'information_schema')`

type postgresInspector struct{}

// postgresURL builds the connection URL, escaping credentials
func postgresURL(t Target) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(t.Username, t.Password),
		Host:   net.JoinHostPort(t.Host, strconv.Itoa(t.Port)),
		Path:   "/" + t.Database,
	}
	q := url.Values{}
	if t.SSL {
		q.Set("sslmode", "require")
	} else {
		q.Set("sslmode", "disable")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (p *postgresInspector) connect(ctx context.Context, t Target) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, postgresURL(t))
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return conn, nil
}

func (p *postgresInspector) Ping(ctx context.Context, t Target) error {
	conn, err := p.connect(ctx, t)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("error pinging database: %w", err)
	}
	return nil
}

func (p *postgresInspector) Tables(ctx context.Context, t Target) ([]Table, error) {
	conn, err := p.connect(ctx, t)
	if err != nil {
		return nil, err
	}
	defer conn.Close(context.Background())

	rows, err := conn.Query(ctx, pgColumnsQuery)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	columns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (columnRow, error) {
		var c columnRow
		err := row.Scan(&c.Schema, &c.Table, &c.Column, &c.Type, &c.Nullable)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan columns: %w", err)
	}

	rows, err = conn.Query(ctx, pgKeysQuery)
	if err != nil {
		return nil, fmt.Errorf("query keys: %w", err)
	}
	keys, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (keyRow, error) {
		var k keyRow
		var refSchema, refTable, refColumn *string
		if err := row.Scan(&k.Schema, &k.Table, &k.Column, &k.Primary, &refSchema, &refTable, &refColumn); err != nil {
			return k, err
		}
		if !k.Primary && refTable != nil && refColumn != nil {
			k.References = *refTable + "." + *refColumn
			if refSchema != nil && *refSchema != "" {
				k.References = *refSchema + "." + k.References
			}
		}
		return k, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan keys: %w", err)
	}

	return assemble(columns, keys), nil
}
