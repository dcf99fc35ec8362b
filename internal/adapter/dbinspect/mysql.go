package dbinspect

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

const myColumnsQuery = `
SELECT c.TABLE_SCHEMA, c.TABLE_NAME, c.COLUMN_NAME, c.COLUMN_TYPE, c.IS_NULLABLE = 'YES', c.COLUMN_KEY = 'PRI'
FROM information_schema.COLUMNS c
JOIN information_schema.TABLES t
  ON t.TABLE_SCHEMA = c.TABLE_SCHEMA AND t.TABLE_NAME = c.TABLE_NAME
WHERE c.TABLE_SCHEMA = DATABASE() AND t.TABLE_TYPE = 'BASE TABLE'
ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION`

const myForeignKeysQuery = `
SELECT TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
FROM information_schema.KEY_COLUMN_USAGE
WHERE TABLE_SCHEMA = DATABASE() AND REFERENCED_TABLE_NAME IS NOT NULL`

type mysqlInspector struct{}

func mysqlDSN(t Target) string {
	cfg := mysql.NewConfig()
	cfg.User = t.Username
	cfg.Passwd = t.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
	cfg.DBName = t.Database
	cfg.ParseTime = true
	if t.SSL {
		cfg.TLSConfig = "true"
	}
	return cfg.FormatDSN()
}

func (m *mysqlInspector) open(ctx context.Context, t Target) (*sql.DB, error) {
	db, err := sql.Open("mysql", mysqlDSN(t))
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}
	return db, nil
}

func (m *mysqlInspector) Ping(ctx context.Context, t Target) error {
	db, err := m.open(ctx, t)
	if err != nil {
		return err
	}
	return db.Close()
}

func (m *mysqlInspector) Tables(ctx context.Context, t Target) ([]Table, error) {
	db, err := m.open(ctx, t)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, myColumnsQuery)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []columnRow
	var keys []keyRow
	for rows.Next() {
		var c columnRow
		var primary bool
		if err := rows.Scan(&c.Schema, &c.Table, &c.Column, &c.Type, &c.Nullable, &primary); err != nil {
			return nil, fmt.Errorf("scan columns: %w", err)
		}
		columns = append(columns, c)
		if primary {
			keys = append(keys, keyRow{Schema: c.Schema, Table: c.Table, Column: c.Column, Primary: true})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan columns: %w", err)
	}

	fkRows, err := db.QueryContext(ctx, myForeignKeysQuery)
	if err != nil {
		return nil, fmt.Errorf("query foreign keys: %w", err)
	}
	defer fkRows.Close()

	for fkRows.Next() {
		var k keyRow
		var refTable, refColumn string
		if err := fkRows.Scan(&k.Schema, &k.Table, &k.Column, &refTable, &refColumn); err != nil {
			return nil, fmt.Errorf("scan foreign keys: %w", err)
		}
		k.References = refTable + "." + refColumn
		keys = append(keys, k)
	}
	if err := fkRows.Err(); err != nil {
		return nil, fmt.Errorf("scan foreign keys: %w", err)
	}

	return assemble(columns, keys), nil
}
