package dbinspect

import (
	"context"
	"fmt"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Target is a decrypted connection description
type Target struct {
	Driver   string
	Host     string
	Port     int
	Username string
	Password string
	Database string
	SSL      bool
}

type Column struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
	ForeignKey bool
	References string // schema.table.column or table.column
}

type Table struct {
	Schema  string
	Name    string
	Columns []Column
}

// Inspector reaches a project's target database
type Inspector interface {
	Ping(ctx context.Context, t Target) error
	Tables(ctx context.Context, t Target) ([]Table, error)
}

// New returns the inspector dispatching on Target.Driver. timeout bounds every call.
func New(timeout time.Duration) Inspector {
	return &dispatcher{
		timeout: timeout,
		drivers: map[string]Inspector{
			DriverPostgres: &postgresInspector{},
			DriverMySQL:    &mysqlInspector{},
		},
	}
}

type dispatcher struct {
	timeout time.Duration
	drivers map[string]Inspector
}

func (d *dispatcher) pick(t Target) (Inspector, error) {
	in, ok := d.drivers[t.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q", t.Driver)
	}
	return in, nil
}

func (d *dispatcher) Ping(ctx context.Context, t Target) error {
	in, err := d.pick(t)
	if err != nil {
		return err
	}
	ctx, cancel := d.bound(ctx)
	defer cancel()
	return in.Ping(ctx, t)
}

func (d *dispatcher) Tables(ctx context.Context, t Target) ([]Table, error) {
	in, err := d.pick(t)
	if err != nil {
		return nil, err
	}
	ctx, cancel := d.bound(ctx)
	defer cancel()
	return in.Tables(ctx, t)
}

func (d *dispatcher) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.timeout)
}

// columnRow and keyRow are the raw information_schema rows both drivers produce
type columnRow struct {
	Schema   string
	Table    string
	Column   string
	Type     string
	Nullable bool
}

type keyRow struct {
	Schema     string
	Table      string
	Column     string
	Primary    bool
	References string
}

// assemble groups column rows into tables in first-seen order and applies key rows
func assemble(columns []columnRow, keys []keyRow) []Table {
	type tableKey struct{ schema, table string }
	index := make(map[tableKey]int)
	tables := make([]Table, 0)

	for _, c := range columns {
		k := tableKey{c.Schema, c.Table}
		i, ok := index[k]
		if !ok {
			i = len(tables)
			index[k] = i
			tables = append(tables, Table{Schema: c.Schema, Name: c.Table})
		}
		tables[i].Columns = append(tables[i].Columns, Column{
			Name:     c.Column,
			Type:     c.Type,
			Nullable: c.Nullable,
		})
	}

	for _, key := range keys {
		i, ok := index[tableKey{key.Schema, key.Table}]
		if !ok {
			continue
		}
		for j := range tables[i].Columns {
			col := &tables[i].Columns[j]
			if col.Name != key.Column {
				continue
			}
			if key.Primary {
				col.PrimaryKey = true
			}
			if key.References != "" {
				col.ForeignKey = true
				col.References = key.References
			}
		}
	}

	return tables
}
