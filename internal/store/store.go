// Package store provides typed access to the raw, main and mapping tables
// of the reconciliation pipeline.
package store

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/datapulse/datapulse-cli/internal/db"
)

// Entity identifies one of the four entity families. Each entity has a raw
// table, a main table and a mapping table.
type Entity string

const (
	Customers Entity = "customers"
	Products  Entity = "products"
	Orders    Entity = "orders"
	Sales     Entity = "sales"
)

// AllEntities lists the entities in promotion dependency order: customers
// and products before orders, orders before sales.
var AllEntities = []Entity{Customers, Products, Orders, Sales}

func (e Entity) singular() string { return strings.TrimSuffix(string(e), "s") }

// RawTable returns the staging table name, e.g. "customers_raw".
func (e Entity) RawTable() string { return string(e) + "_raw" }

// MainTable returns the canonical table name, e.g. "customers".
func (e Entity) MainTable() string { return string(e) }

// MappingTable returns the raw-to-main association table, e.g. "customer_mapping".
func (e Entity) MappingTable() string { return e.singular() + "_mapping" }

// IDColumn returns the primary key column shared by the raw and main tables.
func (e Entity) IDColumn() string { return e.singular() + "_id" }

// RawMapColumn returns the mapping column holding the raw identity.
func (e Entity) RawMapColumn() string { return "raw_" + e.singular() + "_id" }

// MainMapColumn returns the mapping column holding the main identity.
func (e Entity) MainMapColumn() string { return "main_" + e.singular() + "_id" }

// Store provides database operations over a pgx pool.
type Store struct {
	pool db.Pool
}

// New creates a Store backed by the given connection pool.
func New(pool db.Pool) *Store {
	return &Store{pool: pool}
}

// Pool returns the underlying pool for subsystems that manage their own
// transactions (migration, sweeping).
func (s *Store) Pool() db.Pool {
	return s.pool
}

// RawCount returns the number of rows staged in the entity's raw table.
func (s *Store) RawCount(ctx context.Context, e Entity) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+e.RawTable()).Scan(&n)
	if err != nil {
		return 0, eris.Wrapf(err, "store: count %s", e.RawTable())
	}
	return n, nil
}

// TableCount pairs a table name with its row count.
type TableCount struct {
	Table string
	Rows  int64
}

// TableCounts returns row counts for every raw, main and mapping table,
// in a fixed display order.
func (s *Store) TableCounts(ctx context.Context) ([]TableCount, error) {
	var tables []string
	for _, e := range AllEntities {
		tables = append(tables, e.RawTable())
	}
	for _, e := range AllEntities {
		tables = append(tables, e.MainTable())
	}
	for _, e := range AllEntities {
		tables = append(tables, e.MappingTable())
	}

	counts := make([]TableCount, 0, len(tables))
	for _, t := range tables {
		var n int64
		if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+t).Scan(&n); err != nil {
			return nil, eris.Wrapf(err, "store: count %s", t)
		}
		counts = append(counts, TableCount{Table: t, Rows: n})
	}
	return counts, nil
}
