// Package migrate promotes staged raw records into the canonical main
// tables, maintaining the mapping tables that make promotion idempotent.
//
// Entities migrate in a fixed dependency order: customers and products
// first, then orders (which need both parent mappings), then sales (which
// need the order mapping). Each entity runs in its own transaction, so the
// main insert and its mapping row commit together and a failure rolls back
// only that entity's run.
package migrate

import (
	"context"

	"go.uber.org/zap"

	"github.com/datapulse/datapulse-cli/internal/db"
	"github.com/datapulse/datapulse-cli/internal/model"
	"github.com/datapulse/datapulse-cli/internal/store"
)

// Result is the structured outcome of migrating one entity.
type Result struct {
	Entity   string       `json:"entity" yaml:"entity"`
	Status   model.Status `json:"status" yaml:"status"`
	Inserted int          `json:"inserted" yaml:"inserted"`
	Skipped  int          `json:"skipped" yaml:"skipped"`
	Reason   string       `json:"reason,omitempty" yaml:"reason,omitempty"`
	Message  string       `json:"message,omitempty" yaml:"message,omitempty"`
}

// Summary aggregates a master migration run.
type Summary struct {
	Customers Result `json:"customer_migration" yaml:"customer_migration"`
	Products  Result `json:"product_migration" yaml:"product_migration"`
	Orders    Result `json:"order_migration" yaml:"order_migration"`
	Sales     Result `json:"sale_migration" yaml:"sale_migration"`
}

// Migrator promotes raw records entity by entity.
type Migrator struct {
	pool db.Pool
	st   *store.Store
	log  *zap.Logger
}

// New creates a Migrator over the given connection pool.
func New(pool db.Pool) *Migrator {
	return &Migrator{
		pool: pool,
		st:   store.New(pool),
		log:  zap.L().With(zap.String("component", "migrate")),
	}
}

// All migrates every entity whose raw table is non-empty, in dependency
// order. A failure in one entity does not block the others; the summary
// reports partial success per entity.
func (m *Migrator) All(ctx context.Context) Summary {
	return Summary{
		Customers: m.gated(ctx, store.Customers, m.Customers),
		Products:  m.gated(ctx, store.Products, m.Products),
		Orders:    m.gated(ctx, store.Orders, m.Orders),
		Sales:     m.gated(ctx, store.Sales, m.Sales),
	}
}

func (m *Migrator) gated(ctx context.Context, e store.Entity, run func(context.Context) Result) Result {
	n, err := m.st.RawCount(ctx, e)
	if err != nil {
		return m.fail(string(e), err)
	}
	if n == 0 {
		return Result{
			Entity: string(e),
			Status: model.StatusSkipped,
			Reason: e.RawTable() + " is empty",
		}
	}
	return run(ctx)
}

func (m *Migrator) fail(entity string, err error) Result {
	m.log.Error("migration failed", zap.String("entity", entity), zap.Error(err))
	return Result{Entity: entity, Status: model.StatusError, Message: err.Error()}
}
