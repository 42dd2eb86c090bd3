// Package sweep deletes staged raw records that have been safely promoted.
// Only rows present in the entity's mapping table are eligible; anything
// un-migrated is reported as pending and left untouched, so callers can
// re-run migration before retrying deletion.
package sweep

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/datapulse/datapulse-cli/internal/db"
	"github.com/datapulse/datapulse-cli/internal/model"
	"github.com/datapulse/datapulse-cli/internal/store"
)

// Result is the structured outcome of sweeping one entity.
type Result struct {
	Entity      string       `json:"entity" yaml:"entity"`
	Status      model.Status `json:"status" yaml:"status"`
	Deleted     int64        `json:"deleted" yaml:"deleted"`
	NotMigrated int          `json:"not_migrated" yaml:"not_migrated"`
	PendingIDs  []int64      `json:"pending_ids,omitempty" yaml:"pending_ids,omitempty"`
	Reason      string       `json:"reason,omitempty" yaml:"reason,omitempty"`
	Message     string       `json:"message,omitempty" yaml:"message,omitempty"`
}

// Summary aggregates a master sweep run.
type Summary struct {
	Customers Result `json:"customers" yaml:"customers"`
	Products  Result `json:"products" yaml:"products"`
	Orders    Result `json:"orders" yaml:"orders"`
	Sales     Result `json:"sales" yaml:"sales"`
}

// Sweeper removes promoted raw rows entity by entity.
type Sweeper struct {
	pool db.Pool
	st   *store.Store
	log  *zap.Logger
}

// New creates a Sweeper over the given connection pool.
func New(pool db.Pool) *Sweeper {
	return &Sweeper{
		pool: pool,
		st:   store.New(pool),
		log:  zap.L().With(zap.String("component", "sweep")),
	}
}

// Customers sweeps customers_raw.
func (s *Sweeper) Customers(ctx context.Context) Result { return s.sweep(ctx, store.Customers) }

// Products sweeps products_raw.
func (s *Sweeper) Products(ctx context.Context) Result { return s.sweep(ctx, store.Products) }

// Orders sweeps orders_raw.
func (s *Sweeper) Orders(ctx context.Context) Result { return s.sweep(ctx, store.Orders) }

// Sales sweeps sales_raw.
func (s *Sweeper) Sales(ctx context.Context) Result { return s.sweep(ctx, store.Sales) }

// All sweeps every entity whose raw table is non-empty, mirroring the
// migrator's skip semantics. Failures are isolated per entity.
func (s *Sweeper) All(ctx context.Context) Summary {
	return Summary{
		Customers: s.gated(ctx, store.Customers),
		Products:  s.gated(ctx, store.Products),
		Orders:    s.gated(ctx, store.Orders),
		Sales:     s.gated(ctx, store.Sales),
	}
}

func (s *Sweeper) gated(ctx context.Context, e store.Entity) Result {
	n, err := s.st.RawCount(ctx, e)
	if err != nil {
		return s.fail(e, err)
	}
	if n == 0 {
		return Result{
			Entity: string(e),
			Status: model.StatusSkipped,
			Reason: e.RawTable() + " is empty",
		}
	}
	return s.sweep(ctx, e)
}

// sweep deletes the intersection of staged ids and mapped raw ids in one
// bulk statement, and reports the rest as pending.
func (s *Sweeper) sweep(ctx context.Context, e store.Entity) Result {
	res := Result{Entity: string(e), Status: model.StatusSuccess}

	rawIDs, err := s.st.RawIDs(ctx, e)
	if err != nil {
		return s.fail(e, err)
	}
	mappedIDs, err := s.st.MappedRawIDs(ctx, e)
	if err != nil {
		return s.fail(e, err)
	}

	mapped := make(map[int64]struct{}, len(mappedIDs))
	for _, id := range mappedIDs {
		mapped[id] = struct{}{}
	}

	var deletable, pending []int64
	for _, id := range rawIDs {
		if _, ok := mapped[id]; ok {
			deletable = append(deletable, id)
		} else {
			pending = append(pending, id)
		}
	}

	if len(deletable) > 0 {
		tag, err := s.pool.Exec(ctx,
			"DELETE FROM "+e.RawTable()+" WHERE "+e.IDColumn()+" = ANY($1)", deletable)
		if err != nil {
			return s.fail(e, eris.Wrapf(err, "sweep: delete from %s", e.RawTable()))
		}
		res.Deleted = tag.RowsAffected()
	}

	res.NotMigrated = len(pending)
	res.PendingIDs = pending

	s.log.Info("raw table swept", zap.String("entity", string(e)),
		zap.Int64("deleted", res.Deleted), zap.Int("pending", res.NotMigrated))
	return res
}

func (s *Sweeper) fail(e store.Entity, err error) Result {
	s.log.Error("sweep failed", zap.String("entity", string(e)), zap.Error(err))
	return Result{Entity: string(e), Status: model.StatusError, Message: err.Error()}
}
