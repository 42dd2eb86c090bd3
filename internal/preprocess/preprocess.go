// Package preprocess cleans and gap-fills staged raw records before
// migration is attempted. It never touches the main store, and every rule
// is idempotent: re-running on already-clean data changes nothing.
package preprocess

import (
	"context"

	"go.uber.org/zap"

	"github.com/datapulse/datapulse-cli/internal/db"
	"github.com/datapulse/datapulse-cli/internal/model"
	"github.com/datapulse/datapulse-cli/internal/store"
)

// Result is the structured outcome of preprocessing one entity.
type Result struct {
	Entity  string       `json:"entity" yaml:"entity"`
	Status  model.Status `json:"status" yaml:"status"`
	Updated int          `json:"updated" yaml:"updated"`
	Reason  string       `json:"reason,omitempty" yaml:"reason,omitempty"`
	Message string       `json:"message,omitempty" yaml:"message,omitempty"`
}

// Summary aggregates a master preprocessing run. Orders carry no
// preprocessing rules and do not appear.
type Summary struct {
	Customers Result `json:"customers" yaml:"customers"`
	Sales     Result `json:"sales" yaml:"sales"`
	Products  Result `json:"products" yaml:"products"`
}

// Preprocessor applies the per-entity cleaning and inference rules.
type Preprocessor struct {
	pool db.Pool
	st   *store.Store
	log  *zap.Logger
}

// New creates a Preprocessor over the given connection pool.
func New(pool db.Pool) *Preprocessor {
	return &Preprocessor{
		pool: pool,
		st:   store.New(pool),
		log:  zap.L().With(zap.String("component", "preprocess")),
	}
}

// All preprocesses every entity whose raw table is non-empty. A failure in
// one entity does not block the others.
func (p *Preprocessor) All(ctx context.Context) Summary {
	return Summary{
		Customers: p.gated(ctx, store.Customers, p.Customers),
		Sales:     p.gated(ctx, store.Sales, p.Sales),
		Products:  p.gated(ctx, store.Products, p.Products),
	}
}

func (p *Preprocessor) gated(ctx context.Context, e store.Entity, run func(context.Context) Result) Result {
	n, err := p.st.RawCount(ctx, e)
	if err != nil {
		return p.fail(string(e), err)
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

func (p *Preprocessor) fail(entity string, err error) Result {
	p.log.Error("preprocessing failed", zap.String("entity", entity), zap.Error(err))
	return Result{Entity: entity, Status: model.StatusError, Message: err.Error()}
}
