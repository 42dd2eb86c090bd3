// Package pipeline sequences preprocessing, migration and sweeping across
// all four entities and records each run in pipeline_runs.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/datapulse/datapulse-cli/internal/db"
	"github.com/datapulse/datapulse-cli/internal/migrate"
	"github.com/datapulse/datapulse-cli/internal/model"
	"github.com/datapulse/datapulse-cli/internal/preprocess"
	"github.com/datapulse/datapulse-cli/internal/sweep"
)

// Options control which optional stages a run executes. Migration always
// runs; preprocessing and sweeping are caller decisions.
type Options struct {
	Preprocess bool
	Sweep      bool
}

// RunSummary is the aggregated outcome of one pipeline run.
type RunSummary struct {
	RunID       string              `json:"run_id" yaml:"run_id"`
	Status      model.Status        `json:"status" yaml:"status"`
	StartedAt   time.Time           `json:"started_at" yaml:"started_at"`
	CompletedAt time.Time           `json:"completed_at" yaml:"completed_at"`
	Preprocess  *preprocess.Summary `json:"preprocess,omitempty" yaml:"preprocess,omitempty"`
	Migration   migrate.Summary     `json:"migration" yaml:"migration"`
	Sweep       *sweep.Summary      `json:"sweep,omitempty" yaml:"sweep,omitempty"`
}

// Pipeline orchestrates the full raw-to-main reconciliation run.
type Pipeline struct {
	pool db.Pool
	pre  *preprocess.Preprocessor
	mig  *migrate.Migrator
	sw   *sweep.Sweeper
	log  *zap.Logger
}

// New creates a Pipeline over the given connection pool.
func New(pool db.Pool) *Pipeline {
	return &Pipeline{
		pool: pool,
		pre:  preprocess.New(pool),
		mig:  migrate.New(pool),
		sw:   sweep.New(pool),
		log:  zap.L().With(zap.String("component", "pipeline")),
	}
}

// Run executes the pipeline stages in order. The run is not transactional
// across entities or stages: each sub-step commits independently, so a
// failure partway leaves a well-defined intermediate state that a re-run
// reconciles. The summary is persisted to pipeline_runs.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*RunSummary, error) {
	sum := &RunSummary{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}

	if _, err := p.pool.Exec(ctx,
		`INSERT INTO pipeline_runs (id, status, started_at) VALUES ($1, 'running', $2)`,
		sum.RunID, sum.StartedAt); err != nil {
		return nil, eris.Wrap(err, "pipeline: record run start")
	}

	p.log.Info("pipeline run started", zap.String("run_id", sum.RunID),
		zap.Bool("preprocess", opts.Preprocess), zap.Bool("sweep", opts.Sweep))

	if opts.Preprocess {
		s := p.pre.All(ctx)
		sum.Preprocess = &s
	}
	sum.Migration = p.mig.All(ctx)
	if opts.Sweep {
		s := p.sw.All(ctx)
		sum.Sweep = &s
	}

	sum.CompletedAt = time.Now().UTC()
	sum.Status = overallStatus(sum)

	payload, err := json.Marshal(sum)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: marshal summary")
	}
	if _, err := p.pool.Exec(ctx,
		`UPDATE pipeline_runs SET status=$1, completed_at=$2, summary=$3 WHERE id=$4`,
		string(sum.Status), sum.CompletedAt, payload, sum.RunID); err != nil {
		return nil, eris.Wrap(err, "pipeline: record run completion")
	}

	p.log.Info("pipeline run completed", zap.String("run_id", sum.RunID),
		zap.String("status", string(sum.Status)))
	return sum, nil
}

// overallStatus reports error if any stage result errored; partial
// success across entities still counts as success per entity.
func overallStatus(sum *RunSummary) model.Status {
	statuses := []model.Status{
		sum.Migration.Customers.Status, sum.Migration.Products.Status,
		sum.Migration.Orders.Status, sum.Migration.Sales.Status,
	}
	if sum.Preprocess != nil {
		statuses = append(statuses,
			sum.Preprocess.Customers.Status, sum.Preprocess.Sales.Status, sum.Preprocess.Products.Status)
	}
	if sum.Sweep != nil {
		statuses = append(statuses,
			sum.Sweep.Customers.Status, sum.Sweep.Products.Status,
			sum.Sweep.Orders.Status, sum.Sweep.Sales.Status)
	}
	for _, s := range statuses {
		if s == model.StatusError {
			return model.StatusError
		}
	}
	return model.StatusSuccess
}

// RunEntry is one row of the pipeline run log.
type RunEntry struct {
	ID          string
	Status      string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// List returns the run log, most recent first.
func (p *Pipeline) List(ctx context.Context) ([]RunEntry, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, status, started_at, completed_at FROM pipeline_runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: list runs")
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		if err := rows.Scan(&e.ID, &e.Status, &e.StartedAt, &e.CompletedAt); err != nil {
			return nil, eris.Wrap(err, "pipeline: scan run")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
