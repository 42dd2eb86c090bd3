package migrate

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/datapulse/datapulse-cli/internal/model"
	"github.com/datapulse/datapulse-cli/internal/store"
)

// Customers promotes staged customers, deduplicating on phone number.
// Rows whose phone already exists in main are skipped and stay staged; the
// sweeper later reports them as pending rather than silently dropping
// them. When the main table is empty every raw row is promoted
// unconditionally (bulk bootstrap).
func (m *Migrator) Customers(ctx context.Context) Result {
	res := Result{Entity: "customers", Status: model.StatusSuccess}

	raws, err := m.st.RawCustomers(ctx)
	if err != nil {
		return m.fail("customers", err)
	}
	mains, err := m.st.Customers(ctx)
	if err != nil {
		return m.fail("customers", err)
	}
	mapped, err := m.st.Mappings(ctx, store.Customers)
	if err != nil {
		return m.fail("customers", err)
	}

	bootstrap := len(mains) == 0
	seen := make(map[string]struct{}, len(mains))
	for _, c := range mains {
		seen[c.Phone] = struct{}{}
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return m.fail("customers", eris.Wrap(err, "migrate: begin customers"))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, r := range raws {
		if _, ok := mapped[r.ID]; ok {
			res.Skipped++
			continue
		}
		if !bootstrap {
			if _, dup := seen[r.Phone]; dup {
				res.Skipped++
				continue
			}
		}

		var mainID int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO customers (customer_name, email, phone, city)
			 VALUES ($1, $2, $3, $4) RETURNING customer_id`,
			r.Name, r.Email, r.Phone, r.City).Scan(&mainID); err != nil {
			return m.fail("customers", eris.Wrap(err, "migrate: insert customer"))
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO customer_mapping (raw_customer_id, main_customer_id) VALUES ($1, $2)`,
			r.ID, mainID); err != nil {
			return m.fail("customers", eris.Wrap(err, "migrate: insert customer mapping"))
		}
		seen[r.Phone] = struct{}{}
		res.Inserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return m.fail("customers", eris.Wrap(err, "migrate: commit customers"))
	}

	m.log.Info("customers migrated",
		zap.Int("inserted", res.Inserted), zap.Int("skipped", res.Skipped))
	return res
}
