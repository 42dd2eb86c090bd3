package migrate

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/datapulse/datapulse-cli/internal/model"
	"github.com/datapulse/datapulse-cli/internal/normalize"
	"github.com/datapulse/datapulse-cli/internal/store"
)

// Products promotes staged products, deduplicating on the post-cleaning
// product name (case-sensitive). Prices are parsed from their raw text
// representation into the numeric main columns.
func (m *Migrator) Products(ctx context.Context) Result {
	res := Result{Entity: "products", Status: model.StatusSuccess}

	raws, err := m.st.RawProducts(ctx)
	if err != nil {
		return m.fail("products", err)
	}
	mains, err := m.st.Products(ctx)
	if err != nil {
		return m.fail("products", err)
	}
	mapped, err := m.st.Mappings(ctx, store.Products)
	if err != nil {
		return m.fail("products", err)
	}

	bootstrap := len(mains) == 0
	seen := make(map[string]struct{}, len(mains))
	for _, p := range mains {
		seen[p.Name] = struct{}{}
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return m.fail("products", eris.Wrap(err, "migrate: begin products"))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, r := range raws {
		if _, ok := mapped[r.ID]; ok {
			res.Skipped++
			continue
		}
		if !bootstrap {
			if _, dup := seen[r.Name]; dup {
				res.Skipped++
				continue
			}
		}

		var mainID int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO products (product_name, category, selling_price, cost_price, stock)
			 VALUES ($1, $2, $3, $4, $5) RETURNING product_id`,
			r.Name, r.Category, normalize.Price(r.SellingPrice), normalize.Price(r.CostPrice), r.Stock).
			Scan(&mainID); err != nil {
			return m.fail("products", eris.Wrap(err, "migrate: insert product"))
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO product_mapping (raw_product_id, main_product_id) VALUES ($1, $2)`,
			r.ID, mainID); err != nil {
			return m.fail("products", eris.Wrap(err, "migrate: insert product mapping"))
		}
		seen[r.Name] = struct{}{}
		res.Inserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return m.fail("products", eris.Wrap(err, "migrate: commit products"))
	}

	m.log.Info("products migrated",
		zap.Int("inserted", res.Inserted), zap.Int("skipped", res.Skipped))
	return res
}
