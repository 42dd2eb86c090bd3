package migrate

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/datapulse/datapulse-cli/internal/model"
	"github.com/datapulse/datapulse-cli/internal/store"
)

// Sales promotes staged sales. Like orders they are never deduplicated.
// The raw order reference must resolve through the order mapping; a sale
// whose order has not been promoted is skipped and stays pending. Amount,
// profit and region are carried verbatim from the staged row.
func (m *Migrator) Sales(ctx context.Context) Result {
	res := Result{Entity: "sales", Status: model.StatusSuccess}

	raws, err := m.st.RawSales(ctx)
	if err != nil {
		return m.fail("sales", err)
	}
	mapped, err := m.st.Mappings(ctx, store.Sales)
	if err != nil {
		return m.fail("sales", err)
	}
	orderMap, err := m.st.Mappings(ctx, store.Orders)
	if err != nil {
		return m.fail("sales", err)
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return m.fail("sales", eris.Wrap(err, "migrate: begin sales"))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, r := range raws {
		if _, ok := mapped[r.ID]; ok {
			res.Skipped++
			continue
		}
		orderID, ok := orderMap[r.OrderID]
		if !ok {
			res.Skipped++
			continue
		}

		var mainID int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO sales (order_id, sale_amount, profit, region)
			 VALUES ($1, $2, $3, $4) RETURNING sale_id`,
			orderID, r.SaleAmount, r.Profit, r.Region).Scan(&mainID); err != nil {
			return m.fail("sales", eris.Wrap(err, "migrate: insert sale"))
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO sale_mapping (raw_sale_id, main_sale_id) VALUES ($1, $2)`,
			r.ID, mainID); err != nil {
			return m.fail("sales", eris.Wrap(err, "migrate: insert sale mapping"))
		}
		res.Inserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return m.fail("sales", eris.Wrap(err, "migrate: commit sales"))
	}

	m.log.Info("sales migrated",
		zap.Int("inserted", res.Inserted), zap.Int("skipped", res.Skipped))
	return res
}
