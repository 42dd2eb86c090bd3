package migrate

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/datapulse/datapulse-cli/internal/model"
	"github.com/datapulse/datapulse-cli/internal/store"
)

// Orders promotes staged orders. Orders are never deduplicated: repeat
// orders are legitimate business events. The raw customer and product
// references are resolved to main identities through the mapping tables;
// an order whose parent has not been promoted yet is skipped and stays
// pending until it has.
func (m *Migrator) Orders(ctx context.Context) Result {
	res := Result{Entity: "orders", Status: model.StatusSuccess}

	raws, err := m.st.RawOrders(ctx)
	if err != nil {
		return m.fail("orders", err)
	}
	mapped, err := m.st.Mappings(ctx, store.Orders)
	if err != nil {
		return m.fail("orders", err)
	}
	customerMap, err := m.st.Mappings(ctx, store.Customers)
	if err != nil {
		return m.fail("orders", err)
	}
	productMap, err := m.st.Mappings(ctx, store.Products)
	if err != nil {
		return m.fail("orders", err)
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return m.fail("orders", eris.Wrap(err, "migrate: begin orders"))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, r := range raws {
		if _, ok := mapped[r.ID]; ok {
			res.Skipped++
			continue
		}
		customerID, okC := customerMap[r.CustomerID]
		productID, okP := productMap[r.ProductID]
		if !okC || !okP {
			res.Skipped++
			continue
		}

		var mainID int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO orders (customer_id, product_id, quantity, order_status, payment_method)
			 VALUES ($1, $2, $3, $4, $5) RETURNING order_id`,
			customerID, productID, r.Quantity, r.Status, r.PaymentMethod).Scan(&mainID); err != nil {
			return m.fail("orders", eris.Wrap(err, "migrate: insert order"))
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO order_mapping (raw_order_id, main_order_id) VALUES ($1, $2)`,
			r.ID, mainID); err != nil {
			return m.fail("orders", eris.Wrap(err, "migrate: insert order mapping"))
		}
		res.Inserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return m.fail("orders", eris.Wrap(err, "migrate: commit orders"))
	}

	m.log.Info("orders migrated",
		zap.Int("inserted", res.Inserted), zap.Int("skipped", res.Skipped))
	return res
}
