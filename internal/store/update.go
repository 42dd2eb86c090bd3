package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/datapulse/datapulse-cli/internal/model"
	"github.com/datapulse/datapulse-cli/internal/normalize"
)

// Update operations keep the derived sale math consistent: whenever a
// product price or an order quantity changes, dependent sale rows are
// recomputed as sale_amount = quantity * selling_price and
// profit = quantity * (selling_price - cost_price). Raw and main stores
// are recomputed independently; each update commits as one transaction.

// UpdateRawCustomer rewrites a staged customer's editable fields.
func (s *Store) UpdateRawCustomer(ctx context.Context, c model.RawCustomer) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE customers_raw SET customer_name=$1, email=$2, phone=$3, city=$4 WHERE customer_id=$5`,
		c.Name, c.Email, c.Phone, c.City, c.ID)
	if err != nil {
		return eris.Wrap(err, "store: update customers_raw")
	}
	return nil
}

// UpdateRawProduct rewrites a staged product and recomputes the sale rows
// reachable through the product's raw orders.
func (s *Store) UpdateRawProduct(ctx context.Context, p model.RawProduct) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "store: begin update products_raw")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`UPDATE products_raw SET product_name=$1, category=$2, selling_price=$3, cost_price=$4, stock=$5
		 WHERE product_id=$6`,
		p.Name, p.Category, p.SellingPrice, p.CostPrice, p.Stock, p.ID); err != nil {
		return eris.Wrap(err, "store: update products_raw")
	}

	orders, err := orderQuantities(ctx, tx, `SELECT order_id, quantity FROM orders_raw WHERE product_id=$1`, p.ID)
	if err != nil {
		return err
	}

	sp := normalize.Price(p.SellingPrice)
	cp := normalize.Price(p.CostPrice)
	for _, o := range orders {
		qty := float64(o.quantity)
		if _, err := tx.Exec(ctx,
			`UPDATE sales_raw SET sale_amount=$1, profit=$2 WHERE order_id=$3`,
			qty*sp, qty*(sp-cp), o.id); err != nil {
			return eris.Wrap(err, "store: recompute sales_raw")
		}
	}

	return tx.Commit(ctx)
}

// UpdateRawOrder rewrites a staged order's quantity, status and payment
// method, then recomputes the order's sale row from the staged product
// prices.
func (s *Store) UpdateRawOrder(ctx context.Context, id, quantity int64, status, paymentMethod string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "store: begin update orders_raw")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`UPDATE orders_raw SET quantity=$1, order_status=$2, payment_method=$3 WHERE order_id=$4`,
		quantity, status, paymentMethod, id); err != nil {
		return eris.Wrap(err, "store: update orders_raw")
	}

	var productID int64
	err = tx.QueryRow(ctx, `SELECT product_id FROM orders_raw WHERE order_id=$1`, id).Scan(&productID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return eris.New("store: order not found in orders_raw")
		}
		return eris.Wrap(err, "store: load order product")
	}

	var spText, cpText string
	err = tx.QueryRow(ctx,
		`SELECT selling_price, cost_price FROM products_raw WHERE product_id=$1`, productID).
		Scan(&spText, &cpText)
	if err != nil {
		if err == pgx.ErrNoRows {
			return eris.New("store: product not found in products_raw for recalculation")
		}
		return eris.Wrap(err, "store: load product prices")
	}

	sp := normalize.Price(spText)
	cp := normalize.Price(cpText)
	qty := float64(quantity)
	if _, err := tx.Exec(ctx,
		`UPDATE sales_raw SET sale_amount=$1, profit=$2 WHERE order_id=$3`,
		qty*sp, qty*(sp-cp), id); err != nil {
		return eris.Wrap(err, "store: recompute sales_raw")
	}

	return tx.Commit(ctx)
}

// UpdateRawSale rewrites a staged sale's region. Amount and profit are
// derived and only change through product or order updates.
func (s *Store) UpdateRawSale(ctx context.Context, id int64, region string) error {
	_, err := s.pool.Exec(ctx, `UPDATE sales_raw SET region=$1 WHERE sale_id=$2`, region, id)
	if err != nil {
		return eris.Wrap(err, "store: update sales_raw")
	}
	return nil
}

// UpdateMainCustomer rewrites a canonical customer's editable fields. The
// phone is the dedup key and stays fixed.
func (s *Store) UpdateMainCustomer(ctx context.Context, id int64, name, email, city string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE customers SET customer_name=$1, email=$2, city=$3 WHERE customer_id=$4`,
		name, email, city, id)
	if err != nil {
		return eris.Wrap(err, "store: update customers")
	}
	return nil
}

// UpdateMainProduct rewrites a canonical product's prices and stock (name
// and category are immutable post-migration) and recomputes dependent main
// sale rows.
func (s *Store) UpdateMainProduct(ctx context.Context, id int64, sellingPrice, costPrice float64, stock int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "store: begin update products")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`UPDATE products SET selling_price=$1, cost_price=$2, stock=$3 WHERE product_id=$4`,
		sellingPrice, costPrice, stock, id); err != nil {
		return eris.Wrap(err, "store: update products")
	}

	orders, err := orderQuantities(ctx, tx, `SELECT order_id, quantity FROM orders WHERE product_id=$1`, id)
	if err != nil {
		return err
	}

	for _, o := range orders {
		qty := float64(o.quantity)
		if _, err := tx.Exec(ctx,
			`UPDATE sales SET sale_amount=$1, profit=$2 WHERE order_id=$3`,
			qty*sellingPrice, qty*(sellingPrice-costPrice), o.id); err != nil {
			return eris.Wrap(err, "store: recompute sales")
		}
	}

	return tx.Commit(ctx)
}

// UpdateMainOrder rewrites a canonical order's status and payment method.
// Quantity is immutable post-migration.
func (s *Store) UpdateMainOrder(ctx context.Context, id int64, status, paymentMethod string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE orders SET order_status=$1, payment_method=$2 WHERE order_id=$3`,
		status, paymentMethod, id)
	if err != nil {
		return eris.Wrap(err, "store: update orders")
	}
	return nil
}

// UpdateMainSale rewrites a canonical sale's region.
func (s *Store) UpdateMainSale(ctx context.Context, id int64, region string) error {
	_, err := s.pool.Exec(ctx, `UPDATE sales SET region=$1 WHERE sale_id=$2`, region, id)
	if err != nil {
		return eris.Wrap(err, "store: update sales")
	}
	return nil
}

type orderQuantity struct {
	id       int64
	quantity int64
}

func orderQuantities(ctx context.Context, tx pgx.Tx, query string, productID int64) ([]orderQuantity, error) {
	rows, err := tx.Query(ctx, query, productID)
	if err != nil {
		return nil, eris.Wrap(err, "store: load dependent orders")
	}
	defer rows.Close()

	var out []orderQuantity
	for rows.Next() {
		var o orderQuantity
		if err := rows.Scan(&o.id, &o.quantity); err != nil {
			return nil, eris.Wrap(err, "store: scan dependent order")
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
