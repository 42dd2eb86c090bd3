package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/datapulse/datapulse-cli/internal/model"
)

// Raw table loads return rows in insertion order. Inference and migration
// both depend on that ordering ("first match wins" follows it).

// RawCustomers loads the full customers_raw table.
func (s *Store) RawCustomers(ctx context.Context) ([]model.RawCustomer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT customer_id, customer_name, email, phone, city
		 FROM customers_raw ORDER BY customer_id`)
	if err != nil {
		return nil, eris.Wrap(err, "store: load customers_raw")
	}
	defer rows.Close()

	var out []model.RawCustomer
	for rows.Next() {
		var c model.RawCustomer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.City); err != nil {
			return nil, eris.Wrap(err, "store: scan customers_raw")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RawProducts loads the full products_raw table.
func (s *Store) RawProducts(ctx context.Context) ([]model.RawProduct, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT product_id, product_name, category, selling_price, cost_price, stock
		 FROM products_raw ORDER BY product_id`)
	if err != nil {
		return nil, eris.Wrap(err, "store: load products_raw")
	}
	defer rows.Close()

	var out []model.RawProduct
	for rows.Next() {
		var p model.RawProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.SellingPrice, &p.CostPrice, &p.Stock); err != nil {
			return nil, eris.Wrap(err, "store: scan products_raw")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RawOrders loads the full orders_raw table.
func (s *Store) RawOrders(ctx context.Context) ([]model.RawOrder, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT order_id, customer_id, product_id, quantity, order_status, payment_method
		 FROM orders_raw ORDER BY order_id`)
	if err != nil {
		return nil, eris.Wrap(err, "store: load orders_raw")
	}
	defer rows.Close()

	var out []model.RawOrder
	for rows.Next() {
		var o model.RawOrder
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.ProductID, &o.Quantity, &o.Status, &o.PaymentMethod); err != nil {
			return nil, eris.Wrap(err, "store: scan orders_raw")
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// RawSales loads the full sales_raw table.
func (s *Store) RawSales(ctx context.Context) ([]model.RawSale, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT sale_id, order_id, sale_amount, profit, region
		 FROM sales_raw ORDER BY sale_id`)
	if err != nil {
		return nil, eris.Wrap(err, "store: load sales_raw")
	}
	defer rows.Close()

	var out []model.RawSale
	for rows.Next() {
		var v model.RawSale
		if err := rows.Scan(&v.ID, &v.OrderID, &v.SaleAmount, &v.Profit, &v.Region); err != nil {
			return nil, eris.Wrap(err, "store: scan sales_raw")
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// RawIDs returns the primary keys present in the entity's raw table.
func (s *Store) RawIDs(ctx context.Context, e Entity) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+e.IDColumn()+" FROM "+e.RawTable()+" ORDER BY "+e.IDColumn())
	if err != nil {
		return nil, eris.Wrapf(err, "store: load ids from %s", e.RawTable())
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrapf(err, "store: scan id from %s", e.RawTable())
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// InsertRawCustomers stages customers in a single transaction.
func (s *Store) InsertRawCustomers(ctx context.Context, customers []model.RawCustomer) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "store: begin insert customers_raw")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, c := range customers {
		if _, err := tx.Exec(ctx,
			`INSERT INTO customers_raw (customer_name, email, phone, city) VALUES ($1, $2, $3, $4)`,
			c.Name, c.Email, c.Phone, c.City); err != nil {
			return eris.Wrap(err, "store: insert customers_raw")
		}
	}
	return tx.Commit(ctx)
}

// InsertRawProducts stages products in a single transaction.
func (s *Store) InsertRawProducts(ctx context.Context, products []model.RawProduct) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "store: begin insert products_raw")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, p := range products {
		if _, err := tx.Exec(ctx,
			`INSERT INTO products_raw (product_name, category, selling_price, cost_price, stock)
			 VALUES ($1, $2, $3, $4, $5)`,
			p.Name, p.Category, p.SellingPrice, p.CostPrice, p.Stock); err != nil {
			return eris.Wrap(err, "store: insert products_raw")
		}
	}
	return tx.Commit(ctx)
}

// InsertRawOrders stages orders in a single transaction. Order rows
// reference raw customer and product identities.
func (s *Store) InsertRawOrders(ctx context.Context, orders []model.RawOrder) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "store: begin insert orders_raw")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, o := range orders {
		if _, err := tx.Exec(ctx,
			`INSERT INTO orders_raw (customer_id, product_id, quantity, order_status, payment_method)
			 VALUES ($1, $2, $3, $4, $5)`,
			o.CustomerID, o.ProductID, o.Quantity, o.Status, o.PaymentMethod); err != nil {
			return eris.Wrap(err, "store: insert orders_raw")
		}
	}
	return tx.Commit(ctx)
}

// InsertRawSales stages sales in a single transaction. Sale rows reference
// raw order identities.
func (s *Store) InsertRawSales(ctx context.Context, sales []model.RawSale) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "store: begin insert sales_raw")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, v := range sales {
		if _, err := tx.Exec(ctx,
			`INSERT INTO sales_raw (order_id, sale_amount, profit, region) VALUES ($1, $2, $3, $4)`,
			v.OrderID, v.SaleAmount, v.Profit, v.Region); err != nil {
			return eris.Wrap(err, "store: insert sales_raw")
		}
	}
	return tx.Commit(ctx)
}
