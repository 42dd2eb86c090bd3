package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/datapulse/datapulse-cli/internal/model"
)

// Customers loads the full main customers table.
func (s *Store) Customers(ctx context.Context) ([]model.Customer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT customer_id, customer_name, email, phone, city, created_at
		 FROM customers ORDER BY customer_id`)
	if err != nil {
		return nil, eris.Wrap(err, "store: load customers")
	}
	defer rows.Close()

	var out []model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.City, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan customers")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Products loads the full main products table.
func (s *Store) Products(ctx context.Context) ([]model.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT product_id, product_name, category, selling_price, cost_price, stock, added_at
		 FROM products ORDER BY product_id`)
	if err != nil {
		return nil, eris.Wrap(err, "store: load products")
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.SellingPrice, &p.CostPrice, &p.Stock, &p.AddedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan products")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Orders loads the full main orders table.
func (s *Store) Orders(ctx context.Context) ([]model.Order, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT order_id, customer_id, product_id, quantity, order_status, payment_method, order_date
		 FROM orders ORDER BY order_id`)
	if err != nil {
		return nil, eris.Wrap(err, "store: load orders")
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.ProductID, &o.Quantity, &o.Status, &o.PaymentMethod, &o.OrderDate); err != nil {
			return nil, eris.Wrap(err, "store: scan orders")
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Sales loads the full main sales table.
func (s *Store) Sales(ctx context.Context) ([]model.Sale, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT sale_id, order_id, sale_amount, profit, region, sale_date
		 FROM sales ORDER BY sale_id`)
	if err != nil {
		return nil, eris.Wrap(err, "store: load sales")
	}
	defer rows.Close()

	var out []model.Sale
	for rows.Next() {
		var v model.Sale
		if err := rows.Scan(&v.ID, &v.OrderID, &v.SaleAmount, &v.Profit, &v.Region, &v.SaleDate); err != nil {
			return nil, eris.Wrap(err, "store: scan sales")
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
