// Package export writes an offline SQLite snapshot of the main dataset so
// reporting can run without a Postgres connection.
package export

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/datapulse/datapulse-cli/internal/db"
	"github.com/datapulse/datapulse-cli/internal/store"
)

const snapshotDDL = `
CREATE TABLE IF NOT EXISTS customers (
	customer_id   INTEGER PRIMARY KEY,
	customer_name TEXT NOT NULL,
	email         TEXT NOT NULL,
	phone         TEXT NOT NULL,
	city          TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS products (
	product_id    INTEGER PRIMARY KEY,
	product_name  TEXT NOT NULL,
	category      TEXT NOT NULL,
	selling_price REAL NOT NULL,
	cost_price    REAL NOT NULL,
	stock         INTEGER NOT NULL,
	added_at      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS orders (
	order_id       INTEGER PRIMARY KEY,
	customer_id    INTEGER NOT NULL,
	product_id     INTEGER NOT NULL,
	quantity       INTEGER NOT NULL,
	order_status   TEXT NOT NULL,
	payment_method TEXT NOT NULL,
	order_date     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sales (
	sale_id     INTEGER PRIMARY KEY,
	order_id    INTEGER NOT NULL,
	sale_amount REAL NOT NULL,
	profit      REAL NOT NULL,
	region      TEXT NOT NULL,
	sale_date   TEXT NOT NULL
);
`

// Counts reports how many rows each snapshot table received.
type Counts struct {
	Customers int
	Products  int
	Orders    int
	Sales     int
}

// Snapshot copies the four main tables into a SQLite database at path,
// replacing any previous snapshot contents.
func Snapshot(ctx context.Context, pool db.Pool, path string) (*Counts, error) {
	st := store.New(pool)

	customers, err := st.Customers(ctx)
	if err != nil {
		return nil, err
	}
	products, err := st.Products(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := st.Orders(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := st.Sales(ctx)
	if err != nil {
		return nil, err
	}

	sdb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "export: open sqlite")
	}
	defer sdb.Close()

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sdb.ExecContext(ctx, pragma); err != nil {
			return nil, eris.Wrapf(err, "export: exec %s", pragma)
		}
	}

	if _, err := sdb.ExecContext(ctx, snapshotDDL); err != nil {
		return nil, eris.Wrap(err, "export: create snapshot tables")
	}

	tx, err := sdb.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "export: begin snapshot tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"customers", "products", "orders", "sales"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return nil, eris.Wrapf(err, "export: clear %s", table)
		}
	}

	for _, c := range customers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO customers (customer_id, customer_name, email, phone, city, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Email, c.Phone, c.City, c.CreatedAt.Format(time.RFC3339)); err != nil {
			return nil, eris.Wrap(err, "export: insert customer")
		}
	}
	for _, p := range products {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO products (product_id, product_name, category, selling_price, cost_price, stock, added_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Category, p.SellingPrice, p.CostPrice, p.Stock, p.AddedAt.Format(time.RFC3339)); err != nil {
			return nil, eris.Wrap(err, "export: insert product")
		}
	}
	for _, o := range orders {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO orders (order_id, customer_id, product_id, quantity, order_status, payment_method, order_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.CustomerID, o.ProductID, o.Quantity, o.Status, o.PaymentMethod, o.OrderDate.Format(time.RFC3339)); err != nil {
			return nil, eris.Wrap(err, "export: insert order")
		}
	}
	for _, v := range sales {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sales (sale_id, order_id, sale_amount, profit, region, sale_date)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			v.ID, v.OrderID, v.SaleAmount, v.Profit, v.Region, v.SaleDate.Format(time.RFC3339)); err != nil {
			return nil, eris.Wrap(err, "export: insert sale")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "export: commit snapshot")
	}

	zap.L().Info("snapshot written", zap.String("path", path),
		zap.Int("customers", len(customers)), zap.Int("products", len(products)),
		zap.Int("orders", len(orders)), zap.Int("sales", len(sales)))

	return &Counts{
		Customers: len(customers),
		Products:  len(products),
		Orders:    len(orders),
		Sales:     len(sales),
	}, nil
}
