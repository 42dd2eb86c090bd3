package store

import (
	"context"

	"github.com/rotisserie/eris"
)

// schemaDDL creates the raw, main and mapping tables plus the pipeline run
// log. All statements are idempotent.
//
// Raw prices are TEXT: manual entry arrives as strings that may carry
// currency symbols or thousands separators until preprocessing normalizes
// them. Mapping tables key on the raw identity, so a raw record can be
// promoted at most once.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS customers_raw (
	customer_id   BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	customer_name TEXT NOT NULL DEFAULT '',
	email         TEXT NOT NULL DEFAULT '',
	phone         TEXT NOT NULL DEFAULT '',
	city          TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS products_raw (
	product_id    BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	product_name  TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL DEFAULT '',
	selling_price TEXT NOT NULL DEFAULT '',
	cost_price    TEXT NOT NULL DEFAULT '',
	stock         BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS orders_raw (
	order_id       BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	customer_id    BIGINT NOT NULL,
	product_id     BIGINT NOT NULL,
	quantity       BIGINT NOT NULL DEFAULT 0,
	order_status   TEXT NOT NULL DEFAULT '',
	payment_method TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS sales_raw (
	sale_id     BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	order_id    BIGINT NOT NULL,
	sale_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	profit      DOUBLE PRECISION NOT NULL DEFAULT 0,
	region      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS customers (
	customer_id   BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	customer_name TEXT NOT NULL,
	email         TEXT NOT NULL,
	phone         TEXT NOT NULL,
	city          TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
	product_id    BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	product_name  TEXT NOT NULL,
	category      TEXT NOT NULL,
	selling_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	cost_price    DOUBLE PRECISION NOT NULL DEFAULT 0,
	stock         BIGINT NOT NULL DEFAULT 0,
	added_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS orders (
	order_id       BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	customer_id    BIGINT NOT NULL REFERENCES customers(customer_id),
	product_id     BIGINT NOT NULL REFERENCES products(product_id),
	quantity       BIGINT NOT NULL DEFAULT 0,
	order_status   TEXT NOT NULL DEFAULT '',
	payment_method TEXT NOT NULL DEFAULT '',
	order_date     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sales (
	sale_id     BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	order_id    BIGINT NOT NULL REFERENCES orders(order_id),
	sale_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	profit      DOUBLE PRECISION NOT NULL DEFAULT 0,
	region      TEXT NOT NULL DEFAULT '',
	sale_date   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS customer_mapping (
	raw_customer_id  BIGINT PRIMARY KEY,
	main_customer_id BIGINT NOT NULL,
	migrated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS product_mapping (
	raw_product_id  BIGINT PRIMARY KEY,
	main_product_id BIGINT NOT NULL,
	migrated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS order_mapping (
	raw_order_id  BIGINT PRIMARY KEY,
	main_order_id BIGINT NOT NULL,
	migrated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sale_mapping (
	raw_sale_id  BIGINT PRIMARY KEY,
	main_sale_id BIGINT NOT NULL,
	migrated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS pipeline_runs (
	id           TEXT PRIMARY KEY,
	status       TEXT NOT NULL DEFAULT 'running',
	started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ,
	summary      JSONB
);

CREATE INDEX IF NOT EXISTS idx_orders_raw_customer_id ON orders_raw(customer_id);
CREATE INDEX IF NOT EXISTS idx_orders_raw_product_id ON orders_raw(product_id);
CREATE INDEX IF NOT EXISTS idx_sales_raw_order_id ON sales_raw(order_id);
CREATE INDEX IF NOT EXISTS idx_orders_product_id ON orders(product_id);
CREATE INDEX IF NOT EXISTS idx_sales_order_id ON sales(order_id);
CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started_at ON pipeline_runs(started_at DESC);
`

// EnsureSchema applies the idempotent schema DDL.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return eris.Wrap(err, "store: ensure schema")
	}
	return nil
}
