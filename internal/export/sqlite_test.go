package export

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func expectMainTables(mock pgxmock.PgxPoolIface) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM customers ORDER BY").WillReturnRows(
		pgxmock.NewRows([]string{"customer_id", "customer_name", "email", "phone", "city", "created_at"}).
			AddRow(int64(1), "Alice Smith", "a@b.com", "555", "South", now))
	mock.ExpectQuery("FROM products ORDER BY").WillReturnRows(
		pgxmock.NewRows([]string{"product_id", "product_name", "category", "selling_price", "cost_price", "stock", "added_at"}).
			AddRow(int64(1), "Laptop", "Electronics", 150.0, 100.0, int64(10), now))
	mock.ExpectQuery("FROM orders ORDER BY").WillReturnRows(
		pgxmock.NewRows([]string{"order_id", "customer_id", "product_id", "quantity", "order_status", "payment_method", "order_date"}).
			AddRow(int64(1), int64(1), int64(1), int64(3), "Delivered", "UPI", now))
	mock.ExpectQuery("FROM sales ORDER BY").WillReturnRows(
		pgxmock.NewRows([]string{"sale_id", "order_id", "sale_amount", "profit", "region", "sale_date"}).
			AddRow(int64(1), int64(1), 450.0, 150.0, "South", now))
}

func TestSnapshot_WritesMainTables(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectMainTables(mock)

	path := filepath.Join(t.TempDir(), "report.db")
	counts, err := Snapshot(context.Background(), mock, path)
	require.NoError(t, err)
	assert.Equal(t, &Counts{Customers: 1, Products: 1, Orders: 1, Sales: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())

	sdb, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer sdb.Close()

	var n int
	require.NoError(t, sdb.QueryRow("SELECT COUNT(*) FROM sales").Scan(&n))
	assert.Equal(t, 1, n)

	var amount, profit float64
	require.NoError(t, sdb.QueryRow("SELECT sale_amount, profit FROM sales WHERE sale_id = 1").
		Scan(&amount, &profit))
	assert.Equal(t, 450.0, amount)
	assert.Equal(t, 150.0, profit)
}

func TestSnapshot_ReplacesPreviousContents(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	path := filepath.Join(t.TempDir(), "report.db")

	expectMainTables(mock)
	_, err = Snapshot(context.Background(), mock, path)
	require.NoError(t, err)

	// second snapshot against the same file must not duplicate rows
	expectMainTables(mock)
	counts, err := Snapshot(context.Background(), mock, path)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Customers)

	sdb, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer sdb.Close()

	var n int
	require.NoError(t, sdb.QueryRow("SELECT COUNT(*) FROM customers").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSnapshot_LoadError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM customers ORDER BY").WillReturnError(assert.AnError)

	_, err = Snapshot(context.Background(), mock, filepath.Join(t.TempDir(), "report.db"))
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
