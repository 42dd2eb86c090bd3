package store

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datapulse/datapulse-cli/internal/model"
)

func TestUpdateRawProduct_RecomputesLinkedSales(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products_raw").
		WithArgs("Laptop", "Electronics", "150", "100", int64(10), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("SELECT order_id, quantity FROM orders_raw").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"order_id", "quantity"}).AddRow(int64(5), int64(3)))
	// qty 3 * sp 150 = 450; 3 * (150-100) = 150
	mock.ExpectExec("UPDATE sales_raw").
		WithArgs(450.0, 150.0, int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err = New(mock).UpdateRawProduct(context.Background(), model.RawProduct{
		ID: 1, Name: "Laptop", Category: "Electronics",
		SellingPrice: "150", CostPrice: "100", Stock: 10,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRawProduct_NoLinkedOrders(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products_raw").
		WithArgs("Mouse", "Electronics", "20", "10", int64(5), int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("SELECT order_id, quantity FROM orders_raw").
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"order_id", "quantity"}))
	mock.ExpectCommit()

	err = New(mock).UpdateRawProduct(context.Background(), model.RawProduct{
		ID: 2, Name: "Mouse", Category: "Electronics",
		SellingPrice: "20", CostPrice: "10", Stock: 5,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRawOrder_RecomputesSale(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders_raw").
		WithArgs(int64(4), "Shipped", "UPI", int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("SELECT product_id FROM orders_raw").
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"product_id"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT selling_price, cost_price FROM products_raw").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"selling_price", "cost_price"}).AddRow("150", "100"))
	// qty 4 * 150 = 600; 4 * 50 = 200
	mock.ExpectExec("UPDATE sales_raw").
		WithArgs(600.0, 200.0, int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err = New(mock).UpdateRawOrder(context.Background(), 5, 4, "Shipped", "UPI")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRawOrder_MissingOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders_raw").
		WithArgs(int64(1), "Shipped", "UPI", int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT product_id FROM orders_raw").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"product_id"}))
	mock.ExpectRollback()

	err = New(mock).UpdateRawOrder(context.Background(), 99, 1, "Shipped", "UPI")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRawOrder_MissingProduct(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders_raw").
		WithArgs(int64(2), "Shipped", "UPI", int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("SELECT product_id FROM orders_raw").
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"product_id"}).AddRow(int64(42)))
	mock.ExpectQuery("SELECT selling_price, cost_price FROM products_raw").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"selling_price", "cost_price"}))
	mock.ExpectRollback()

	err = New(mock).UpdateRawOrder(context.Background(), 5, 2, "Shipped", "UPI")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMainProduct_RecomputesMainSales(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products").
		WithArgs(200.0, 120.0, int64(8), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("SELECT order_id, quantity FROM orders").
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"order_id", "quantity"}).
			AddRow(int64(6), int64(2)).
			AddRow(int64(7), int64(1)))
	mock.ExpectExec("UPDATE sales").
		WithArgs(400.0, 160.0, int64(6)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE sales").
		WithArgs(200.0, 80.0, int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err = New(mock).UpdateMainProduct(context.Background(), 3, 200, 120, 8)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
