package migrate

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/datapulse/datapulse-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func expectRawCustomers(mock pgxmock.PgxPoolIface, customers ...model.RawCustomer) {
	rows := pgxmock.NewRows([]string{"customer_id", "customer_name", "email", "phone", "city"})
	for _, c := range customers {
		rows.AddRow(c.ID, c.Name, c.Email, c.Phone, c.City)
	}
	mock.ExpectQuery("FROM customers_raw").WillReturnRows(rows)
}

func expectMainCustomers(mock pgxmock.PgxPoolIface, customers ...model.Customer) {
	rows := pgxmock.NewRows([]string{"customer_id", "customer_name", "email", "phone", "city", "created_at"})
	for _, c := range customers {
		rows.AddRow(c.ID, c.Name, c.Email, c.Phone, c.City, c.CreatedAt)
	}
	mock.ExpectQuery("FROM customers ORDER BY").WillReturnRows(rows)
}

func expectMappings(mock pgxmock.PgxPoolIface, table string, pairs map[int64]int64) {
	rows := pgxmock.NewRows([]string{"raw_id", "main_id"})
	for rawID, mainID := range pairs {
		rows.AddRow(rawID, mainID)
	}
	mock.ExpectQuery("FROM " + table).WillReturnRows(rows)
}

func TestCustomers_Bootstrap(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectRawCustomers(mock,
		model.RawCustomer{ID: 1, Name: "Alice", Email: "a@b.com", Phone: "555", City: "South"},
		model.RawCustomer{ID: 2, Name: "Bob", Email: "b@c.com", Phone: "777", City: "North"},
	)
	expectMainCustomers(mock)
	expectMappings(mock, "customer_mapping", nil)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").
		WithArgs("Alice", "a@b.com", "555", "South").
		WillReturnRows(pgxmock.NewRows([]string{"customer_id"}).AddRow(int64(1)))
	mock.ExpectExec("INSERT INTO customer_mapping").
		WithArgs(int64(1), int64(1)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("INSERT INTO customers").
		WithArgs("Bob", "b@c.com", "777", "North").
		WillReturnRows(pgxmock.NewRows([]string{"customer_id"}).AddRow(int64(2)))
	mock.ExpectExec("INSERT INTO customer_mapping").
		WithArgs(int64(2), int64(2)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	res := New(mock).Customers(context.Background())
	assert.Equal(t, model.StatusSuccess, res.Status)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 0, res.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomers_DuplicatePhoneSkipped(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectRawCustomers(mock,
		model.RawCustomer{ID: 1, Name: "Alice Dup", Email: "dup@b.com", Phone: "555", City: "South"},
		model.RawCustomer{ID: 2, Name: "Bob", Email: "b@c.com", Phone: "777", City: "North"},
	)
	expectMainCustomers(mock,
		model.Customer{ID: 7, Name: "Alice", Email: "a@b.com", Phone: "555", City: "South", CreatedAt: time.Now()},
	)
	expectMappings(mock, "customer_mapping", nil)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").
		WithArgs("Bob", "b@c.com", "777", "North").
		WillReturnRows(pgxmock.NewRows([]string{"customer_id"}).AddRow(int64(8)))
	mock.ExpectExec("INSERT INTO customer_mapping").
		WithArgs(int64(2), int64(8)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	res := New(mock).Customers(context.Background())
	assert.Equal(t, model.StatusSuccess, res.Status)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomers_IntraBatchDuplicateSkipped(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// Main is non-empty, so the dedup path applies. Two staged rows share a
	// phone: the first wins, the second is skipped within the same batch.
	expectRawCustomers(mock,
		model.RawCustomer{ID: 1, Name: "Alice", Email: "a@b.com", Phone: "555", City: "South"},
		model.RawCustomer{ID: 2, Name: "Alice Again", Email: "a2@b.com", Phone: "555", City: "South"},
	)
	expectMainCustomers(mock,
		model.Customer{ID: 7, Name: "Carol", Email: "c@d.com", Phone: "111", City: "East", CreatedAt: time.Now()},
	)
	expectMappings(mock, "customer_mapping", nil)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").
		WithArgs("Alice", "a@b.com", "555", "South").
		WillReturnRows(pgxmock.NewRows([]string{"customer_id"}).AddRow(int64(8)))
	mock.ExpectExec("INSERT INTO customer_mapping").
		WithArgs(int64(1), int64(8)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	res := New(mock).Customers(context.Background())
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomers_AlreadyMappedSkipped(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectRawCustomers(mock,
		model.RawCustomer{ID: 1, Name: "Alice", Email: "a@b.com", Phone: "555", City: "South"},
	)
	expectMainCustomers(mock,
		model.Customer{ID: 7, Name: "Alice", Email: "a@b.com", Phone: "555", City: "South", CreatedAt: time.Now()},
	)
	expectMappings(mock, "customer_mapping", map[int64]int64{1: 7})

	mock.ExpectBegin()
	mock.ExpectCommit()

	res := New(mock).Customers(context.Background())
	assert.Equal(t, model.StatusSuccess, res.Status)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProducts_ParsesPricesOnPromotion(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"product_id", "product_name", "category", "selling_price", "cost_price", "stock"}).
		AddRow(int64(1), "Laptop", "Electronics", "1,299.50", "₹900", int64(10))
	mock.ExpectQuery("FROM products_raw").WillReturnRows(rows)
	mock.ExpectQuery("FROM products ORDER BY").WillReturnRows(
		pgxmock.NewRows([]string{"product_id", "product_name", "category", "selling_price", "cost_price", "stock", "added_at"}))
	expectMappings(mock, "product_mapping", nil)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Laptop", "Electronics", 1299.5, 900.0, int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"product_id"}).AddRow(int64(3)))
	mock.ExpectExec("INSERT INTO product_mapping").
		WithArgs(int64(1), int64(3)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	res := New(mock).Products(context.Background())
	assert.Equal(t, model.StatusSuccess, res.Status)
	assert.Equal(t, 1, res.Inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrders_UnresolvedParentSkipped(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"order_id", "customer_id", "product_id", "quantity", "order_status", "payment_method"}).
		AddRow(int64(1), int64(1), int64(1), int64(2), "Delivered", "UPI").
		AddRow(int64(2), int64(9), int64(1), int64(1), "Pending", "Card")
	mock.ExpectQuery("FROM orders_raw").WillReturnRows(rows)
	expectMappings(mock, "order_mapping", nil)
	expectMappings(mock, "customer_mapping", map[int64]int64{1: 7})
	expectMappings(mock, "product_mapping", map[int64]int64{1: 3})

	mock.ExpectBegin()
	// order 1 resolves both parents through the mappings
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(7), int64(3), int64(2), "Delivered", "UPI").
		WillReturnRows(pgxmock.NewRows([]string{"order_id"}).AddRow(int64(5)))
	mock.ExpectExec("INSERT INTO order_mapping").
		WithArgs(int64(1), int64(5)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	// order 2 references customer 9 which has no mapping: skipped
	mock.ExpectCommit()

	res := New(mock).Orders(context.Background())
	assert.Equal(t, model.StatusSuccess, res.Status)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSales_ResolvesOrderMapping(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"sale_id", "order_id", "sale_amount", "profit", "region"}).
		AddRow(int64(1), int64(1), 300.0, 100.0, "South").
		AddRow(int64(2), int64(2), 50.0, 10.0, "North")
	mock.ExpectQuery("FROM sales_raw").WillReturnRows(rows)
	expectMappings(mock, "sale_mapping", nil)
	expectMappings(mock, "order_mapping", map[int64]int64{1: 5})

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO sales").
		WithArgs(int64(5), 300.0, 100.0, "South").
		WillReturnRows(pgxmock.NewRows([]string{"sale_id"}).AddRow(int64(9)))
	mock.ExpectExec("INSERT INTO sale_mapping").
		WithArgs(int64(1), int64(9)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	// sale 2's order is unmigrated: skipped
	mock.ExpectCommit()

	res := New(mock).Sales(context.Background())
	assert.Equal(t, model.StatusSuccess, res.Status)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomers_InsertErrorRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectRawCustomers(mock,
		model.RawCustomer{ID: 1, Name: "Alice", Email: "a@b.com", Phone: "555", City: "South"},
	)
	expectMainCustomers(mock)
	expectMappings(mock, "customer_mapping", nil)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO customers").
		WithArgs("Alice", "a@b.com", "555", "South").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	res := New(mock).Customers(context.Background())
	assert.Equal(t, model.StatusError, res.Status)
	assert.Contains(t, res.Message, "insert customer")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAll_SkipsEmptyTables(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	for range 4 {
		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	}

	sum := New(mock).All(context.Background())
	assert.Equal(t, model.StatusSkipped, sum.Customers.Status)
	assert.Equal(t, model.StatusSkipped, sum.Products.Status)
	assert.Equal(t, model.StatusSkipped, sum.Orders.Status)
	assert.Equal(t, model.StatusSkipped, sum.Sales.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
