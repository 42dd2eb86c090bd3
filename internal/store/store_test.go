package store

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityNames(t *testing.T) {
	tests := []struct {
		e       Entity
		raw     string
		mapping string
		idCol   string
		rawCol  string
		mainCol string
	}{
		{Customers, "customers_raw", "customer_mapping", "customer_id", "raw_customer_id", "main_customer_id"},
		{Products, "products_raw", "product_mapping", "product_id", "raw_product_id", "main_product_id"},
		{Orders, "orders_raw", "order_mapping", "order_id", "raw_order_id", "main_order_id"},
		{Sales, "sales_raw", "sale_mapping", "sale_id", "raw_sale_id", "main_sale_id"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.raw, tt.e.RawTable())
		assert.Equal(t, string(tt.e), tt.e.MainTable())
		assert.Equal(t, tt.mapping, tt.e.MappingTable())
		assert.Equal(t, tt.idCol, tt.e.IDColumn())
		assert.Equal(t, tt.rawCol, tt.e.RawMapColumn())
		assert.Equal(t, tt.mainCol, tt.e.MainMapColumn())
	}
}

func TestAllEntities_DependencyOrder(t *testing.T) {
	assert.Equal(t, []Entity{Customers, Products, Orders, Sales}, AllEntities)
}

func TestRawCount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(5)))

	n, err := New(mock).RawCount(context.Background(), Customers)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableCounts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	for i := range 12 {
		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(i)))
	}

	counts, err := New(mock).TableCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 12)
	assert.Equal(t, "customers_raw", counts[0].Table)
	assert.Equal(t, "customers", counts[4].Table)
	assert.Equal(t, "customer_mapping", counts[8].Table)
	assert.Equal(t, int64(11), counts[11].Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMappings(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"raw_customer_id", "main_customer_id"}).
		AddRow(int64(1), int64(7)).
		AddRow(int64(2), int64(8))
	mock.ExpectQuery("FROM customer_mapping").WillReturnRows(rows)

	m, err := New(mock).Mappings(context.Background(), Customers)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 7, 2: 8}, m)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS customers_raw").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	err = New(mock).EnsureSchema(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
