package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/datapulse/datapulse-cli/internal/model"
	"github.com/datapulse/datapulse-cli/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <entity> <file.csv>",
	Short: "Bulk-load raw rows from CSV",
	Long: `Stages rows into an entity's raw table from a CSV file with a header
row. Identities are assigned by the database. Expected columns:

  customers: customer_name,email,phone,city
  products:  product_name,category,selling_price,cost_price,stock
  orders:    customer_id,product_id,quantity,order_status,payment_method
  sales:     order_id,sale_amount,profit,region`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		entity, path := args[0], args[1]

		f, err := os.Open(path)
		if err != nil {
			return eris.Wrapf(err, "import: open %s", path)
		}
		defer f.Close() //nolint:errcheck

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		st := store.New(pool)
		var n int

		switch store.Entity(entity) {
		case store.Customers:
			rows, err := parseCustomerCSV(f)
			if err != nil {
				return err
			}
			if err := st.InsertRawCustomers(ctx, rows); err != nil {
				return err
			}
			n = len(rows)
		case store.Products:
			rows, err := parseProductCSV(f)
			if err != nil {
				return err
			}
			if err := st.InsertRawProducts(ctx, rows); err != nil {
				return err
			}
			n = len(rows)
		case store.Orders:
			rows, err := parseOrderCSV(f)
			if err != nil {
				return err
			}
			if err := st.InsertRawOrders(ctx, rows); err != nil {
				return err
			}
			n = len(rows)
		case store.Sales:
			rows, err := parseSaleCSV(f)
			if err != nil {
				return err
			}
			if err := st.InsertRawSales(ctx, rows); err != nil {
				return err
			}
			n = len(rows)
		default:
			return eris.Errorf("import: unknown entity %q (want customers, products, orders or sales)", entity)
		}

		zap.L().Info("import complete", zap.String("entity", entity),
			zap.String("csv", path), zap.Int("staged", n))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

// csvRecords reads all data rows and returns a column-name index built from
// the header row.
func csvRecords(r io.Reader, required ...string) (map[string]int, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, eris.Wrap(err, "import: read csv header")
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, nil, eris.Errorf("import: csv missing column %q", name)
		}
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "import: read csv row")
		}
		records = append(records, record)
	}
	return idx, records, nil
}

// field returns the named column of a record, or "" when the row is short.
func field(record []string, idx map[string]int, name string) string {
	i := idx[name]
	if i >= len(record) {
		return ""
	}
	return record[i]
}

func intField(record []string, idx map[string]int, name string) (int64, error) {
	s := strings.TrimSpace(field(record, idx, name))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "import: column %s", name)
	}
	return n, nil
}

func floatField(record []string, idx map[string]int, name string) (float64, error) {
	s := strings.TrimSpace(field(record, idx, name))
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "import: column %s", name)
	}
	return f, nil
}

func parseCustomerCSV(r io.Reader) ([]model.RawCustomer, error) {
	idx, records, err := csvRecords(r, "customer_name", "email", "phone", "city")
	if err != nil {
		return nil, err
	}
	out := make([]model.RawCustomer, 0, len(records))
	for _, rec := range records {
		out = append(out, model.RawCustomer{
			Name:  field(rec, idx, "customer_name"),
			Email: field(rec, idx, "email"),
			Phone: field(rec, idx, "phone"),
			City:  field(rec, idx, "city"),
		})
	}
	return out, nil
}

func parseProductCSV(r io.Reader) ([]model.RawProduct, error) {
	idx, records, err := csvRecords(r, "product_name", "category", "selling_price", "cost_price", "stock")
	if err != nil {
		return nil, err
	}
	out := make([]model.RawProduct, 0, len(records))
	for _, rec := range records {
		stock, err := intField(rec, idx, "stock")
		if err != nil {
			return nil, err
		}
		// Prices stay as entered; preprocessing normalizes them.
		out = append(out, model.RawProduct{
			Name:         field(rec, idx, "product_name"),
			Category:     field(rec, idx, "category"),
			SellingPrice: field(rec, idx, "selling_price"),
			CostPrice:    field(rec, idx, "cost_price"),
			Stock:        stock,
		})
	}
	return out, nil
}

func parseOrderCSV(r io.Reader) ([]model.RawOrder, error) {
	idx, records, err := csvRecords(r, "customer_id", "product_id", "quantity", "order_status", "payment_method")
	if err != nil {
		return nil, err
	}
	out := make([]model.RawOrder, 0, len(records))
	for _, rec := range records {
		customerID, err := intField(rec, idx, "customer_id")
		if err != nil {
			return nil, err
		}
		productID, err := intField(rec, idx, "product_id")
		if err != nil {
			return nil, err
		}
		quantity, err := intField(rec, idx, "quantity")
		if err != nil {
			return nil, err
		}
		out = append(out, model.RawOrder{
			CustomerID:    customerID,
			ProductID:     productID,
			Quantity:      quantity,
			Status:        field(rec, idx, "order_status"),
			PaymentMethod: field(rec, idx, "payment_method"),
		})
	}
	return out, nil
}

func parseSaleCSV(r io.Reader) ([]model.RawSale, error) {
	idx, records, err := csvRecords(r, "order_id", "sale_amount", "profit", "region")
	if err != nil {
		return nil, err
	}
	out := make([]model.RawSale, 0, len(records))
	for _, rec := range records {
		orderID, err := intField(rec, idx, "order_id")
		if err != nil {
			return nil, err
		}
		amount, err := floatField(rec, idx, "sale_amount")
		if err != nil {
			return nil, err
		}
		profit, err := floatField(rec, idx, "profit")
		if err != nil {
			return nil, err
		}
		out = append(out, model.RawSale{
			OrderID:    orderID,
			SaleAmount: amount,
			Profit:     profit,
			Region:     field(rec, idx, "region"),
		})
	}
	return out, nil
}
