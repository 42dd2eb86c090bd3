package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/datapulse/datapulse-cli/internal/model"
	"github.com/datapulse/datapulse-cli/internal/store"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Edit staged or migrated records",
	Long: `Edits a product or an order by id. Price and quantity changes recompute
the dependent sale rows (sale_amount = quantity * selling_price,
profit = quantity * (selling_price - cost_price)) in the same store.
With --raw the staged row is edited; otherwise the main row.`,
}

var updateProductCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Update product prices and stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Wrap(err, "update product: parse id")
		}
		raw, _ := cmd.Flags().GetBool("raw")

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()
		st := store.New(pool)

		if raw {
			products, err := st.RawProducts(ctx)
			if err != nil {
				return err
			}
			var current *model.RawProduct
			for i := range products {
				if products[i].ID == id {
					current = &products[i]
					break
				}
			}
			if current == nil {
				return eris.Errorf("update product: id %d not found in products_raw", id)
			}
			if cmd.Flags().Changed("selling-price") {
				current.SellingPrice, _ = cmd.Flags().GetString("selling-price")
			}
			if cmd.Flags().Changed("cost-price") {
				current.CostPrice, _ = cmd.Flags().GetString("cost-price")
			}
			if cmd.Flags().Changed("stock") {
				current.Stock, _ = cmd.Flags().GetInt64("stock")
			}
			if err := st.UpdateRawProduct(ctx, *current); err != nil {
				return err
			}
		} else {
			products, err := st.Products(ctx)
			if err != nil {
				return err
			}
			var current *model.Product
			for i := range products {
				if products[i].ID == id {
					current = &products[i]
					break
				}
			}
			if current == nil {
				return eris.Errorf("update product: id %d not found in products", id)
			}
			if cmd.Flags().Changed("selling-price") {
				s, _ := cmd.Flags().GetString("selling-price")
				if current.SellingPrice, err = strconv.ParseFloat(s, 64); err != nil {
					return eris.Wrap(err, "update product: parse selling price")
				}
			}
			if cmd.Flags().Changed("cost-price") {
				s, _ := cmd.Flags().GetString("cost-price")
				if current.CostPrice, err = strconv.ParseFloat(s, 64); err != nil {
					return eris.Wrap(err, "update product: parse cost price")
				}
			}
			if cmd.Flags().Changed("stock") {
				current.Stock, _ = cmd.Flags().GetInt64("stock")
			}
			if err := st.UpdateMainProduct(ctx, id, current.SellingPrice, current.CostPrice, current.Stock); err != nil {
				return err
			}
		}

		fmt.Println("Product updated, dependent sales recomputed")
		return nil
	},
}

var updateOrderCmd = &cobra.Command{
	Use:   "order <id>",
	Short: "Update order quantity, status and payment method",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Wrap(err, "update order: parse id")
		}
		raw, _ := cmd.Flags().GetBool("raw")

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()
		st := store.New(pool)

		if raw {
			orders, err := st.RawOrders(ctx)
			if err != nil {
				return err
			}
			var current *model.RawOrder
			for i := range orders {
				if orders[i].ID == id {
					current = &orders[i]
					break
				}
			}
			if current == nil {
				return eris.Errorf("update order: id %d not found in orders_raw", id)
			}
			if cmd.Flags().Changed("quantity") {
				current.Quantity, _ = cmd.Flags().GetInt64("quantity")
			}
			if cmd.Flags().Changed("status") {
				current.Status, _ = cmd.Flags().GetString("status")
			}
			if cmd.Flags().Changed("payment") {
				current.PaymentMethod, _ = cmd.Flags().GetString("payment")
			}
			if err := st.UpdateRawOrder(ctx, id, current.Quantity, current.Status, current.PaymentMethod); err != nil {
				return err
			}
			fmt.Println("Order updated, sale recomputed")
			return nil
		}

		if cmd.Flags().Changed("quantity") {
			return eris.New("update order: quantity is immutable after migration (use --raw before migrating)")
		}
		orders, err := st.Orders(ctx)
		if err != nil {
			return err
		}
		var current *model.Order
		for i := range orders {
			if orders[i].ID == id {
				current = &orders[i]
				break
			}
		}
		if current == nil {
			return eris.Errorf("update order: id %d not found in orders", id)
		}
		if cmd.Flags().Changed("status") {
			current.Status, _ = cmd.Flags().GetString("status")
		}
		if cmd.Flags().Changed("payment") {
			current.PaymentMethod, _ = cmd.Flags().GetString("payment")
		}
		if err := st.UpdateMainOrder(ctx, id, current.Status, current.PaymentMethod); err != nil {
			return err
		}

		fmt.Println("Order updated")
		return nil
	},
}

func init() {
	updateProductCmd.Flags().Bool("raw", false, "edit the staged row instead of the main row")
	updateProductCmd.Flags().String("selling-price", "", "new selling price")
	updateProductCmd.Flags().String("cost-price", "", "new cost price")
	updateProductCmd.Flags().Int64("stock", 0, "new stock level")

	updateOrderCmd.Flags().Bool("raw", false, "edit the staged row instead of the main row")
	updateOrderCmd.Flags().Int64("quantity", 0, "new quantity (staged orders only)")
	updateOrderCmd.Flags().String("status", "", "new order status")
	updateOrderCmd.Flags().String("payment", "", "new payment method")

	updateCmd.AddCommand(updateProductCmd)
	updateCmd.AddCommand(updateOrderCmd)
	rootCmd.AddCommand(updateCmd)
}
