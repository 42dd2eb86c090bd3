// Package model defines the raw, main and mapping entities of the
// reconciliation pipeline.
package model

import "time"

// Status classifies the outcome of a pipeline operation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// RawCustomer is a manually entered customer staged in customers_raw.
type RawCustomer struct {
	ID    int64  `json:"customer_id"`
	Name  string `json:"customer_name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	City  string `json:"city"`
}

// Customer is the canonical customer record used by reporting.
type Customer struct {
	ID        int64     `json:"customer_id"`
	Name      string    `json:"customer_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"created_at"`
}

// RawProduct is a manually entered product staged in products_raw.
// Prices arrive as free text and may carry currency symbols or thousands
// separators until preprocessing normalizes them.
type RawProduct struct {
	ID           int64  `json:"product_id"`
	Name         string `json:"product_name"`
	Category     string `json:"category"`
	SellingPrice string `json:"selling_price"`
	CostPrice    string `json:"cost_price"`
	Stock        int64  `json:"stock"`
}

// Product is the canonical product record.
type Product struct {
	ID           int64     `json:"product_id"`
	Name         string    `json:"product_name"`
	Category     string    `json:"category"`
	SellingPrice float64   `json:"selling_price"`
	CostPrice    float64   `json:"cost_price"`
	Stock        int64     `json:"stock"`
	AddedAt      time.Time `json:"added_at"`
}

// RawOrder references raw customer and product identities.
type RawOrder struct {
	ID            int64  `json:"order_id"`
	CustomerID    int64  `json:"customer_id"`
	ProductID     int64  `json:"product_id"`
	Quantity      int64  `json:"quantity"`
	Status        string `json:"order_status"`
	PaymentMethod string `json:"payment_method"`
}

// Order references main customer and product identities, resolved through
// the mapping tables at migration time.
type Order struct {
	ID            int64     `json:"order_id"`
	CustomerID    int64     `json:"customer_id"`
	ProductID     int64     `json:"product_id"`
	Quantity      int64     `json:"quantity"`
	Status        string    `json:"order_status"`
	PaymentMethod string    `json:"payment_method"`
	OrderDate     time.Time `json:"order_date"`
}

// RawSale references a raw order identity.
type RawSale struct {
	ID         int64   `json:"sale_id"`
	OrderID    int64   `json:"order_id"`
	SaleAmount float64 `json:"sale_amount"`
	Profit     float64 `json:"profit"`
	Region     string  `json:"region"`
}

// Sale references a main order identity.
type Sale struct {
	ID         int64     `json:"sale_id"`
	OrderID    int64     `json:"order_id"`
	SaleAmount float64   `json:"sale_amount"`
	Profit     float64   `json:"profit"`
	Region     string    `json:"region"`
	SaleDate   time.Time `json:"sale_date"`
}
