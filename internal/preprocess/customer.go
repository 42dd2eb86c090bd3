package preprocess

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/datapulse/datapulse-cli/internal/model"
	"github.com/datapulse/datapulse-cli/internal/normalize"
)

// Customers cleans customers_raw in four steps, each durable on its own:
// city inference, email fill, field cleanup, title casing. A crash between
// steps leaves earlier steps committed and safe to re-apply.
func (p *Preprocessor) Customers(ctx context.Context) Result {
	res := Result{Entity: "customers", Status: model.StatusSuccess}

	customers, err := p.st.RawCustomers(ctx)
	if err != nil {
		return p.fail("customers", err)
	}
	orders, err := p.st.RawOrders(ctx)
	if err != nil {
		return p.fail("customers", err)
	}
	sales, err := p.st.RawSales(ctx)
	if err != nil {
		return p.fail("customers", err)
	}

	// Step 1: fill blank cities. With order and sale data available the
	// city is inferred from the region of the first sale reachable through
	// the customer's raw orders; otherwise "Unknown".
	for i := range customers {
		c := &customers[i]
		if c.City != "" {
			continue
		}
		city := "Unknown"
		if len(orders) > 0 && len(sales) > 0 {
			city = inferCity(c.ID, orders, sales)
		}
		if _, err := p.pool.Exec(ctx,
			`UPDATE customers_raw SET city=$1 WHERE customer_id=$2`, city, c.ID); err != nil {
			return p.fail("customers", eris.Wrap(err, "preprocess: fill city"))
		}
		c.City = city
		res.Updated++
	}

	// Step 2: fill blank emails.
	for i := range customers {
		c := &customers[i]
		if c.Email != "" {
			continue
		}
		if _, err := p.pool.Exec(ctx,
			`UPDATE customers_raw SET email=$1 WHERE customer_id=$2`, "Unknown", c.ID); err != nil {
			return p.fail("customers", eris.Wrap(err, "preprocess: fill email"))
		}
		c.Email = "Unknown"
		res.Updated++
	}

	// Step 3: trim fields, lowercase email, collapse internal whitespace
	// in the name.
	for i := range customers {
		c := &customers[i]
		name := normalize.CollapseSpaces(c.Name)
		email := strings.ToLower(strings.TrimSpace(c.Email))
		city := strings.TrimSpace(c.City)
		if name == c.Name && email == c.Email && city == c.City {
			continue
		}
		if _, err := p.pool.Exec(ctx,
			`UPDATE customers_raw SET customer_name=$1, email=$2, city=$3 WHERE customer_id=$4`,
			name, email, city, c.ID); err != nil {
			return p.fail("customers", eris.Wrap(err, "preprocess: clean fields"))
		}
		c.Name, c.Email, c.City = name, email, city
		res.Updated++
	}

	// Step 4: title-case name and city.
	for i := range customers {
		c := &customers[i]
		name := normalize.Title(c.Name)
		city := normalize.Title(c.City)
		if name == c.Name && city == c.City {
			continue
		}
		if _, err := p.pool.Exec(ctx,
			`UPDATE customers_raw SET customer_name=$1, city=$2 WHERE customer_id=$3`,
			name, city, c.ID); err != nil {
			return p.fail("customers", eris.Wrap(err, "preprocess: title case"))
		}
		c.Name, c.City = name, city
		res.Updated++
	}

	return res
}

// inferCity returns the region of the first sale, in sale-table order,
// reachable through the customer's raw orders. The "first match" is plain
// iteration order of the raw rows, not a business priority.
func inferCity(customerID int64, orders []model.RawOrder, sales []model.RawSale) string {
	orderIDs := make(map[int64]struct{})
	for _, o := range orders {
		if o.CustomerID == customerID {
			orderIDs[o.ID] = struct{}{}
		}
	}
	if len(orderIDs) == 0 {
		return "Unknown"
	}
	for _, s := range sales {
		if s.Region == "" {
			continue
		}
		if _, ok := orderIDs[s.OrderID]; ok {
			return s.Region
		}
	}
	return "Unknown"
}
