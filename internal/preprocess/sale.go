package preprocess

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/datapulse/datapulse-cli/internal/model"
	"github.com/datapulse/datapulse-cli/internal/normalize"
)

// Sales cleans sales_raw: blank regions are inferred from the city of the
// customer reachable through the sale's raw order, then regions are
// trimmed and get a capitalized first letter (not full title case).
func (p *Preprocessor) Sales(ctx context.Context) Result {
	res := Result{Entity: "sales", Status: model.StatusSuccess}

	customers, err := p.st.RawCustomers(ctx)
	if err != nil {
		return p.fail("sales", err)
	}
	orders, err := p.st.RawOrders(ctx)
	if err != nil {
		return p.fail("sales", err)
	}
	sales, err := p.st.RawSales(ctx)
	if err != nil {
		return p.fail("sales", err)
	}

	// Step 1: fill blank regions, mirroring the customer city inference.
	for i := range sales {
		s := &sales[i]
		if s.Region != "" {
			continue
		}
		region := "Unknown"
		if len(customers) > 0 && len(orders) > 0 {
			region = inferRegion(s.OrderID, orders, customers)
		}
		if _, err := p.pool.Exec(ctx,
			`UPDATE sales_raw SET region=$1 WHERE sale_id=$2`, region, s.ID); err != nil {
			return p.fail("sales", eris.Wrap(err, "preprocess: fill region"))
		}
		s.Region = region
		res.Updated++
	}

	// Step 2: trim and capitalize only the first letter of the region.
	for i := range sales {
		s := &sales[i]
		region := normalize.CapFirst(strings.TrimSpace(s.Region))
		if region == s.Region {
			continue
		}
		if _, err := p.pool.Exec(ctx,
			`UPDATE sales_raw SET region=$1 WHERE sale_id=$2`, region, s.ID); err != nil {
			return p.fail("sales", eris.Wrap(err, "preprocess: clean region"))
		}
		s.Region = region
		res.Updated++
	}

	return res
}

// inferRegion returns the city of the first customer, in customer-table
// order, reachable through the sale's raw order.
func inferRegion(orderID int64, orders []model.RawOrder, customers []model.RawCustomer) string {
	customerIDs := make(map[int64]struct{})
	for _, o := range orders {
		if o.ID == orderID {
			customerIDs[o.CustomerID] = struct{}{}
		}
	}
	if len(customerIDs) == 0 {
		return "Unknown"
	}
	for _, c := range customers {
		if c.City == "" {
			continue
		}
		if _, ok := customerIDs[c.ID]; ok {
			return c.City
		}
	}
	return "Unknown"
}
