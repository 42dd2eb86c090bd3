package preprocess

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/datapulse/datapulse-cli/internal/model"
	"github.com/datapulse/datapulse-cli/internal/normalize"
)

// Products cleans products_raw: default names and categories, text
// cleanup, title casing, price normalization and a stock floor of zero.
func (p *Preprocessor) Products(ctx context.Context) Result {
	res := Result{Entity: "products", Status: model.StatusSuccess}

	products, err := p.st.RawProducts(ctx)
	if err != nil {
		return p.fail("products", err)
	}

	// Step 1: defaults for blank name and category.
	for i := range products {
		pr := &products[i]
		name, category := pr.Name, pr.Category
		if strings.TrimSpace(name) == "" {
			name = "Unnamed Product"
		}
		if strings.TrimSpace(category) == "" {
			category = "Unknown"
		}
		if name == pr.Name && category == pr.Category {
			continue
		}
		if _, err := p.pool.Exec(ctx,
			`UPDATE products_raw SET product_name=$1, category=$2 WHERE product_id=$3`,
			name, category, pr.ID); err != nil {
			return p.fail("products", eris.Wrap(err, "preprocess: fill defaults"))
		}
		pr.Name, pr.Category = name, category
		res.Updated++
	}

	// Step 2: trim and collapse whitespace, title-case name and category.
	for i := range products {
		pr := &products[i]
		name := normalize.Title(normalize.CollapseSpaces(pr.Name))
		category := normalize.Title(strings.TrimSpace(pr.Category))
		if name == pr.Name && category == pr.Category {
			continue
		}
		if _, err := p.pool.Exec(ctx,
			`UPDATE products_raw SET product_name=$1, category=$2 WHERE product_id=$3`,
			name, category, pr.ID); err != nil {
			return p.fail("products", eris.Wrap(err, "preprocess: clean text"))
		}
		pr.Name, pr.Category = name, category
		res.Updated++
	}

	// Step 3: normalize prices to plain numbers. Unparsable values default
	// to 0 rather than aborting the batch.
	for i := range products {
		pr := &products[i]
		sp := normalize.FormatPrice(normalize.Price(pr.SellingPrice))
		cp := normalize.FormatPrice(normalize.Price(pr.CostPrice))
		if sp == pr.SellingPrice && cp == pr.CostPrice {
			continue
		}
		if _, err := p.pool.Exec(ctx,
			`UPDATE products_raw SET selling_price=$1, cost_price=$2 WHERE product_id=$3`,
			sp, cp, pr.ID); err != nil {
			return p.fail("products", eris.Wrap(err, "preprocess: normalize prices"))
		}
		pr.SellingPrice, pr.CostPrice = sp, cp
		res.Updated++
	}

	// Step 4: stock cannot be negative.
	for i := range products {
		pr := &products[i]
		if pr.Stock >= 0 {
			continue
		}
		if _, err := p.pool.Exec(ctx,
			`UPDATE products_raw SET stock=0 WHERE product_id=$1`, pr.ID); err != nil {
			return p.fail("products", eris.Wrap(err, "preprocess: clamp stock"))
		}
		pr.Stock = 0
		res.Updated++
	}

	return res
}
