package checkout

import (
	"fmt"

	"storefront-engine/internal/domain"
)

// LineItem is one cart line as submitted by the caller. WeightGrams is only
// required when weight-based shipping is configured.
type LineItem struct {
	ProductID   string `json:"productId" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	WeightGrams int64  `json:"weightGrams,omitempty"`
}

// PartLine pairs a cart line with its resolved product snapshot. The price is
// captured here and frozen into the order.
type PartLine struct {
	Product     domain.Product
	Quantity    int
	WeightGrams int64
}

// Partition is the subset of a checkout's lines owned by one store. Each
// partition becomes its own order aggregate.
type Partition struct {
	StoreID string
	Lines   []PartLine
}

// SubtotalCents is the partition's item total before discount and shipping.
func (p Partition) SubtotalCents() int64 {
	var sum int64
	for _, l := range p.Lines {
		sum += l.Product.PriceCents * int64(l.Quantity)
	}
	return sum
}

// partitionByStore groups lines by owning store in insertion order of the
// first-seen line. Every line must resolve; one unknown product fails the
// whole request so no partial order can be created.
func partitionByStore(items []LineItem, products map[string]domain.Product) ([]Partition, error) {
	index := make(map[string]int, len(products))
	var parts []Partition
	for _, item := range items {
		p, ok := products[item.ProductID]
		if !ok {
			return nil, domain.NotFoundErr(fmt.Sprintf("Product not found: %s", item.ProductID))
		}
		i, seen := index[p.StoreID]
		if !seen {
			i = len(parts)
			index[p.StoreID] = i
			parts = append(parts, Partition{StoreID: p.StoreID})
		}
		parts[i].Lines = append(parts[i].Lines, PartLine{
			Product:     p,
			Quantity:    item.Quantity,
			WeightGrams: item.WeightGrams,
		})
	}
	return parts, nil
}
