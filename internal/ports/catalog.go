package ports

import (
	"context"
	"rocketcart/internal/types"
)

// StockOracle reports the available quantity of a product. Implementations MUST NOT cache:
// every call reflects the remote stock count at the time of the call.
type StockOracle interface {
	GetStock(ctx context.Context, productID int) (types.StockRecord, error)
}

// ProductLookup resolves the full product record for a product ID.
type ProductLookup interface {
	GetProduct(ctx context.Context, productID int) (types.Product, error)
}
