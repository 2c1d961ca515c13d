package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"rocketcart/internal/ports"
	"rocketcart/internal/types"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

// Store owns the authoritative in-memory cart and keeps the persistence slot in sync with it.
// Every operation runs under a single writer lock for its whole read-modify-write sequence,
// including the catalog calls, so two concurrent mutations never work off the same snapshot.
// Each operation either commits a new cart (slot first, then memory) or leaves both untouched.
type Store struct {
	mu       sync.Mutex
	cart     types.Cart
	kv       ports.PersistentKV
	stock    ports.StockOracle
	products ports.ProductLookup

	key                    string
	requireStockOnFirstAdd bool
}

type Option func(*Store)

// WithKey overrides the persistence slot key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// RequireStockOnFirstAdd makes AddProduct reject a product that is not yet in the cart when
// the stock endpoint reports 0 available.
func RequireStockOnFirstAdd(on bool) Option {
	return func(s *Store) { s.requireStockOnFirstAdd = on }
}

// Open creates the store, seeding the cart from the persistence slot.
// A slot that does not decode is logged and treated as an empty cart.
func Open(ctx context.Context,
	kv ports.PersistentKV,
	stock ports.StockOracle,
	products ports.ProductLookup,
	opts ...Option,
) (*Store, error) {
	s := &Store{
		cart:     types.Cart{},
		kv:       kv,
		stock:    stock,
		products: products,
		key:      types.DefaultCartKey,
	}
	for _, o := range opts {
		o(s)
	}

	raw, found, err := kv.Get(ctx, s.key)
	if err != nil {
		return nil, types.Err(types.ErrDataStoreAccess, err, "load cart %q", s.key)
	}
	if !found || raw == "" {
		return s, nil
	}
	c, err := Decode(raw)
	if err != nil {
		log.WithError(err).WithField("key", s.key).Warn("Persisted cart is malformed, starting empty")
		return s, nil
	}
	s.cart = c
	return s, nil
}

// Cart returns a copy of the current cart.
func (s *Store) Cart() types.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// AddProduct adds one unit of productID: a new line with amount 1 if the product is not in the
// cart yet, otherwise an increment bounded by the current stock.
func (s *Store) AddProduct(ctx context.Context, productID int) (types.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stock, err := s.stock.GetStock(ctx, productID)
	if err != nil {
		return s.cart.Clone(), types.Err(types.ErrTransport, err, "stock of product %d", productID)
	}

	next := s.cart.Clone()
	idx := next.Index(productID)
	if idx == -1 {
		if s.requireStockOnFirstAdd && stock.Amount < 1 {
			return s.cart.Clone(), types.Err(types.ErrOutOfStock, nil, "product %d: none available", productID)
		}
		product, err := s.products.GetProduct(ctx, productID)
		if err != nil {
			return s.cart.Clone(), types.Err(types.ErrTransport, err, "product %d", productID)
		}
		// The lookup answers for the requested ID.
		product.ID = productID
		next = append(next, types.NewLineItem(product, 1))
	} else {
		if next[idx].Amount >= stock.Amount {
			return s.cart.Clone(), types.Err(types.ErrOutOfStock, nil,
				"product %d: have %d, available %d", productID, next[idx].Amount, stock.Amount)
		}
		next[idx].Amount++
	}
	return s.commit(ctx, next)
}

// RemoveProduct drops the line for productID. Removing a product that is not in the cart is
// an ErrNotFound.
func (s *Store) RemoveProduct(ctx context.Context, productID int) (types.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart.Index(productID) == -1 {
		return s.cart.Clone(), types.Err(types.ErrNotFound, nil, "product %d is not in the cart", productID)
	}
	next := make(types.Cart, 0, len(s.cart)-1)
	for _, it := range s.cart {
		if it.ID != productID {
			next = append(next, it)
		}
	}
	return s.commit(ctx, next)
}

// UpdateProductAmount sets the line for req.ProductID to exactly req.Amount.
// A non-positive amount is ignored without error.
func (s *Store) UpdateProductAmount(ctx context.Context, req types.UpdateProductAmount) (types.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Amount <= 0 {
		return s.cart.Clone(), nil
	}
	stock, err := s.stock.GetStock(ctx, req.ProductID)
	if err != nil {
		return s.cart.Clone(), types.Err(types.ErrTransport, err, "stock of product %d", req.ProductID)
	}
	if req.Amount > stock.Amount {
		return s.cart.Clone(), types.Err(types.ErrOutOfStock, nil,
			"product %d: requested %d, available %d", req.ProductID, req.Amount, stock.Amount)
	}
	next := s.cart.Clone()
	idx := next.Index(req.ProductID)
	if idx == -1 {
		return s.cart.Clone(), types.Err(types.ErrNotFound, nil, "product %d is not in the cart", req.ProductID)
	}
	next[idx].Amount = req.Amount
	return s.commit(ctx, next)
}

// commit writes next to the slot and only then makes it the current cart. Must hold s.mu.
func (s *Store) commit(ctx context.Context, next types.Cart) (types.Cart, error) {
	raw, err := Encode(next)
	if err != nil {
		return s.cart.Clone(), types.Err(types.ErrDataStoreAccess, err, "encode cart")
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		if errors.Is(err, types.ErrDataStoreAccess) {
			return s.cart.Clone(), err
		}
		return s.cart.Clone(), types.Err(types.ErrDataStoreAccess, err, "save cart %q", s.key)
	}
	s.cart = next
	log.WithFields(log.Fields{
		"key":      s.key,
		"lines":    len(next),
		"quantity": next.Quantity(),
	}).Debug("Cart committed")
	return next.Clone(), nil
}

// Encode serializes a cart into its persisted form.
func Encode(c types.Cart) (string, error) {
	if c == nil {
		c = types.Cart{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses the persisted form of a cart. Lines sharing a product ID or holding an
// amount below 1 are rejected.
func Decode(raw string) (types.Cart, error) {
	var c types.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, err
	}
	seen := make(map[int]struct{}, len(c))
	for _, it := range c {
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("duplicate product %d in cart", it.ID)
		}
		if it.Amount < 1 {
			return nil, fmt.Errorf("product %d has amount %d", it.ID, it.Amount)
		}
		seen[it.ID] = struct{}{}
	}
	if c == nil {
		c = types.Cart{}
	}
	return c, nil
}
