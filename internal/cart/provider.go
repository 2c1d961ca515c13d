package cart

import (
	"context"

	"rocketcart/internal/ports"
	"rocketcart/internal/types"

	log "github.com/sirupsen/logrus"
)

// Provider is the surface handed to the UI layer. Failures never reach the caller: they are
// logged and reported through the Notifier, and the caller only ever observes Cart().
type Provider struct {
	store    *Store
	notifier ports.Notifier
}

func NewProvider(store *Store, notifier ports.Notifier) *Provider {
	return &Provider{store: store, notifier: notifier}
}

// Cart is the current snapshot.
func (p *Provider) Cart() types.Cart {
	return p.store.Cart()
}

func (p *Provider) AddProduct(ctx context.Context, productID int) {
	_, err := p.store.AddProduct(ctx, productID)
	p.report(ctx, OpAdd, productID, err)
}

func (p *Provider) RemoveProduct(ctx context.Context, productID int) {
	_, err := p.store.RemoveProduct(ctx, productID)
	p.report(ctx, OpRemove, productID, err)
}

func (p *Provider) UpdateProductAmount(ctx context.Context, req types.UpdateProductAmount) {
	_, err := p.store.UpdateProductAmount(ctx, req)
	p.report(ctx, OpUpdate, req.ProductID, err)
}

func (p *Provider) report(ctx context.Context, op Op, productID int, err error) {
	if err == nil {
		return
	}
	log.WithError(err).WithFields(log.Fields{
		"op":        OpTextMap[op],
		"productID": productID,
	}).Info("Cart operation rejected")
	Report(ctx, p.notifier, op, err)
}
