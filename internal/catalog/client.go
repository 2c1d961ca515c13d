package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rocketcart/internal/types"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

// Client talks to the storefront catalog API. It implements ports.StockOracle and
// ports.ProductLookup. Every failure, including a 404, is returned as types.ErrTransport.
type Client struct {
	baseURL    string
	http       *http.Client
	products   *TTL[int, types.Product]
	productTTL time.Duration
}

// NewClient creates a client for baseURL. productTTL > 0 caches product records for that long;
// stock is always fetched.
func NewClient(baseURL string, timeout time.Duration, productTTL time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: timeout},
		products:   NewTTL[int, types.Product](),
		productTTL: productTTL,
	}
}

func NewClientFromConfig(cfg types.CatalogConfig) *Client {
	return NewClient(
		cfg.BaseURL,
		time.Duration(cfg.TimeoutSeconds)*time.Second,
		time.Duration(cfg.ProductCacheSeconds)*time.Second,
	)
}

func (c *Client) GetStock(ctx context.Context, productID int) (types.StockRecord, error) {
	var rec types.StockRecord
	if err := c.getJSON(ctx, fmt.Sprintf("/stock/%d", productID), &rec); err != nil {
		return types.StockRecord{}, err
	}
	if rec.ProductID == 0 {
		rec.ProductID = productID
	}
	if rec.Amount < 0 {
		rec.Amount = 0
	}
	return rec, nil
}

func (c *Client) GetProduct(ctx context.Context, productID int) (types.Product, error) {
	if c.productTTL > 0 {
		if p, ok := c.products.Get(productID); ok {
			return p, nil
		}
	}
	var p types.Product
	if err := c.getJSON(ctx, fmt.Sprintf("/products/%d", productID), &p); err != nil {
		return types.Product{}, err
	}
	if c.productTTL > 0 {
		c.products.Purge()
		c.products.Set(productID, p, c.productTTL)
	}
	return p, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return types.Err(types.ErrTransport, err, "build request %s", path)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return types.Err(types.ErrTransport, err, "GET %s", path)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return types.Err(types.ErrTransport, err, "read %s", path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithFields(log.Fields{
			"path":   path,
			"status": resp.StatusCode,
		}).Debug("Catalog request failed")
		return types.Err(types.ErrTransport, nil, "GET %s: status %d", path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return types.Err(types.ErrTransport, err, "decode %s", path)
	}
	return nil
}
