package catalog

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"rocketcart/internal/types"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/gorilla/mux"
)

// Fixture is a local stand-in for the catalog API, serving products and stock from a
// json-server style document:
//
//	{"products": [{"id": 1, "title": "...", ...}], "stock": [{"id": 1, "amount": 3}]}
type Fixture struct {
	mu       sync.RWMutex
	products map[int]types.Product
	stock    map[int]types.StockRecord
	order    []int
}

type fixtureDoc struct {
	Products []types.Product     `json:"products"`
	Stock    []types.StockRecord `json:"stock"`
}

func NewFixture(products []types.Product, stock []types.StockRecord) *Fixture {
	f := &Fixture{
		products: make(map[int]types.Product, len(products)),
		stock:    make(map[int]types.StockRecord, len(stock)),
	}
	for _, p := range products {
		if _, ok := f.products[p.ID]; !ok {
			f.order = append(f.order, p.ID)
		}
		f.products[p.ID] = p
	}
	for _, s := range stock {
		f.stock[s.ProductID] = s
	}
	return f
}

// LoadFixture reads a fixture document; `.yml`/`.yaml` files are YAML, anything else JSON.
func LoadFixture(path string) (*Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		b, err = yaml.YAMLToJSON(b)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	var doc fixtureDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return NewFixture(doc.Products, doc.Stock), nil
}

// SetStock changes the available amount of a product.
func (f *Fixture) SetStock(productID, amount int) {
	f.mu.Lock()
	f.stock[productID] = types.StockRecord{ProductID: productID, Amount: amount}
	f.mu.Unlock()
}

func (f *Fixture) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/products", f.listProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/{id:[0-9]+}", f.getProduct).Methods(http.MethodGet)
	r.HandleFunc("/stock", f.listStock).Methods(http.MethodGet)
	r.HandleFunc("/stock/{id:[0-9]+}", f.getStock).Methods(http.MethodGet)
	return r
}

func (f *Fixture) listProducts(w http.ResponseWriter, r *http.Request) {
	f.mu.RLock()
	out := make([]types.Product, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.products[id])
	}
	f.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (f *Fixture) getProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	f.mu.RLock()
	p, ok := f.products[id]
	f.mu.RUnlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (f *Fixture) listStock(w http.ResponseWriter, r *http.Request) {
	f.mu.RLock()
	out := make([]types.StockRecord, 0, len(f.stock))
	for _, s := range f.stock {
		out = append(out, s)
	}
	f.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	writeJSON(w, http.StatusOK, out)
}

func (f *Fixture) getStock(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	f.mu.RLock()
	s, ok := f.stock[id]
	f.mu.RUnlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
