package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"rocketcart/internal/types"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"
)

const fixtureJSON = `{
  "products": [
    {"id": 1, "title": "Tênis de Caminhada Leve Confortável", "price": 179.9, "image": "https://example.com/1.jpg"},
    {"id": 2, "title": "Tênis VR Caminhada Confortável Detalhes Couro Masculino", "price": 139.9, "image": "https://example.com/2.jpg"}
  ],
  "stock": [
    {"id": 1, "amount": 3},
    {"id": 2, "amount": 5}
  ]
}`

type ClientTestSuite struct {
	suite.Suite

	fixture  *Fixture
	server   *httptest.Server
	requests atomic.Int32
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) SetupTest() {
	var doc fixtureDoc
	s.Require().NoError(json.Unmarshal([]byte(fixtureJSON), &doc))
	s.fixture = NewFixture(doc.Products, doc.Stock)
	s.requests.Store(0)
	router := s.fixture.Router()
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		router.ServeHTTP(w, r)
	}))
}

func (s *ClientTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientTestSuite) TestGetStock() {
	c := NewClient(s.server.URL+"/", time.Second, 0)
	rec, err := c.GetStock(context.Background(), 1)
	s.NoError(err)
	s.Equal(types.StockRecord{ProductID: 1, Amount: 3}, rec)

	s.fixture.SetStock(1, 0)
	rec, err = c.GetStock(context.Background(), 1)
	s.NoError(err)
	s.Equal(0, rec.Amount)
}

func (s *ClientTestSuite) TestGetStockMissing() {
	c := NewClient(s.server.URL, time.Second, 0)
	_, err := c.GetStock(context.Background(), 99)
	s.ErrorIs(err, types.ErrTransport)
	s.Contains(err.Error(), "status 404")
}

func (s *ClientTestSuite) TestGetProduct() {
	c := NewClient(s.server.URL, time.Second, 0)
	p, err := c.GetProduct(context.Background(), 2)
	s.NoError(err)
	s.Equal(2, p.ID)
	s.Equal(`139.9`, string(p.Fields["price"]))
	s.JSONEq(`"Tênis VR Caminhada Confortável Detalhes Couro Masculino"`, string(p.Fields["title"]))

	_, err = c.GetProduct(context.Background(), 3)
	s.ErrorIs(err, types.ErrTransport)
}

func (s *ClientTestSuite) TestProductCacheNeverCachesStock() {
	c := NewClient(s.server.URL, time.Second, time.Minute)
	for i := 0; i < 3; i++ {
		_, err := c.GetProduct(context.Background(), 1)
		s.NoError(err)
	}
	s.Equal(int32(1), s.requests.Load())

	for i := 0; i < 3; i++ {
		_, err := c.GetStock(context.Background(), 1)
		s.NoError(err)
	}
	s.Equal(int32(4), s.requests.Load())
}

func (s *ClientTestSuite) TestProductCacheDropsExpired() {
	c := NewClient(s.server.URL, time.Second, 100*time.Millisecond)
	_, err := c.GetProduct(context.Background(), 1)
	s.NoError(err)
	s.Equal(1, c.products.Len())

	time.Sleep(150 * time.Millisecond)
	_, err = c.GetProduct(context.Background(), 2)
	s.NoError(err)
	s.Equal(1, c.products.Len())
	_, ok := c.products.Get(2)
	s.True(ok)
}

func (s *ClientTestSuite) TestUnreachable() {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond, 0)
	_, err := c.GetStock(context.Background(), 1)
	s.ErrorIs(err, types.ErrTransport)
}

func (s *ClientTestSuite) TestBadPayload() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"amount": "lots"`))
	}))
	defer srv.Close()
	c := NewClient(srv.URL, time.Second, 0)
	_, err := c.GetStock(context.Background(), 1)
	s.ErrorIs(err, types.ErrTransport)
}

func (s *ClientTestSuite) TestCancelledContext() {
	c := NewClient(s.server.URL, time.Second, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetStock(ctx, 1)
	s.ErrorIs(err, types.ErrTransport)
}

func (s *ClientTestSuite) TestFromConfig() {
	c := NewClientFromConfig(types.CatalogConfig{BaseURL: s.server.URL, TimeoutSeconds: 1})
	rec, err := c.GetStock(context.Background(), 2)
	s.NoError(err)
	s.Equal(5, rec.Amount)
}

func (s *ClientTestSuite) TestFixtureListings() {
	resp, err := http.Get(s.server.URL + "/products")
	s.Require().NoError(err)
	defer func() {
		_ = resp.Body.Close()
	}()
	s.Equal(http.StatusOK, resp.StatusCode)
	var products []types.Product
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&products))
	s.Len(products, 2)
	s.Equal(1, products[0].ID)

	resp2, err := http.Get(s.server.URL + "/stock")
	s.Require().NoError(err)
	defer func() {
		_ = resp2.Body.Close()
	}()
	var stock []types.StockRecord
	s.Require().NoError(json.NewDecoder(resp2.Body).Decode(&stock))
	s.Equal([]types.StockRecord{{ProductID: 1, Amount: 3}, {ProductID: 2, Amount: 5}}, stock)
}

func (s *ClientTestSuite) TestLoadFixtureFiles() {
	dir := s.T().TempDir()

	jsonPath := filepath.Join(dir, "db.json")
	s.Require().NoError(os.WriteFile(jsonPath, []byte(fixtureJSON), 0o600))
	f, err := LoadFixture(jsonPath)
	s.Require().NoError(err)
	s.Len(f.products, 2)
	s.Equal(3, f.stock[1].Amount)

	yamlPath := filepath.Join(dir, "db.yml")
	s.Require().NoError(os.WriteFile(yamlPath, []byte(`
products:
  - id: 5
    title: Tênis Adidas Duramo Lite 2.0
    price: 219.9
stock:
  - id: 5
    amount: 7
`), 0o600))
	f, err = LoadFixture(yamlPath)
	s.Require().NoError(err)
	s.Equal(5, f.products[5].ID)
	s.JSONEq(`"Tênis Adidas Duramo Lite 2.0"`, string(f.products[5].Fields["title"]))
	s.Equal(7, f.stock[5].Amount)

	_, err = LoadFixture(filepath.Join(dir, "missing.json"))
	s.Error(err)
}
