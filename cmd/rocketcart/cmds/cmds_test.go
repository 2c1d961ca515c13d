package cmds

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"rocketcart/internal/backends"
	"rocketcart/internal/backends/memory"
	"rocketcart/internal/cart"
	"rocketcart/internal/catalog"
	"rocketcart/internal/notify"
	"rocketcart/internal/types"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"
)

type CmdsTestSuite struct {
	suite.Suite

	catalog *httptest.Server
	cfg     types.Config
	kv      *memory.KV
}

func TestCmdsTestSuite(t *testing.T) {
	suite.Run(t, new(CmdsTestSuite))
}

func (s *CmdsTestSuite) SetupTest() {
	f := catalog.NewFixture(
		[]types.Product{
			{ID: 7, Fields: map[string]json.RawMessage{"title": json.RawMessage(`"Tênis Nike Air"`)}},
		},
		[]types.StockRecord{{ProductID: 7, Amount: 2}},
	)
	s.catalog = httptest.NewServer(f.Router())
	s.cfg = types.DefaultConfig()
	s.cfg.Catalog.BaseURL = s.catalog.URL
	s.kv = memory.NewKV()
}

func (s *CmdsTestSuite) TearDownTest() {
	s.catalog.Close()
}

func (s *CmdsTestSuite) TestApply() {
	ctx := context.Background()
	store, err := OpenStore(ctx, s.cfg, s.kv)
	s.Require().NoError(err)
	notices := &notify.Recorder{}

	var out bytes.Buffer
	err = Apply(ctx, store, notices, &out, func(p *cart.Provider) { p.AddProduct(ctx, 7) })
	s.NoError(err)
	var c types.Cart
	s.Require().NoError(json.Unmarshal(out.Bytes(), &c))
	s.Equal(1, c.Quantity())

	s.NoError(Apply(ctx, store, notices, &bytes.Buffer{}, func(p *cart.Provider) { p.AddProduct(ctx, 7) }))
	err = Apply(ctx, store, notices, &bytes.Buffer{}, func(p *cart.Provider) { p.AddProduct(ctx, 7) })
	s.EqualError(err, cart.MsgOutOfStock)
	s.Equal([]string{cart.MsgOutOfStock}, notices.Messages())

	raw, found, _ := s.kv.Get(ctx, types.DefaultCartKey)
	s.True(found)
	persisted, err := cart.Decode(raw)
	s.NoError(err)
	s.Equal(2, persisted.Quantity())
}

func (s *CmdsTestSuite) TestApplyWithoutNotifier() {
	ctx := context.Background()
	store, err := OpenStore(ctx, s.cfg, s.kv)
	s.Require().NoError(err)
	err = Apply(ctx, store, nil, &bytes.Buffer{}, func(p *cart.Provider) { p.RemoveProduct(ctx, 7) })
	s.EqualError(err, cart.MsgRemoveFailed)
}

func (s *CmdsTestSuite) TestPrintCart() {
	c := types.Cart{
		{Product: types.Product{ID: 1}, Amount: 2},
		{Product: types.Product{ID: 2}, Amount: 3},
	}
	var out bytes.Buffer
	s.NoError(PrintCart(&out, c, "sum([].amount)"))
	s.Equal("5\n", out.String())

	out.Reset()
	s.NoError(PrintCart(&out, types.Cart{}, ""))
	s.Equal("[]\n", out.String())

	s.Error(PrintCart(&bytes.Buffer{}, c, "sum(["))
}

func (s *CmdsTestSuite) TestLoadConfig() {
	cfg, err := LoadConfig("")
	s.NoError(err)
	s.Equal(types.DefaultConfig(), cfg)

	path := filepath.Join(s.T().TempDir(), "cart.yml")
	s.Require().NoError(os.WriteFile(path, []byte(fmt.Sprintf("catalog:\n  base_url: %s\n", s.catalog.URL)), 0o600))
	cfg, err = LoadConfig(path)
	s.NoError(err)
	s.Equal(s.catalog.URL, cfg.Catalog.BaseURL)
}

func (s *CmdsTestSuite) TestRootCommand() {
	path := filepath.Join(s.T().TempDir(), "cart.yml")
	s.Require().NoError(os.WriteFile(path, []byte(fmt.Sprintf("catalog:\n  base_url: %s\n", s.catalog.URL)), 0o600))
	s.T().Setenv(backends.KVBackendEnvKey, backends.BackendMemory)
	s.T().Setenv(EnvFileKey, filepath.Join(s.T().TempDir(), "missing.env"))

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "add", "7"})
	s.NoError(root.Execute())

	var c types.Cart
	s.Require().NoError(json.Unmarshal(out.Bytes(), &c))
	s.Require().Len(c, 1)
	s.Equal(7, c[0].ID)
	s.JSONEq(`"Tênis Nike Air"`, string(c[0].Fields["title"]))

	root = NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "update", "7", "x"})
	s.Error(root.Execute())
}

func (s *CmdsTestSuite) TestParseIntArg() {
	n, err := parseIntArg("amount", "3")
	s.NoError(err)
	s.Equal(3, n)
	_, err = parseIntArg("amount", "three")
	s.EqualError(err, `invalid amount "three"`)
}
