package types

import (
	"fmt"
	"net/url"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is loaded from a YAML file at startup. It drives how the cart reaches its catalog,
// where it persists and how the HTTP surface is exposed.
// Backend selection and credentials are not part of it; they come from the environment.
type Config struct {
	Catalog  CatalogConfig  `yaml:"catalog" json:"catalog"`
	Cart     CartConfig     `yaml:"cart" json:"cart"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	Notifier NotifierConfig `yaml:"notifier" json:"notifier"`
}

// CatalogConfig points at the service answering `/stock/{id}` and `/products/{id}`.
// ProductCacheSeconds caches product records (never stock); 0 disables the cache.
type CatalogConfig struct {
	BaseURL             string `yaml:"base_url" json:"base_url"`
	TimeoutSeconds      int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	ProductCacheSeconds int    `yaml:"product_cache_seconds" json:"product_cache_seconds"`
}

type CartConfig struct {
	// Key is the persistence slot. Defaults to DefaultCartKey.
	Key string `yaml:"key" json:"key"`
	// RequireStockOnFirstAdd rejects adding a product that is not yet in the cart when its
	// stock is 0. Off by default: a first add is accepted without looking at the stock amount.
	RequireStockOnFirstAdd bool `yaml:"require_stock_on_first_add" json:"require_stock_on_first_add"`
}

type ServerConfig struct {
	Port int `yaml:"port" json:"port"`
}

type NotifierConfig struct {
	// SNSTopicArn, when set, forwards every cart notification to the topic in addition to the log.
	SNSTopicArn string `yaml:"sns_topic_arn" json:"sns_topic_arn"`
}

const (
	DefaultCatalogURL     = "http://localhost:3333"
	DefaultTimeoutSeconds = 5
	DefaultServerPort     = 8080
)

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Catalog: CatalogConfig{
			BaseURL:        DefaultCatalogURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Cart:   CartConfig{Key: DefaultCartKey},
		Server: ServerConfig{Port: DefaultServerPort},
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, Err(ErrInvalidConfig, err, "read %s", path)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, Err(ErrInvalidConfig, err, "parse %s", path)
	}
	if cfg.Cart.Key == "" {
		cfg.Cart.Key = DefaultCartKey
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, Err(ErrInvalidConfig, err, "")
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url is required")
	}
	u, err := url.Parse(c.Catalog.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("catalog.base_url must be an absolute URL")
	}
	if c.Catalog.TimeoutSeconds <= 0 {
		return fmt.Errorf("catalog.timeout_seconds must be positive")
	}
	if c.Catalog.ProductCacheSeconds < 0 {
		return fmt.Errorf("catalog.product_cache_seconds must be non-negative. 0 for no cache")
	}
	if c.Cart.Key == "" {
		return fmt.Errorf("cart.key is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	return nil
}
