package cmds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"rocketcart/internal/backends"
	"rocketcart/internal/cart"
	"rocketcart/internal/catalog"
	"rocketcart/internal/notify"
	"rocketcart/internal/ports"
	"rocketcart/internal/types"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// OpenStore wires kv and the configured catalog into a cart store.
func OpenStore(ctx context.Context, cfg types.Config, kv ports.PersistentKV) (*cart.Store, error) {
	client := catalog.NewClientFromConfig(cfg.Catalog)
	return cart.Open(ctx, kv, client, client,
		cart.WithKey(cfg.Cart.Key),
		cart.RequireStockOnFirstAdd(cfg.Cart.RequireStockOnFirstAdd),
	)
}

// NewNotifier logs every notice and, when a topic is configured, publishes it to SNS as well.
func NewNotifier(ctx context.Context, cfg types.Config) (ports.Notifier, error) {
	n := notify.Multi{notify.NewLog(nil)}
	if cfg.Notifier.SNSTopicArn != "" {
		cli, err := backends.SNSClientFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		n = append(n, notify.NewSNS(cli, cfg.Notifier.SNSTopicArn))
	}
	return n, nil
}

func openFromEnv(ctx context.Context, cfg types.Config) (*cart.Store, ports.Notifier, error) {
	kv, err := backends.KVBackendFromEnv(ctx)
	if err != nil {
		return nil, nil, err
	}
	store, err := OpenStore(ctx, cfg, kv)
	if err != nil {
		return nil, nil, err
	}
	n, err := NewNotifier(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, n, nil
}

// Apply runs fn through a Provider over store and prints the resulting cart to w.
// A notice raised by the operation is returned as an error so the process exits non-zero.
func Apply(ctx context.Context, store *cart.Store, notifier ports.Notifier, w io.Writer, fn func(p *cart.Provider)) error {
	rec := &notify.Recorder{}
	p := cart.NewProvider(store, notify.Multi{notifier, rec})
	fn(p)
	if err := PrintCart(w, p.Cart(), ""); err != nil {
		return err
	}
	if msg := rec.Last(); msg != "" {
		return errors.New(msg)
	}
	return nil
}

// PrintCart writes the cart, or the result of a JMESPath query over it, as indented JSON.
func PrintCart(w io.Writer, c types.Cart, query string) error {
	var v any = c
	if query != "" {
		res, err := cart.Query(c, query)
		if err != nil {
			return err
		}
		v = res
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func parseIntArg(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return n, nil
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIntArg("product id", args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, n, err := openFromEnv(ctx, opts.cfg)
			if err != nil {
				return err
			}
			return Apply(ctx, store, n, cmd.OutOrStdout(), func(p *cart.Provider) {
				p.AddProduct(ctx, id)
			})
		},
	}
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIntArg("product id", args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, n, err := openFromEnv(ctx, opts.cfg)
			if err != nil {
				return err
			}
			return Apply(ctx, store, n, cmd.OutOrStdout(), func(p *cart.Provider) {
				p.RemoveProduct(ctx, id)
			})
		},
	}
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <product-id> <amount>",
		Short: "Set the quantity of a product already in the cart",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIntArg("product id", args[0])
			if err != nil {
				return err
			}
			amount, err := parseIntArg("amount", args[1])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, n, err := openFromEnv(ctx, opts.cfg)
			if err != nil {
				return err
			}
			return Apply(ctx, store, n, cmd.OutOrStdout(), func(p *cart.Provider) {
				p.UpdateProductAmount(ctx, types.UpdateProductAmount{ProductID: id, Amount: amount})
			})
		},
	}
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, err := openFromEnv(ctx, opts.cfg)
			if err != nil {
				return err
			}
			return PrintCart(cmd.OutOrStdout(), store.Cart(), query)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "JMESPath expression evaluated against the cart, e.g. 'sum([].amount)'")
	return cmd
}
