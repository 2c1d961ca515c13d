package types

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// DefaultCartKey is the persistence slot holding the serialized cart.
const DefaultCartKey = "@RocketShoes:cart"

// Product is a catalog record. Only ID is interpreted; every other field returned by the
// product lookup is carried through as-is in Fields.
type Product struct {
	ID     int
	Fields map[string]json.RawMessage
}

// LineItem is one product entry in the cart with its requested quantity.
// Its JSON form is flat: the product fields plus "id" and "amount".
type LineItem struct {
	Product
	Amount int
}

// Cart is an ordered list of line items, unique by product ID.
type Cart []LineItem

// StockRecord is the available quantity of a product as reported by the stock endpoint.
type StockRecord struct {
	ProductID int `json:"id"`
	Amount    int `json:"amount"`
}

// UpdateProductAmount asks for a line item to be set to an exact quantity.
type UpdateProductAmount struct {
	ProductID int `json:"productId"`
	Amount    int `json:"amount"`
}

// NewLineItem puts amount units of p in a line. A product field named "amount" is dropped,
// as the line's own amount takes its place in the JSON form.
func NewLineItem(p Product, amount int) LineItem {
	if _, ok := p.Fields["amount"]; ok {
		fields := make(map[string]json.RawMessage, len(p.Fields)-1)
		for k, v := range p.Fields {
			if k != "amount" {
				fields[k] = v
			}
		}
		p.Fields = nilIfEmpty(fields)
	}
	return LineItem{Product: p, Amount: amount}
}

// Index returns the position of the line item for productID, or -1.
func (c Cart) Index(productID int) int {
	for i := range c {
		if c[i].ID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a copy of the cart that can be mutated without touching c.
// Product fields are shared; they are never mutated in place.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Quantity is the sum of all line item amounts.
func (c Cart) Quantity() int {
	n := 0
	for _, it := range c {
		n += it.Amount
	}
	return n
}

func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(flatten(p.Fields, map[string]int{"id": p.ID}))
}

func (p *Product) UnmarshalJSON(b []byte) error {
	fields, err := splitFields(b)
	if err != nil {
		return err
	}
	id, err := takeInt(fields, "id")
	if err != nil {
		return err
	}
	p.ID = id
	p.Fields = nilIfEmpty(fields)
	return nil
}

func (it LineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(flatten(it.Fields, map[string]int{"id": it.ID, "amount": it.Amount}))
}

func (it *LineItem) UnmarshalJSON(b []byte) error {
	fields, err := splitFields(b)
	if err != nil {
		return err
	}
	id, err := takeInt(fields, "id")
	if err != nil {
		return err
	}
	amount, err := takeInt(fields, "amount")
	if err != nil {
		return err
	}
	it.ID = id
	it.Amount = amount
	it.Fields = nilIfEmpty(fields)
	return nil
}

func flatten(fields map[string]json.RawMessage, ints map[string]int) map[string]any {
	out := make(map[string]any, len(fields)+len(ints))
	for k, v := range fields {
		out[k] = v
	}
	for k, v := range ints {
		out[k] = v
	}
	return out
}

// splitFields decodes a JSON object into compacted raw values so equal records compare equal
// regardless of the whitespace they were served with.
func splitFields(b []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("expected a JSON object, got %s", string(b))
	}
	for k, v := range raw {
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		raw[k] = json.RawMessage(buf.Bytes())
	}
	return raw, nil
}

func takeInt(fields map[string]json.RawMessage, key string) (int, error) {
	v, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("missing %q", key)
	}
	delete(fields, key)
	var n int
	if err := json.Unmarshal(v, &n); err != nil {
		return 0, fmt.Errorf("invalid %q: %w", key, err)
	}
	return n, nil
}

func nilIfEmpty(m map[string]json.RawMessage) map[string]json.RawMessage {
	if len(m) == 0 {
		return nil
	}
	return m
}
