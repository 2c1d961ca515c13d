package cart

import (
	"fmt"

	"rocketcart/internal/types"

	"github.com/goccy/go-json"
	"github.com/jmespath/go-jmespath"
)

// Query evaluates a JMESPath expression against the JSON form of the cart, e.g.
// `sum([].amount)` or "[?id==`7`].amount | [0]".
// It returns nil and no error when the expression selects nothing.
func Query(c types.Cart, expression string) (any, error) {
	raw, err := Encode(c)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, err
	}
	v, err := jmespath.Search(expression, doc)
	if err != nil {
		return nil, fmt.Errorf("jmespath: %w", err)
	}
	return v, nil
}

// Totals summarizes the cart: number of lines and total quantity.
func Totals(c types.Cart) (lines, quantity int) {
	return len(c), c.Quantity()
}
