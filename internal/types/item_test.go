package types

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineItemFlatJSON(t *testing.T) {
	var it LineItem
	err := json.Unmarshal([]byte(`{
		"id": 1,
		"title": "Tênis de Caminhada Leve Confortável",
		"price": 179.9,
		"image": "https://example.com/tenis1.jpg",
		"amount": 2
	}`), &it)
	require.NoError(t, err)
	assert.Equal(t, 1, it.ID)
	assert.Equal(t, 2, it.Amount)
	assert.Len(t, it.Fields, 3)
	assert.Equal(t, `179.9`, string(it.Fields["price"]))
	assert.NotContains(t, it.Fields, "id")
	assert.NotContains(t, it.Fields, "amount")

	b, err := json.Marshal(it)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"Tênis de Caminhada Leve Confortável","price":179.9,"image":"https://example.com/tenis1.jpg","amount":2}`, string(b))

	var back LineItem
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, it, back)
}

func TestLineItemRequiresIDAndAmount(t *testing.T) {
	var it LineItem
	assert.Error(t, json.Unmarshal([]byte(`{"amount":1}`), &it))
	assert.Error(t, json.Unmarshal([]byte(`{"id":1}`), &it))
	assert.Error(t, json.Unmarshal([]byte(`{"id":"one","amount":1}`), &it))
	assert.Error(t, json.Unmarshal([]byte(`null`), &it))
}

func TestProductJSON(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"id": 3, "tags": ["a", "b"]}`), &p))
	assert.Equal(t, 3, p.ID)
	assert.Equal(t, `["a","b"]`, string(p.Fields["tags"]))

	var bare Product
	require.NoError(t, json.Unmarshal([]byte(`{"id": 4}`), &bare))
	assert.Nil(t, bare.Fields)

	b, err := json.Marshal(bare)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":4}`, string(b))
}

func TestCartHelpers(t *testing.T) {
	c := Cart{
		{Product: Product{ID: 1}, Amount: 2},
		{Product: Product{ID: 7}, Amount: 3},
	}
	assert.Equal(t, 0, c.Index(1))
	assert.Equal(t, 1, c.Index(7))
	assert.Equal(t, -1, c.Index(9))
	assert.Equal(t, 5, c.Quantity())

	cl := c.Clone()
	cl[0].Amount = 10
	assert.Equal(t, 2, c[0].Amount)

	var empty Cart
	assert.NotNil(t, empty.Clone())
	assert.Equal(t, 0, empty.Quantity())
}

func TestNewLineItem(t *testing.T) {
	p := Product{ID: 5, Fields: map[string]json.RawMessage{
		"title":  json.RawMessage(`"Tênis"`),
		"amount": json.RawMessage(`40`),
	}}
	it := NewLineItem(p, 1)
	assert.Equal(t, 1, it.Amount)
	assert.Equal(t, map[string]json.RawMessage{"title": json.RawMessage(`"Tênis"`)}, it.Fields)
	assert.Contains(t, p.Fields, "amount")

	b, err := json.Marshal(it)
	require.NoError(t, err)
	var back LineItem
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, it, back)

	only := NewLineItem(Product{ID: 6, Fields: map[string]json.RawMessage{"amount": json.RawMessage(`1`)}}, 2)
	assert.Nil(t, only.Fields)
}
