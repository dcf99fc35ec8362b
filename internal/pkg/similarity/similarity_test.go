package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectors(t *testing.T) {
	assert.InDelta(t, 1.0, Vectors([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, Vectors([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Vectors([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	assert.Zero(t, Vectors(nil, []float32{1}))
	assert.Zero(t, Vectors([]float32{1, 2}, []float32{1}))
	assert.Zero(t, Vectors([]float32{0, 0}, []float32{1, 1}))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"show", "active", "users", "by", "order_count"},
		Tokenize("Show ACTIVE users, by order_count!"))
	assert.Equal(t, []string{"сколько", "заказов"}, Tokenize("Сколько заказов?"))
	assert.Empty(t, Tokenize("  ?! "))
}

func TestText(t *testing.T) {
	assert.InDelta(t, 1.0, Text("count users", "Users count"), 1e-9)
	assert.InDelta(t, 0.0, Text("count users", "list orders"), 1e-9)
	// {count:1, users:1} vs {count:1, orders:1}
	assert.InDelta(t, 0.5, Text("count users", "count orders"), 1e-9)
	assert.Zero(t, Text("", "anything"))
}

func TestRank(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	scores := map[string]float64{"a": 0.2, "b": 0.9, "c": 0.5, "d": 0.5}

	ranked := Rank(items, func(s string) float64 { return scores[s] }, 0.4, 2)
	assert.Len(t, ranked, 2)
	assert.Equal(t, "b", ranked[0].Item)
	assert.Equal(t, "c", ranked[1].Item)

	all := Rank(items, func(s string) float64 { return scores[s] }, 0, 10)
	assert.Len(t, all, 4)
	assert.Equal(t, "a", all[3].Item)

	none := Rank(items, func(s string) float64 { return scores[s] }, 0.95, 3)
	assert.Empty(t, none)
}
