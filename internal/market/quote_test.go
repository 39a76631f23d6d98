package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTradable(t *testing.T) {
	cases := []struct {
		name  string
		price float64
		size  float64
		want  bool
	}{
		{"valid", 0.5, 100, true},
		{"zero price", 0, 100, false},
		{"price at one", 1, 100, false},
		{"zero size", 0.5, 0, false},
		{"negative size", 0.5, -1, false},
		{"near boundary", 0.01, 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := Quote{Price: tc.price, Size: tc.size}
			assert.Equal(t, tc.want, q.Tradable())
		})
	}
}

func TestEventKey(t *testing.T) {
	assert.Equal(t, "fed cuts rates", EventKey("  Fed Cuts Rates  "))
	assert.Equal(t, EventKey("BTC 100k?"), EventKey("btc 100k?"))
}

func TestPairKey(t *testing.T) {
	assert.Equal(t, "a <-> b", PairKey("a", "b"))
	assert.NotEqual(t, PairKey("a", "b"), PairKey("b", "a"))
}
