package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKnownSymbols(t *testing.T) {
	assert.Equal(t, "Bitcoin", English("BTC"))
	assert.Equal(t, "비트코인", Korean("BTC"))
	assert.Equal(t, "Ethereum", English("ETH"))
}

func TestUnknownSymbolFallsBack(t *testing.T) {
	assert.Equal(t, "ZZZZ", English("ZZZZ"))
	assert.Equal(t, "ZZZZ", Korean("ZZZZ"))
}
