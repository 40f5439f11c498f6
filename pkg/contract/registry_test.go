package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	table := Table()
	labels := make([]string, len(table))
	for i, d := range table {
		labels[i] = d.Label
		_, err := New(d.Address, mustABI(t), &fakeCaller{})
		require.NoError(t, err, d.Label)
	}
	assert.Equal(t, []string{
		"Bored Ape Yacht Club", "CryptoPunks", "Azuki", "Doodles",
		"Moonbirds", "USDT", "USDC", "Uniswap V2 Router",
	}, labels)

	table[0].Label = "changed"
	assert.Equal(t, "Bored Ape Yacht Club", Table()[0].Label)
}

func TestHome(t *testing.T) {
	assert.Equal(t, Table()[0], Home())
}
