package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestType(t *testing.T) {
	typ, err := ParseRequestType("  Deposit ")
	require.NoError(t, err)
	assert.Equal(t, RequestTypeDeposit, typ)

	_, err = ParseRequestType("transfer")
	assert.Error(t, err)
}

func TestParseCryptoType(t *testing.T) {
	c, err := ParseCryptoType("BTC")
	require.NoError(t, err)
	assert.Equal(t, CryptoBTC, c)
	assert.Equal(t, "BTC", c.Symbol())
	assert.Equal(t, "Bitcoin (BTC)", c.Label())

	_, err = ParseCryptoType("doge")
	assert.Error(t, err)
}
