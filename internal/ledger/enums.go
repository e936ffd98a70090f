package ledger

import (
	"fmt"
	"strings"
)

// RequestType distinguishes deposit asks from withdrawal asks.
type RequestType string

const (
	RequestTypeDeposit    RequestType = "deposit"
	RequestTypeWithdrawal RequestType = "withdrawal"
)

func ParseRequestType(s string) (RequestType, error) {
	switch RequestType(strings.ToLower(strings.TrimSpace(s))) {
	case RequestTypeDeposit:
		return RequestTypeDeposit, nil
	case RequestTypeWithdrawal:
		return RequestTypeWithdrawal, nil
	}
	return "", fmt.Errorf("unknown request type %q", s)
}

func (t RequestType) Label() string {
	switch t {
	case RequestTypeDeposit:
		return "Deposit"
	case RequestTypeWithdrawal:
		return "Withdrawal"
	}
	return string(t)
}

// CryptoType is the closed set of assets the desk tracks.
type CryptoType string

const (
	CryptoBTC  CryptoType = "btc"
	CryptoETH  CryptoType = "eth"
	CryptoUSDC CryptoType = "usdc"
	CryptoUSDT CryptoType = "usdt"
)

func ParseCryptoType(s string) (CryptoType, error) {
	switch CryptoType(strings.ToLower(strings.TrimSpace(s))) {
	case CryptoBTC:
		return CryptoBTC, nil
	case CryptoETH:
		return CryptoETH, nil
	case CryptoUSDC:
		return CryptoUSDC, nil
	case CryptoUSDT:
		return CryptoUSDT, nil
	}
	return "", fmt.Errorf("unknown crypto type %q", s)
}

func (c CryptoType) Label() string {
	switch c {
	case CryptoBTC:
		return "Bitcoin (BTC)"
	case CryptoETH:
		return "Ethereum (ETH)"
	case CryptoUSDC:
		return "USD Coin (USDC)"
	case CryptoUSDT:
		return "Tether (USDT)"
	}
	return string(c)
}

// Symbol returns the uppercase ticker, e.g. "BTC".
func (c CryptoType) Symbol() string {
	return strings.ToUpper(string(c))
}
