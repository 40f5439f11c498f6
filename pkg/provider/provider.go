package provider

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Provider is a read-only handle on an Ethereum node. Nothing here can sign
// or send transactions.
type Provider interface {
	bind.ContractCaller

	// Name identifies the provider in logs.
	Name() string
	Close()
}

// JSONRPC talks to a single JSON-RPC endpoint.
type JSONRPC struct {
	*ethclient.Client
	url string
}

// DialJSONRPC creates a client for url. Over HTTP no request is made until
// the first call.
func DialJSONRPC(url string) (*JSONRPC, error) {
	client, err := ethclient.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &JSONRPC{Client: client, url: url}, nil
}

// Name returns the endpoint URL.
func (p *JSONRPC) Name() string { return p.url }

// IsRevert reports whether err is the node telling us the call reverted.
// A revert is a property of the contract, so every node will agree on it.
func IsRevert(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "execution reverted")
}

// rpcError is a JSON-RPC error object received outside of the rpc package,
// e.g. from the Etherscan proxy.
type rpcError struct {
	code    int
	message string
	data    interface{}
}

var (
	_ rpc.Error     = (*rpcError)(nil)
	_ rpc.DataError = (*rpcError)(nil)
)

func (e *rpcError) Error() string { return e.message }

func (e *rpcError) ErrorCode() int { return e.code }

func (e *rpcError) ErrorData() interface{} { return e.data }
