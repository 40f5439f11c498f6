package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const etherscanBaseURL = "https://api.etherscan.io/v2/api"

// Etherscan serves eth_call and eth_getCode through the Etherscan proxy
// module. It exists for hosts that cannot reach public nodes directly.
type Etherscan struct {
	httpClient *http.Client
	baseURL    string // overridable in tests
	apiKey     string
	chainID    int64
}

func NewEtherscan(httpClient *http.Client, apiKey string) *Etherscan {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Etherscan{
		httpClient: httpClient,
		baseURL:    etherscanBaseURL,
		apiKey:     apiKey,
		chainID:    1,
	}
}

func (e *Etherscan) Name() string { return "etherscan" }

func (e *Etherscan) Close() {}

func (e *Etherscan) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if msg.To == nil {
		return nil, errors.New("etherscan: eth_call without a target address")
	}
	params := url.Values{}
	params.Set("module", "proxy")
	params.Set("action", "eth_call")
	params.Set("to", msg.To.Hex())
	params.Set("data", hexutil.Encode(msg.Data))
	params.Set("tag", blockTag(blockNumber))
	return e.get(ctx, params)
}

func (e *Etherscan) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	params := url.Values{}
	params.Set("module", "proxy")
	params.Set("action", "eth_getCode")
	params.Set("address", contract.Hex())
	params.Set("tag", blockTag(blockNumber))
	return e.get(ctx, params)
}

// etherscanResponse covers both reply shapes: proxied JSON-RPC
// ({jsonrpc, id, result|error}) and the account API envelope
// ({status, message, result}) used for key and rate limit failures.
type etherscanResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    int         `json:"code"`
		Message string      `json:"message"`
		Data    interface{} `json:"data"`
	} `json:"error"`
}

func (e *Etherscan) get(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("chainid", strconv.FormatInt(e.chainID, 10))
	if e.apiKey != "" {
		params.Set("apikey", e.apiKey)
	}
	u := fmt.Sprintf("%s?%s", e.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("etherscan: build request: %w", err)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("etherscan: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("etherscan: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("etherscan: status %d, body: %s", resp.StatusCode, string(body))
	}

	var out etherscanResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("etherscan: decode body: %w", err)
	}
	if out.Error != nil {
		return nil, &rpcError{code: out.Error.Code, message: out.Error.Message, data: out.Error.Data}
	}

	var result string
	if err := json.Unmarshal(out.Result, &result); err != nil {
		return nil, fmt.Errorf("etherscan: decode result: %w", err)
	}
	if out.Status == "0" {
		return nil, fmt.Errorf("etherscan: %s: %s", out.Message, result)
	}
	data, err := hexutil.Decode(result)
	if err != nil {
		return nil, fmt.Errorf("etherscan: %s", result)
	}
	return data, nil
}

func blockTag(blockNumber *big.Int) string {
	if blockNumber == nil {
		return "latest"
	}
	return hexutil.EncodeBig(blockNumber)
}
